// Package wire defines the request/response protocol spoken between msgslot
// clients and the server. Messages are CBOR encoded and carried in frames
// prefixed with their length as a little-endian uint32.
package wire

import (
	"github.com/Iron-Ham/msgslot/internal/errors"
	"github.com/Iron-Ham/msgslot/internal/slot"
)

// Op names a request operation.
type Op string

const (
	OpOpen   Op = "open"
	OpSelect Op = "select"
	OpWrite  Op = "write"
	OpRead   Op = "read"
	OpClose  Op = "close"
	OpStat   Op = "stat"
)

// Valid reports whether o is a known operation.
func (o Op) Valid() bool {
	switch o {
	case OpOpen, OpSelect, OpWrite, OpRead, OpClose, OpStat:
		return true
	}
	return false
}

// Request is a single client call. Which fields are meaningful depends on Op:
//
//	open    Instance
//	select  Handle, Channel
//	write   Handle, Data
//	read    Handle, Capacity
//	close   Handle
//	stat    (none)
type Request struct {
	ID       uint64 `cbor:"1,keyasint"`
	Op       Op     `cbor:"2,keyasint"`
	Handle   uint64 `cbor:"3,keyasint,omitempty"`
	Instance int    `cbor:"4,keyasint,omitempty"`
	Channel  uint32 `cbor:"5,keyasint,omitempty"`
	Data     []byte `cbor:"6,keyasint,omitempty"`
	Capacity int    `cbor:"7,keyasint,omitempty"`
}

// Response answers the Request with the same ID. A non-empty Code means the
// request failed and only Message is meaningful.
type Response struct {
	ID      uint64           `cbor:"1,keyasint"`
	Code    errors.Code      `cbor:"2,keyasint,omitempty"`
	Message string           `cbor:"3,keyasint,omitempty"`
	Handle  uint64           `cbor:"4,keyasint,omitempty"`
	N       int              `cbor:"5,keyasint,omitempty"`
	Data    []byte           `cbor:"6,keyasint,omitempty"`
	Stat    *slot.DeviceStat `cbor:"7,keyasint,omitempty"`
}

// Failure builds the response for a request that failed with err.
func Failure(id uint64, err error) *Response {
	return &Response{
		ID:      id,
		Code:    errors.CodeOf(err),
		Message: err.Error(),
	}
}

// Err rebuilds the failure carried by r, or nil if the request succeeded.
func (r *Response) Err() error {
	return errors.FromCode(r.Code, r.Message)
}
