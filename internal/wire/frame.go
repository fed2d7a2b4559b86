package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Iron-Ham/msgslot/internal/errors"
)

const (
	// DefaultMaxFrame is the request frame limit used when none is configured.
	DefaultMaxFrame = 4096

	// MaxResponseFrame bounds frames read by clients. Stat responses grow
	// with the number of channels on the device.
	MaxResponseFrame = 1 << 24
)

// ErrFrameTooLarge is returned for frames over the configured limit.
var ErrFrameTooLarge = errors.New("frame too large")

// WriteFrame writes b prefixed with its length (u32 LE).
func WriteFrame(w io.Writer, b []byte) error {
	var lenbuf [4]byte
	binary.LittleEndian.PutUint32(lenbuf[:], uint32(len(b)))
	if _, err := w.Write(lenbuf[:]); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadFrame reads one length-prefixed frame of at most max bytes. A clean EOF
// before the length prefix is returned as io.EOF.
func ReadFrame(r io.Reader, max int) ([]byte, error) {
	var lenbuf [4]byte
	if _, err := io.ReadFull(r, lenbuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenbuf[:])
	if max > 0 && uint64(n) > uint64(max) {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, max)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}
