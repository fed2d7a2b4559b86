package server

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/Iron-Ham/msgslot/internal/errors"
	"github.com/Iron-Ham/msgslot/internal/logging"
	"github.com/Iron-Ham/msgslot/internal/slot"
	"github.com/Iron-Ham/msgslot/internal/wire"
)

// session serves one connection. Its handle map is only touched from the
// serve goroutine.
type session struct {
	id   uint64
	srv  *Server
	conn *wire.Conn
	log  *logging.Logger

	handles map[uint64]*slot.Handle
}

func (ss *session) serve() {
	defer ss.release()
	ss.log.Info("session started", "remote", remoteName(ss.conn.RemoteAddr()))

	for {
		if idle := ss.srv.idle(); idle > 0 {
			_ = ss.conn.SetReadDeadline(time.Now().Add(idle))
		} else {
			_ = ss.conn.SetReadDeadline(time.Time{})
		}

		req, err := ss.conn.ReadRequest()
		if err != nil {
			ss.logReadError(err)
			return
		}

		resp := ss.dispatch(req)
		if err := ss.conn.WriteResponse(resp); err != nil {
			ss.log.Warn("failed to write response", "op", string(req.Op), "error", err.Error())
			return
		}
	}
}

func (ss *session) dispatch(req *wire.Request) *wire.Response {
	resp, err := ss.apply(req)
	if err != nil {
		ss.log.Debug("request failed",
			"op", string(req.Op),
			"handle", req.Handle,
			"code", string(errors.CodeOf(err)),
			"severity", errors.GetSeverity(err).String(),
			"error", err.Error())
		return wire.Failure(req.ID, err)
	}
	resp.ID = req.ID
	return resp
}

func (ss *session) apply(req *wire.Request) (*wire.Response, error) {
	dev := ss.srv.dev

	switch req.Op {
	case wire.OpOpen:
		h, err := dev.Open(req.Instance)
		if err != nil {
			return nil, err
		}
		ss.handles[h.ID()] = h
		return &wire.Response{Handle: h.ID()}, nil

	case wire.OpStat:
		stat := dev.Stat()
		return &wire.Response{Stat: &stat}, nil
	}

	h, err := ss.handle(req.Op, req.Handle)
	if err != nil {
		return nil, err
	}

	switch req.Op {
	case wire.OpSelect:
		if err := h.Select(req.Channel); err != nil {
			return nil, err
		}
		return &wire.Response{Handle: h.ID()}, nil

	case wire.OpWrite:
		n, err := h.Write(req.Data)
		if err != nil {
			return nil, err
		}
		return &wire.Response{Handle: h.ID(), N: n}, nil

	case wire.OpRead:
		msg, err := h.ReadMessage(req.Capacity)
		if err != nil {
			return nil, err
		}
		return &wire.Response{Handle: h.ID(), N: len(msg), Data: msg}, nil

	case wire.OpClose:
		delete(ss.handles, h.ID())
		if err := h.Close(); err != nil {
			return nil, err
		}
		return &wire.Response{Handle: h.ID()}, nil
	}

	return nil, errors.NewSlotError(fmt.Sprintf("unsupported operation %q", req.Op), errors.ErrInvalidArgument)
}

func (ss *session) handle(op wire.Op, id uint64) (*slot.Handle, error) {
	if !op.Valid() {
		return nil, errors.NewSlotError(fmt.Sprintf("unsupported operation %q", op), errors.ErrInvalidArgument)
	}
	h, ok := ss.handles[id]
	if !ok {
		return nil, errors.NewSlotError(fmt.Sprintf("handle %d is not open on this connection", id), errors.ErrUnknownHandle).
			WithOp(string(op))
	}
	return h, nil
}

// release closes every handle the session still holds.
func (ss *session) release() {
	n := len(ss.handles)
	for id, h := range ss.handles {
		_ = h.Close()
		delete(ss.handles, id)
	}
	_ = ss.conn.Close()
	ss.log.Info("session ended", "handles_released", n)
}

func (ss *session) logReadError(err error) {
	var ne net.Error
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		return
	case errors.As(err, &ne) && ne.Timeout():
		ss.log.Info("closing idle session", "idle_timeout", ss.srv.idle().String())
	case errors.Is(err, wire.ErrFrameTooLarge):
		ss.log.Warn("request frame too large", "error", err.Error())
	default:
		ss.log.Warn("failed to read request", "error", err.Error())
	}
}

func remoteName(addr net.Addr) string {
	if addr == nil || addr.String() == "" {
		return "local"
	}
	return addr.String()
}
