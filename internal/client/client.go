// Package client talks to a msgslot server. A Client is one connection; it
// may hold several handles at once. Failures reported by the server come back
// as errors that match the errors package sentinels with errors.Is.
package client

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Iron-Ham/msgslot/internal/config"
	"github.com/Iron-Ham/msgslot/internal/errors"
	"github.com/Iron-Ham/msgslot/internal/slot"
	"github.com/Iron-Ham/msgslot/internal/wire"
)

// Client is a connection to a msgslot server. Calls are serialized; each
// waits for its response before the next request is sent. A call abandoned
// through its context leaves the connection out of step, so the Client
// should be closed afterwards.
type Client struct {
	mu     sync.Mutex
	conn   *wire.Conn
	nextID uint64
}

// Dial connects to a server.
func Dial(ctx context.Context, network config.Network, address string) (*Client, error) {
	var (
		c   net.Conn
		err error
	)
	switch network {
	case config.NetworkUnix, config.NetworkTCP:
		var d net.Dialer
		c, err = d.DialContext(ctx, string(network), address)
	case config.NetworkPipe:
		c, err = dialPipe(ctx, address)
	default:
		err = fmt.Errorf("unsupported network %q", network)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", address)
	}
	return New(c)
}

// New wraps an established connection.
func New(c net.Conn) (*Client, error) {
	codec, err := wire.NewCodec()
	if err != nil {
		return nil, err
	}
	return &Client{conn: wire.NewConn(c, codec, wire.MaxResponseFrame)}, nil
}

// Close closes the connection. The server closes any handles still open.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Open opens a handle on a slot instance.
func (c *Client) Open(ctx context.Context, instance int) (*Handle, error) {
	resp, err := c.call(ctx, &wire.Request{Op: wire.OpOpen, Instance: instance})
	if err != nil {
		return nil, err
	}
	return &Handle{c: c, id: resp.Handle, instance: instance}, nil
}

// Stat returns a snapshot of the device.
func (c *Client) Stat(ctx context.Context) (*slot.DeviceStat, error) {
	resp, err := c.call(ctx, &wire.Request{Op: wire.OpStat})
	if err != nil {
		return nil, err
	}
	if resp.Stat == nil {
		return &slot.DeviceStat{}, nil
	}
	return resp.Stat, nil
}

func (c *Client) call(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	req.ID = c.nextID

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
		defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	}
	stop := context.AfterFunc(ctx, func() { _ = c.conn.SetReadDeadline(time.Now()) })
	defer stop()

	if err := c.conn.WriteRequest(req); err != nil {
		return nil, errors.Wrap(err, string(req.Op))
	}
	resp, err := c.conn.ReadResponse()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
			return nil, context.DeadlineExceeded
		}
		return nil, errors.Wrap(err, string(req.Op))
	}
	if resp.ID != req.ID {
		return nil, fmt.Errorf("%s: response id %d does not match request %d", req.Op, resp.ID, req.ID)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}
