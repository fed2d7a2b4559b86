package client

import (
	"context"

	"github.com/Iron-Ham/msgslot/internal/wire"
)

// Handle is a server-side handle held through a Client.
type Handle struct {
	c        *Client
	id       uint64
	instance int
}

// ID returns the server-issued handle id.
func (h *Handle) ID() uint64 { return h.id }

// Instance returns the slot instance the handle was opened on.
func (h *Handle) Instance() int { return h.instance }

// Select makes channel the target of later reads and writes.
func (h *Handle) Select(ctx context.Context, channel uint32) error {
	_, err := h.c.call(ctx, &wire.Request{Op: wire.OpSelect, Handle: h.id, Channel: channel})
	return err
}

// Write replaces the selected channel's message and returns the bytes written.
func (h *Handle) Write(ctx context.Context, p []byte) (int, error) {
	resp, err := h.c.call(ctx, &wire.Request{Op: wire.OpWrite, Handle: h.id, Data: p})
	if err != nil {
		return 0, err
	}
	return resp.N, nil
}

// Read returns the selected channel's message, read with a buffer of the
// given capacity.
func (h *Handle) Read(ctx context.Context, capacity int) ([]byte, error) {
	resp, err := h.c.call(ctx, &wire.Request{Op: wire.OpRead, Handle: h.id, Capacity: capacity})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Close releases the handle on the server.
func (h *Handle) Close(ctx context.Context) error {
	_, err := h.c.call(ctx, &wire.Request{Op: wire.OpClose, Handle: h.id})
	return err
}
