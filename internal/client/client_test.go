package client_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/msgslot/internal/client"
	"github.com/Iron-Ham/msgslot/internal/config"
	"github.com/Iron-Ham/msgslot/internal/errors"
	"github.com/Iron-Ham/msgslot/internal/slot"
	"github.com/Iron-Ham/msgslot/internal/testutil"
	"github.com/Iron-Ham/msgslot/internal/wire"
)

func TestClient_SendAndReceive(t *testing.T) {
	env := testutil.StartServer(t, nil)
	ctx := testutil.Context(t, 5*time.Second)
	c := testutil.Dial(t, env)

	h, err := c.Open(ctx, 42)
	if err != nil {
		t.Fatalf("Open(42) error = %v", err)
	}
	if h.Instance() != 42 || h.ID() == 0 {
		t.Errorf("handle = instance %d id %d", h.Instance(), h.ID())
	}
	if err := h.Select(ctx, 1000); err != nil {
		t.Fatalf("Select(1000) error = %v", err)
	}

	msg := make([]byte, slot.MaxMessageLen)
	for i := range msg {
		msg[i] = byte(i)
	}
	if n, err := h.Write(ctx, msg); err != nil || n != len(msg) {
		t.Fatalf("Write(128 bytes) = %d, %v", n, err)
	}
	got, err := h.Read(ctx, slot.MaxMessageLen)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != string(msg) {
		t.Errorf("Read() = %x, want %x", got, msg)
	}
}

func TestClient_MultipleHandlesOneConnection(t *testing.T) {
	env := testutil.StartServer(t, nil)
	ctx := testutil.Context(t, 5*time.Second)
	c := testutil.Dial(t, env)

	a, _ := c.Open(ctx, 1)
	b, _ := c.Open(ctx, 2)
	if a.ID() == b.ID() {
		t.Fatal("handles on one connection share an id")
	}
	_ = a.Select(ctx, 7)
	_ = b.Select(ctx, 7)
	_, _ = a.Write(ctx, []byte("one"))

	if _, err := b.Read(ctx, 16); !errors.Is(err, errors.ErrNoData) {
		t.Errorf("Read() on instance 2 error = %v, want ErrNoData", err)
	}
	if env.Device.OpenHandles() != 2 {
		t.Errorf("OpenHandles() = %d, want 2", env.Device.OpenHandles())
	}
}

func TestClient_ConcurrentCalls(t *testing.T) {
	env := testutil.StartServer(t, nil)
	ctx := testutil.Context(t, 10*time.Second)
	c := testutil.Dial(t, env)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := c.Open(ctx, i)
			if err != nil {
				t.Errorf("Open(%d) error = %v", i, err)
				return
			}
			if err := h.Select(ctx, uint32(i+1)); err != nil {
				t.Errorf("Select() error = %v", err)
				return
			}
			if _, err := h.Write(ctx, []byte{byte(i)}); err != nil {
				t.Errorf("Write() error = %v", err)
				return
			}
			got, err := h.Read(ctx, 1)
			if err != nil || len(got) != 1 || got[0] != byte(i) {
				t.Errorf("Read() = %v, %v; want [%d]", got, err, i)
			}
		}(i)
	}
	wg.Wait()
}

func TestClient_ContextCancelled(t *testing.T) {
	a, b := testutil.Pipe(t)
	c, err := client.New(a)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Drain requests without answering.
	go func() {
		buf := make([]byte, 256)
		for {
			if _, err := b.Read(buf); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := c.Stat(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Stat() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestClient_MismatchedResponse(t *testing.T) {
	a, b := testutil.Pipe(t)
	c, err := client.New(a)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	codec, _ := wire.NewCodec()
	srv := wire.NewConn(b, codec, 0)
	go func() {
		req, err := srv.ReadRequest()
		if err != nil {
			return
		}
		_ = srv.WriteResponse(&wire.Response{ID: req.ID + 100})
	}()

	if _, err := c.Stat(testutil.Context(t, 2*time.Second)); err == nil {
		t.Error("Stat() with mismatched response id should fail")
	}
}

func TestDial_Errors(t *testing.T) {
	ctx := testutil.Context(t, 2*time.Second)

	if _, err := client.Dial(ctx, "udp", "127.0.0.1:1"); err == nil {
		t.Error("Dial(udp) should fail")
	}
	_, err := client.Dial(ctx, config.NetworkUnix, "/nonexistent/msgslot.sock")
	if err == nil {
		t.Fatal("Dial() to a missing socket should fail")
	}
	if !strings.Contains(err.Error(), "failed to connect to /nonexistent/msgslot.sock") {
		t.Errorf("Dial() error = %q, want the address in context", err.Error())
	}
}
