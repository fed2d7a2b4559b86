// Package internal contains integration tests that verify the device, server,
// client and event bus work together over a real socket.
package internal

import (
	"bytes"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/msgslot/internal/config"
	"github.com/Iron-Ham/msgslot/internal/errors"
	"github.com/Iron-Ham/msgslot/internal/event"
	"github.com/Iron-Ham/msgslot/internal/slot"
	"github.com/Iron-Ham/msgslot/internal/testutil"
)

// TestEventBusIntegration checks that client operations surface as device
// events in the order they happened.
func TestEventBusIntegration(t *testing.T) {
	env := testutil.StartServer(t, nil)

	var mu sync.Mutex
	var received []string
	env.Bus.SubscribeAll(func(e event.Event) {
		mu.Lock()
		received = append(received, e.EventType())
		mu.Unlock()
	})

	ctx := testutil.Context(t, 5*time.Second)
	c := testutil.Dial(t, env)

	h, err := c.Open(ctx, 5)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := h.Select(ctx, 7); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if _, err := h.Write(ctx, []byte("hello")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	// Selecting an existing channel creates nothing
	if err := h.Select(ctx, 7); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := h.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	expectedTypes := []string{
		event.TypeHandleOpened,
		event.TypeChannelCreated,
		event.TypeMessageWritten,
		event.TypeHandleClosed,
	}

	// Events are published before the response is sent
	mu.Lock()
	defer mu.Unlock()
	if !slices.Equal(received, expectedTypes) {
		t.Errorf("events = %v, want %v", received, expectedTypes)
	}
}

// TestConcurrentClients has many connections share one instance, each on its
// own channel, and checks nothing is lost or crossed.
func TestConcurrentClients(t *testing.T) {
	env := testutil.StartServer(t, nil)
	ctx := testutil.Context(t, 10*time.Second)

	const clients = 16
	var wg conc.WaitGroup
	errs := make([]error, clients)
	for i := range clients {
		c := testutil.Dial(t, env)
		wg.Go(func() {
			h, err := c.Open(ctx, 42)
			if err != nil {
				errs[i] = err
				return
			}
			defer func() { _ = h.Close(ctx) }()

			channel := uint32(i + 1)
			want := []byte(fmt.Sprintf("client-%02d", i))
			if err := h.Select(ctx, channel); err != nil {
				errs[i] = err
				return
			}
			if _, err := h.Write(ctx, want); err != nil {
				errs[i] = err
				return
			}
			got, err := h.Read(ctx, slot.MaxMessageLen)
			if err != nil {
				errs[i] = err
				return
			}
			if !bytes.Equal(got, want) {
				errs[i] = fmt.Errorf("channel %d read %q, want %q", channel, got, want)
			}
		})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("client %d: %v", i, err)
		}
	}

	stat := env.Device.Stat()
	if stat.Channels != clients {
		t.Errorf("stat.Channels = %d, want %d", stat.Channels, clients)
	}
	if !testutil.WaitFor(t, time.Second, func() bool { return env.Device.OpenHandles() == 0 }) {
		t.Errorf("OpenHandles() = %d, want 0", env.Device.OpenHandles())
	}
}

// TestReconfigureIntegration switches the admission policy on a live server
// and checks new opens follow it while existing handles keep working.
func TestReconfigureIntegration(t *testing.T) {
	env := testutil.StartServer(t, nil)
	ctx := testutil.Context(t, 5*time.Second)

	first := testutil.Dial(t, env)
	h, err := first.Open(ctx, 1)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	cfg := config.Default()
	cfg.Device.ExclusiveOpen = true
	env.Server.Reconfigure(cfg)

	var mu sync.Mutex
	var refused []event.OpenRefusedEvent
	env.Bus.Subscribe(event.TypeOpenRefused, func(e event.Event) {
		mu.Lock()
		refused = append(refused, e.(event.OpenRefusedEvent))
		mu.Unlock()
	})

	second := testutil.Dial(t, env)
	if _, err := second.Open(ctx, 2); !errors.Is(err, errors.ErrBusy) {
		t.Fatalf("Open() under exclusive policy error = %v, want ErrBusy", err)
	}
	mu.Lock()
	if len(refused) != 1 || refused[0].Instance != 2 || refused[0].Policy != "exclusive" {
		t.Errorf("refused events = %+v, want one for instance 2", refused)
	}
	mu.Unlock()

	// The handle opened before the change still works
	if err := h.Select(ctx, 3); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if _, err := h.Write(ctx, []byte("still here")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// Closing it frees the device for the second client
	if err := h.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := second.Open(ctx, 2); err != nil {
		t.Errorf("Open() after release error = %v", err)
	}
}
