// Package testutil provides testing utilities for msgslot tests.
package testutil

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Iron-Ham/msgslot/internal/client"
	"github.com/Iron-Ham/msgslot/internal/config"
	"github.com/Iron-Ham/msgslot/internal/event"
	"github.com/Iron-Ham/msgslot/internal/server"
	"github.com/Iron-Ham/msgslot/internal/slot"
)

// Env is an in-process server listening on a temporary socket.
type Env struct {
	Device  *slot.Device
	Server  *server.Server
	Bus     *event.Bus
	Network config.Network
	Address string
}

// StartServer starts a server for a fresh device on a temporary unix socket
// (loopback TCP on Windows). The server is stopped and the device closed
// when the test completes.
func StartServer(t *testing.T, devOpts []slot.Option, srvOpts ...server.Option) *Env {
	t.Helper()

	bus := event.NewBus()
	dev := slot.NewDevice(append([]slot.Option{slot.WithBus(bus)}, devOpts...)...)

	srv, err := server.New(dev, srvOpts...)
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}

	network, address := tempEndpoint(t)
	l, err := server.Listen(network, address)
	if err != nil {
		t.Fatalf("server.Listen(%s, %s) error = %v", network, address, err)
	}
	if network == config.NetworkTCP {
		address = l.Addr().String()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, l) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Serve() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("server did not stop within 5s")
		}
		_ = dev.Close()
	})

	return &Env{
		Device:  dev,
		Server:  srv,
		Bus:     bus,
		Network: network,
		Address: address,
	}
}

// Dial connects a client to env. The client is closed when the test completes.
func Dial(t *testing.T, env *Env) *client.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, env.Network, env.Address)
	if err != nil {
		t.Fatalf("client.Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// Context returns a context that is cancelled after d or when the test ends.
func Context(t *testing.T, d time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

// WaitFor polls cond until it returns true or timeout elapses.
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

// tempEndpoint picks a socket path short enough for sun_path limits.
func tempEndpoint(t *testing.T) (config.Network, string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		return config.NetworkTCP, "127.0.0.1:0"
	}
	dir, err := os.MkdirTemp("", "msgslot")
	if err != nil {
		t.Fatalf("failed to create socket dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return config.NetworkUnix, filepath.Join(dir, "s.sock")
}

// Pipe returns two connected in-memory connections, both closed when the
// test completes.
func Pipe(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return a, b
}
