//go:build !windows

package server

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iron-Ham/msgslot/internal/config"
)

func shortTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "msgslot")
	if err != nil {
		t.Fatalf("MkdirTemp() error = %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

func TestListen_RemovesStaleSocket(t *testing.T) {
	path := filepath.Join(shortTempDir(t), "s.sock")

	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	// Leave the socket file behind the way a crashed server would.
	l.(*net.UnixListener).SetUnlinkOnClose(false)
	_ = l.Close()

	l2, err := Listen(config.NetworkUnix, path)
	if err != nil {
		t.Fatalf("Listen() over stale socket error = %v", err)
	}
	_ = l2.Close()
}

func TestListen_SocketInUse(t *testing.T) {
	path := filepath.Join(shortTempDir(t), "s.sock")

	l, err := Listen(config.NetworkUnix, path)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer l.Close()

	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()

	if _, err := Listen(config.NetworkUnix, path); err == nil || !strings.Contains(err.Error(), "in use") {
		t.Errorf("Listen() on live socket error = %v, want in use", err)
	}
}

func TestListen_RefusesRegularFile(t *testing.T) {
	path := filepath.Join(shortTempDir(t), "not-a-socket")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Listen(config.NetworkUnix, path); err == nil {
		t.Error("Listen() over a regular file should fail")
	}
}

func TestListen_Errors(t *testing.T) {
	if _, err := Listen(config.NetworkPipe, `\\.\pipe\x`); err == nil {
		t.Error("Listen(pipe) should fail off windows")
	}
	if _, err := Listen("udp", "127.0.0.1:0"); err == nil {
		t.Error("Listen(udp) should fail")
	}
}
