package server

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/Iron-Ham/msgslot/internal/config"
)

// Listen opens the endpoint described by network and address. A leftover unix
// socket file is removed when nothing is accepting on it.
func Listen(network config.Network, address string) (net.Listener, error) {
	switch network {
	case config.NetworkUnix:
		if err := removeStaleSocket(address); err != nil {
			return nil, err
		}
		return net.Listen("unix", address)
	case config.NetworkTCP:
		return net.Listen("tcp", address)
	case config.NetworkPipe:
		return listenPipe(address)
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
}

func removeStaleSocket(path string) error {
	fi, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("%s exists and is not a socket", path)
	}
	if c, err := net.DialTimeout("unix", path, 200*time.Millisecond); err == nil {
		_ = c.Close()
		return fmt.Errorf("%s is already in use", path)
	}
	return os.Remove(path)
}
