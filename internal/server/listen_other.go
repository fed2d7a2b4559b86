//go:build !windows

package server

import (
	"fmt"
	"net"
)

func listenPipe(name string) (net.Listener, error) {
	return nil, fmt.Errorf("named pipe %s: pipes are only supported on windows", name)
}
