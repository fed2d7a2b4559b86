//go:build !windows

package client

import (
	"context"
	"fmt"
	"net"
)

func dialPipe(_ context.Context, name string) (net.Conn, error) {
	return nil, fmt.Errorf("named pipe %s: pipes are only supported on windows", name)
}
