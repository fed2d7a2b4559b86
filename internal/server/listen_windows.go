//go:build windows

package server

import (
	"net"

	"github.com/Microsoft/go-winio"
)

func listenPipe(name string) (net.Listener, error) {
	return winio.ListenPipe(name, &winio.PipeConfig{
		InputBufferSize:  4096,
		OutputBufferSize: 4096,
	})
}
