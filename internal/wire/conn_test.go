package wire

import (
	"net"
	"testing"
)

func TestConn_RequestResponse(t *testing.T) {
	codec := newTestCodec(t)
	a, b := net.Pipe()
	client := NewConn(a, codec, MaxResponseFrame)
	server := NewConn(b, codec, 0)
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		req, err := server.ReadRequest()
		if err != nil {
			done <- err
			return
		}
		done <- server.WriteResponse(&Response{ID: req.ID, N: len(req.Data)})
	}()

	if err := client.WriteRequest(&Request{ID: 42, Op: OpWrite, Handle: 1, Data: []byte("hi")}); err != nil {
		t.Fatalf("WriteRequest() error = %v", err)
	}
	resp, err := client.ReadResponse()
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("server side error = %v", err)
	}
	if resp.ID != 42 || resp.N != 2 {
		t.Errorf("ReadResponse() = %+v, want id 42 n 2", resp)
	}
}

func TestConn_RejectsOversizedRequest(t *testing.T) {
	codec := newTestCodec(t)
	a, b := net.Pipe()
	client := NewConn(a, codec, 0)
	server := NewConn(b, codec, 64)
	defer client.Close()
	defer server.Close()

	go client.WriteRequest(&Request{ID: 1, Op: OpWrite, Data: make([]byte, 128)})

	if _, err := server.ReadRequest(); err == nil {
		t.Fatal("ReadRequest() error = nil, want frame too large")
	}
}
