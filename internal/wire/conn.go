package wire

import (
	"bufio"
	"net"
	"sync"
	"time"
)

// Conn exchanges framed messages over a stream connection. Reads and writes
// may happen from different goroutines; concurrent writers are serialized.
type Conn struct {
	c        net.Conn
	codec    *Codec
	maxFrame int

	br *bufio.Reader

	wmu sync.Mutex
	bw  *bufio.Writer
}

// NewConn wraps c. maxFrame bounds incoming frames only; <= 0 selects
// DefaultMaxFrame.
func NewConn(c net.Conn, codec *Codec, maxFrame int) *Conn {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrame
	}
	return &Conn{
		c:        c,
		codec:    codec,
		maxFrame: maxFrame,
		br:       bufio.NewReader(c),
		bw:       bufio.NewWriter(c),
	}
}

// ReadRequest reads the next request.
func (c *Conn) ReadRequest() (*Request, error) {
	var req Request
	if err := c.read(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ReadResponse reads the next response.
func (c *Conn) ReadResponse() (*Response, error) {
	var resp Response
	if err := c.read(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WriteRequest sends a request.
func (c *Conn) WriteRequest(req *Request) error {
	return c.write(req)
}

// WriteResponse sends a response.
func (c *Conn) WriteResponse(resp *Response) error {
	return c.write(resp)
}

// SetReadDeadline bounds the next read. The zero time clears it.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.c.SetReadDeadline(t)
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.c.RemoteAddr()
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.c.Close()
}

func (c *Conn) read(v any) error {
	b, err := ReadFrame(c.br, c.maxFrame)
	if err != nil {
		return err
	}
	return c.codec.Unmarshal(b, v)
}

func (c *Conn) write(v any) error {
	b, err := c.codec.Marshal(v)
	if err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := WriteFrame(c.bw, b); err != nil {
		return err
	}
	return c.bw.Flush()
}
