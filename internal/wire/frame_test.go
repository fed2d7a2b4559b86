package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/Iron-Ham/msgslot/internal/errors"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payloads := [][]byte{[]byte("hello"), {}, bytes.Repeat([]byte{0xAB}, 300)}

	for _, p := range payloads {
		if err := WriteFrame(&buf, p); err != nil {
			t.Fatalf("WriteFrame() error = %v", err)
		}
	}
	for i, want := range payloads {
		got, err := ReadFrame(&buf, 1024)
		if err != nil {
			t.Fatalf("ReadFrame() #%d error = %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("ReadFrame() #%d = %x, want %x", i, got, want)
		}
	}
	if _, err := ReadFrame(&buf, 1024); err != io.EOF {
		t.Errorf("ReadFrame() on drained buffer error = %v, want io.EOF", err)
	}
}

func TestFrame_LengthPrefixIsLittleEndian(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("abc")); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}
	raw := buf.Bytes()
	if got := binary.LittleEndian.Uint32(raw[:4]); got != 3 {
		t.Errorf("length prefix = %d, want 3", got)
	}
	if string(raw[4:]) != "abc" {
		t.Errorf("payload = %q, want %q", raw[4:], "abc")
	}
}

func TestReadFrame_TooLarge(t *testing.T) {
	var buf bytes.Buffer
	WriteFrame(&buf, make([]byte, 65))

	_, err := ReadFrame(&buf, 64)
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("ReadFrame() error = %v, want ErrFrameTooLarge", err)
	}
}

func TestReadFrame_Truncated(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "short prefix", raw: []byte{5, 0}},
		{name: "short payload", raw: []byte{5, 0, 0, 0, 'a', 'b'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tt.raw), 64)
			if err != io.ErrUnexpectedEOF {
				t.Errorf("ReadFrame() error = %v, want io.ErrUnexpectedEOF", err)
			}
		})
	}
}
