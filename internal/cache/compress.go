package cache

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Payloads written to the remote tier carry a one-byte frame marker so a
// reader can tell raw bytes from gzip-compressed ones.
const (
	frameRaw  byte = 0x00
	frameGzip byte = 0x01
)

// frame returns the payload prefixed with its marker, gzip-compressing it
// when it is at least threshold bytes. A threshold of zero disables
// compression. If the compressed form is not smaller, the raw frame wins.
func frame(data []byte, threshold int) []byte {
	if threshold <= 0 || len(data) < threshold {
		return append([]byte{frameRaw}, data...)
	}

	var buf bytes.Buffer
	buf.WriteByte(frameGzip)
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return append([]byte{frameRaw}, data...)
	}
	if err := w.Close(); err != nil {
		return append([]byte{frameRaw}, data...)
	}

	if buf.Len() >= len(data)+1 {
		return append([]byte{frameRaw}, data...)
	}
	return buf.Bytes()
}

// unframe reverses frame.
func unframe(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty framed payload")
	}

	switch data[0] {
	case frameRaw:
		return data[1:], nil
	case frameGzip:
		r, err := gzip.NewReader(bytes.NewReader(data[1:]))
		if err != nil {
			return nil, fmt.Errorf("corrupt gzip frame: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return nil, fmt.Errorf("unknown frame marker 0x%02x", data[0])
	}
}
