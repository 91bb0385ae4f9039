package compress

import (
	"bytes"
	"fmt"
	"io"
)

// Compress encodes cached payloads.
type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

const (
	NameNop    = "nop"
	NameGzip   = "gzip"
	NameBrotli = "brotli"
	NameLZ4    = "lz4"
)

// New returns the codec registered under name.
func New(name string) (Compress, error) {
	switch name {
	case NameNop, "":
		return NewNop(), nil
	case NameGzip:
		return NewGzip(), nil
	case NameBrotli:
		return NewBrotli(), nil
	case NameLZ4:
		return NewLZ4(), nil
	}

	return nil, fmt.Errorf("unknown compression %q, expected one of %s, %s, %s, %s", name, NameNop, NameGzip, NameBrotli, NameLZ4)
}

func encode(data []byte, writer func(io.Writer) io.WriteCloser) ([]byte, error) {
	var buf bytes.Buffer
	w := writer(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
