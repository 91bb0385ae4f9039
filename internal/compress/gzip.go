package compress

import (
	"bytes"
	"compress/gzip"
	"io"
)

var _ Compress = Gzip{}

type Gzip struct {
}

func NewGzip() Gzip {
	return Gzip{}
}

func (g Gzip) Encode(data []byte) ([]byte, error) {
	return encode(data, func(w io.Writer) io.WriteCloser {
		return gzip.NewWriter(w)
	})
}

func (g Gzip) Decode(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}
