package layer

import "bytes"

// BytesLayer scans an in-memory buffer. Used for stdin input and tests.
type BytesLayer struct {
	readerLayer
}

// NewBytesLayer wraps data as a scannable layer.
func NewBytesLayer(data []byte, cfg Config) *BytesLayer {
	return &BytesLayer{
		readerLayer: readerLayer{r: bytes.NewReader(data), size: uint64(len(data)), cfg: cfg},
	}
}
