package layer

import (
	"fmt"
	"os"
)

// FileLayer scans a raw image file (memory dump, disk image, …) as a
// flat contiguous address space.
type FileLayer struct {
	readerLayer
	f *os.File
}

// NewFileLayer opens path for scanning with the given traversal config.
func NewFileLayer(path string, cfg Config) (*FileLayer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening layer: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sizing layer: %w", err)
	}
	return &FileLayer{
		readerLayer: readerLayer{r: f, size: uint64(fi.Size()), cfg: cfg},
		f:           f,
	}, nil
}

// Name returns the underlying file path.
func (l *FileLayer) Name() string { return l.f.Name() }

// Close releases the underlying file.
func (l *FileLayer) Close() error { return l.f.Close() }
