package resource

import (
	"compress/bzip2"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// decompress wraps rc with the decoder matching the resource name's
// extension, or returns rc unchanged. urlPath takes priority over the
// full uri so query strings do not confuse extension detection.
func decompress(urlPath, uri string, rc io.ReadCloser) (io.ReadCloser, error) {
	name := urlPath
	if name == "" {
		name = uri
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", name, err)
		}
		return &layered{r: zr, closers: []io.Closer{zr, rc}}, nil
	case ".xz":
		xr, err := xz.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("opening xz stream %s: %w", name, err)
		}
		return &layered{r: xr, closers: []io.Closer{rc}}, nil
	case ".bz2":
		return &layered{r: bzip2.NewReader(rc), closers: []io.Closer{rc}}, nil
	default:
		return rc, nil
	}
}

// layered is a reader whose Close releases every layer underneath it.
type layered struct {
	r       io.Reader
	closers []io.Closer
}

func (l *layered) Read(p []byte) (int, error) { return l.r.Read(p) }

func (l *layered) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
