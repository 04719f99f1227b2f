// Package layer provides the byte-addressable targets a scan runs over
// and the chunked traversal that drives a scanner across them.
package layer

import (
	"context"
	"iter"

	"github.com/memscan/memscan/pkg/types"
)

// Scanner is the per-chunk callback contract. Implementations receive a
// chunk and its base offset within the layer and yield matches with
// absolute offsets.
type Scanner interface {
	ScanChunk(data []byte, base uint64) iter.Seq2[types.Match, error]
}

// Layer is a byte-addressable scan target.
type Layer interface {
	// Size is the addressable extent in bytes.
	Size() uint64

	// Scan drives scanner across the layer in chunks. An empty sections
	// slice means the whole layer; otherwise traversal is restricted to
	// the given windows, in order. The sequence is single-pass and stops
	// as soon as the caller stops consuming it.
	Scan(ctx context.Context, scanner Scanner, sections []types.Section) iter.Seq2[types.Match, error]
}

// Config controls chunk traversal.
type Config struct {
	// ChunkSize is the traversal step in bytes.
	ChunkSize int

	// Overlap is how many extra bytes each chunk reads past its step so
	// matches straddling a chunk boundary are still found. Matches
	// longer than Overlap may be missed at boundaries.
	Overlap int

	// MaxScanSize caps the total bytes traversed (0 = unlimited).
	MaxScanSize uint64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize: 5 * 1024 * 1024,
		Overlap:   4096,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.Overlap < 0 {
		c.Overlap = 0
	}
	return c
}

// normalizeSections clamps sections to the layer extent, dropping
// windows that end up empty. An empty input selects the whole layer.
func normalizeSections(sections []types.Section, size uint64) []types.Section {
	if len(sections) == 0 {
		return []types.Section{{Start: 0, Length: size}}
	}
	out := make([]types.Section, 0, len(sections))
	for _, s := range sections {
		if s.Start >= size {
			continue
		}
		length := min(s.Length, size-s.Start)
		if length == 0 {
			continue
		}
		out = append(out, types.Section{Start: s.Start, Length: length})
	}
	return out
}
