package layer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/memscan/memscan/pkg/types"
)

// readerLayer implements chunked traversal over any io.ReaderAt.
// FileLayer and BytesLayer are thin constructors around it.
type readerLayer struct {
	r    io.ReaderAt
	size uint64
	cfg  Config
}

func (l *readerLayer) Size() uint64 { return l.size }

// Scan walks each section in ChunkSize steps. Every chunk reads Overlap
// extra bytes so boundary-straddling matches are found, and a match is
// reported only by the chunk whose step span contains its start offset,
// so straddlers surface exactly once.
func (l *readerLayer) Scan(ctx context.Context, scanner Scanner, sections []types.Section) iter.Seq2[types.Match, error] {
	cfg := l.cfg.normalized()
	return func(yield func(types.Match, error) bool) {
		var scanned uint64
		buf := make([]byte, cfg.ChunkSize+cfg.Overlap)

		for _, sec := range normalizeSections(sections, l.size) {
			pos := sec.Start
			end := sec.End()
			for pos < end {
				if err := ctx.Err(); err != nil {
					yield(types.Match{}, err)
					return
				}

				limit := min(pos+uint64(cfg.ChunkSize), end)
				readEnd := min(limit+uint64(cfg.Overlap), end)

				n, err := l.r.ReadAt(buf[:readEnd-pos], int64(pos))
				if err != nil && !errors.Is(err, io.EOF) {
					yield(types.Match{}, fmt.Errorf("reading %d bytes at %#x: %w", readEnd-pos, pos, err))
					return
				}

				for m, merr := range scanner.ScanChunk(buf[:n], pos) {
					if merr != nil {
						yield(types.Match{}, merr)
						return
					}
					if m.Offset >= limit {
						// overlap region; the next chunk owns it
						continue
					}
					if !yield(m, nil) {
						return
					}
				}

				scanned += limit - pos
				if cfg.MaxScanSize > 0 && scanned >= cfg.MaxScanSize {
					return
				}
				pos = limit
			}
		}
	}
}
