package scan

import (
	"fmt"
	"iter"

	"github.com/memscan/memscan/pkg/engine"
	"github.com/memscan/memscan/pkg/types"
)

// RuleScanner adapts a compiled rule set to the layer's per-chunk
// scanning contract. It holds no state beyond the rule set reference and
// is safe to reuse across chunks, and across concurrent chunk scans when
// the engine permits concurrent matching.
type RuleScanner struct {
	rules engine.RuleSet
}

// NewRuleScanner wraps rules as a layer.Scanner.
func NewRuleScanner(rules engine.RuleSet) *RuleScanner {
	return &RuleScanner{rules: rules}
}

// ScanChunk matches one chunk and yields every engine hit with its
// chunk-local offset translated to base + offset. The sequence is
// single-pass and finite.
func (s *RuleScanner) ScanChunk(data []byte, base uint64) iter.Seq2[types.Match, error] {
	return func(yield func(types.Match, error) bool) {
		hits, err := s.rules.Match(data)
		if err != nil {
			yield(types.Match{}, fmt.Errorf("matching chunk at %#x: %w", base, err))
			return
		}
		for _, h := range hits {
			m := types.Match{
				Offset: base + h.Offset,
				Rule:   h.Name,
				Value:  h.Value,
			}
			if !yield(m, nil) {
				return
			}
		}
	}
}
