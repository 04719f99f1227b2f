// Package scan compiles rule sets and drives them across layers,
// producing a stream of absolute-offset matches.
package scan

import (
	"context"
	"iter"

	"github.com/memscan/memscan/pkg/engine"
	"github.com/memscan/memscan/pkg/layer"
	"github.com/memscan/memscan/pkg/types"
)

// Scan traverses l with the compiled rules, restricted to sections when
// non-nil. A nil rule set (compilation skipped or produced no rules)
// yields an empty sequence: the designed no-op path, not an error.
//
// Chunk sizing, boundary handling and traversal order belong to the
// layer; matches appear in layer traversal order, engine-native order
// within a chunk.
func Scan(ctx context.Context, l layer.Layer, rules engine.RuleSet, sections []types.Section) iter.Seq2[types.Match, error] {
	if rules == nil {
		return func(yield func(types.Match, error) bool) {}
	}
	return l.Scan(ctx, NewRuleScanner(rules), sections)
}
