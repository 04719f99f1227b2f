// Package enginetest provides a deterministic scripted engine for tests.
// It performs no real pattern matching: compiled sources are recorded and
// matches are produced from a fixed script.
package enginetest

import (
	"bytes"
	"errors"
	"sort"

	"github.com/memscan/memscan/pkg/engine"
)

// ErrScripted is the error produced by failing fake rule sets.
var ErrScripted = errors.New("scripted match failure")

// Fake is a scripted engine.Engine. Compile returns a rule set that
// locates Script literals in scanned buffers, or fails with CompileErr.
type Fake struct {
	// Script maps rule names to the literal each "pattern" finds.
	Script map[string]string

	// CompileErr, when set, is returned by Compile.
	CompileErr error

	// Sources records every source passed to Compile, in order.
	Sources []string
}

// Compile records source and returns the scripted rule set.
func (f *Fake) Compile(source string) (engine.RuleSet, error) {
	f.Sources = append(f.Sources, source)
	if f.CompileErr != nil {
		return nil, f.CompileErr
	}
	return &fakeRuleSet{script: f.Script}, nil
}

type fakeRuleSet struct {
	script   map[string]string
	matchErr error
}

// NewFailingRuleSet returns a rule set whose Match always errors.
func NewFailingRuleSet() engine.RuleSet {
	return &fakeRuleSet{matchErr: ErrScripted}
}

// NewRuleSet returns a rule set that finds each script literal.
func NewRuleSet(script map[string]string) engine.RuleSet {
	return &fakeRuleSet{script: script}
}

func (rs *fakeRuleSet) Match(data []byte) ([]engine.StringMatch, error) {
	if rs.matchErr != nil {
		return nil, rs.matchErr
	}
	var out []engine.StringMatch
	for _, name := range sortedKeys(rs.script) {
		needle := []byte(rs.script[name])
		if len(needle) == 0 {
			continue
		}
		for from := 0; ; {
			i := bytes.Index(data[from:], needle)
			if i < 0 {
				break
			}
			at := from + i
			value := make([]byte, len(needle))
			copy(value, data[at:at+len(needle)])
			out = append(out, engine.StringMatch{
				Offset: uint64(at),
				Name:   name,
				Value:  value,
			})
			from = at + 1
		}
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
