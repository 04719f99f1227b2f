// Package engine defines the pattern-matching capability the scanner is
// built on. Rule sets are compiled from YARA rule source and matched
// against arbitrary byte buffers; everything past that contract is
// implementation detail of the individual binding.
package engine

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when the requested engine binding was not
// compiled into this build.
var ErrUnavailable = errors.New("matching engine not available in this build")

// StringMatch is one pattern occurrence reported by a rule set.
// Offset is local to the buffer passed to Match.
type StringMatch struct {
	Offset uint64
	Name   string // identifier of the matching rule
	Value  []byte
}

// RuleSet is a compiled, immutable collection of named patterns.
// Implementations must be safe for concurrent read-only use.
type RuleSet interface {
	// Match scans data against every pattern and returns all occurrences
	// in the engine's native order.
	Match(data []byte) ([]StringMatch, error)
}

// Engine compiles rule source text into reusable rule sets.
type Engine interface {
	Compile(source string) (RuleSet, error)
}

// New returns the engine binding selected by name.
//
// "portable" (or empty) selects the pure-Go engine, which handles the
// single-pattern rule grammar plus a practical subset of YARA string
// syntax. "yarax" selects the YARA-X binding, which supports full rule
// files but requires CGO and the yarax build tag.
func New(name string) (Engine, error) {
	switch name {
	case "", "portable":
		return NewPortable(), nil
	case "yarax":
		return NewYaraX()
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}
