package types

import "fmt"

// Match is a single pattern hit within the scanned address space.
// Offset is absolute within the layer, not chunk-relative.
type Match struct {
	Offset uint64 // absolute offset of the first matched byte
	Rule   string // identifier of the matching rule
	Value  []byte // the matched bytes
}

// String renders the match in the compact form used by diagnostics.
func (m Match) String() string {
	return fmt.Sprintf("%#x %s (%d bytes)", m.Offset, m.Rule, len(m.Value))
}
