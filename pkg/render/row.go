// Package render projects matches into the flat Offset/Rule/Value
// output schema and renders them as a table, a plain stream or NDJSON.
package render

import (
	"fmt"
	"strings"

	"github.com/memscan/memscan/pkg/types"
)

// Row is one rendered match. Depth is always 0: the output tree is flat.
type Row struct {
	Depth  int
	Offset string // hexadecimal display of the absolute offset
	Rule   string
	Value  string
}

// Project maps a match into its rendered row.
func Project(m types.Match) Row {
	return Row{
		Depth:  0,
		Offset: fmt.Sprintf("0x%x", m.Offset),
		Rule:   m.Rule,
		Value:  FormatValue(m.Value),
	}
}

// FormatValue renders matched bytes with printable runs kept verbatim
// and everything else hex-escaped.
func FormatValue(v []byte) string {
	var b strings.Builder
	for _, c := range v {
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c >= 0x20 && c <= 0x7e:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, `\x%02x`, c)
		}
	}
	return b.String()
}
