package render

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/memscan/memscan/pkg/types"
)

// Renderer consumes a match stream and writes it out. Render stops at
// the first stream error and returns it.
type Renderer interface {
	Render(matches iter.Seq2[types.Match, error]) error
}

// New returns the renderer for format ("table", "plain" or "json")
// writing to w.
func New(format string, w io.Writer) (Renderer, error) {
	switch format {
	case "table":
		return &tableRenderer{w: w}, nil
	case "plain":
		return newPlainRenderer(w), nil
	case "json":
		return &jsonRenderer{enc: json.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// tableRenderer buffers rows and draws one table when the stream ends.
type tableRenderer struct {
	w io.Writer
}

func (r *tableRenderer) Render(matches iter.Seq2[types.Match, error]) error {
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.AppendHeader(table.Row{"Offset", "Rule", "Value"})
	for m, err := range matches {
		if err != nil {
			return err
		}
		row := Project(m)
		t.AppendRow(table.Row{row.Offset, row.Rule, row.Value})
	}
	t.Render()
	return nil
}

// plainRenderer writes one line per match as matches are produced,
// colorized when the destination is a terminal.
type plainRenderer struct {
	w      io.Writer
	offset *color.Color
	rule   *color.Color
}

func newPlainRenderer(w io.Writer) *plainRenderer {
	r := &plainRenderer{
		w:      w,
		offset: color.New(color.FgHiGreen),
		rule:   color.New(color.Bold, color.FgHiBlue),
	}
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		r.offset.DisableColor()
		r.rule.DisableColor()
	}
	return r
}

func (r *plainRenderer) Render(matches iter.Seq2[types.Match, error]) error {
	for m, err := range matches {
		if err != nil {
			return err
		}
		row := Project(m)
		if _, err := fmt.Fprintf(r.w, "%s\t%s\t%s\n",
			r.offset.Sprint(row.Offset), r.rule.Sprint(row.Rule), row.Value); err != nil {
			return err
		}
	}
	return nil
}

// jsonRenderer emits one JSON object per match (NDJSON), incrementally.
type jsonRenderer struct {
	enc *json.Encoder
}

type jsonRow struct {
	Offset uint64 `json:"offset"`
	Rule   string `json:"rule"`
	Value  string `json:"value"`
}

func (r *jsonRenderer) Render(matches iter.Seq2[types.Match, error]) error {
	for m, err := range matches {
		if err != nil {
			return err
		}
		if err := r.enc.Encode(jsonRow{
			Offset: m.Offset,
			Rule:   m.Rule,
			Value:  FormatValue(m.Value),
		}); err != nil {
			return err
		}
	}
	return nil
}
