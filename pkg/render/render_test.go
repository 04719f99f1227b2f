package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/memscan/memscan/pkg/types"
)

func stream(matches []types.Match, finalErr error) iter.Seq2[types.Match, error] {
	return func(yield func(types.Match, error) bool) {
		for _, m := range matches {
			if !yield(m, nil) {
				return
			}
		}
		if finalErr != nil {
			yield(types.Match{}, finalErr)
		}
	}
}

func TestProject(t *testing.T) {
	row := Project(types.Match{Offset: 100, Rule: "r1", Value: []byte("ABC")})
	if row.Depth != 0 {
		t.Errorf("Expected depth 0, got %d", row.Depth)
	}
	if row.Offset != "0x64" {
		t.Errorf("Expected offset 0x64, got %q", row.Offset)
	}
	if row.Rule != "r1" || row.Value != "ABC" {
		t.Errorf("Wrong row: %+v", row)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte("hello"), "hello"},
		{[]byte{'A', 0x00, 'B'}, `A\x00B`},
		{[]byte{0xff, 0xfe}, `\xff\xfe`},
		{[]byte(`a\b`), `a\\b`},
		{nil, ""},
	}
	for _, tc := range tests {
		if got := FormatValue(tc.in); got != tc.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := New("json", &buf)
	if err != nil {
		t.Fatal(err)
	}

	matches := []types.Match{
		{Offset: 0x10, Rule: "r1", Value: []byte("AB")},
		{Offset: 0x200, Rule: "r1", Value: []byte{0x00}},
	}
	if err := r.Render(stream(matches, nil)); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 NDJSON lines, got %d: %q", len(lines), buf.String())
	}

	var row struct {
		Offset uint64 `json:"offset"`
		Rule   string `json:"rule"`
		Value  string `json:"value"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &row); err != nil {
		t.Fatalf("Invalid JSON line: %v", err)
	}
	if row.Offset != 0x10 || row.Rule != "r1" || row.Value != "AB" {
		t.Errorf("Wrong first row: %+v", row)
	}
	if err := json.Unmarshal([]byte(lines[1]), &row); err != nil {
		t.Fatalf("Invalid JSON line: %v", err)
	}
	if row.Value != `\x00` {
		t.Errorf("Expected escaped value, got %q", row.Value)
	}
}

func TestTableRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := New("table", &buf)
	if err != nil {
		t.Fatal(err)
	}

	matches := []types.Match{{Offset: 0x40, Rule: "mz", Value: []byte("MZ")}}
	if err := r.Render(stream(matches, nil)); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"OFFSET", "RULE", "VALUE", "0x40", "mz", "MZ"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("Table output missing %q:\n%s", want, out)
		}
	}
}

func TestPlainRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := New("plain", &buf)
	if err != nil {
		t.Fatal(err)
	}

	matches := []types.Match{
		{Offset: 0x10, Rule: "r1", Value: []byte("AB")},
		{Offset: 0x20, Rule: "r2", Value: []byte("CD")},
	}
	if err := r.Render(stream(matches, nil)); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "0x10") || !strings.Contains(lines[0], "r1") {
		t.Errorf("Wrong first line: %q", lines[0])
	}
}

func TestRenderStopsOnStreamError(t *testing.T) {
	boom := errors.New("read failed")
	for _, format := range []string{"table", "plain", "json"} {
		var buf bytes.Buffer
		r, err := New(format, &buf)
		if err != nil {
			t.Fatal(err)
		}
		matches := []types.Match{{Offset: 1, Rule: "r1", Value: []byte("A")}}
		if err := r.Render(stream(matches, boom)); !errors.Is(err, boom) {
			t.Errorf("%s: stream error must be returned, got %v", format, err)
		}
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := New("xml", &bytes.Buffer{}); err == nil {
		t.Error("Unknown format must be rejected")
	}
}
