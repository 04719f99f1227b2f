package prefilter

import (
	"sort"
	"testing"
)

func TestFilterAnchored(t *testing.T) {
	pf := New([]Entry{
		{ID: 0, Anchor: []byte("AKIA")},
		{ID: 1, Anchor: []byte("xoxb")},
	})

	got := pf.Filter([]byte("prefix AKIA suffix"))
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("Expected [0], got %v", got)
	}

	got = pf.Filter([]byte("nothing relevant"))
	if len(got) != 0 {
		t.Errorf("Expected no candidates, got %v", got)
	}
}

func TestFilterAlwaysCandidates(t *testing.T) {
	pf := New([]Entry{
		{ID: 0, Anchor: []byte("needle")},
		{ID: 1}, // anchorless
	})

	got := pf.Filter([]byte("no anchors here"))
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("Anchorless pattern must always be a candidate, got %v", got)
	}

	got = pf.Filter([]byte("a needle too"))
	sort.Ints(got)
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Expected [0 1], got %v", got)
	}
}

func TestFilterMergedAnchors(t *testing.T) {
	// two patterns sharing one anchor
	pf := New([]Entry{
		{ID: 3, Anchor: []byte("dup")},
		{ID: 7, Anchor: []byte("dup")},
	})

	got := pf.Filter([]byte("dup"))
	sort.Ints(got)
	if len(got) != 2 || got[0] != 3 || got[1] != 7 {
		t.Errorf("Expected [3 7], got %v", got)
	}
}

func TestFilterNoAnchorsAtAll(t *testing.T) {
	pf := New(nil)
	if got := pf.Filter([]byte("anything")); len(got) != 0 {
		t.Errorf("Expected empty, got %v", got)
	}
}
