// Package prefilter narrows the set of patterns worth running against a
// chunk. Patterns with a literal anchor are only candidates when the
// anchor occurs in the chunk; anchorless patterns are always candidates.
package prefilter

import (
	"github.com/cloudflare/ahocorasick"
)

// Entry associates a pattern ID with its literal anchor. An empty anchor
// marks the pattern as always-candidate.
type Entry struct {
	ID     int
	Anchor []byte
}

// Prefilter uses Aho-Corasick for efficient anchor matching.
type Prefilter struct {
	matcher   *ahocorasick.Matcher
	anchorIDs [][]int // pattern IDs per anchor index
	always    []int   // IDs without anchors
}

// New builds a prefilter from entries. Identical anchors are merged.
func New(entries []Entry) *Prefilter {
	pf := &Prefilter{}

	var anchors [][]byte
	index := make(map[string]int)
	for _, e := range entries {
		if len(e.Anchor) == 0 {
			pf.always = append(pf.always, e.ID)
			continue
		}
		i, ok := index[string(e.Anchor)]
		if !ok {
			i = len(anchors)
			index[string(e.Anchor)] = i
			anchors = append(anchors, e.Anchor)
			pf.anchorIDs = append(pf.anchorIDs, nil)
		}
		pf.anchorIDs[i] = append(pf.anchorIDs[i], e.ID)
	}

	if len(anchors) > 0 {
		pf.matcher = ahocorasick.NewMatcher(anchors)
	}
	return pf
}

// Filter returns the IDs of patterns that might match content: those
// whose anchor was found plus all anchorless ones.
func (pf *Prefilter) Filter(content []byte) []int {
	result := make([]int, 0, len(pf.always))
	result = append(result, pf.always...)

	if pf.matcher == nil {
		return result
	}
	for _, hit := range pf.matcher.Match(content) {
		result = append(result, pf.anchorIDs[hit]...)
	}
	return result
}
