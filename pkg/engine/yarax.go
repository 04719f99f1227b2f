//go:build cgo && yarax

package engine

import (
	"fmt"

	yara_x "github.com/VirusTotal/yara-x/go"
)

// yaraXEngine binds the YARA-X library. Unlike the portable engine it
// accepts the complete YARA rule language, including modules.
type yaraXEngine struct{}

// NewYaraX returns the YARA-X backed engine. Requires CGO and the
// yarax build tag.
func NewYaraX() (Engine, error) {
	return yaraXEngine{}, nil
}

func (yaraXEngine) Compile(source string) (RuleSet, error) {
	rules, err := yara_x.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("yara-x compile: %w", err)
	}
	return &yaraXRuleSet{rules: rules}, nil
}

type yaraXRuleSet struct {
	rules *yara_x.Rules
}

func (rs *yaraXRuleSet) Match(data []byte) ([]StringMatch, error) {
	results, err := rs.rules.Scan(data)
	if err != nil {
		return nil, fmt.Errorf("yara-x scan: %w", err)
	}

	var out []StringMatch
	for _, r := range results.MatchingRules() {
		for _, p := range r.Patterns() {
			for _, m := range p.Matches() {
				start := uint64(m.Offset())
				end := start + uint64(m.Length())
				if end > uint64(len(data)) {
					end = uint64(len(data))
				}
				value := make([]byte, end-start)
				copy(value, data[start:end])
				out = append(out, StringMatch{
					Offset: start,
					Name:   r.Identifier(),
					Value:  value,
				})
			}
		}
	}
	return out, nil
}
