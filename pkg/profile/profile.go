// Package profile loads persisted scan configurations from YAML, so a
// recurring scan (rules, modifiers, section windows) can be replayed
// without retyping flags.
package profile

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/memscan/memscan/pkg/scan"
	"github.com/memscan/memscan/pkg/types"
)

// Profile is one scan configuration.
type Profile struct {
	Rules       string    `yaml:"rules,omitempty"`
	RuleFile    string    `yaml:"rule_file,omitempty"`
	Insensitive bool      `yaml:"insensitive,omitempty"`
	Wide        bool      `yaml:"wide,omitempty"`
	MaxSize     uint64    `yaml:"max_size,omitempty"`
	Sections    []Section `yaml:"sections,omitempty"`
}

// Section is a scan window. Start and Length accept decimal or 0x-hex.
type Section struct {
	Start  string `yaml:"start"`
	Length string `yaml:"length"`
}

// Load reads a profile from a YAML file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return &p, nil
}

// Options converts the profile into scan options.
func (p *Profile) Options() scan.Options {
	return scan.Options{
		Rules:       p.Rules,
		RuleFile:    p.RuleFile,
		Insensitive: p.Insensitive,
		Wide:        p.Wide,
		MaxSize:     p.MaxSize,
	}
}

// SectionList parses the profile's section windows. Nil when none are
// declared, meaning the whole layer.
func (p *Profile) SectionList() ([]types.Section, error) {
	if len(p.Sections) == 0 {
		return nil, nil
	}
	out := make([]types.Section, 0, len(p.Sections))
	for i, s := range p.Sections {
		start, err := strconv.ParseUint(s.Start, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("section %d: invalid start %q: %w", i, s.Start, err)
		}
		length, err := strconv.ParseUint(s.Length, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("section %d: invalid length %q: %w", i, s.Length, err)
		}
		out = append(out, types.Section{Start: start, Length: length})
	}
	return out, nil
}
