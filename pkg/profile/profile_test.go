package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeProfile(t, `
rules: MZ
insensitive: true
wide: true
max_size: 1048576
sections:
  - start: "0x1000"
    length: "4096"
  - start: "8192"
    length: "0x100"
`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	opts := p.Options()
	if opts.Rules != "MZ" || !opts.Insensitive || !opts.Wide || opts.MaxSize != 1048576 {
		t.Errorf("Wrong options: %+v", opts)
	}

	sections, err := p.SectionList()
	if err != nil {
		t.Fatalf("SectionList failed: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}
	if sections[0].Start != 0x1000 || sections[0].Length != 4096 {
		t.Errorf("Wrong first section: %+v", sections[0])
	}
	if sections[1].Start != 8192 || sections[1].Length != 0x100 {
		t.Errorf("Wrong second section: %+v", sections[1])
	}
}

func TestLoadRuleFile(t *testing.T) {
	path := writeProfile(t, "rule_file: https://example.com/rules.yar\n")

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.RuleFile != "https://example.com/rules.yar" {
		t.Errorf("Wrong rule file: %q", p.RuleFile)
	}
	sections, err := p.SectionList()
	if err != nil {
		t.Fatalf("SectionList failed: %v", err)
	}
	if sections != nil {
		t.Errorf("No declared sections must mean nil, got %+v", sections)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Missing profile must fail to load")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeProfile(t, "rules: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Error("Malformed YAML must fail to load")
	}
}

func TestSectionListInvalidNumbers(t *testing.T) {
	tests := []string{
		"sections:\n  - start: \"zero\"\n    length: \"10\"\n",
		"sections:\n  - start: \"0\"\n    length: \"ten\"\n",
	}
	for _, content := range tests {
		p, err := Load(writeProfile(t, content))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if _, err := p.SectionList(); err == nil {
			t.Errorf("Invalid section numbers must be rejected: %q", content)
		}
	}
}
