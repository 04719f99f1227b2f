package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetCheckFlags() {
	checkRules = ""
	checkRuleFile = ""
	checkInsensitive = false
	checkWide = false
	checkEngine = "portable"
}

func TestRunRulesCheckInline(t *testing.T) {
	var buf bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())

	resetCheckFlags()
	checkRules = "ABC"

	err := runRulesCheck(cmd, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "rules OK")
}

func TestRunRulesCheckFile(t *testing.T) {
	rulesPath := filepath.Join(t.TempDir(), "rules.yar")
	source := `rule marker {strings: $a = "MZ" condition: $a}`
	require.NoError(t, os.WriteFile(rulesPath, []byte(source), 0644))

	var buf bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())

	resetCheckFlags()
	checkRuleFile = rulesPath

	err := runRulesCheck(cmd, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "rules OK")
}

func TestRunRulesCheckNothingSpecified(t *testing.T) {
	var buf bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())

	resetCheckFlags()

	err := runRulesCheck(cmd, nil)
	assert.Error(t, err, "should require --rules or --rule-file")
}

func TestRunRulesCheckBadSource(t *testing.T) {
	rulesPath := filepath.Join(t.TempDir(), "rules.yar")
	require.NoError(t, os.WriteFile(rulesPath, []byte("this is not a rule"), 0644))

	var buf bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())

	resetCheckFlags()
	checkRuleFile = rulesPath

	err := runRulesCheck(cmd, nil)
	assert.Error(t, err, "should surface compile errors")
}
