package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memscan/memscan/pkg/engine"
	"github.com/memscan/memscan/pkg/resource"
	"github.com/memscan/memscan/pkg/scan"
)

var (
	checkRules       string
	checkRuleFile    string
	checkInsensitive bool
	checkWide        bool
	checkEngine      string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Work with rule sources",
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Compile rules and report problems without scanning",
	RunE:  runRulesCheck,
}

func init() {
	rulesCheckCmd.Flags().StringVarP(&checkRules, "rules", "y", "", "Inline rule pattern (literal, {hex} or /regex/)")
	rulesCheckCmd.Flags().StringVarP(&checkRuleFile, "rule-file", "f", "", "Path or URI of a rule file")
	rulesCheckCmd.Flags().BoolVar(&checkInsensitive, "insensitive", false, "Case-insensitive matching")
	rulesCheckCmd.Flags().BoolVar(&checkWide, "wide", false, "Also match wide occurrences")
	rulesCheckCmd.Flags().StringVar(&checkEngine, "engine", "portable", "Matching engine: portable, yarax")

	rulesCmd.AddCommand(rulesCheckCmd)
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	if checkRules == "" && checkRuleFile == "" {
		return fmt.Errorf("either --rules or --rule-file is required")
	}

	eng, err := engine.New(checkEngine)
	if err != nil {
		return fmt.Errorf("selecting engine: %w", err)
	}

	compiler := scan.NewCompiler(eng, resource.NewAccessor(log), log)
	rules, err := compiler.Compile(cmd.Context(), scan.Options{
		Rules:       checkRules,
		RuleFile:    checkRuleFile,
		Insensitive: checkInsensitive,
		Wide:        checkWide,
	})
	if err != nil {
		return err
	}
	if rules == nil {
		return fmt.Errorf("no rules compiled")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "rules OK")
	return nil
}
