package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memscan/memscan/pkg/engine"
	"github.com/memscan/memscan/pkg/layer"
	"github.com/memscan/memscan/pkg/profile"
	"github.com/memscan/memscan/pkg/render"
	"github.com/memscan/memscan/pkg/resource"
	"github.com/memscan/memscan/pkg/scan"
	"github.com/memscan/memscan/pkg/types"
)

var (
	scanRules       string
	scanRuleFile    string
	scanInsensitive bool
	scanWide        bool
	scanMaxSize     uint64
	scanSections    []string
	scanProfile     string
	scanFormat      string
	scanEngine      string
	scanChunkSize   int
)

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Scan a memory image for rule matches",
	Long:  "Scan a raw memory image for byte patterns using an inline rule or a rule file",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanRules, "rules", "y", "", "Inline rule pattern (literal, {hex} or /regex/)")
	scanCmd.Flags().StringVarP(&scanRuleFile, "rule-file", "f", "", "Path or URI of a rule file (file, http(s), s3, azblob)")
	scanCmd.Flags().BoolVar(&scanInsensitive, "insensitive", false, "Case-insensitive matching")
	scanCmd.Flags().BoolVar(&scanWide, "wide", false, "Also match wide (16-bit-per-character) occurrences")
	scanCmd.Flags().Uint64Var(&scanMaxSize, "max-size", scan.DefaultMaxSize, "Maximum bytes scanned")
	scanCmd.Flags().StringArrayVar(&scanSections, "section", nil, "Restrict to start:length window, hex or decimal (repeatable)")
	scanCmd.Flags().StringVar(&scanProfile, "profile", "", "Load scan configuration from a YAML profile")
	scanCmd.Flags().StringVar(&scanFormat, "format", "table", "Output format: table, plain, json")
	scanCmd.Flags().StringVar(&scanEngine, "engine", "portable", "Matching engine: portable, yarax")
	scanCmd.Flags().IntVar(&scanChunkSize, "chunk-size", 0, "Traversal chunk size in bytes (0 = default)")
}

func runScan(cmd *cobra.Command, args []string) error {
	target := args[0]
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("image does not exist: %s", target)
	}

	opts := scan.Options{
		Rules:       scanRules,
		RuleFile:    scanRuleFile,
		Insensitive: scanInsensitive,
		Wide:        scanWide,
		MaxSize:     scanMaxSize,
	}

	var sections []types.Section
	if scanProfile != "" {
		p, err := profile.Load(scanProfile)
		if err != nil {
			return err
		}
		opts = mergeProfile(cmd, opts, p)
		if len(scanSections) == 0 {
			if sections, err = p.SectionList(); err != nil {
				return err
			}
		}
	}
	for _, s := range scanSections {
		sec, err := parseSection(s)
		if err != nil {
			return err
		}
		sections = append(sections, sec)
	}

	eng, err := engine.New(scanEngine)
	if err != nil {
		return fmt.Errorf("selecting engine: %w", err)
	}

	compiler := scan.NewCompiler(eng, resource.NewAccessor(log), log)
	rules, err := compiler.Compile(cmd.Context(), opts)
	if err != nil {
		return err
	}

	cfg := layer.DefaultConfig()
	if scanChunkSize > 0 {
		cfg.ChunkSize = scanChunkSize
	}
	cfg.MaxScanSize = opts.MaxSize

	l, err := layer.NewFileLayer(target, cfg)
	if err != nil {
		return err
	}
	defer l.Close()

	out, err := render.New(scanFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return out.Render(scan.Scan(cmd.Context(), l, rules, sections))
}

// mergeProfile fills options from the profile, keeping any value the
// user set explicitly on the command line.
func mergeProfile(cmd *cobra.Command, opts scan.Options, p *profile.Profile) scan.Options {
	base := p.Options()
	f := cmd.Flags()
	if !f.Changed("rules") {
		opts.Rules = base.Rules
	}
	if !f.Changed("rule-file") {
		opts.RuleFile = base.RuleFile
	}
	if !f.Changed("insensitive") {
		opts.Insensitive = base.Insensitive
	}
	if !f.Changed("wide") {
		opts.Wide = base.Wide
	}
	if !f.Changed("max-size") && base.MaxSize > 0 {
		opts.MaxSize = base.MaxSize
	}
	return opts
}

// parseSection parses a start:length window. Both parts accept 0x-hex.
func parseSection(s string) (types.Section, error) {
	startStr, lengthStr, ok := strings.Cut(s, ":")
	if !ok {
		return types.Section{}, fmt.Errorf("section must be start:length, got %q", s)
	}
	start, err := strconv.ParseUint(startStr, 0, 64)
	if err != nil {
		return types.Section{}, fmt.Errorf("invalid section start %q: %w", startStr, err)
	}
	length, err := strconv.ParseUint(lengthStr, 0, 64)
	if err != nil {
		return types.Section{}, fmt.Errorf("invalid section length %q: %w", lengthStr, err)
	}
	return types.Section{Start: start, Length: length}, nil
}
