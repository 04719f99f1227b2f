// Package memscan provides byte-pattern scanning over large address
// spaces such as captured memory images.
//
// A rule set is compiled once from an inline pattern or a rule file,
// then driven across a layer in bounded chunks; every match is reported
// with its absolute offset, the matching rule and the matched bytes.
//
// # Basic Usage
//
// Compile an inline pattern and scan an image file:
//
//	scanner, err := memscan.NewScanner(ctx, memscan.Options{Rules: "MZ"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	matches, err := scanner.ScanFile(ctx, "memory.dmp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, m := range matches {
//	    fmt.Printf("%#x %s\n", m.Offset, m.Rule)
//	}
//
// The compiled rule set is immutable and reused across every scan the
// Scanner performs.
package memscan

import (
	"context"
	"fmt"
	"iter"

	"github.com/rs/zerolog"

	"github.com/memscan/memscan/pkg/engine"
	"github.com/memscan/memscan/pkg/layer"
	"github.com/memscan/memscan/pkg/resource"
	"github.com/memscan/memscan/pkg/scan"
	"github.com/memscan/memscan/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/memscan/memscan" without subpackages.
type (
	// Match is a single pattern hit with its absolute offset.
	Match = types.Match

	// Section restricts a scan to a window of the address space.
	Section = types.Section

	// Options selects the rule source and matching modifiers.
	Options = scan.Options
)

// DefaultMaxSize is the advisory bound on bytes scanned (1 GiB).
const DefaultMaxSize = scan.DefaultMaxSize

// Scanner holds a compiled rule set and scans layers with it.
type Scanner struct {
	rules engine.RuleSet
	cfg   layer.Config
	log   zerolog.Logger
}

// Option configures a Scanner.
type Option func(*scannerConfig)

type scannerConfig struct {
	engine   engine.Engine
	opener   scan.Opener
	layerCfg layer.Config
	log      zerolog.Logger
}

// WithEngine selects the matching engine (default: portable).
func WithEngine(e engine.Engine) Option {
	return func(c *scannerConfig) { c.engine = e }
}

// WithOpener overrides how rule-file URIs are resolved.
func WithOpener(o scan.Opener) Option {
	return func(c *scannerConfig) { c.opener = o }
}

// WithLayerConfig overrides chunk traversal settings.
func WithLayerConfig(cfg layer.Config) Option {
	return func(c *scannerConfig) { c.layerCfg = cfg }
}

// WithLogger injects a diagnostic sink (default: discard).
func WithLogger(log zerolog.Logger) Option {
	return func(c *scannerConfig) { c.log = log }
}

// NewScanner compiles opts into a reusable Scanner. When opts names no
// rule source the Scanner is still valid and every scan yields zero
// matches; compilation and resource errors fail construction.
func NewScanner(ctx context.Context, opts Options, options ...Option) (*Scanner, error) {
	cfg := &scannerConfig{
		engine:   engine.NewPortable(),
		layerCfg: layer.DefaultConfig(),
		log:      zerolog.Nop(),
	}
	for _, o := range options {
		o(cfg)
	}
	if cfg.opener == nil {
		cfg.opener = resource.NewAccessor(cfg.log)
	}

	rules, err := scan.NewCompiler(cfg.engine, cfg.opener, cfg.log).Compile(ctx, opts)
	if err != nil {
		return nil, err
	}
	if opts.MaxSize > 0 {
		cfg.layerCfg.MaxScanSize = opts.MaxSize
	}
	return &Scanner{rules: rules, cfg: cfg.layerCfg, log: cfg.log}, nil
}

// Stream scans l lazily, restricted to sections when any are given.
func (s *Scanner) Stream(ctx context.Context, l layer.Layer, sections ...Section) iter.Seq2[Match, error] {
	return scan.Scan(ctx, l, s.rules, sections)
}

// ScanLayer scans l and collects every match.
func (s *Scanner) ScanLayer(ctx context.Context, l layer.Layer, sections ...Section) ([]Match, error) {
	var out []Match
	for m, err := range s.Stream(ctx, l, sections...) {
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// ScanFile scans the raw image at path.
func (s *Scanner) ScanFile(ctx context.Context, path string, sections ...Section) ([]Match, error) {
	l, err := layer.NewFileLayer(path, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer l.Close()
	return s.ScanLayer(ctx, l, sections...)
}

// ScanBytes scans an in-memory buffer.
func (s *Scanner) ScanBytes(ctx context.Context, data []byte, sections ...Section) ([]Match, error) {
	return s.ScanLayer(ctx, layer.NewBytesLayer(data, s.cfg), sections...)
}
