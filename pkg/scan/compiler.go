package scan

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/memscan/memscan/pkg/engine"
)

// Opener resolves rule-file URIs. Satisfied by resource.Accessor.
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// Compiler builds rule sets from Options.
type Compiler struct {
	engine engine.Engine
	opener Opener
	log    zerolog.Logger
}

// NewCompiler returns a Compiler bound to an engine, a rule-file opener
// and a diagnostic logger.
func NewCompiler(eng engine.Engine, opener Opener, log zerolog.Logger) *Compiler {
	return &Compiler{engine: eng, opener: opener, log: log}
}

// Compile builds a rule set per Options. An inline pattern is wrapped
// into single-pattern rule source; a rule file is resolved through the
// opener and compiled as-is. When neither source is set, Compile logs a
// diagnostic and returns a nil rule set with no error: the scan then
// completes with zero matches instead of failing.
func (c *Compiler) Compile(ctx context.Context, opts Options) (engine.RuleSet, error) {
	switch {
	case opts.Rules != "":
		if opts.RuleFile != "" {
			c.log.Debug().Str("file", opts.RuleFile).Msg("inline rules take precedence, ignoring rule file")
		}
		source := WrapPattern(opts.Rules, opts.Insensitive, opts.Wide)
		rs, err := c.engine.Compile(source)
		if err != nil {
			return nil, fmt.Errorf("compiling inline rule: %w", err)
		}
		return rs, nil

	case opts.RuleFile != "":
		rc, err := c.opener.Open(ctx, opts.RuleFile)
		if err != nil {
			return nil, fmt.Errorf("opening rule file %s: %w", opts.RuleFile, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("reading rule file %s: %w", opts.RuleFile, err)
		}
		rs, err := c.engine.Compile(string(data))
		if err != nil {
			return nil, fmt.Errorf("compiling rule file %s: %w", opts.RuleFile, err)
		}
		return rs, nil

	default:
		c.log.Warn().Msg("no rules, nor rules file were specified")
		return nil, nil
	}
}

// WrapPattern builds single-pattern rule source from an inline
// expression. Text not already delimited as a {hex} or /regex/ pattern
// is quoted as a literal; modifiers are appended after the pattern.
func WrapPattern(pattern string, insensitive, wide bool) string {
	if !strings.HasPrefix(pattern, "{") && !strings.HasPrefix(pattern, "/") {
		pattern = quoteLiteral(pattern)
	}
	if insensitive {
		pattern += " nocase"
	}
	if wide {
		pattern += " wide ascii"
	}
	return fmt.Sprintf("rule r1 {strings: $a = %s condition: $a}", pattern)
}

// quoteLiteral renders text as a double-quoted rule string, escaping
// quotes, backslashes and non-printable bytes.
func quoteLiteral(text string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c > 0x7e:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
