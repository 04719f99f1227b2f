package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/memscan/memscan/pkg/prefilter"
)

// matchTimeout bounds backtracking on pathological patterns.
const matchTimeout = 5 * time.Second

// Portable is the pure-Go engine. It parses the restricted rule grammar
// from parse.go and runs every string as a regexp2 program over the raw
// bytes, with an Aho-Corasick prefilter over literal anchors.
type Portable struct{}

// NewPortable returns the pure-Go engine. Always available.
func NewPortable() *Portable {
	return &Portable{}
}

type program struct {
	rule string
	re   *regexp2.Regexp
}

type portableRuleSet struct {
	programs []program
	pf       *prefilter.Prefilter
}

// Compile parses source and precompiles one program per string
// declaration, so pattern errors surface here rather than mid-scan.
func (*Portable) Compile(source string) (RuleSet, error) {
	decls, err := parseRules(source)
	if err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}

	rs := &portableRuleSet{}
	var entries []prefilter.Entry
	for _, rule := range decls {
		if len(rule.strings) == 0 {
			return nil, fmt.Errorf("rule %s has no string declarations", rule.name)
		}
		for _, d := range rule.strings {
			pattern, opts, anchors, err := buildPattern(d)
			if err != nil {
				return nil, fmt.Errorf("rule %s, string %s: %w", rule.name, d.id, err)
			}

			// RE2 mode first (no backtracking); fall back to full syntax
			// for lookarounds and other extensions.
			re, rerr := regexp2.Compile(pattern, opts|regexp2.RE2)
			if rerr != nil {
				re, rerr = regexp2.Compile(pattern, opts)
				if rerr != nil {
					return nil, fmt.Errorf("rule %s, string %s: compiling pattern: %w", rule.name, d.id, rerr)
				}
			}
			re.MatchTimeout = matchTimeout

			id := len(rs.programs)
			rs.programs = append(rs.programs, program{rule: rule.name, re: re})
			if len(anchors) == 0 {
				entries = append(entries, prefilter.Entry{ID: id})
			}
			for _, a := range anchors {
				entries = append(entries, prefilter.Entry{ID: id, Anchor: a})
			}
		}
	}
	rs.pf = prefilter.New(entries)
	return rs, nil
}

// Match runs each candidate program over data and reports every
// occurrence, grouped per program in declaration order.
func (rs *portableRuleSet) Match(data []byte) ([]StringMatch, error) {
	candidates := rs.pf.Filter(data)
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Ints(candidates)

	runes := bytesToRunes(data)
	var out []StringMatch
	prev := -1
	for _, id := range candidates {
		if id == prev { // duplicate from multiple anchors
			continue
		}
		prev = id
		prog := rs.programs[id]

		m, err := prog.re.FindRunesMatch(runes)
		if err != nil {
			return nil, fmt.Errorf("matching %s: %w", prog.rule, err)
		}
		for m != nil {
			start, end := m.Index, m.Index+m.Length
			value := make([]byte, end-start)
			copy(value, data[start:end])
			out = append(out, StringMatch{
				Offset: uint64(start),
				Name:   prog.rule,
				Value:  value,
			})
			m, err = prog.re.FindNextMatch(m)
			if err != nil {
				return nil, fmt.Errorf("matching %s: %w", prog.rule, err)
			}
		}
	}
	return out, nil
}

// buildPattern translates one string declaration into regexp2 source,
// compile options and prefilter anchors.
func buildPattern(d stringDecl) (string, regexp2.RegexOptions, [][]byte, error) {
	var (
		body    string
		anchors [][]byte
		opts    regexp2.RegexOptions
	)

	switch d.kind {
	case kindText:
		asciiOn := d.ascii || !d.wide
		asciiBody := escapeBytes([]byte(d.text))
		switch {
		case asciiOn && d.wide:
			body = "(?:" + asciiBody + "|" + escapeBytes(widen(d.text)) + ")"
		case d.wide:
			body = escapeBytes(widen(d.text))
		default:
			body = asciiBody
		}
		// case-sensitive literals anchor the prefilter; nocase variants
		// cannot, since Aho-Corasick matching is exact
		if !d.nocase {
			if asciiOn {
				anchors = append(anchors, []byte(d.text))
			}
			if d.wide {
				anchors = append(anchors, widen(d.text))
			}
		}

	case kindHex:
		var err error
		body, anchors, err = hexPattern(d.hex)
		if err != nil {
			return "", 0, nil, err
		}

	case kindRegex:
		if d.wide {
			return "", 0, nil, fmt.Errorf("wide modifier not supported for regex strings by portable engine")
		}
		body = d.regex
		if d.dotall {
			opts |= regexp2.Singleline
		}
	}

	if d.fullword {
		body = `(?<![0-9A-Za-z_])` + body + `(?![0-9A-Za-z_])`
	}
	if d.nocase {
		opts |= regexp2.IgnoreCase
	}
	return body, opts, anchors, nil
}

// hexPattern translates a YARA hex string body ({ AB ?? CD [2-4] ... })
// into a regex. A fully literal body also yields a prefilter anchor.
func hexPattern(hex string) (string, [][]byte, error) {
	var (
		b       strings.Builder
		literal []byte
		pure    = true
	)
	for _, tok := range strings.Fields(hex) {
		switch {
		case tok == "??":
			b.WriteString(`[\s\S]`)
			pure = false
		case strings.HasPrefix(tok, "["):
			lo, hi, err := hexJump(tok)
			if err != nil {
				return "", nil, err
			}
			if hi < 0 {
				fmt.Fprintf(&b, `[\s\S]{%d,}`, lo)
			} else {
				fmt.Fprintf(&b, `[\s\S]{%d,%d}`, lo, hi)
			}
			pure = false
		case len(tok) == 2:
			hi, ok1 := hexVal(tok[0])
			lo, ok2 := hexVal(tok[1])
			if !ok1 || !ok2 {
				if strings.ContainsRune(tok, '?') {
					return "", nil, fmt.Errorf("nibble wildcards (%s) not supported by portable engine", tok)
				}
				return "", nil, fmt.Errorf("invalid hex token %q", tok)
			}
			v := hi<<4 | lo
			fmt.Fprintf(&b, `\x%02x`, v)
			literal = append(literal, v)
		default:
			return "", nil, fmt.Errorf("invalid hex token %q", tok)
		}
	}
	if b.Len() == 0 {
		return "", nil, fmt.Errorf("empty hex pattern")
	}
	var anchors [][]byte
	if pure {
		anchors = [][]byte{literal}
	}
	return b.String(), anchors, nil
}

// hexJump parses [n], [n-m] and [n-] jump tokens. hi < 0 means open-ended.
func hexJump(tok string) (lo, hi int, err error) {
	if !strings.HasSuffix(tok, "]") {
		return 0, 0, fmt.Errorf("invalid jump %q", tok)
	}
	inner := tok[1 : len(tok)-1]
	lo, hi = 0, -1
	loStr, hiStr, ranged := strings.Cut(inner, "-")
	if loStr != "" {
		if _, err := fmt.Sscanf(loStr, "%d", &lo); err != nil {
			return 0, 0, fmt.Errorf("invalid jump %q", tok)
		}
	}
	if !ranged {
		hi = lo
	} else if hiStr != "" {
		if _, err := fmt.Sscanf(hiStr, "%d", &hi); err != nil {
			return 0, 0, fmt.Errorf("invalid jump %q", tok)
		}
	}
	return lo, hi, nil
}

// escapeBytes renders bytes as a regex that matches them verbatim.
// Everything outside [0-9A-Za-z] is hex-escaped, which sidesteps all
// metacharacter questions.
func escapeBytes(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		if c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, `\x%02x`, c)
		}
	}
	return b.String()
}

// widen interleaves text with NUL bytes, the 16-bit-per-character
// encoding YARA's wide modifier targets.
func widen(text string) []byte {
	out := make([]byte, 0, len(text)*2)
	for i := 0; i < len(text); i++ {
		out = append(out, text[i], 0)
	}
	return out
}

// bytesToRunes maps each byte to one rune so regexp2 match indexes are
// byte offsets. A plain string conversion would decode UTF-8 and skew
// offsets on binary data.
func bytesToRunes(data []byte) []rune {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return runes
}
