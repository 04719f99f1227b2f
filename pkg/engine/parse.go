package engine

import (
	"fmt"
	"strings"
)

// stringKind discriminates the three YARA string forms.
type stringKind int

const (
	kindText stringKind = iota
	kindHex
	kindRegex
)

// stringDecl is one parsed string declaration ($id = ... modifiers).
type stringDecl struct {
	id       string
	kind     stringKind
	text     string // unescaped bytes for kindText
	hex      string // raw token text between braces for kindHex
	regex    string // pattern body for kindRegex
	nocase   bool
	wide     bool
	ascii    bool
	fullword bool
	dotall   bool // regex /s flag
}

// ruleDecl is one parsed rule with its string declarations.
type ruleDecl struct {
	name    string
	strings []stringDecl
}

// ruleParser is a single-pass scanner over rule source text. It covers
// the grammar the inline compiler emits plus the common hand-written
// forms: rule header with optional tags, meta section (skipped), string
// declarations with nocase/wide/ascii/fullword modifiers, and a
// condition section whose content is not interpreted.
type ruleParser struct {
	src string
	pos int
}

func parseRules(source string) ([]ruleDecl, error) {
	p := &ruleParser{src: source}
	var rules []ruleDecl
	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		word, err := p.ident()
		if err != nil {
			return nil, err
		}
		switch word {
		case "import", "include":
			return nil, fmt.Errorf("portable engine does not support %q statements", word)
		case "private", "global":
			// rule visibility modifiers carry no meaning here
			continue
		case "rule":
		default:
			return nil, p.errf("expected 'rule', found %q", word)
		}
		r, err := p.rule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("no rules found in source")
	}
	return rules, nil
}

func (p *ruleParser) rule() (ruleDecl, error) {
	p.skipSpace()
	name, err := p.ident()
	if err != nil {
		return ruleDecl{}, fmt.Errorf("rule name: %w", err)
	}
	r := ruleDecl{name: name}

	p.skipSpace()
	if p.peek() == ':' { // tags
		p.pos++
		for {
			p.skipSpace()
			if p.peek() == '{' || p.eof() {
				break
			}
			if _, err := p.ident(); err != nil {
				return ruleDecl{}, fmt.Errorf("rule %s tags: %w", name, err)
			}
		}
	}
	if err := p.expect('{'); err != nil {
		return ruleDecl{}, fmt.Errorf("rule %s: %w", name, err)
	}

	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			break
		}
		section, err := p.ident()
		if err != nil {
			return ruleDecl{}, fmt.Errorf("rule %s: %w", name, err)
		}
		if err := p.expect(':'); err != nil {
			return ruleDecl{}, fmt.Errorf("rule %s, section %s: %w", name, section, err)
		}
		switch section {
		case "meta":
			if err := p.skipMeta(); err != nil {
				return ruleDecl{}, fmt.Errorf("rule %s meta: %w", name, err)
			}
		case "strings":
			decls, err := p.stringsSection()
			if err != nil {
				return ruleDecl{}, fmt.Errorf("rule %s strings: %w", name, err)
			}
			r.strings = append(r.strings, decls...)
		case "condition":
			if err := p.skipCondition(); err != nil {
				return ruleDecl{}, fmt.Errorf("rule %s condition: %w", name, err)
			}
			// condition closes the rule body
			if err := p.expect('}'); err != nil {
				return ruleDecl{}, fmt.Errorf("rule %s: %w", name, err)
			}
			return r, nil
		default:
			return ruleDecl{}, p.errf("unknown section %q in rule %s", section, name)
		}
	}
	return r, nil
}

// skipMeta consumes `ident = value` pairs until the next section keyword.
func (p *ruleParser) skipMeta() error {
	for {
		p.skipSpace()
		if p.peek() == '}' || p.eof() {
			return nil
		}
		save := p.pos
		word, err := p.ident()
		if err != nil {
			return err
		}
		if word == "strings" || word == "condition" {
			p.pos = save
			return nil
		}
		if err := p.expect('='); err != nil {
			return err
		}
		p.skipSpace()
		switch c := p.peek(); {
		case c == '"':
			if _, err := p.quoted(); err != nil {
				return err
			}
		default:
			// number, bool or bare token
			for !p.eof() && !isSpace(p.peek()) && p.peek() != '}' {
				p.pos++
			}
		}
	}
}

func (p *ruleParser) stringsSection() ([]stringDecl, error) {
	var decls []stringDecl
	for {
		p.skipSpace()
		if p.peek() != '$' {
			return decls, nil
		}
		d, err := p.stringDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
}

func (p *ruleParser) stringDecl() (stringDecl, error) {
	p.pos++ // consume '$'
	id, err := p.ident()
	if err != nil && p.peek() != '=' {
		return stringDecl{}, fmt.Errorf("string identifier: %w", err)
	}
	d := stringDecl{id: "$" + id}
	if err := p.expect('='); err != nil {
		return stringDecl{}, err
	}
	p.skipSpace()
	switch p.peek() {
	case '"':
		text, err := p.quoted()
		if err != nil {
			return stringDecl{}, err
		}
		d.kind = kindText
		d.text = text
	case '{':
		hex, err := p.hexBody()
		if err != nil {
			return stringDecl{}, err
		}
		d.kind = kindHex
		d.hex = hex
	case '/':
		body, flags, err := p.regexBody()
		if err != nil {
			return stringDecl{}, err
		}
		d.kind = kindRegex
		d.regex = body
		d.nocase = strings.ContainsRune(flags, 'i')
		d.dotall = strings.ContainsRune(flags, 's')
	default:
		return stringDecl{}, p.errf("expected string, hex pattern or regex for %s", d.id)
	}

	// trailing modifiers
	for {
		p.skipSpace()
		save := p.pos
		if !isIdentStart(p.peek()) {
			break
		}
		word, err := p.ident()
		if err != nil {
			return stringDecl{}, err
		}
		switch word {
		case "nocase":
			d.nocase = true
		case "wide":
			d.wide = true
		case "ascii":
			d.ascii = true
		case "fullword":
			d.fullword = true
		case "private":
			// ignored: affects reporting in full YARA only
		case "xor", "base64", "base64wide":
			return stringDecl{}, fmt.Errorf("modifier %q not supported by portable engine", word)
		default:
			// next string or section keyword
			p.pos = save
			return d, nil
		}
	}
	return d, nil
}

// quoted reads a double-quoted string and resolves escapes.
func (p *ruleParser) quoted() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}
	var b strings.Builder
	for {
		if p.eof() {
			return "", p.errf("unterminated string")
		}
		c := p.src[p.pos]
		p.pos++
		switch c {
		case '"':
			return b.String(), nil
		case '\\':
			if p.eof() {
				return "", p.errf("unterminated escape")
			}
			e := p.src[p.pos]
			p.pos++
			switch e {
			case '"', '\\':
				b.WriteByte(e)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case 'x':
				if p.pos+2 > len(p.src) {
					return "", p.errf("truncated \\x escape")
				}
				hi, ok1 := hexVal(p.src[p.pos])
				lo, ok2 := hexVal(p.src[p.pos+1])
				if !ok1 || !ok2 {
					return "", p.errf("invalid \\x escape")
				}
				b.WriteByte(hi<<4 | lo)
				p.pos += 2
			default:
				return "", p.errf("unknown escape \\%c", e)
			}
		default:
			b.WriteByte(c)
		}
	}
}

func (p *ruleParser) hexBody() (string, error) {
	if err := p.expect('{'); err != nil {
		return "", err
	}
	start := p.pos
	for !p.eof() && p.src[p.pos] != '}' {
		p.pos++
	}
	if p.eof() {
		return "", p.errf("unterminated hex pattern")
	}
	body := p.src[start:p.pos]
	p.pos++ // '}'
	return strings.TrimSpace(body), nil
}

func (p *ruleParser) regexBody() (body, flags string, err error) {
	if err := p.expect('/'); err != nil {
		return "", "", err
	}
	var b strings.Builder
	for {
		if p.eof() {
			return "", "", p.errf("unterminated regex")
		}
		c := p.src[p.pos]
		p.pos++
		if c == '\\' && !p.eof() {
			b.WriteByte(c)
			b.WriteByte(p.src[p.pos])
			p.pos++
			continue
		}
		if c == '/' {
			break
		}
		b.WriteByte(c)
	}
	for !p.eof() && (p.peek() == 'i' || p.peek() == 's') {
		flags += string(p.peek())
		p.pos++
	}
	return b.String(), flags, nil
}

// skipCondition consumes condition tokens up to, but not including, the
// closing brace of the rule body. Condition semantics are not evaluated:
// matches are reported per string occurrence.
func (p *ruleParser) skipCondition() error {
	for {
		p.skipSpace() // also consumes comments
		if p.eof() {
			return p.errf("unterminated condition")
		}
		switch p.src[p.pos] {
		case '}':
			return nil
		case '"':
			if _, err := p.quoted(); err != nil {
				return err
			}
		default:
			p.pos++
		}
	}
}

func (p *ruleParser) skipSpace() {
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case isSpace(c):
			p.pos++
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '/':
			for !p.eof() && p.src[p.pos] != '\n' {
				p.pos++
			}
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '*':
			p.pos += 2
			for p.pos+1 < len(p.src) && !(p.src[p.pos] == '*' && p.src[p.pos+1] == '/') {
				p.pos++
			}
			p.pos = min(p.pos+2, len(p.src))
		default:
			return
		}
	}
}

func (p *ruleParser) ident() (string, error) {
	p.skipSpace()
	start := p.pos
	for !p.eof() && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errf("expected identifier")
	}
	return p.src[start:p.pos], nil
}

func (p *ruleParser) expect(c byte) error {
	p.skipSpace()
	if p.eof() || p.src[p.pos] != c {
		return p.errf("expected %q", string(c))
	}
	p.pos++
	return nil
}

func (p *ruleParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *ruleParser) eof() bool { return p.pos >= len(p.src) }

func (p *ruleParser) errf(format string, args ...any) error {
	line := 1 + strings.Count(p.src[:min(p.pos, len(p.src))], "\n")
	return fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
