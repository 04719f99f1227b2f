package scan

// DefaultMaxSize is the advisory bound on bytes scanned (1 GiB).
const DefaultMaxSize = 0x40000000

// Options selects the rule source and matching modifiers for one scan.
// Exactly one of Rules / RuleFile is meaningful; when both are set the
// inline Rules text wins and RuleFile is never consulted.
type Options struct {
	// Rules is an inline single-pattern expression: a quoted-literal
	// candidate, a {hex} pattern or a /regex/.
	Rules string

	// RuleFile is the path or URI of a full rule file.
	RuleFile string

	// Insensitive appends the nocase modifier to an inline pattern.
	Insensitive bool

	// Wide appends the wide ascii modifiers to an inline pattern, so
	// 16-bit-per-character occurrences match as well as plain ones.
	Wide bool

	// MaxSize is the advisory upper bound on bytes scanned. It is not
	// enforced here; the layer traversal honors it.
	MaxSize uint64
}
