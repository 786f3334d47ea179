// Package password evaluates candidate passwords against a configurable
// rule set and reports every violated rule as one bit of a mask.
package password

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/gophusers/internal/common"
)

// Rule names one threshold of a Definition. The set is closed.
type Rule string

const (
	RuleMinimumChars     Rule = "minimum_chars"
	RuleRequireUppercase Rule = "require_uppercase"
	RuleRequireLowercase Rule = "require_lowercase"
	RuleRequireSymbols   Rule = "require_symbols"
	RuleRequireNumbers   Rule = "require_numbers"
	RuleAllowWhitespace  Rule = "allow_whitespace"
	RuleAllowSequential  Rule = "allow_sequential"
	RuleAllowRepeated    Rule = "allow_repeated"
)

// Violation is a bitmask of failed rules. Zero means compliant.
// Bit values are persisted by callers and must not change.
type Violation uint

const (
	MinimumChars Violation = 1 << iota
	Uppercase
	Lowercase
	Symbols
	Numbers
	Whitespace
	Sequential
	Repeated
)

// symbolSet is the punctuation counted by RuleRequireSymbols.
const symbolSet = "!@#$%^&*()-_={}+;:,<.>"

var defaultRules = map[Rule]int{
	RuleMinimumChars:     8,
	RuleRequireUppercase: 0,
	RuleRequireLowercase: 1,
	RuleRequireSymbols:   0,
	RuleRequireNumbers:   1,
	RuleAllowWhitespace:  0,
	RuleAllowSequential:  0,
	RuleAllowRepeated:    0,
}

var violationNames = []struct {
	bit  Violation
	name string
}{
	{MinimumChars, "minimum_chars"},
	{Uppercase, "uppercase"},
	{Lowercase, "lowercase"},
	{Symbols, "symbols"},
	{Numbers, "numbers"},
	{Whitespace, "whitespace"},
	{Sequential, "sequential"},
	{Repeated, "repeated"},
}

// ErrUnknownRule is returned by SetRule/GetRule for names outside the set.
var ErrUnknownRule = fmt.Errorf("%w: unknown password rule", common.ErrorInvalidArgument)

// Definition is a password rule set. The zero value is not usable; build
// one with DefaultDefinition or NewDefinition.
type Definition struct {
	rules map[Rule]int
}

// DefaultDefinition returns the stock rule set: at least 8 characters, one
// lowercase letter and one digit, no whitespace, sequences or repeats.
func DefaultDefinition() *Definition {
	rules := make(map[Rule]int, len(defaultRules))
	for k, v := range defaultRules {
		rules[k] = v
	}
	return &Definition{rules: rules}
}

// NewDefinition returns the defaults with overrides applied.
func NewDefinition(overrides map[Rule]int) (*Definition, error) {
	d := DefaultDefinition()
	for rule, value := range overrides {
		if err := d.SetRule(rule, value); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ParseRules converts config-file keys into a Definition.
func ParseRules(raw map[string]int) (*Definition, error) {
	overrides := make(map[Rule]int, len(raw))
	for k, v := range raw {
		overrides[Rule(strings.ToLower(strings.TrimSpace(k)))] = v
	}
	return NewDefinition(overrides)
}

// SetRule changes a single threshold.
func (d *Definition) SetRule(rule Rule, value int) error {
	if _, ok := defaultRules[rule]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownRule, string(rule))
	}
	if value < 0 {
		return fmt.Errorf("%w: rule %q must not be negative", common.ErrorInvalidArgument, string(rule))
	}
	d.rules[rule] = value
	return nil
}

// GetRule returns the current threshold of rule.
func (d *Definition) GetRule(rule Rule) (int, error) {
	v, ok := d.rules[rule]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownRule, string(rule))
	}
	return v, nil
}

// Rules returns a copy of the rule map.
func (d *Definition) Rules() map[Rule]int {
	out := make(map[Rule]int, len(d.rules))
	for k, v := range d.rules {
		out[k] = v
	}
	return out
}

// MatchPassword evaluates every rule independently and returns the mask of
// failures.
func (d *Definition) MatchPassword(password string) Violation {
	var v Violation

	// Length is counted in bytes and letter classes are ASCII only, so a
	// non-ASCII letter counts toward length but never toward a class.
	if len(password) < d.rules[RuleMinimumChars] {
		v |= MinimumChars
	}

	var upper, lower, symbols, digits int
	hasSpace := false
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper++
		case isASCIILetter(r):
			lower++
		case isASCIIDigit(r):
			digits++
		case unicode.IsSpace(r):
			hasSpace = true
		}
		if strings.ContainsRune(symbolSet, r) {
			symbols++
		}
	}

	if n := d.rules[RuleRequireUppercase]; n > 0 && upper < n {
		v |= Uppercase
	}
	if n := d.rules[RuleRequireLowercase]; n > 0 && lower < n {
		v |= Lowercase
	}
	if n := d.rules[RuleRequireSymbols]; n > 0 && symbols < n {
		v |= Symbols
	}
	if n := d.rules[RuleRequireNumbers]; n > 0 && digits < n {
		v |= Numbers
	}
	if d.rules[RuleAllowWhitespace] == 0 && hasSpace {
		v |= Whitespace
	}
	if d.rules[RuleAllowSequential] == 0 && hasSequence(password) {
		v |= Sequential
	}
	if d.rules[RuleAllowRepeated] == 0 && hasRepeat(password) {
		v |= Repeated
	}

	return v
}

// Has reports whether every bit of other is set in v.
func (v Violation) Has(other Violation) bool {
	return other != 0 && v&other == other
}

// Names lists the failed rules in bit order.
func (v Violation) Names() []string {
	var out []string
	for _, n := range violationNames {
		if v&n.bit != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

func (v Violation) String() string {
	if v == 0 {
		return "none"
	}
	return strings.Join(v.Names(), ",")
}

// RuleNames returns the closed rule set, sorted.
func RuleNames() []Rule {
	out := make([]Rule, 0, len(defaultRules))
	for r := range defaultRules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// hasSequence finds three consecutive ascending letters (case-insensitive)
// or three consecutive ascending or descending digits.
func hasSequence(password string) bool {
	rs := []rune(strings.ToLower(password))
	for i := 0; i+2 < len(rs); i++ {
		a, b, c := rs[i], rs[i+1], rs[i+2]
		switch {
		case isASCIILetter(a) && isASCIILetter(b) && isASCIILetter(c):
			if b == a+1 && c == b+1 {
				return true
			}
		case isASCIIDigit(a) && isASCIIDigit(b) && isASCIIDigit(c):
			if (b == a+1 && c == b+1) || (b == a-1 && c == b-1) {
				return true
			}
		}
	}
	return false
}

// hasRepeat finds a unit of one or two characters repeated at least three
// times back to back ("aaa", "papapa").
func hasRepeat(password string) bool {
	rs := []rune(password)
	for size := 1; size <= 2; size++ {
		for i := 0; i+3*size <= len(rs); i++ {
			if equalRunes(rs[i:i+size], rs[i+size:i+2*size]) &&
				equalRunes(rs[i:i+size], rs[i+2*size:i+3*size]) {
				return true
			}
		}
	}
	return false
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isASCIILetter(r rune) bool { return r >= 'a' && r <= 'z' }

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }
