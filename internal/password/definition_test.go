package password

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDefinition_Rules(t *testing.T) {
	d := DefaultDefinition()

	want := map[Rule]int{
		RuleMinimumChars:     8,
		RuleRequireUppercase: 0,
		RuleRequireLowercase: 1,
		RuleRequireSymbols:   0,
		RuleRequireNumbers:   1,
		RuleAllowWhitespace:  0,
		RuleAllowSequential:  0,
		RuleAllowRepeated:    0,
	}
	assert.Equal(t, want, d.Rules())
}

func TestMatchPassword_DefaultRules(t *testing.T) {
	d := DefaultDefinition()

	tests := []struct {
		name     string
		password string
		want     Violation
	}{
		{name: "compliant", password: "a1b2c3d4", want: 0},
		{name: "one char short", password: "a1b2c3d", want: MinimumChars},
		{name: "no lowercase", password: "A1B2C3D4", want: Lowercase},
		{name: "no digits", password: "kwzmpqtr", want: Numbers},
		{name: "whitespace", password: "a1b2 c3d4", want: Whitespace},
		{name: "letter run", password: "port123abc", want: Sequential},
		{name: "digit run", password: "x789y0k2z", want: Sequential},
		{name: "descending digits", password: "qw987mnz", want: Sequential},
		{name: "letter run is case-insensitive", password: "m1XYZ4k8", want: Sequential},
		{name: "triple char", password: "w1aaa7k5", want: Repeated},
		{name: "quadruple char", password: "cccc9t2m", want: Repeated},
		{name: "repeated pair", password: "papapa19", want: Repeated},
		{name: "alternating without repeat", password: "a1a2a3kz", want: 0},
		{name: "empty", password: "", want: MinimumChars | Lowercase | Numbers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.MatchPassword(tt.password)
			assert.Equal(t, tt.want, got, "mask for %q: got %s want %s", tt.password, got, tt.want)
		})
	}
}

func TestMatchPassword_MinimumLengthBoundary(t *testing.T) {
	d, err := NewDefinition(map[Rule]int{RuleMinimumChars: 10})
	require.NoError(t, err)

	assert.Equal(t, MinimumChars, d.MatchPassword("a1b2c3d4e"))
	assert.Equal(t, Violation(0), d.MatchPassword("a1b2c3d4e5"))
}

func TestMatchPassword_NonASCII(t *testing.T) {
	d, err := NewDefinition(map[Rule]int{RuleMinimumChars: 8, RuleRequireUppercase: 1})
	require.NoError(t, err)

	// "é" is two bytes: five runes, eight bytes.
	pw := "9éééa"
	require.Len(t, pw, 8)
	assert.False(t, d.MatchPassword(pw).Has(MinimumChars), "length counts bytes")

	assert.True(t, d.MatchPassword("Ézq7wkpx").Has(Uppercase), "only A-Z count as uppercase")
	assert.True(t, d.MatchPassword("Q7éééé").Has(Lowercase), "only a-z count as lowercase")
	assert.Equal(t, Violation(0), d.MatchPassword("Qzq7wkpx"))
}

func TestMatchPassword_CountThresholds(t *testing.T) {
	d, err := NewDefinition(map[Rule]int{
		RuleRequireUppercase: 2,
		RuleRequireSymbols:   1,
		RuleRequireNumbers:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, Uppercase|Symbols|Numbers, d.MatchPassword("Akcxbmtw1"))
	assert.Equal(t, Violation(0), d.MatchPassword("AbKx!m1t9"))
}

func TestMatchPassword_AllowFlags(t *testing.T) {
	d, err := NewDefinition(map[Rule]int{
		RuleAllowWhitespace: 1,
		RuleAllowSequential: 1,
		RuleAllowRepeated:   1,
	})
	require.NoError(t, err)

	assert.Equal(t, Violation(0), d.MatchPassword("abc 123 aaa"))
}

func TestMatchPassword_Deterministic(t *testing.T) {
	d := DefaultDefinition()
	for _, pw := range []string{"", "port123abc", "a1b2c3d4", "papapa"} {
		first := d.MatchPassword(pw)
		for i := 0; i < 5; i++ {
			require.Equal(t, first, d.MatchPassword(pw))
		}
	}
}

func TestSetRule_GetRule(t *testing.T) {
	d := DefaultDefinition()

	require.NoError(t, d.SetRule(RuleRequireSymbols, 2))
	v, err := d.GetRule(RuleRequireSymbols)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	err = d.SetRule(Rule("max_chars"), 3)
	require.ErrorIs(t, err, ErrUnknownRule)
	require.ErrorIs(t, err, common.ErrorInvalidArgument)

	_, err = d.GetRule(Rule("max_chars"))
	require.ErrorIs(t, err, ErrUnknownRule)

	require.ErrorIs(t, d.SetRule(RuleMinimumChars, -1), common.ErrorInvalidArgument)
}

func TestNewDefinition_UnknownOverride(t *testing.T) {
	_, err := NewDefinition(map[Rule]int{"bogus": 1})
	require.ErrorIs(t, err, ErrUnknownRule)
}

func TestParseRules_NormalizesKeys(t *testing.T) {
	d, err := ParseRules(map[string]int{" Minimum_Chars ": 12, "require_symbols": 1})
	require.NoError(t, err)

	v, _ := d.GetRule(RuleMinimumChars)
	assert.Equal(t, 12, v)
	v, _ = d.GetRule(RuleRequireSymbols)
	assert.Equal(t, 1, v)
}

func TestRules_ReturnsCopy(t *testing.T) {
	d := DefaultDefinition()
	r := d.Rules()
	r[RuleMinimumChars] = 1

	v, _ := d.GetRule(RuleMinimumChars)
	assert.Equal(t, 8, v)
}

func TestViolation_NamesAndString(t *testing.T) {
	assert.Equal(t, "none", Violation(0).String())
	assert.Equal(t, "minimum_chars,sequential", (MinimumChars | Sequential).String())
	assert.True(t, (Numbers | Repeated).Has(Repeated))
	assert.False(t, Numbers.Has(Repeated))
	assert.False(t, Numbers.Has(0))
}

func TestViolation_BitValuesAreStable(t *testing.T) {
	assert.Equal(t, Violation(1), MinimumChars)
	assert.Equal(t, Violation(2), Uppercase)
	assert.Equal(t, Violation(4), Lowercase)
	assert.Equal(t, Violation(8), Symbols)
	assert.Equal(t, Violation(16), Numbers)
	assert.Equal(t, Violation(32), Whitespace)
	assert.Equal(t, Violation(64), Sequential)
	assert.Equal(t, Violation(128), Repeated)
}

func TestCheck(t *testing.T) {
	d := DefaultDefinition()

	require.NoError(t, d.Check("a1b2c3d4"))

	err := d.Check("short")
	require.Error(t, err)
	assert.Equal(t, PolicyErrorMessage, err.Error())
	assert.True(t, errors.Is(err, common.ErrorValidation))

	var pe *PolicyError
	require.True(t, errors.As(err, &pe))
	assert.True(t, pe.Mask.Has(MinimumChars))
	assert.Contains(t, pe.Detail(), "minimum_chars")

	var nilDef *Definition
	assert.NoError(t, nilDef.Check(""))
}

func TestRuleNames_Sorted(t *testing.T) {
	names := RuleNames()
	require.Len(t, names, 8)
	assert.Equal(t, RuleAllowRepeated, names[0])
	assert.Equal(t, RuleRequireUppercase, names[len(names)-1])
}
