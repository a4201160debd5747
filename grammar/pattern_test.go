package grammar

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func mustPattern(t *testing.T, def PatternDefinition) *Pattern {
	t.Helper()
	p, err := CompilePattern(def, NoGrammar, DefaultMatchTimeout)
	assert.NoError(t, err)
	return p
}

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		name      string
		def       PatternDefinition
		input     string
		pos       int
		wantOK    bool
		wantStart int
		wantEnd   int
	}{
		{
			name:      "search is not anchored",
			def:       PatternDefinition{Pattern: `\d+`},
			input:     "ab12",
			wantOK:    true,
			wantStart: 2,
			wantEnd:   4,
		},
		{
			name:      "search starts at pos",
			def:       PatternDefinition{Pattern: `\d+`},
			input:     "1a23",
			pos:       1,
			wantOK:    true,
			wantStart: 2,
			wantEnd:   4,
		},
		{
			name:   "no match",
			def:    PatternDefinition{Pattern: `\d+`},
			input:  "abc",
			wantOK: false,
		},
		{
			name:      "lookbehind trims group one",
			def:       PatternDefinition{Pattern: `(^|[^\\])'([^']*)'`, Lookbehind: true},
			input:     "x'abc'",
			wantOK:    true,
			wantStart: 1,
			wantEnd:   6,
		},
		{
			name:      "lookbehind with empty group",
			def:       PatternDefinition{Pattern: `(^|[^\\])'([^']*)'`, Lookbehind: true},
			input:     "'abc'",
			wantOK:    true,
			wantStart: 0,
			wantEnd:   5,
		},
		{
			name:      "group kept without lookbehind",
			def:       PatternDefinition{Pattern: `(^|[^\\])'([^']*)'`},
			input:     "x'abc'",
			wantOK:    true,
			wantStart: 0,
			wantEnd:   6,
		},
		{
			name:      "ignore case flag",
			def:       PatternDefinition{Pattern: `select`, Flags: "i"},
			input:     "SELECT 1",
			wantOK:    true,
			wantStart: 0,
			wantEnd:   6,
		},
		{
			name:      "offsets count runes",
			def:       PatternDefinition{Pattern: `é+`},
			input:     "xéé!",
			wantOK:    true,
			wantStart: 1,
			wantEnd:   3,
		},
		{
			name:      "lookahead is supported",
			def:       PatternDefinition{Pattern: `\b\w+(?=\()`},
			input:     "call foo(1)",
			wantOK:    true,
			wantStart: 5,
			wantEnd:   8,
		},
		{
			name:      "backreference is supported",
			def:       PatternDefinition{Pattern: `(["'])(?:(?!\1)[^\\])*\1`},
			input:     `say "it's"`,
			wantOK:    true,
			wantStart: 4,
			wantEnd:   10,
		},
		{
			name:      "dotall flag lets dot match newlines",
			def:       PatternDefinition{Pattern: `a.b`, Flags: "s"},
			input:     "a\nb",
			wantOK:    true,
			wantStart: 0,
			wantEnd:   3,
		},
		{
			name:   "dot stops at newlines without dotall",
			def:    PatternDefinition{Pattern: `a.b`},
			input:  "a\nb",
			wantOK: false,
		},
		{
			name:   "dotall keeps ascii digit and word classes",
			def:    PatternDefinition{Pattern: `\d+|\w+`, Flags: "s"},
			input:  "é٣",
			wantOK: false,
		},
		{
			name:   "pos beyond text",
			def:    PatternDefinition{Pattern: `a*`},
			input:  "aa",
			pos:    3,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPattern(t, tt.def)
			m, ok := p.Match([]rune(tt.input), tt.pos)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, Match{Start: tt.wantStart, End: tt.wantEnd}, m)
			}
		})
	}
}

func TestPatternCaretMatchesAtSearchStartOnlyForSlices(t *testing.T) {
	p := mustPattern(t, PatternDefinition{Pattern: `^ab`})

	_, ok := p.Match([]rune("xab"), 1)
	assert.False(t, ok, "^ must not match in the middle of the searched text")

	m, ok := p.Match([]rune("xab")[1:], 0)
	assert.True(t, ok)
	assert.Equal(t, 2, m.Len())
}

func TestInvalidPatternNeverMatches(t *testing.T) {
	p, err := CompilePattern(PatternDefinition{Pattern: `(unclosed`, Alias: "x", Greedy: true}, NoGrammar, DefaultMatchTimeout)
	assert.Error(t, err)
	assert.NotZero(t, p)
	assert.False(t, p.Valid())
	assert.Equal(t, "x", p.Alias())
	assert.True(t, p.Greedy())

	_, ok := p.Match([]rune("(unclosed"), 0)
	assert.False(t, ok)
}

func TestUnknownFlag(t *testing.T) {
	p, err := CompilePattern(PatternDefinition{Pattern: `a`, Flags: "iz"}, NoGrammar, DefaultMatchTimeout)
	assert.Error(t, err)
	assert.False(t, p.Valid())
}

func TestIgnoredFlags(t *testing.T) {
	p := mustPattern(t, PatternDefinition{Pattern: `a`, Flags: "gy"})
	assert.True(t, p.Valid())
}

func TestPatternAccessors(t *testing.T) {
	p, err := CompilePattern(PatternDefinition{Pattern: `x`, Lookbehind: true, Alias: "a"}, GrammarHandle(3), 0)
	assert.NoError(t, err)
	assert.Equal(t, "x", p.Source())
	assert.True(t, p.Lookbehind())
	assert.False(t, p.Greedy())
	assert.Equal(t, GrammarHandle(3), p.Inside())
}
