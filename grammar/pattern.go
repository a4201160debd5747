package grammar

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single regular expression search.
const DefaultMatchTimeout = time.Second

// Pattern is one compiled matcher together with its tokenizer directives.
// Patterns are immutable once compiled.
type Pattern struct {
	source     string
	re         *regexp2.Regexp // nil when source failed to compile
	lookbehind bool
	greedy     bool
	alias      string
	inside     GrammarHandle
}

// Match is a matched span, in rune offsets of the searched text.
type Match struct {
	Start int
	End   int
}

// Len returns the number of runes covered by m.
func (m Match) Len() int { return m.End - m.Start }

// CompilePattern compiles def into a pattern whose nested content is
// tokenized with inside. It always returns a usable pattern: when the
// expression does not compile, the pattern never matches and the compile
// error is returned alongside it.
func CompilePattern(def PatternDefinition, inside GrammarHandle, timeout time.Duration) (*Pattern, error) {
	p := &Pattern{
		source:     def.Pattern,
		lookbehind: def.Lookbehind,
		greedy:     def.Greedy,
		alias:      def.Alias,
		inside:     inside,
	}

	opts, err := regexOptions(def.Flags)
	if err != nil {
		return p, err
	}

	re, err := regexp2.Compile(def.Pattern, opts)
	if err != nil {
		return p, err
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	p.re = re

	return p, nil
}

// regexOptions maps JavaScript-style flags onto regexp2 options.
func regexOptions(flags string) (regexp2.RegexOptions, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'u':
			opts |= regexp2.Unicode
		case 'g', 'y':
			// Scan positions are driven by the tokenizer.
		default:
			return 0, fmt.Errorf("unknown regular expression flag %q", f)
		}
	}
	return opts, nil
}

// Match searches text for the leftmost match starting at or after pos.
//
// When the pattern uses lookbehind and its first capturing group took part
// in the match, the text of that group is cut from the front of the result.
func (p *Pattern) Match(text []rune, pos int) (Match, bool) {
	if p.re == nil || pos < 0 || pos > len(text) {
		return Match{}, false
	}

	m, err := p.re.FindRunesMatchStartingAt(text, pos)
	if err != nil {
		log.Warningf("pattern %q aborted: %s", p.source, err)
		return Match{}, false
	}
	if m == nil {
		return Match{}, false
	}

	start, length := m.Index, m.Length
	if p.lookbehind {
		if g := m.GroupByNumber(1); g != nil && len(g.Captures) > 0 {
			start += g.Length
			length -= g.Length
		}
	}

	return Match{Start: start, End: start + length}, true
}

// Source returns the regular expression source.
func (p *Pattern) Source() string { return p.source }

// Valid reports whether the source compiled. Invalid patterns never match.
func (p *Pattern) Valid() bool { return p.re != nil }

// Lookbehind reports whether capture group 1 is trimmed from matches.
func (p *Pattern) Lookbehind() bool { return p.lookbehind }

// Greedy reports whether the pattern may match across segment boundaries.
func (p *Pattern) Greedy() bool { return p.greedy }

// Alias returns the alias attached to emitted tokens.
func (p *Pattern) Alias() string { return p.alias }

// Inside returns the grammar used for the content of matches.
func (p *Pattern) Inside() GrammarHandle { return p.inside }
