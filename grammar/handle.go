package grammar

import "fmt"

// GrammarHandle identifies a grammar inside a Store. Handles are stable
// indices and stay valid for the lifetime of the store (until Reset).
// The zero value refers to no grammar.
type GrammarHandle uint32

// NoGrammar marks a pattern without a nested grammar.
const NoGrammar GrammarHandle = 0

// Valid reports whether h refers to a grammar slot.
func (h GrammarHandle) Valid() bool { return h != NoGrammar }

func (h GrammarHandle) String() string {
	if h == NoGrammar {
		return "grammar(none)"
	}
	return fmt.Sprintf("grammar(%d)", uint32(h))
}

func (h GrammarHandle) index() int { return int(h) - 1 }

func grammarHandleAt(i int) GrammarHandle { return GrammarHandle(i + 1) }

// PatternHandle identifies a compiled pattern inside a Store.
type PatternHandle uint32

// Valid reports whether h refers to a pattern slot.
func (h PatternHandle) Valid() bool { return h != 0 }

func (h PatternHandle) String() string {
	return fmt.Sprintf("pattern(%d)", uint32(h))
}

func (h PatternHandle) index() int { return int(h) - 1 }

func patternHandleAt(i int) PatternHandle { return PatternHandle(i + 1) }
