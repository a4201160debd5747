package grammar

// TokenGroup is a named set of alternative patterns. The alternatives are
// tried in the order they were authored.
type TokenGroup struct {
	name     string
	patterns []PatternHandle
}

// Name returns the token type emitted for matches of this group.
func (g *TokenGroup) Name() string { return g.name }

// Patterns returns the alternatives in priority order.
// The returned slice must not be modified.
func (g *TokenGroup) Patterns() []PatternHandle { return g.patterns }

// Grammar is the ordered list of token groups of one language, or of an
// anonymous grammar nested inside a pattern.
type Grammar struct {
	name   string
	groups []TokenGroup
}

// Name returns the language name. Nested grammars are named after the
// pattern that owns them, e.g. "javascript/template-string#0".
func (g *Grammar) Name() string { return g.name }

// Groups returns the token groups in declaration order.
// The returned slice must not be modified.
func (g *Grammar) Groups() []TokenGroup { return g.groups }

// Language describes a registered language.
type Language struct {
	Name       string
	Aliases    []string
	Extensions []string
	Handle     GrammarHandle
}
