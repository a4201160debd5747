// Package tokenizer turns text into a token tree by applying a grammar.
//
// A grammar is applied to a working list that starts out as one text
// segment covering the whole input. Token groups are tried in order and
// every pattern of a group is run over the text segments that are still
// unconsumed, left to right. Each match splits its segment into the text
// before it, a syntax token and the text after it. Tokens are never
// rescanned, so earlier groups take priority over later ones.
//
// Greedy patterns search the whole level text instead of a single segment
// and may swallow several segments, including tokens created by patterns
// of lower priority. The swallowed range is then matched again by every
// pattern that precedes the greedy one.
//
// Example usage:
//
//	t := tokenizer.New(store)
//	tree := t.Tokenize(`x = "hi"`, handle)
package tokenizer

import (
	"context"

	"github.com/robinvdvleuten/prisma/grammar"
	"github.com/robinvdvleuten/prisma/token"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("prisma.tokenizer")

// DefaultMaxDepth is the default nesting limit of inside grammars.
const DefaultMaxDepth = 64

// Resolver resolves handles into compiled grammars and patterns.
// *grammar.Store implements it.
type Resolver interface {
	Grammar(h grammar.GrammarHandle) (*grammar.Grammar, bool)
	Pattern(h grammar.PatternHandle) (*grammar.Pattern, bool)
}

// Tokenizer applies grammars from a resolver. It holds no per-call state
// and is safe for concurrent use.
type Tokenizer struct {
	resolver Resolver
	maxDepth int
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithMaxDepth limits how deep inside grammars nest. Matches below the
// limit keep their text as a single leaf. Zero disables nesting.
func WithMaxDepth(n int) Option {
	return func(t *Tokenizer) {
		if n >= 0 {
			t.maxDepth = n
		}
	}
}

// New creates a tokenizer reading grammars from r.
func New(r Resolver, opts ...Option) *Tokenizer {
	t := &Tokenizer{
		resolver: r,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize applies the grammar h to text. Concatenating the text leaves of
// the result reproduces text exactly. An unknown grammar yields a single
// text leaf.
func (t *Tokenizer) Tokenize(text string, h grammar.GrammarHandle) token.Tree {
	tree, _ := t.TokenizeContext(context.Background(), text, h)
	return tree
}

// TokenizeContext is like Tokenize but stops matching once ctx is done.
// The partial tree is returned together with the context error; text that
// was not reached stays in unclassified leaves.
func (t *Tokenizer) TokenizeContext(ctx context.Context, text string, h grammar.GrammarHandle) (token.Tree, error) {
	r := &run{ctx: ctx}
	tree := t.tokenize(r, newLevel(text), h, 0)
	return tree, r.err
}

func (t *Tokenizer) tokenize(r *run, lvl level, h grammar.GrammarHandle, depth int) token.Tree {
	g, ok := t.resolve(h)
	if !ok {
		return token.Tree{token.Text(lvl.slice(0, lvl.len()))}
	}

	m := &matcher{
		tokenizer: t,
		run:       r,
		lvl:       lvl,
		grammar:   g,
		handle:    h,
		depth:     depth,
		list:      newList(0, lvl.len()),
	}
	m.match(m.list.head, nil)

	return m.tree()
}

func (t *Tokenizer) resolve(h grammar.GrammarHandle) (*grammar.Grammar, bool) {
	if !h.Valid() || t.resolver == nil {
		return nil, false
	}
	return t.resolver.Grammar(h)
}

// run is the state shared by all levels of one call.
type run struct {
	ctx context.Context
	err error
}

func (r *run) cancelled() bool {
	if r.err != nil {
		return true
	}
	if err := r.ctx.Err(); err != nil {
		r.err = err
		return true
	}
	return false
}

// cause identifies a pattern by its group and position in the group.
type cause struct {
	group, pattern int
}

// rematch restricts a nested pass to the patterns before cause and to
// nodes starting before reach.
type rematch struct {
	cause cause
	reach int
}

// matcher applies one grammar to one level.
type matcher struct {
	tokenizer *Tokenizer
	run       *run
	lvl       level
	grammar   *grammar.Grammar
	handle    grammar.GrammarHandle
	depth     int
	list      *list
}

// match runs the grammar over the nodes following start.
func (m *matcher) match(start *node, rm *rematch) {
	groups := m.grammar.Groups()
	for gi := range groups {
		group := &groups[gi]
		for pi, ph := range group.Patterns() {
			c := cause{group: gi, pattern: pi}
			if rm != nil && rm.cause == c {
				return
			}
			if m.run.cancelled() {
				return
			}

			p, ok := m.tokenizer.resolver.Pattern(ph)
			if !ok {
				continue
			}
			if !m.apply(c, group.Name(), p, start, rm) {
				return
			}
		}
	}
}

// apply runs a single pattern over the unconsumed nodes following start.
// It returns false when the list has grown beyond the text length, which
// only happens for grammars that keep producing empty tokens.
func (m *matcher) apply(c cause, typ string, p *grammar.Pattern, start *node, rm *rematch) bool {
	// skip is the search offset into the next node. It moves past empty
	// matches so that they are not found again at the same place.
	skip := 0

	for n := start.next; n != m.list.tail; n = n.next {
		if rm != nil && n.start >= rm.reach {
			break
		}
		if m.list.length > m.lvl.len() {
			return false
		}
		if n.syntax {
			skip = 0
			continue
		}

		offset := skip
		skip = 0

		removeCount := 1
		segStart, segEnd := n.start, n.end
		var from, to int

		if p.Greedy() {
			match, ok := p.Match(m.lvl.runes, n.start+offset)
			if !ok || match.Start >= m.lvl.len() {
				break
			}

			// Move to the node containing the start of the match.
			for match.Start >= n.end && n.next != m.list.tail {
				n = n.next
			}
			if n.syntax {
				continue
			}

			// Take every node the match touches plus the unconsumed text
			// up to the next token.
			removeCount = 0
			segStart, segEnd = n.start, n.start
			for k := n; k != m.list.tail && (segEnd < match.End || !k.syntax); k = k.next {
				removeCount++
				segEnd = k.end
			}
			from, to = match.Start, match.End
		} else {
			match, ok := p.Match(m.lvl.runes[n.start:n.end], offset)
			if !ok {
				continue
			}
			from, to = n.start+match.Start, n.start+match.End
		}

		reach := segEnd
		if rm != nil && reach > rm.reach {
			rm.reach = reach
		}

		at := n.prev
		if from > segStart {
			at = m.list.addAfter(at, &node{start: segStart, end: from})
		}
		m.list.removeRange(at, removeCount)
		n = m.list.addAfter(at, &node{start: from, end: to, syntax: true, value: m.wrap(typ, p, from, to)})
		if to < segEnd {
			m.list.addAfter(n, &node{start: to, end: segEnd})
			if from == to {
				skip = 1
			}
		}

		if removeCount > 1 {
			nested := &rematch{cause: c, reach: reach}
			m.match(n.prev, nested)
			if rm != nil && nested.reach > rm.reach {
				rm.reach = nested.reach
			}
		}
	}

	return true
}

// wrap builds the syntax token for the rune range [from, to).
func (m *matcher) wrap(typ string, p *grammar.Pattern, from, to int) token.Node {
	if from == to {
		return token.Syntax(typ, p.Alias())
	}

	inside := p.Inside()
	switch {
	case !inside.Valid():
	case m.depth >= m.tokenizer.maxDepth:
		log.Debugf("%s: nesting limit %d reached, keeping %s as text", m.grammar.Name(), m.tokenizer.maxDepth, typ)
	case inside == m.handle && from == 0 && to == m.lvl.len():
		// Matching the same text with the same grammar again would not
		// terminate.
	default:
		children := m.tokenizer.tokenize(m.run, m.lvl.sub(from, to), inside, m.depth+1)
		return token.Syntax(typ, p.Alias(), children...)
	}

	return token.Syntax(typ, p.Alias(), token.Text(m.lvl.slice(from, to)))
}

// tree converts the working list into the result of this level.
func (m *matcher) tree() token.Tree {
	out := make(token.Tree, 0, m.list.length)
	for n := m.list.head.next; n != m.list.tail; n = n.next {
		if n.syntax {
			out = append(out, n.value)
			continue
		}
		out = append(out, token.Text(m.lvl.slice(n.start, n.end)))
	}
	return out
}
