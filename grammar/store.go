// Package grammar holds compiled grammars and patterns.
//
// All grammars and patterns of every loaded language live in one
// append-only Store and refer to each other through handles, which are
// plain indices into the store. A pattern may therefore name its own
// grammar, or a grammar that is registered later in the same call, as the
// grammar for its nested content.
//
// Example usage:
//
//	store := grammar.NewStore()
//	handles, err := store.Register(grammar.Definition{
//		Name: "digits",
//		Tokens: []grammar.TokenDefinition{
//			{Name: "number", Patterns: grammar.Patterns{{Pattern: `\d+`, Greedy: true}}},
//		},
//	})
//
// Reads never take a lock. Writes copy the arena and publish the new copy
// atomically, so readers that are resolving handles are never disturbed.
package grammar

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var log = commonlog.GetLogger("prisma.grammar")

// Store is the shared, indexable collection of grammars and patterns.
// It is safe for concurrent use.
type Store struct {
	// MatchTimeout bounds every regular expression search of patterns
	// compiled by this store.
	MatchTimeout time.Duration

	mu    sync.Mutex // serializes writers
	arena atomic.Pointer[arena]
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMatchTimeout sets the per-search timeout of compiled patterns.
// Zero disables the timeout.
func WithMatchTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		s.MatchTimeout = d
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		MatchTimeout: DefaultMatchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.arena.Store(&arena{names: map[string]GrammarHandle{}})
	return s
}

// Register compiles and adds the given languages. Either all of them are
// registered or, on error, none are and the store is unchanged.
//
// Every name and alias is reserved before any pattern is compiled, so
// inside references may point to any language of the same call.
// Patterns that fail to compile never abort registration; they are
// recorded as diagnostics instead.
func (s *Store) Register(defs ...Definition) ([]GrammarHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, handles, err := s.build(defs)
	if err != nil {
		return nil, err
	}
	s.arena.Store(next)

	return handles, nil
}

// LoadOnce registers defs unless the store is already populated, in which
// case it does nothing and reports false. A successful call marks the
// store as populated even when defs is empty.
func (s *Store) LoadOnce(defs []Definition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.arena.Load().populated() {
		return false, nil
	}

	next, _, err := s.build(defs)
	if err != nil {
		return false, err
	}
	next.loaded = true
	s.arena.Store(next)

	return true, nil
}

// build compiles defs on top of a copy of the current arena.
// Caller must hold s.mu.
func (s *Store) build(defs []Definition) (*arena, []GrammarHandle, error) {
	current := s.arena.Load()

	b := &builder{arena: current.clone(), timeout: s.MatchTimeout}
	handles, err := b.add(defs)
	if err != nil {
		return nil, nil, err
	}

	for _, d := range b.arena.diagnostics[len(current.diagnostics):] {
		log.Warningf("invalid pattern replaced by a never-matching one: %s", d.Error())
	}

	return b.arena, handles, nil
}

// Populated reports whether a load happened or any grammar is registered.
func (s *Store) Populated() bool {
	return s.arena.Load().populated()
}

// Lookup returns the grammar registered under a language name or alias.
func (s *Store) Lookup(name string) (GrammarHandle, bool) {
	h, ok := s.arena.Load().names[name]
	return h, ok
}

// Grammar resolves a grammar handle. Unknown handles resolve to nil.
func (s *Store) Grammar(h GrammarHandle) (*Grammar, bool) {
	a := s.arena.Load()
	i := h.index()
	if i < 0 || i >= len(a.grammars) {
		if strictHandles {
			panic(fmt.Sprintf("grammar: unresolvable %s", h))
		}
		return nil, false
	}
	return &a.grammars[i], true
}

// Pattern resolves a pattern handle. Unknown handles resolve to nil.
func (s *Store) Pattern(h PatternHandle) (*Pattern, bool) {
	a := s.arena.Load()
	i := h.index()
	if i < 0 || i >= len(a.patterns) {
		if strictHandles {
			panic(fmt.Sprintf("grammar: unresolvable %s", h))
		}
		return nil, false
	}
	return &a.patterns[i], true
}

// Languages returns the registered languages in registration order.
func (s *Store) Languages() []Language {
	return slices.Clone(s.arena.Load().languages)
}

// Diagnostics returns every pattern compile failure recorded so far.
func (s *Store) Diagnostics() []Diagnostic {
	return slices.Clone(s.arena.Load().diagnostics)
}

// Reset empties the store. Handles obtained before the reset no longer
// resolve.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.arena.Store(&arena{names: map[string]GrammarHandle{}})
}

// arena is one immutable generation of the store contents.
type arena struct {
	grammars    []Grammar
	patterns    []Pattern
	names       map[string]GrammarHandle
	languages   []Language
	diagnostics []Diagnostic
	loaded      bool
}

func (a *arena) populated() bool {
	return a.loaded || len(a.grammars) > 0
}

func (a *arena) clone() *arena {
	return &arena{
		grammars:    slices.Clone(a.grammars),
		patterns:    slices.Clone(a.patterns),
		names:       maps.Clone(a.names),
		languages:   slices.Clone(a.languages),
		diagnostics: slices.Clone(a.diagnostics),
		loaded:      a.loaded,
	}
}
