package grammar

import (
	"errors"
	"fmt"
	"time"
)

// builder compiles definitions into a private arena copy.
type builder struct {
	arena   *arena
	timeout time.Duration
}

func (b *builder) add(defs []Definition) ([]GrammarHandle, error) {
	handles := make([]GrammarHandle, len(defs))

	for i, def := range defs {
		h, err := b.reserveLanguage(def)
		if err != nil {
			return nil, err
		}
		handles[i] = h
	}

	for i, def := range defs {
		groups, err := b.compileGroups(def.Name, def.Name, def.Tokens)
		if err != nil {
			return nil, err
		}
		b.arena.grammars[handles[i].index()].groups = groups
	}

	return handles, nil
}

func (b *builder) reserveLanguage(def Definition) (GrammarHandle, error) {
	if def.Name == "" {
		return NoGrammar, &DefinitionError{Err: ErrEmptyName}
	}

	// A failed call discards the arena copy, so names can be claimed as
	// they are checked.
	h := b.reserve(def.Name)
	for _, name := range append([]string{def.Name}, def.Aliases...) {
		if name == "" {
			return NoGrammar, &DefinitionError{Language: def.Name, Err: fmt.Errorf("alias: %w", ErrEmptyName)}
		}
		if _, taken := b.arena.names[name]; taken {
			return NoGrammar, &DefinitionError{Language: def.Name, Err: fmt.Errorf("%q: %w", name, ErrDuplicateLanguage)}
		}
		b.arena.names[name] = h
	}
	b.arena.languages = append(b.arena.languages, Language{
		Name:       def.Name,
		Aliases:    def.Aliases,
		Extensions: def.Extensions,
		Handle:     h,
	})

	return h, nil
}

// reserve appends an empty grammar slot so that it can be referenced
// before its groups are compiled.
func (b *builder) reserve(name string) GrammarHandle {
	b.arena.grammars = append(b.arena.grammars, Grammar{name: name})
	return grammarHandleAt(len(b.arena.grammars) - 1)
}

// compileGroups compiles tokens. language names the owning language for
// errors and diagnostics; scope names the grammar being compiled.
func (b *builder) compileGroups(language, scope string, tokens []TokenDefinition) ([]TokenGroup, error) {
	groups := make([]TokenGroup, 0, len(tokens))

	for _, td := range tokens {
		if td.Name == "" {
			return nil, &DefinitionError{Language: language, Err: fmt.Errorf("token: %w", ErrEmptyName)}
		}

		group := TokenGroup{
			name:     td.Name,
			patterns: make([]PatternHandle, 0, len(td.Patterns)),
		}

		for j, pd := range td.Patterns {
			inside, err := b.resolveInside(language, fmt.Sprintf("%s/%s#%d", scope, td.Name, j), pd.Inside)
			if err != nil {
				var defErr *DefinitionError
				if errors.As(err, &defErr) {
					return nil, err
				}
				return nil, &DefinitionError{Language: language, Token: td.Name, Err: err}
			}

			p, err := CompilePattern(pd, inside, b.timeout)
			if err != nil {
				b.arena.diagnostics = append(b.arena.diagnostics, Diagnostic{
					Language: scope,
					Token:    td.Name,
					Index:    j,
					Pattern:  pd.Pattern,
					Err:      err,
				})
			}

			b.arena.patterns = append(b.arena.patterns, *p)
			group.patterns = append(group.patterns, patternHandleAt(len(b.arena.patterns)-1))
		}

		groups = append(groups, group)
	}

	return groups, nil
}

func (b *builder) resolveInside(language, scope string, inside *InsideDefinition) (GrammarHandle, error) {
	switch {
	case inside == nil:
		return NoGrammar, nil

	case inside.Language != "" && len(inside.Tokens) > 0:
		return NoGrammar, ErrAmbiguousInside

	case inside.Language != "":
		h, ok := b.arena.names[inside.Language]
		if !ok {
			return NoGrammar, fmt.Errorf("inside %q: %w", inside.Language, ErrUnknownLanguage)
		}
		return h, nil

	default:
		h := b.reserve(scope)
		groups, err := b.compileGroups(language, scope, inside.Tokens)
		if err != nil {
			return NoGrammar, err
		}
		b.arena.grammars[h.index()].groups = groups
		return h, nil
	}
}
