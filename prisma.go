// Package prisma highlights source code with Prism-style grammars.
//
// A Highlighter owns a grammar store, loads grammar bundles into it once
// and tokenizes text by language name:
//
//	h := prisma.New(prisma.WithEmbeddedGrammars())
//	tree := h.Tokenize(`const x = 1;`, "javascript")
//	fmt.Println(tree.JSON())
//
// The returned token tree always flattens back to the input text.
package prisma

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/robinvdvleuten/prisma/grammar"
	"github.com/robinvdvleuten/prisma/grammars"
	"github.com/robinvdvleuten/prisma/loader"
	"github.com/robinvdvleuten/prisma/telemetry"
	"github.com/robinvdvleuten/prisma/token"
	"github.com/robinvdvleuten/prisma/tokenizer"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("prisma")

// ErrNilBundle is returned by LoadBundle for a nil bundle.
var ErrNilBundle = errors.New("nil grammar bundle")

// Highlighter tokenizes text with the grammars it has loaded. It is safe
// for concurrent use.
type Highlighter struct {
	store     *grammar.Store
	tokenizer *tokenizer.Tokenizer
	loader    *loader.Loader

	matchTimeout time.Duration
	maxDepth     int
	embedded     bool
	loaderOpts   []loader.Option
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithEmbeddedGrammars loads the built-in grammars on first use unless
// other grammars were loaded before.
func WithEmbeddedGrammars() Option {
	return func(h *Highlighter) {
		h.embedded = true
	}
}

// WithMatchTimeout bounds every single regular expression search.
func WithMatchTimeout(d time.Duration) Option {
	return func(h *Highlighter) {
		h.matchTimeout = d
	}
}

// WithMaxDepth limits how deep nested grammars are applied.
func WithMaxDepth(n int) Option {
	return func(h *Highlighter) {
		h.maxDepth = n
	}
}

// WithLoaderOptions configures how grammar bundles are read.
func WithLoaderOptions(opts ...loader.Option) Option {
	return func(h *Highlighter) {
		h.loaderOpts = append(h.loaderOpts, opts...)
	}
}

// New creates a highlighter without grammars.
func New(opts ...Option) *Highlighter {
	h := &Highlighter{
		matchTimeout: grammar.DefaultMatchTimeout,
		maxDepth:     tokenizer.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.store = grammar.NewStore(grammar.WithMatchTimeout(h.matchTimeout))
	h.tokenizer = tokenizer.New(h.store, tokenizer.WithMaxDepth(h.maxDepth))
	h.loader = loader.New(h.loaderOpts...)

	return h
}

// LoadGrammars decodes a grammar bundle and registers its languages. Only
// the first successful load has an effect; later calls report false and
// leave the highlighter untouched.
func (h *Highlighter) LoadGrammars(ctx context.Context, data []byte) (bool, error) {
	timer := telemetry.FromContext(ctx).Start("prisma.LoadGrammars")
	defer timer.End()

	if h.store.Populated() {
		return false, nil
	}

	result, err := h.loader.LoadBytes(ctx, data)
	if err != nil {
		return false, err
	}
	return h.register(timer, result.Bundle)
}

// LoadFile is like LoadGrammars but reads the bundle from a file.
func (h *Highlighter) LoadFile(ctx context.Context, filename string) (bool, error) {
	timer := telemetry.FromContext(ctx).Start("prisma.LoadFile")
	defer timer.End()

	if h.store.Populated() {
		return false, nil
	}

	result, err := h.loader.Load(ctx, filename)
	if err != nil {
		return false, err
	}
	return h.register(timer, result.Bundle)
}

// LoadBundle registers an already decoded bundle, with the same only-once
// semantics as LoadGrammars.
func (h *Highlighter) LoadBundle(ctx context.Context, bundle *grammar.Bundle) (bool, error) {
	timer := telemetry.FromContext(ctx).Start("prisma.LoadBundle")
	defer timer.End()

	if h.store.Populated() {
		return false, nil
	}
	return h.register(timer, bundle)
}

func (h *Highlighter) register(timer telemetry.Timer, bundle *grammar.Bundle) (bool, error) {
	if bundle == nil {
		return false, ErrNilBundle
	}

	t := timer.Child(fmt.Sprintf("grammar.LoadOnce (%d languages)", len(bundle.Languages)))
	defer t.End()

	loaded, err := h.store.LoadOnce(bundle.Languages)
	if err != nil {
		return false, fmt.Errorf("failed to register grammars: %w", err)
	}
	if loaded {
		log.Infof("loaded %d languages", len(bundle.Languages))
	}
	return loaded, nil
}

// ensureLoaded loads the embedded grammars when they were requested and
// nothing else was loaded yet.
func (h *Highlighter) ensureLoaded() {
	if !h.embedded || h.store.Populated() {
		return
	}

	bundle, err := grammars.Bundle()
	if err == nil {
		_, err = h.store.LoadOnce(bundle.Languages)
	}
	if err != nil {
		log.Errorf("failed to load embedded grammars: %s", err)
	}
}

// Tokenize tokenizes text with the grammar registered under language, a
// name or alias. Unknown languages yield a single text leaf.
func (h *Highlighter) Tokenize(text, language string) token.Tree {
	tree, _ := h.TokenizeContext(context.Background(), text, language)
	return tree
}

// TokenizeContext is like Tokenize but gives up once ctx is done, in which
// case the partial tree is returned with the context error.
func (h *Highlighter) TokenizeContext(ctx context.Context, text, language string) (token.Tree, error) {
	timer := telemetry.FromContext(ctx).Start("prisma.Tokenize " + language)
	defer timer.End()

	h.ensureLoaded()

	handle, ok := h.store.Lookup(language)
	if !ok {
		log.Debugf("unknown language %q", language)
	}
	return h.tokenizer.TokenizeContext(ctx, text, handle)
}

// TokenizeToJSON tokenizes text and returns the tree in its JSON exchange
// form.
func (h *Highlighter) TokenizeToJSON(text, language string) string {
	return h.Tokenize(text, language).JSON()
}

// Languages returns the registered languages in registration order.
func (h *Highlighter) Languages() []grammar.Language {
	h.ensureLoaded()
	return h.store.Languages()
}

// HasLanguage reports whether a language name or alias is registered.
func (h *Highlighter) HasLanguage(language string) bool {
	h.ensureLoaded()
	_, ok := h.store.Lookup(language)
	return ok
}

// LanguageForFile returns the language whose extensions match filename.
func (h *Highlighter) LanguageForFile(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", false
	}
	for _, lang := range h.Languages() {
		for _, e := range lang.Extensions {
			if strings.ToLower(e) == ext {
				return lang.Name, true
			}
		}
	}
	return "", false
}

// Diagnostics returns the patterns that failed to compile.
func (h *Highlighter) Diagnostics() []grammar.Diagnostic {
	h.ensureLoaded()
	return h.store.Diagnostics()
}

// Reset drops every loaded grammar, so that the next load takes effect.
func (h *Highlighter) Reset() {
	h.store.Reset()
}

// Store returns the underlying grammar store.
func (h *Highlighter) Store() *grammar.Store {
	return h.store
}
