// Package loader reads grammar bundles from files and byte buffers.
//
// A bundle is YAML or JSON. It may additionally be gzip compressed and
// base64 encoded, which is the compact form grammars are shipped in; each
// layer is detected automatically. A bundle file may include other bundle
// files, which are loaded and merged when includes are followed.
//
// Example usage:
//
//	// Load a single bundle
//	result, err := loader.New().Load(ctx, "grammars.yaml")
//
//	// Load a bundle and everything it includes
//	result, err := loader.New(loader.WithFollowIncludes()).Load(ctx, "grammars.yaml")
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robinvdvleuten/prisma/grammar"
	"github.com/robinvdvleuten/prisma/telemetry"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("prisma.loader")

// DefaultMaxSize limits how large a decompressed bundle may grow.
const DefaultMaxSize = 64 << 20

// Loader reads grammar bundles.
//
// Configure the loader using functional options passed to New:
//
//	loader := New(WithFollowIncludes())
type Loader struct {
	// FollowIncludes loads and merges bundles named by Include. When false,
	// only the given file is read and its Include list is kept.
	FollowIncludes bool

	// MaxSize bounds the size of decompressed data.
	MaxSize int64
}

// Option configures how bundles are loaded.
type Option func(*Loader)

// WithFollowIncludes makes the loader resolve Include entries, relative
// to the directory of the including file, and merge their languages.
func WithFollowIncludes() Option {
	return func(l *Loader) {
		l.FollowIncludes = true
	}
}

// WithMaxSize bounds the size of decompressed data.
func WithMaxSize(n int64) Option {
	return func(l *Loader) {
		l.MaxSize = n
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{
		MaxSize: DefaultMaxSize,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Result is a loaded bundle together with the files it was read from.
type Result struct {
	Bundle *grammar.Bundle

	// Root is the absolute path of the loaded file, empty for LoadBytes.
	Root string

	// Includes are the absolute paths of the included files, in load order.
	Includes []string
}

// Load reads a bundle file.
func (l *Loader) Load(ctx context.Context, filename string) (*Result, error) {
	timer := telemetry.FromContext(ctx).Start("loader.Load " + filepath.Base(filename))
	defer timer.End()

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	if !l.FollowIncludes {
		bundle, err := l.readFile(filename)
		if err != nil {
			return nil, err
		}
		return &Result{Bundle: bundle, Root: absPath}, nil
	}

	state := &loaderState{
		loader:  l,
		visited: make(map[string]bool),
		timer:   timer,
	}
	bundle, err := state.loadRecursive(ctx, absPath)
	if err != nil {
		return nil, err
	}

	return &Result{Bundle: bundle, Root: absPath, Includes: state.includes}, nil
}

// LoadBytes decodes a bundle from memory. Include entries are never
// followed since there is no directory to resolve them against.
func (l *Loader) LoadBytes(ctx context.Context, data []byte) (*Result, error) {
	timer := telemetry.FromContext(ctx).Start("loader.LoadBytes")
	defer timer.End()

	bundle, err := l.decode(data)
	if err != nil {
		return nil, err
	}
	return &Result{Bundle: bundle}, nil
}

func (l *Loader) readFile(filename string) (*grammar.Bundle, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	bundle, err := l.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	log.Debugf("loaded %d languages from %s", len(bundle.Languages), filename)
	return bundle, nil
}

// loaderState tracks state during recursive loading.
type loaderState struct {
	loader   *Loader
	visited  map[string]bool
	includes []string
	timer    telemetry.Timer
}

// loadRecursive loads a bundle and everything it includes. Files that were
// already loaded contribute nothing, which also breaks include cycles.
func (s *loaderState) loadRecursive(ctx context.Context, absPath string) (*grammar.Bundle, error) {
	if s.visited[absPath] {
		return &grammar.Bundle{}, nil
	}
	s.visited[absPath] = true

	bundle, err := s.loader.readFile(absPath)
	if err != nil {
		return nil, err
	}
	if len(bundle.Include) == 0 {
		return bundle, nil
	}

	baseDir := filepath.Dir(absPath)
	included := make([]*grammar.Bundle, 0, len(bundle.Include))

	for _, inc := range bundle.Include {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		includePath := inc
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, includePath)
		}
		if !s.visited[includePath] {
			s.includes = append(s.includes, includePath)
		}

		timer := s.timer.Child("include " + filepath.Base(includePath))
		b, err := s.loadRecursive(ctx, includePath)
		timer.End()
		if err != nil {
			return nil, fmt.Errorf("in file %s: %w", absPath, err)
		}
		included = append(included, b)
	}

	return mergeBundles(bundle, included...), nil
}

// mergeBundles appends the languages of included bundles after the
// languages of main.
func mergeBundles(main *grammar.Bundle, included ...*grammar.Bundle) *grammar.Bundle {
	result := &grammar.Bundle{
		Languages: make([]grammar.Definition, 0, len(main.Languages)),
	}
	result.Languages = append(result.Languages, main.Languages...)
	for _, inc := range included {
		result.Languages = append(result.Languages, inc.Languages...)
	}
	return result
}
