package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/robinvdvleuten/prisma"
	"github.com/robinvdvleuten/prisma/loader"
	"github.com/robinvdvleuten/prisma/output"
	"github.com/robinvdvleuten/prisma/telemetry"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry    bool          `help:"Show timing telemetry for operations."`
	Grammars     string        `help:"Grammar bundle to load instead of the built-in grammars." env:"PRISMA_GRAMMARS" type:"path"`
	MatchTimeout time.Duration `help:"Time limit for a single pattern search." env:"PRISMA_MATCH_TIMEOUT" default:"1s"`
	MaxDepth     int           `help:"How deep nested grammars are applied." env:"PRISMA_MAX_DEPTH" default:"64"`
	Verbose      int           `help:"Increase log verbosity." short:"v" type:"counter"`
}

type Commands struct {
	Globals

	Tokenize  TokenizeCmd  `cmd:"" help:"Tokenize a source file and print the token tree."`
	Languages LanguagesCmd `cmd:"" help:"List the available languages."`
	Check     CheckCmd     `cmd:"" help:"Check that a grammar bundle decodes and compiles."`
	Pack      PackCmd      `cmd:"" help:"Pack a grammar bundle into its compressed transport form."`
	Serve     ServeCmd     `cmd:"" help:"Start a tokenizer web server."`
}

// highlighterOptions returns the options shared by every highlighter the
// commands create.
func (g *Globals) highlighterOptions() []prisma.Option {
	return []prisma.Option{
		prisma.WithMatchTimeout(g.MatchTimeout),
		prisma.WithMaxDepth(g.MaxDepth),
		prisma.WithLoaderOptions(loader.WithFollowIncludes()),
	}
}

// newHighlighter creates a highlighter with either the grammar bundle given
// by --grammars or the built-in grammars.
func (g *Globals) newHighlighter(ctx context.Context) (*prisma.Highlighter, error) {
	opts := g.highlighterOptions()
	if g.Grammars == "" {
		return prisma.New(append(opts, prisma.WithEmbeddedGrammars())...), nil
	}

	h := prisma.New(opts...)
	if _, err := h.LoadFile(ctx, g.Grammars); err != nil {
		return nil, err
	}
	return h, nil
}

// startTelemetry attaches a timing collector to ctx when --telemetry is set.
// The returned function ends the root timer and prints the report once.
func (g *Globals) startTelemetry(ctx context.Context, kctx *kong.Context, name string) (context.Context, func()) {
	if !g.Telemetry {
		return ctx, func() {}
	}

	collector := telemetry.NewTimingCollector()
	ctx = telemetry.WithCollector(ctx, collector)
	timer := collector.Start(name)

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			timer.End()
			_, _ = fmt.Fprintln(kctx.Stderr)
			collector.Report(kctx.Stderr, output.NewStyles(kctx.Stderr))
		})
	}
}

func displayName(filename string) string {
	if filename == "<stdin>" {
		return filename
	}
	return filepath.Base(filename)
}
