package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/robinvdvleuten/prisma/web"
)

type ServeCmd struct {
	Port  int    `help:"Port to listen on." default:"8080"`
	Host  string `help:"Address to bind to." default:"127.0.0.1"`
	Watch bool   `help:"Reload the grammar bundle when it changes." short:"w"`
}

func (cmd *ServeCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runCtx, report := globals.startTelemetry(runCtx, ctx, "serve")
	defer report()

	version := Version
	if version == "" {
		version = "dev"
	}
	commitSHA := CommitSHA
	if commitSHA == "" {
		commitSHA = "local"
	}

	server := web.NewWithVersion(cmd.Port, globals.Grammars, version, commitSHA)
	server.Host = cmd.Host
	server.WatchEnabled = cmd.Watch
	server.Options = globals.highlighterOptions()

	printInfof(ctx.Stdout, "Starting server on %s:%d", server.Host, cmd.Port)
	if globals.Grammars != "" {
		printInfof(ctx.Stdout, "Serving grammars: %s", pathStyle.Render(globals.Grammars))
	} else {
		printInfof(ctx.Stdout, "Serving built-in grammars")
	}
	if cmd.Watch && globals.Grammars == "" {
		printWarning(ctx.Stderr, "--watch has no effect without --grammars")
	}

	return server.Start(runCtx)
}
