package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/robinvdvleuten/prisma/grammar"
	"github.com/robinvdvleuten/prisma/loader"
	"github.com/robinvdvleuten/prisma/telemetry"
)

type CheckCmd struct {
	File FileOrStdin `help:"Grammar bundle to check (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx, report := globals.startTelemetry(context.Background(), ctx, "check "+displayName(cmd.File.Filename))
	defer report()

	source, err := cmd.File.Read()
	if err != nil {
		return err
	}
	renderer := NewErrorRenderer(source)

	ldr := loader.New(loader.WithFollowIncludes())
	var result *loader.Result
	if cmd.File.IsStdin() {
		result, err = ldr.LoadBytes(runCtx, source)
	} else {
		result, err = ldr.Load(runCtx, cmd.File.Filename)
	}
	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "failed to decode grammar bundle")
		return NewCommandError(1)
	}

	timer := telemetry.FromContext(runCtx).Start(fmt.Sprintf("grammar.Register (%d languages)", len(result.Bundle.Languages)))
	store := grammar.NewStore(grammar.WithMatchTimeout(globals.MatchTimeout))
	_, err = store.Register(result.Bundle.Languages...)
	timer.End()

	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "invalid grammar definition")
		return NewCommandError(1)
	}

	if diags := store.Diagnostics(); len(diags) > 0 {
		errs := make([]error, len(diags))
		for i, d := range diags {
			errs[i] = d
		}
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.RenderAll(errs))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, fmt.Sprintf("%d pattern(s) failed to compile", len(diags)))
		return NewCommandError(1)
	}

	for _, include := range result.Includes {
		printInfof(ctx.Stdout, "Included %s", pathStyle.Render(include))
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("Check passed (%d languages)", len(store.Languages())))

	return nil
}
