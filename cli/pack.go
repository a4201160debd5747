package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/robinvdvleuten/prisma/loader"
)

type PackCmd struct {
	File   string `help:"Grammar bundle to pack." arg:"" type:"existingfile"`
	Output string `help:"Write the packed bundle to this file instead of stdout." short:"o" type:"path"`
}

func (cmd *PackCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, report := globals.startTelemetry(context.Background(), ctx, "pack "+displayName(cmd.File))
	defer report()

	result, err := loader.New(loader.WithFollowIncludes()).Load(runCtx, cmd.File)
	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer(nil).Render(err))
		printError(ctx.Stderr, "failed to decode grammar bundle")
		return NewCommandError(1)
	}

	packed, err := loader.Encode(result.Bundle)
	if err != nil {
		return fmt.Errorf("failed to pack bundle: %w", err)
	}

	if cmd.Output == "" {
		_, err := fmt.Fprintln(ctx.Stdout, string(packed))
		return err
	}

	if err := os.WriteFile(cmd.Output, append(packed, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.Output, err)
	}
	printSuccess(ctx.Stderr, fmt.Sprintf("Packed %d languages into %s", len(result.Bundle.Languages), pathStyle.Render(cmd.Output)))

	return nil
}
