package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/prisma/grammar"
	"github.com/robinvdvleuten/prisma/output"
)

type LanguagesCmd struct {
	JSON bool `help:"Print the languages as JSON."`
}

type languageInfo struct {
	Name       string   `json:"name"`
	Aliases    []string `json:"aliases"`
	Extensions []string `json:"extensions"`
}

func (cmd *LanguagesCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, report := globals.startTelemetry(context.Background(), ctx, "languages")
	defer report()

	h, err := globals.newHighlighter(runCtx)
	if err != nil {
		return err
	}

	languages := h.Languages()
	if cmd.JSON {
		return writeLanguagesJSON(ctx.Stdout, languages)
	}
	return writeLanguagesTable(ctx.Stdout, languages, output.NewStyles(ctx.Stdout))
}

func writeLanguagesJSON(w io.Writer, languages []grammar.Language) error {
	infos := make([]languageInfo, 0, len(languages))
	for _, lang := range languages {
		info := languageInfo{Name: lang.Name, Aliases: lang.Aliases, Extensions: lang.Extensions}
		if info.Aliases == nil {
			info.Aliases = []string{}
		}
		if info.Extensions == nil {
			info.Extensions = []string{}
		}
		infos = append(infos, info)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(infos)
}

// writeLanguagesTable writes one language per line with its aliases and
// extensions in aligned columns.
func writeLanguagesTable(w io.Writer, languages []grammar.Language, styles *output.Styles) error {
	nameWidth, aliasWidth := len("NAME"), len("ALIASES")
	for _, lang := range languages {
		nameWidth = max(nameWidth, runewidth.StringWidth(lang.Name))
		aliasWidth = max(aliasWidth, runewidth.StringWidth(strings.Join(lang.Aliases, ", ")))
	}

	header := runewidth.FillRight("NAME", nameWidth) + "  " + runewidth.FillRight("ALIASES", aliasWidth) + "  EXTENSIONS"
	if _, err := fmt.Fprintln(w, styles.Dim(header)); err != nil {
		return err
	}

	for _, lang := range languages {
		line := styles.Language(runewidth.FillRight(lang.Name, nameWidth)) + "  " +
			runewidth.FillRight(strings.Join(lang.Aliases, ", "), aliasWidth) + "  " +
			strings.Join(lang.Extensions, " ")
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
