package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"
	"github.com/fsnotify/fsnotify"
	"github.com/robinvdvleuten/prisma"
	"github.com/robinvdvleuten/prisma/output"
	"github.com/robinvdvleuten/prisma/token"
	"golang.org/x/exp/slices"
)

// ErrNoLanguage is returned when the language cannot be inferred.
var ErrNoLanguage = errors.New("cannot infer language, use --language")

const watchDebounce = 100 * time.Millisecond

type TokenizeCmd struct {
	File     FileOrStdin `help:"Source file to tokenize (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Language string      `help:"Language name or alias. Inferred from the file extension when omitted." short:"l"`
	Format   string      `help:"Output format (${enum})." enum:"ansi,json,outline,text,repr" default:"ansi" short:"f"`
	Watch    bool        `help:"Tokenize again whenever the file changes." short:"w"`
}

func (cmd *TokenizeCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}
	if cmd.Watch && cmd.File.IsStdin() {
		return errors.New("--watch needs a file")
	}

	runCtx, report := globals.startTelemetry(context.Background(), ctx, "tokenize "+displayName(cmd.File.Filename))
	defer report()

	h, err := globals.newHighlighter(runCtx)
	if err != nil {
		renderer := NewErrorRenderer(nil)
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
		printError(ctx.Stderr, "failed to load grammars")
		return NewCommandError(1)
	}

	language, err := cmd.resolveLanguage(ctx.Stderr, h, isTerminalWriter(ctx.Stdout))
	if err != nil {
		return err
	}

	if err := cmd.tokenize(runCtx, ctx.Stdout, h, language); err != nil {
		return err
	}
	if !cmd.Watch {
		return nil
	}

	report()
	watchCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cmd.watch(watchCtx, ctx.Stdout, ctx.Stderr, h, language)
}

// resolveLanguage picks the language from --language, the file extension
// or, when interactive, by asking.
func (cmd *TokenizeCmd) resolveLanguage(stderr io.Writer, h *prisma.Highlighter, interactive bool) (string, error) {
	if cmd.Language != "" {
		if !h.HasLanguage(cmd.Language) {
			printWarning(stderr, fmt.Sprintf("unknown language %q, output is not highlighted", cmd.Language))
		}
		return cmd.Language, nil
	}

	if !cmd.File.IsStdin() {
		if language, ok := h.LanguageForFile(cmd.File.Filename); ok {
			return language, nil
		}
	}

	if !interactive {
		return "", ErrNoLanguage
	}

	var names []string
	for _, lang := range h.Languages() {
		names = append(names, lang.Name)
	}
	slices.Sort(names)

	language, ok, err := pickLanguage(names)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoLanguage
	}
	return language, nil
}

func (cmd *TokenizeCmd) tokenize(ctx context.Context, w io.Writer, h *prisma.Highlighter, language string) error {
	source, err := cmd.File.Read()
	if err != nil {
		return err
	}

	tree, err := h.TokenizeContext(ctx, string(source), language)
	if err != nil {
		return err
	}
	return cmd.render(w, tree)
}

func (cmd *TokenizeCmd) render(w io.Writer, tree token.Tree) error {
	switch cmd.Format {
	case "json":
		_, err := fmt.Fprintln(w, tree.JSON())
		return err
	case "outline":
		return output.WriteOutline(w, tree)
	case "text":
		_, err := io.WriteString(w, tree.Text())
		return err
	case "repr":
		repr.New(w).Println(tree)
		return nil
	default:
		return output.RenderANSI(w, tree, output.NewStyles(w))
	}
}

// watch tokenizes the file again after every change until ctx is done.
func (cmd *TokenizeCmd) watch(ctx context.Context, stdout, stderr io.Writer, h *prisma.Highlighter, language string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	filename := cmd.File.GetAbsoluteFilename()
	if err := watcher.Add(filename); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filename, err)
	}
	printInfof(stderr, "Watching %s", pathStyle.Render(filename))

	styles := output.NewStyles(stdout)
	changed := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			// Editors that save atomically replace the file.
			_ = watcher.Add(filename)

			if isTerminalWriter(stdout) {
				styles.Output().ClearScreen()
			}
			if err := cmd.tokenize(ctx, stdout, h, language); err != nil {
				printError(stderr, err.Error())
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printWarning(stderr, fmt.Sprintf("file watcher error: %v", err))
		}
	}
}
