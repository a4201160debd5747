// Package output renders token trees and status messages for terminals.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// Styles provides styled output helpers for the CLI.
type Styles struct {
	output *termenv.Output
	theme  Theme
	opts   []termenv.OutputOption
}

// StylesOption configures Styles.
type StylesOption func(*Styles)

// WithProfile forces a color profile instead of detecting one from the
// writer.
func WithProfile(p termenv.Profile) StylesOption {
	return func(s *Styles) {
		s.opts = append(s.opts, termenv.WithProfile(p))
	}
}

// WithTheme replaces the token color theme.
func WithTheme(theme Theme) StylesOption {
	return func(s *Styles) {
		s.theme = theme
	}
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer, opts ...StylesOption) *Styles {
	s := &Styles{theme: DefaultTheme()}
	for _, opt := range opts {
		opt(s)
	}
	s.output = termenv.NewOutput(w, s.opts...)
	return s
}

// Success returns a styled success string (green + bold).
func (s *Styles) Success(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("2")).
		Bold().
		String()
}

// Error returns a styled error string (red + bold).
func (s *Styles) Error(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("1")).
		Bold().
		String()
}

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("6")).
		String()
}

// Language returns a styled language name (yellow).
func (s *Styles) Language(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("3")).
		String()
}

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).
		Bold().
		String()
}

// Dim returns dimmed text (for secondary information).
func (s *Styles) Dim(text string) string {
	return s.output.String(text).
		Faint().
		String()
}

// Warning returns a styled warning (yellow + bold).
func (s *Styles) Warning(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("3")).
		Bold().
		String()
}

// Timing returns a styled timing string. Slow operations are red, others
// dimmed.
func (s *Styles) Timing(text string, isSlowOperation bool) string {
	if isSlowOperation {
		return s.output.String(text).
			Foreground(s.output.Color("1")).
			String()
	}
	return s.Dim(text)
}

// Token styles text classified as the given token type and alias. The
// alias takes precedence when the theme knows it.
func (s *Styles) Token(typ, alias, text string) string {
	style, ok := s.theme.lookup(typ, alias)
	if !ok {
		return text
	}
	out := s.output.String(text)
	if style.Color != "" {
		out = out.Foreground(s.output.Color(style.Color))
	}
	if style.Bold {
		out = out.Bold()
	}
	if style.Italic {
		out = out.Italic()
	}
	if style.Faint {
		out = out.Faint()
	}
	return out.String()
}

// Output returns the underlying termenv Output for advanced usage.
func (s *Styles) Output() *termenv.Output {
	return s.output
}
