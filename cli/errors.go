package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/robinvdvleuten/prisma/grammar"
	"github.com/robinvdvleuten/prisma/loader"
)

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// position is a 1-based location in the rendered source. A zero Column
// means the column is unknown.
type position struct {
	Line   int
	Column int
}

// ErrorRenderer renders errors with terminal styling and source context.
type ErrorRenderer struct {
	source []byte
}

// NewErrorRenderer creates a renderer with source content for context.
func NewErrorRenderer(source []byte) *ErrorRenderer {
	return &ErrorRenderer{source: source}
}

// Render formats a single error with styling and context.
func (r *ErrorRenderer) Render(err error) string {
	var diag grammar.Diagnostic
	if errors.As(err, &diag) {
		return r.renderDiagnostic(diag)
	}

	var defErr *grammar.DefinitionError
	if errors.As(err, &defErr) {
		if pos, ok := r.locate(defErr.Language, defErr.Token); ok {
			return r.renderWithSourceContext(pos, err.Error())
		}
		return err.Error()
	}

	var decodeErr *loader.DecodeError
	if errors.As(err, &decodeErr) {
		if pos, ok := r.decodePosition(decodeErr); ok {
			return r.renderWithSourceContext(pos, err.Error())
		}
	}

	return err.Error()
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(r.Render(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

func (r *ErrorRenderer) renderDiagnostic(diag grammar.Diagnostic) string {
	var buf strings.Builder

	if pos, ok := r.locate(diag.Language, diag.Token); ok {
		buf.WriteString(r.renderWithSourceContext(pos, diag.Error()))
	} else {
		buf.WriteString(errorStyle.Render(diag.Error()))
		buf.WriteString("\n\n")
	}

	buf.WriteString("   ")
	buf.WriteString(dimStyle.Render("pattern: " + diag.Pattern))
	buf.WriteByte('\n')

	return buf.String()
}

func (r *ErrorRenderer) renderWithSourceContext(pos position, message string) string {
	sourceLines := strings.Split(string(r.source), "\n")
	if r.source == nil || pos.Line < 1 || pos.Line > len(sourceLines) {
		return message
	}

	var buf strings.Builder

	buf.WriteString(errorStyle.Render(message))
	buf.WriteString("\n\n")

	startLine := pos.Line - 3
	endLine := pos.Line + 1

	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(sourceLines) {
		endLine = len(sourceLines) - 1
	}

	for i := startLine; i <= endLine; i++ {
		buf.WriteString("   ")
		buf.WriteString(errContextStyle.Render(sourceLines[i]))
		buf.WriteByte('\n')

		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", pos.Column-1))
			buf.WriteString(errCaretStyle.Render("^"))
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// locate finds the definition of a language, and of one of its tokens when
// tok is set, in YAML or JSON source.
func (r *ErrorRenderer) locate(language, tok string) (position, bool) {
	if r.source == nil || language == "" {
		return position{}, false
	}

	lines := strings.Split(string(r.source), "\n")
	langPos, ok := findName(lines, 0, language)
	if !ok {
		return position{}, false
	}
	if tok == "" {
		return langPos, true
	}
	if tokPos, ok := findName(lines, langPos.Line-1, tok); ok {
		return tokPos, true
	}
	return langPos, true
}

func findName(lines []string, from int, name string) (position, bool) {
	yamlForms := []string{"name: " + name, "name: '" + name + "'", `name: "` + name + `"`}
	jsonForms := []string{`"name": "` + name + `"`, `"name":"` + name + `"`}

	for i := from; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- "))

		for _, form := range yamlForms {
			if trimmed == form {
				return position{Line: i + 1, Column: strings.Index(line, "name") + 1}, true
			}
		}
		for _, form := range jsonForms {
			if idx := strings.Index(line, form); idx >= 0 {
				return position{Line: i + 1, Column: idx + 1}, true
			}
		}
	}
	return position{}, false
}

// decodePosition maps a JSON offset or a YAML line number back onto the
// source. Positions inside compressed or encoded layers are not known.
func (r *ErrorRenderer) decodePosition(err *loader.DecodeError) (position, bool) {
	if r.source == nil {
		return position{}, false
	}

	trimmed := bytes.TrimLeft(r.source, " \t\r\n")
	leading := r.source[:len(r.source)-len(trimmed)]

	switch err.Stage {
	case loader.StageJSON:
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) || len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
			return position{}, false
		}
		offset := len(leading) + int(syntaxErr.Offset)
		if offset > len(r.source) {
			offset = len(r.source)
		}
		before := r.source[:offset]
		line := bytes.Count(before, []byte("\n")) + 1
		column := offset - bytes.LastIndexByte(before, '\n')
		return position{Line: line, Column: column}, true

	case loader.StageYAML:
		line, ok := yamlErrorLine(err.Err.Error())
		if !ok {
			return position{}, false
		}
		return position{Line: line + bytes.Count(leading, []byte("\n"))}, true
	}

	return position{}, false
}

// yamlErrorLine extracts the first "line N" from a YAML error message.
func yamlErrorLine(message string) (int, bool) {
	idx := strings.Index(message, "line ")
	if idx < 0 {
		return 0, false
	}
	rest := message[idx+len("line "):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// CommandError is returned by a command that already reported its failure
// on stderr, such as check finding invalid patterns. main exits with the
// carried code without printing anything else.
type CommandError struct {
	exitCode int
}

// NewCommandError returns a CommandError that exits with code.
func NewCommandError(code int) *CommandError {
	return &CommandError{exitCode: code}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("exit status %d", e.exitCode)
}

// ExitCode returns the process exit code.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}
