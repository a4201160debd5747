package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
	"github.com/robinvdvleuten/prisma/loader"
)

const digitsBundle = `languages:
  - name: digits
    aliases: [dg]
    extensions: [.dg]
    tokens:
      - name: number
        patterns: '\d+'
`

const brokenBundle = `languages:
  - name: broken
    tokens:
      - name: bad
        patterns: '(['
`

type result struct {
	stdout string
	stderr string
	err    error
}

// runCLI parses args and runs the selected command with captured output.
func runCLI(t *testing.T, args ...string) result {
	t.Helper()

	var cli Commands
	var stdout, stderr bytes.Buffer
	parser, err := kong.New(&cli,
		kong.Name("prisma"),
		kong.Writers(&stdout, &stderr),
		kong.Bind(&cli.Globals),
		kong.Exit(func(int) {}),
	)
	assert.NoError(t, err)

	ctx, err := parser.Parse(args)
	if err != nil {
		return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
	}
	err = ctx.Run()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr), "expected a CommandError, got %v", err)
	return cmdErr.ExitCode()
}

func TestTokenizeCmd(t *testing.T) {
	dir := t.TempDir()
	source := `{"a": 1}`
	file := writeFile(t, dir, "data.json", source)

	t.Run("JSON", func(t *testing.T) {
		res := runCLI(t, "tokenize", file, "--format", "json")
		assert.NoError(t, res.err)
		assert.Equal(t,
			`[{"type":"punctuation","content":[{"type":"text","content":"{"}]},`+
				`{"type":"property","content":[{"type":"text","content":"\"a\""}]},`+
				`{"type":"operator","content":[{"type":"text","content":":"}]},`+
				`{"type":"text","content":" "},`+
				`{"type":"number","content":[{"type":"text","content":"1"}]},`+
				`{"type":"punctuation","content":[{"type":"text","content":"}"}]}]`+"\n",
			res.stdout)
	})

	t.Run("Text", func(t *testing.T) {
		res := runCLI(t, "tokenize", file, "-f", "text")
		assert.NoError(t, res.err)
		assert.Equal(t, source, res.stdout)
	})

	t.Run("ANSIWithoutTerminal", func(t *testing.T) {
		res := runCLI(t, "tokenize", file)
		assert.NoError(t, res.err)
		assert.Equal(t, source, res.stdout)
	})

	t.Run("Outline", func(t *testing.T) {
		res := runCLI(t, "tokenize", file, "-f", "outline")
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "property")
		assert.Contains(t, res.stdout, `"\"a\""`)
	})

	t.Run("Repr", func(t *testing.T) {
		res := runCLI(t, "tokenize", file, "-f", "repr")
		assert.NoError(t, res.err)
		assert.NotEqual(t, "", res.stdout)
	})

	t.Run("InvalidFormat", func(t *testing.T) {
		res := runCLI(t, "tokenize", file, "-f", "html")
		assert.Error(t, res.err)
	})
}

func TestTokenizeCmdLanguage(t *testing.T) {
	dir := t.TempDir()

	t.Run("ExplicitLanguageWinsOverExtension", func(t *testing.T) {
		file := writeFile(t, dir, "data.json", "true")
		res := runCLI(t, "tokenize", file, "-l", "js", "-f", "json")
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, `"type":"boolean"`)
	})

	t.Run("UnknownLanguageWarns", func(t *testing.T) {
		file := writeFile(t, dir, "plain.txt", "hello")
		res := runCLI(t, "tokenize", file, "-l", "cobol", "-f", "json")
		assert.NoError(t, res.err)
		assert.Equal(t, `[{"type":"text","content":"hello"}]`+"\n", res.stdout)
		assert.Contains(t, res.stderr, `unknown language "cobol"`)
	})

	t.Run("CannotInfer", func(t *testing.T) {
		file := writeFile(t, dir, "notes.unknown", "hello")
		res := runCLI(t, "tokenize", file)
		assert.IsError(t, res.err, ErrNoLanguage)
	})
}

func TestTokenizeCmdCustomGrammars(t *testing.T) {
	dir := t.TempDir()
	bundle := writeFile(t, dir, "grammars.yaml", digitsBundle)
	file := writeFile(t, dir, "values.dg", "a 12")

	res := runCLI(t, "--grammars", bundle, "tokenize", file, "-f", "json")
	assert.NoError(t, res.err)
	assert.Equal(t,
		`[{"type":"text","content":"a "},{"type":"number","content":[{"type":"text","content":"12"}]}]`+"\n",
		res.stdout)

	t.Run("BrokenBundle", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.yaml", "languages: [")
		res := runCLI(t, "--grammars", bad, "tokenize", file)
		assert.Equal(t, 1, exitCode(t, res.err))
		assert.Contains(t, res.stderr, "failed to load grammars")
	})
}

func TestTokenizeCmdTelemetry(t *testing.T) {
	file := writeFile(t, t.TempDir(), "data.json", "[]")

	res := runCLI(t, "--telemetry", "tokenize", file, "-f", "text")
	assert.NoError(t, res.err)
	assert.Contains(t, res.stderr, "tokenize data.json")
	assert.Contains(t, res.stderr, "prisma.Tokenize json")
}

func TestLanguagesCmd(t *testing.T) {
	t.Run("Table", func(t *testing.T) {
		res := runCLI(t, "languages")
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "NAME")
		assert.Contains(t, res.stdout, "javascript  js")
		assert.Contains(t, res.stdout, ".json .webmanifest")
	})

	t.Run("JSON", func(t *testing.T) {
		res := runCLI(t, "languages", "--json")
		assert.NoError(t, res.err)

		var infos []languageInfo
		assert.NoError(t, json.Unmarshal([]byte(res.stdout), &infos))

		names := []string{}
		for _, info := range infos {
			names = append(names, info.Name)
		}
		assert.Equal(t, []string{"clike", "javascript", "json", "python", "go"}, names)
		assert.Equal(t, []string{}, infos[0].Aliases)
		assert.Equal(t, []string{"golang"}, infos[4].Aliases)
	})

	t.Run("CustomGrammars", func(t *testing.T) {
		bundle := writeFile(t, t.TempDir(), "grammars.yaml", digitsBundle)
		res := runCLI(t, "--grammars", bundle, "languages", "--json")
		assert.NoError(t, res.err)

		var infos []languageInfo
		assert.NoError(t, json.Unmarshal([]byte(res.stdout), &infos))
		assert.Equal(t, []languageInfo{{Name: "digits", Aliases: []string{"dg"}, Extensions: []string{".dg"}}}, infos)
	})
}

func TestCheckCmd(t *testing.T) {
	dir := t.TempDir()

	t.Run("Valid", func(t *testing.T) {
		file := writeFile(t, dir, "valid.yaml", digitsBundle)
		res := runCLI(t, "check", file)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Check passed (1 languages)")
	})

	t.Run("WithIncludes", func(t *testing.T) {
		writeFile(t, dir, "digits.yaml", digitsBundle)
		file := writeFile(t, dir, "main.yaml", "include: [digits.yaml]\nlanguages:\n  - name: words\n    tokens:\n      - name: word\n        patterns: '[a-z]+'\n")
		res := runCLI(t, "check", file)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Included")
		assert.Contains(t, res.stdout, "digits.yaml")
		assert.Contains(t, res.stdout, "Check passed (2 languages)")
	})

	t.Run("BrokenPattern", func(t *testing.T) {
		file := writeFile(t, dir, "broken.yaml", brokenBundle)
		res := runCLI(t, "check", file)
		assert.Equal(t, 1, exitCode(t, res.err))
		assert.Contains(t, res.stderr, `broken: token "bad" pattern #0`)
		assert.Contains(t, res.stderr, "pattern: ([")
		assert.Contains(t, res.stderr, "1 pattern(s) failed to compile")
	})

	t.Run("UnknownInside", func(t *testing.T) {
		file := writeFile(t, dir, "inside.yaml", `languages:
  - name: outer
    tokens:
      - name: nested
        patterns:
          - pattern: 'x'
            inside: nowhere
`)
		res := runCLI(t, "check", file)
		assert.Equal(t, 1, exitCode(t, res.err))
		assert.Contains(t, res.stderr, "unknown language")
		assert.Contains(t, res.stderr, "invalid grammar definition")
	})

	t.Run("DecodeError", func(t *testing.T) {
		file := writeFile(t, dir, "bad.json", `{"languages": [}`)
		res := runCLI(t, "check", file)
		assert.Equal(t, 1, exitCode(t, res.err))
		assert.Contains(t, res.stderr, "decode json")
		assert.Contains(t, res.stderr, "failed to decode grammar bundle")
	})
}

func TestPackCmd(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "grammars.yaml", digitsBundle)

	want, err := loader.Decode([]byte(digitsBundle))
	assert.NoError(t, err)

	t.Run("Stdout", func(t *testing.T) {
		res := runCLI(t, "pack", file)
		assert.NoError(t, res.err)

		got, err := loader.Decode([]byte(res.stdout))
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("OutputFile", func(t *testing.T) {
		out := filepath.Join(dir, "grammars.pack")
		res := runCLI(t, "pack", file, "-o", out)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stderr, "Packed 1 languages")

		data, err := os.ReadFile(out)
		assert.NoError(t, err)
		got, err := loader.Decode(data)
		assert.NoError(t, err)
		assert.Equal(t, want, got)

		// The packed form works as a grammar bundle.
		source := writeFile(t, dir, "values.dg", "7")
		res = runCLI(t, "--grammars", out, "tokenize", source, "-f", "json")
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, `"type":"number"`)
	})

	t.Run("MissingFile", func(t *testing.T) {
		res := runCLI(t, "pack", filepath.Join(dir, "missing.yaml"))
		assert.Error(t, res.err)
	})
}
