package grammars

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/prisma/grammar"
	"github.com/robinvdvleuten/prisma/token"
	"github.com/robinvdvleuten/prisma/tokenizer"
)

func load(t *testing.T) *grammar.Store {
	t.Helper()
	bundle, err := Bundle()
	assert.NoError(t, err)

	store := grammar.NewStore()
	_, err = store.Register(bundle.Languages...)
	assert.NoError(t, err)
	return store
}

func leaf(typ, text string) token.Node {
	return token.Syntax(typ, "", token.Text(text))
}

func TestBundleCompilesCleanly(t *testing.T) {
	store := load(t)
	assert.Equal(t, 0, len(store.Diagnostics()))

	names := []string{}
	for _, l := range store.Languages() {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"clike", "javascript", "json", "python", "go"}, names)

	for _, alias := range []string{"js", "py", "golang", "webmanifest"} {
		_, ok := store.Lookup(alias)
		assert.True(t, ok, alias)
	}
}

func TestEmbeddedGrammars(t *testing.T) {
	store := load(t)
	tz := tokenizer.New(store)

	tests := []struct {
		language string
		input    string
		want     token.Tree
	}{
		{
			language: "json",
			input:    `{"a": 1}`,
			want: token.Tree{
				leaf("punctuation", "{"),
				leaf("property", `"a"`),
				leaf("operator", ":"),
				token.Text(" "),
				leaf("number", "1"),
				leaf("punctuation", "}"),
			},
		},
		{
			language: "go",
			input:    "func main() {}",
			want: token.Tree{
				leaf("keyword", "func"),
				token.Text(" "),
				leaf("function", "main"),
				leaf("punctuation", "("),
				leaf("punctuation", ")"),
				token.Text(" "),
				leaf("punctuation", "{"),
				leaf("punctuation", "}"),
			},
		},
		{
			language: "py",
			input:    "# hi\nx = 1",
			want: token.Tree{
				leaf("comment", "# hi"),
				token.Text("\nx "),
				leaf("operator", "="),
				token.Text(" "),
				leaf("number", "1"),
			},
		},
		{
			language: "js",
			input:    `let x = "s";`,
			want: token.Tree{
				leaf("keyword", "let"),
				token.Text(" x "),
				leaf("operator", "="),
				token.Text(" "),
				leaf("string", `"s"`),
				leaf("punctuation", ";"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			h, ok := store.Lookup(tt.language)
			assert.True(t, ok)

			got := tz.Tokenize(tt.input, h)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmbeddedGrammarsRoundTrip(t *testing.T) {
	store := load(t)
	tz := tokenizer.New(store)

	inputs := map[string]string{
		"javascript": "const s = `a ${b + `c${d}`} e`; // done\nlet re = /[a-z]+/gi;",
		"python":     "@app.route('/')\ndef f(x):\n    return f'{x!r:>10}' + \"\"\"doc\"\"\"",
		"go":         "package main\n\nimport \"fmt\"\n\nfunc main() { fmt.Println('x', `raw`, 0x1F) }",
		"clike":      "if (a >= 1.5e3) { /* note */ return foo(\"s\\\"q\"); }",
		"json":       `{"k": [true, null, -1.2e5, "v\"w"]}`,
	}

	for language, input := range inputs {
		t.Run(language, func(t *testing.T) {
			h, ok := store.Lookup(language)
			assert.True(t, ok)
			assert.Equal(t, input, tz.Tokenize(input, h).Text())
		})
	}
}
