package grammar

import (
	"encoding/json"
	"testing"

	"github.com/alecthomas/assert/v2"
	"gopkg.in/yaml.v3"
)

const shorthandYAML = `
languages:
  - name: demo
    aliases: [dm]
    extensions: [.demo]
    tokens:
      - name: comment
        patterns: '#.*'
      - name: string
        patterns:
          pattern: '"[^"]*"'
          greedy: true
          inside: demo
      - name: keyword
        patterns:
          - '\b(?:if|else)\b'
          - pattern: '(\.)\w+'
            lookbehind: true
            alias: property
            inside:
              tokens:
                - name: word
                  patterns: '\w+'
`

const shorthandJSON = `{
  "languages": [{
    "name": "demo",
    "aliases": ["dm"],
    "extensions": [".demo"],
    "tokens": [
      {"name": "comment", "patterns": "#.*"},
      {"name": "string", "patterns": {"pattern": "\"[^\"]*\"", "greedy": true, "inside": "demo"}},
      {"name": "keyword", "patterns": [
        "\\b(?:if|else)\\b",
        {"pattern": "(\\.)\\w+", "lookbehind": true, "alias": "property",
         "inside": {"tokens": [{"name": "word", "patterns": "\\w+"}]}}
      ]}
    ]
  }]
}`

func expectedShorthandBundle() Bundle {
	return Bundle{Languages: []Definition{{
		Name:       "demo",
		Aliases:    []string{"dm"},
		Extensions: []string{".demo"},
		Tokens: []TokenDefinition{
			{Name: "comment", Patterns: Patterns{{Pattern: `#.*`}}},
			{Name: "string", Patterns: Patterns{{
				Pattern: `"[^"]*"`,
				Greedy:  true,
				Inside:  &InsideDefinition{Language: "demo"},
			}}},
			{Name: "keyword", Patterns: Patterns{
				{Pattern: `\b(?:if|else)\b`},
				{
					Pattern:    `(\.)\w+`,
					Lookbehind: true,
					Alias:      "property",
					Inside: &InsideDefinition{Tokens: []TokenDefinition{
						{Name: "word", Patterns: Patterns{{Pattern: `\w+`}}},
					}},
				},
			}},
		},
	}}}
}

func TestDefinitionShorthands(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		var b Bundle
		assert.NoError(t, yaml.Unmarshal([]byte(shorthandYAML), &b))
		assert.Equal(t, expectedShorthandBundle(), b)
	})

	t.Run("json", func(t *testing.T) {
		var b Bundle
		assert.NoError(t, json.Unmarshal([]byte(shorthandJSON), &b))
		assert.Equal(t, expectedShorthandBundle(), b)
	})
}

func TestDefinitionJSONRoundTrip(t *testing.T) {
	want := expectedShorthandBundle()

	data, err := json.Marshal(want)
	assert.NoError(t, err)

	var got Bundle
	assert.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}

func TestDefinitionRejectsMalformedPatterns(t *testing.T) {
	var b Bundle
	err := yaml.Unmarshal([]byte("languages:\n  - name: x\n    tokens:\n      - name: t\n        patterns:\n          pattern: [1, 2]\n"), &b)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"languages":[{"name":"x","tokens":[{"name":"t","patterns":42}]}]}`), &b)
	assert.Error(t, err)
}

func TestDefinitionsRegister(t *testing.T) {
	store := NewStore()
	handles, err := store.Register(expectedShorthandBundle().Languages...)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(store.Diagnostics()))

	g, _ := store.Grammar(handles[0])
	assert.Equal(t, []string{"comment", "string", "keyword"}, []string{
		g.Groups()[0].Name(), g.Groups()[1].Name(), g.Groups()[2].Name(),
	})
}
