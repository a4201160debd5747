package grammar

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Bundle is a set of language definitions loaded together. Include lists
// further bundle files, relative to the including file.
type Bundle struct {
	Include   []string     `yaml:"include,omitempty" json:"include,omitempty"`
	Languages []Definition `yaml:"languages" json:"languages"`
}

// Definition is the in-memory form of one language grammar, as produced by
// a loader. Token order is significant.
type Definition struct {
	Name       string            `yaml:"name" json:"name"`
	Aliases    []string          `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Extensions []string          `yaml:"extensions,omitempty" json:"extensions,omitempty"`
	Tokens     []TokenDefinition `yaml:"tokens" json:"tokens"`
}

// TokenDefinition is one named token group.
type TokenDefinition struct {
	Name     string   `yaml:"name" json:"name"`
	Patterns Patterns `yaml:"patterns" json:"patterns"`
}

// Patterns lists the alternatives of a token group. In YAML and JSON a
// single pattern may be written without the surrounding list.
type Patterns []PatternDefinition

// PatternDefinition describes one pattern. A bare string is shorthand for
// a definition with only Pattern set.
type PatternDefinition struct {
	Pattern    string            `yaml:"pattern" json:"pattern"`
	Flags      string            `yaml:"flags,omitempty" json:"flags,omitempty"`
	Lookbehind bool              `yaml:"lookbehind,omitempty" json:"lookbehind,omitempty"`
	Greedy     bool              `yaml:"greedy,omitempty" json:"greedy,omitempty"`
	Alias      string            `yaml:"alias,omitempty" json:"alias,omitempty"`
	Inside     *InsideDefinition `yaml:"inside,omitempty" json:"inside,omitempty"`
}

// InsideDefinition selects the grammar used to tokenize the content of a
// match: either a registered language by name or an inline token list.
// A bare string is shorthand for Language.
type InsideDefinition struct {
	Language string            `yaml:"language,omitempty" json:"language,omitempty"`
	Tokens   []TokenDefinition `yaml:"tokens,omitempty" json:"tokens,omitempty"`
}

// UnmarshalYAML accepts a sequence, a single mapping or a single string.
func (p *Patterns) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var list []PatternDefinition
		if err := value.Decode(&list); err != nil {
			return err
		}
		*p = list
		return nil
	}
	var single PatternDefinition
	if err := value.Decode(&single); err != nil {
		return err
	}
	*p = Patterns{single}
	return nil
}

// UnmarshalJSON accepts an array, a single object or a single string.
func (p *Patterns) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var list []PatternDefinition
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*p = list
		return nil
	}
	var single PatternDefinition
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*p = Patterns{single}
	return nil
}

// UnmarshalYAML implements the string shorthand.
func (p *PatternDefinition) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*p = PatternDefinition{Pattern: value.Value}
		return nil
	}
	type plain PatternDefinition
	var v plain
	if err := value.Decode(&v); err != nil {
		return err
	}
	*p = PatternDefinition(v)
	return nil
}

// UnmarshalJSON implements the string shorthand.
func (p *PatternDefinition) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*p = PatternDefinition{Pattern: s}
		return nil
	}
	type plain PatternDefinition
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PatternDefinition(v)
	return nil
}

// UnmarshalYAML implements the language-name shorthand.
func (d *InsideDefinition) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*d = InsideDefinition{Language: value.Value}
		return nil
	}
	type plain InsideDefinition
	var v plain
	if err := value.Decode(&v); err != nil {
		return err
	}
	*d = InsideDefinition(v)
	return nil
}

// UnmarshalJSON implements the language-name shorthand.
func (d *InsideDefinition) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*d = InsideDefinition{Language: s}
		return nil
	}
	type plain InsideDefinition
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = InsideDefinition(v)
	return nil
}
