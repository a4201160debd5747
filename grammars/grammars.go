// Package grammars embeds the default grammar bundle.
package grammars

import (
	_ "embed"
	"fmt"

	"github.com/robinvdvleuten/prisma/grammar"
	"github.com/robinvdvleuten/prisma/loader"
)

//go:embed languages.yaml
var languages []byte

// Data returns the raw embedded bundle.
func Data() []byte {
	return languages
}

// Bundle decodes the embedded bundle.
func Bundle() (*grammar.Bundle, error) {
	bundle, err := loader.Decode(languages)
	if err != nil {
		return nil, fmt.Errorf("embedded grammars: %w", err)
	}
	return bundle, nil
}
