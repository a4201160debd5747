package grammar

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyName is returned for a language or token group without a name.
	ErrEmptyName = errors.New("empty name")

	// ErrDuplicateLanguage is returned when a name or alias is already taken.
	ErrDuplicateLanguage = errors.New("language already registered")

	// ErrUnknownLanguage is returned when an inside reference names a
	// language that is neither registered nor part of the same call.
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrAmbiguousInside is returned when an inside definition names a
	// language and lists inline tokens at the same time.
	ErrAmbiguousInside = errors.New("inside sets both language and tokens")
)

// DefinitionError reports a structurally invalid definition. Registration
// fails as a whole when one is found.
type DefinitionError struct {
	Language string
	Token    string // empty when the error concerns the language itself
	Err      error
}

func (e *DefinitionError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("language %q: %v", e.Language, e.Err)
	}
	return fmt.Sprintf("language %q, token %q: %v", e.Language, e.Token, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// Diagnostic records a pattern that failed to compile. The pattern was
// replaced by one that never matches; registration still succeeded.
type Diagnostic struct {
	Language string `json:"language"`
	Token    string `json:"token"`
	Index    int    `json:"index"`
	Pattern  string `json:"pattern"`
	Err      error  `json:"-"`
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: token %q pattern #%d: %v", d.Language, d.Token, d.Index, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// Message returns the compile error text.
func (d Diagnostic) Message() string {
	if d.Err == nil {
		return ""
	}
	return d.Err.Error()
}
