package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestFileOrStdin(t *testing.T) {
	t.Run("Stdin", func(t *testing.T) {
		var f FileOrStdin
		assert.NoError(t, f.readStdin(strings.NewReader("let x = 1;")))

		assert.True(t, f.IsStdin())
		assert.Equal(t, "<stdin>", f.GetAbsoluteFilename())

		data, err := f.Read()
		assert.NoError(t, err)
		assert.Equal(t, "let x = 1;", string(data))
	})

	t.Run("FileIsReadOnEveryCall", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "main.go")
		assert.NoError(t, os.WriteFile(path, []byte("one"), 0600))

		f := FileOrStdin{Filename: path}
		assert.False(t, f.IsStdin())
		assert.True(t, filepath.IsAbs(f.GetAbsoluteFilename()))

		data, err := f.Read()
		assert.NoError(t, err)
		assert.Equal(t, "one", string(data))

		assert.NoError(t, os.WriteFile(path, []byte("two"), 0600))
		data, err = f.Read()
		assert.NoError(t, err)
		assert.Equal(t, "two", string(data))
	})

	t.Run("MissingFile", func(t *testing.T) {
		f := FileOrStdin{Filename: filepath.Join(t.TempDir(), "missing")}
		_, err := f.Read()
		assert.Error(t, err)
	})
}

func TestPickLanguageWithoutTerminal(t *testing.T) {
	if isTerminal(os.Stdin) {
		t.Skip("stdin is a terminal")
	}
	_, ok, err := pickLanguage([]string{"go", "json"})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "<stdin>", displayName("<stdin>"))
	assert.Equal(t, "main.go", displayName(filepath.Join("src", "main.go")))
}
