package prisma

import (
	"strings"
	"testing"
)

const benchJS = `// Greets everyone.
function greet(names, ...rest) {
  const re = /^[a-z_$][\w$]*$/i;
  return names.filter((n) => re.test(n)).map((n) => ` + "`hello ${n}!`" + `).join(", ");
}

class Greeter extends Base {
  #count = 0;
  static create() { return new Greeter(); }
}
`

const benchJSON = `{"name": "prisma", "version": 1.5, "tags": ["a", "b"], "nested": {"ok": true, "none": null}}
`

func BenchmarkTokenizeJavaScript(b *testing.B) {
	h := New(WithEmbeddedGrammars())
	input := strings.Repeat(benchJS, 50)

	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = h.Tokenize(input, "javascript")
	}
}

func BenchmarkTokenizeJSON(b *testing.B) {
	h := New(WithEmbeddedGrammars())
	input := strings.Repeat(benchJSON, 200)

	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = h.TokenizeToJSON(input, "json")
	}
}
