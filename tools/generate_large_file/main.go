// Large JavaScript File Generator
//
// This tool generates a large JavaScript file for performance testing and
// profiling of the tokenizer. It mixes comments, strings, template literals,
// regex literals and nested functions to exercise greedy patterns and
// nested grammars.
//
// Usage:
//
//	go run main.go > large.js
//	go run main.go 20000000 > large.js  # Specify target size in bytes
//	prisma tokenize large.js --telemetry -f json > /dev/null
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

const (
	defaultTargetSize = 10 * 1024 * 1024 // 10MB
)

var (
	identifiers = []string{
		"account", "buffer", "config", "cursor", "entry", "handler",
		"index", "ledger", "offset", "payload", "queue", "result",
		"source", "state", "token", "value", "window", "writer",
	}

	classNames = []string{
		"Parser", "Scanner", "Renderer", "Session", "Registry", "Stream",
	}

	words = []string{
		"alpha", "beta", "gamma", "delta", "hello", "world",
		"quoted \\\"text\\\"", "tab\\tseparated", "ünïcödé", "日本語",
	}
)

func main() {
	targetSize := defaultTargetSize
	if len(os.Args) > 1 {
		if size, err := strconv.Atoi(os.Args[1]); err == nil {
			targetSize = size
		}
	}

	w := bufio.NewWriter(os.Stdout)
	defer func() { _ = w.Flush() }()

	bytesWritten := 0
	count := 0

	for bytesWritten < targetSize {
		var output string

		switch rand.Intn(6) {
		case 0:
			output = generateComment()
		case 1:
			output = generateFunction(count)
		case 2:
			output = generateClass(count)
		case 3:
			output = generateTemplate(count)
		case 4:
			output = generateRegexUse(count)
		default:
			output = generateObject(count)
		}

		_, _ = w.WriteString(output)
		bytesWritten += len(output)
		count++
	}

	_ = w.Flush()
	fmt.Fprintf(os.Stderr, "Generated %d blocks (%d bytes)\n", count, bytesWritten)
}

func pick(list []string) string {
	return list[rand.Intn(len(list))]
}

func generateComment() string {
	if rand.Intn(2) == 0 {
		return fmt.Sprintf("// %s %s %s\n", pick(words), pick(words), pick(words))
	}
	return fmt.Sprintf("/*\n * %s\n * %s\n */\n", pick(words), pick(words))
}

func generateFunction(n int) string {
	name := pick(identifiers)
	arg := pick(identifiers)
	return fmt.Sprintf(`function %s%d(%s, ...rest) {
  if (%s === null || typeof %s !== "object") {
    return %d + rest.length * 0x%x;
  }
  const inner = (x) => x?.%s ?? '%s';
  return inner(%s);
}

`, name, n, arg, arg, arg, rand.Intn(1000), rand.Intn(4096), pick(identifiers), pick(words), arg)
}

func generateClass(n int) string {
	class := pick(classNames)
	field := pick(identifiers)
	return fmt.Sprintf(`class %s%d extends %s {
  #%s = %d.%d;
  static create() { return new %s%d(); }
  async *entries() {
    for await (const item of this.#%s) yield item;
  }
}

`, class, n, pick(classNames), field, rand.Intn(100), rand.Intn(100), class, n, field)
}

func generateTemplate(n int) string {
	return fmt.Sprintf("const message%d = `%s ${%s.map((v) => `${v} %s`).join(\", \")} %s`;\n\n",
		n, pick(words), pick(identifiers), pick(words), pick(words))
}

func generateRegexUse(n int) string {
	patterns := []string{`/\d+(?:\.\d+)?/g`, `/^[a-z_$][\w$]*$/i`, `/[/\]]+/`, `/"(?:[^"\\]|\\.)*"/`}
	return fmt.Sprintf("const match%d = %s.exec(%s) || %s.test('%s');\n\n",
		n, pick(patterns), pick(identifiers), pick(patterns), pick(words))
}

func generateObject(n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "export const %s%d = {\n", pick(identifiers), n)
	for i := 0; i < 2+rand.Intn(4); i++ {
		fmt.Fprintf(&b, "  %s: [%d, %q, true, null],\n", pick(identifiers), rand.Intn(1e6), pick(identifiers))
	}
	b.WriteString("};\n\n")
	return b.String()
}
