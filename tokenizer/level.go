package tokenizer

// level is the text tokenized by one grammar invocation. Matching works on
// runes while slicing uses byte offsets into the original string, so
// sub-slices reproduce the input byte for byte.
type level struct {
	src   string
	runes []rune
	offs  []int // byte offset of every rune, plus the end offset
}

func newLevel(text string) level {
	runes := make([]rune, 0, len(text))
	offs := make([]int, 0, len(text)+1)
	for i, r := range text {
		runes = append(runes, r)
		offs = append(offs, i)
	}
	offs = append(offs, len(text))
	return level{src: text, runes: runes, offs: offs}
}

func (l level) len() int { return len(l.runes) }

// slice returns the source text of the rune range [start, end).
func (l level) slice(start, end int) string {
	return l.src[l.offs[start]:l.offs[end]]
}

// sub returns the rune range [start, end) as a level of its own.
func (l level) sub(start, end int) level {
	return level{src: l.src, runes: l.runes[start:end], offs: l.offs[start : end+1]}
}
