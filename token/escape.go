package token

import "strings"

const hexDigits = "0123456789abcdef"

// escapeJSON escapes s for use inside a JSON string literal.
// Quote, backslash and the short control escapes are written in their
// two-character form; remaining control characters use \u00XX.
func escapeJSON(buf []byte, s string) []byte {
	// Quick check if escaping is needed
	if !strings.ContainsFunc(s, needsEscape) {
		return append(buf, s...)
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if c < 0x20 {
				buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
				continue
			}
			buf = append(buf, c)
		}
	}
	return buf
}

func needsEscape(r rune) bool {
	return r < 0x20 || r == '"' || r == '\\'
}
