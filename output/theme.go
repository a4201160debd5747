package output

// TokenStyle is how one token type is rendered.
type TokenStyle struct {
	Color  string // ANSI index or #rrggbb
	Bold   bool
	Italic bool
	Faint  bool
}

// Theme maps token types and aliases to styles.
type Theme map[string]TokenStyle

// DefaultTheme returns a theme for the token names common to most
// grammars.
func DefaultTheme() Theme {
	comment := TokenStyle{Color: "8", Italic: true}
	literal := TokenStyle{Color: "5"}
	str := TokenStyle{Color: "2"}
	keyword := TokenStyle{Color: "4", Bold: true}
	function := TokenStyle{Color: "6"}
	variable := TokenStyle{Color: "3"}

	return Theme{
		"comment":     comment,
		"prolog":      comment,
		"doctype":     comment,
		"cdata":       comment,
		"punctuation": {Faint: true},
		"property":    literal,
		"tag":         literal,
		"boolean":     literal,
		"number":      literal,
		"constant":    literal,
		"symbol":      literal,
		"string":      str,
		"char":        str,
		"attr-value":  str,
		"selector":    str,
		"attr-name":   str,
		"builtin":     function,
		"keyword":     keyword,
		"atrule":      keyword,
		"function":    function,
		"class-name":  {Color: "6", Bold: true},
		"operator":    {Color: "7"},
		"regex":       variable,
		"variable":    variable,
		"important":   {Color: "3", Bold: true},
		"escape":      {Color: "3"},
	}
}

func (t Theme) lookup(typ, alias string) (TokenStyle, bool) {
	if alias != "" {
		if style, ok := t[alias]; ok {
			return style, true
		}
	}
	style, ok := t[typ]
	return style, ok
}
