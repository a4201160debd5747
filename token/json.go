package token

// AppendJSON appends the exchange encoding of t to buf.
//
// A syntax node encodes as {"type":...,"alias":...,"content":...} where
// alias is omitted when empty and content is the nested array, or "" when
// the node has no children. A text leaf encodes as
// {"type":"text","content":"..."}.
func (t Tree) AppendJSON(buf []byte) []byte {
	buf = append(buf, '[')
	for i, n := range t {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = n.AppendJSON(buf)
	}
	return append(buf, ']')
}

// AppendJSON appends the exchange encoding of n to buf.
func (n Node) AppendJSON(buf []byte) []byte {
	buf = append(buf, `{"type":"`...)
	switch n.kind {
	case KindSyntax:
		buf = escapeJSON(buf, n.typ)
		buf = append(buf, '"')
		if n.alias != "" {
			buf = append(buf, `,"alias":"`...)
			buf = escapeJSON(buf, n.alias)
			buf = append(buf, '"')
		}
		buf = append(buf, `,"content":`...)
		if len(n.children) > 0 {
			buf = n.children.AppendJSON(buf)
		} else {
			buf = append(buf, `""`...)
		}
	default:
		buf = append(buf, `text","content":"`...)
		buf = escapeJSON(buf, n.value)
		buf = append(buf, '"')
	}
	return append(buf, '}')
}

// MarshalJSON implements json.Marshaler.
func (t Tree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return t.AppendJSON(make([]byte, 0, 64*len(t))), nil
}

// MarshalJSON implements json.Marshaler.
func (n Node) MarshalJSON() ([]byte, error) {
	return n.AppendJSON(nil), nil
}

// JSON returns the exchange encoding of t as a string.
func (t Tree) JSON() string {
	b, _ := t.MarshalJSON()
	return string(b)
}
