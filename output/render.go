package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/prisma/token"
)

// RenderANSI writes the text of tree colored by its tokens. Text inside
// nested tokens takes the style of the innermost token the theme knows.
func RenderANSI(w io.Writer, tree token.Tree, styles *Styles) error {
	bw := bufio.NewWriter(w)
	renderNodes(bw, tree, styles, "", "")
	return bw.Flush()
}

func renderNodes(w *bufio.Writer, tree token.Tree, styles *Styles, typ, alias string) {
	for _, n := range tree {
		if n.IsText() {
			if typ == "" {
				_, _ = w.WriteString(n.Value())
			} else {
				_, _ = w.WriteString(styles.Token(typ, alias, n.Value()))
			}
			continue
		}

		innerType, innerAlias := typ, alias
		if _, ok := styles.theme.lookup(n.Type(), n.Alias()); ok {
			innerType, innerAlias = n.Type(), n.Alias()
		}
		renderNodes(w, n.Children(), styles, innerType, innerAlias)
	}
}

// OutlineWidth is the widest token content shown by WriteOutline.
const OutlineWidth = 60

// WriteOutline writes one line per node: its type, indented by depth, and
// its quoted content. Types are padded to a common display width.
func WriteOutline(w io.Writer, tree token.Tree) error {
	type row struct {
		label   string
		content string
	}

	var rows []row
	width := 0
	tree.Walk(func(n token.Node, depth int) bool {
		label := strings.Repeat("  ", depth) + n.Type()
		if alias := n.Alias(); alias != "" {
			label += " (" + alias + ")"
		}
		content := ""
		if n.IsText() {
			content = strconv.Quote(runewidth.Truncate(n.Value(), OutlineWidth, "…"))
		}
		if lw := runewidth.StringWidth(label); lw > width {
			width = lw
		}
		rows = append(rows, row{label: label, content: content})
		return true
	})

	bw := bufio.NewWriter(w)
	for _, r := range rows {
		if r.content == "" {
			_, _ = fmt.Fprintln(bw, r.label)
			continue
		}
		_, _ = fmt.Fprintf(bw, "%s  %s\n", runewidth.FillRight(r.label, width), r.content)
	}
	return bw.Flush()
}
