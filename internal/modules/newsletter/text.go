package newsletter

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Figure: true, atom.Figcaption: true,
	atom.Table: true, atom.Tr: true, atom.Hr: true,
}

// PlainText derives the text alternative of an HTML fragment. Links keep
// their target in parentheses and list items get a leading dash.
func PlainText(fragment string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, n := range nodes {
		writeText(&b, n)
	}
	return collapseBlankLines(b.String()), nil
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeText(b, c)
		}
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Iframe:
		return
	case atom.Br:
		b.WriteString("\n")
		return
	case atom.Img:
		if alt := attr(n, "alt"); alt != "" {
			b.WriteString("[" + alt + "]")
		}
		return
	case atom.Li:
		b.WriteString("\n- ")
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeText(b, c)
		}
		b.WriteString("\n")
		return
	}

	if blockElements[n.DataAtom] {
		b.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if n.DataAtom == atom.A {
		if href := attr(n, "href"); href != "" && !strings.HasPrefix(href, "#") {
			b.WriteString(" (" + href + ")")
		}
	}
	if blockElements[n.DataAtom] {
		b.WriteString("\n")
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
