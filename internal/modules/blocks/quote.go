package blocks

import (
	"html/template"
	"strings"
)

func RenderQuote(text, author string) template.HTML {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<figure class="block-quote"><blockquote><p>`)
	b.WriteString(escape(text))
	b.WriteString(`</p></blockquote>`)
	if author = strings.TrimSpace(author); author != "" {
		b.WriteString(`<figcaption class="quote-author">&mdash; `)
		b.WriteString(escape(author))
		b.WriteString(`</figcaption>`)
	}
	b.WriteString(`</figure>`)
	return template.HTML(b.String())
}
