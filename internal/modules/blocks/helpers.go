package blocks

import (
	"html/template"
	"net/url"
	"strings"
)

var escape = template.HTMLEscapeString

// safeURL accepts relative and http(s) URLs. Anything else is refused.
func safeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return raw, true
	default:
		return "", false
	}
}

func writeCaption(b *strings.Builder, caption string) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return
	}
	b.WriteString(`<figcaption class="block-caption">`)
	b.WriteString(escape(caption))
	b.WriteString(`</figcaption>`)
}
