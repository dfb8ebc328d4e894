package blocks

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	htmlSniffPattern = regexp.MustCompile(`(?i)<[a-z][\s\S]*>`)
	blankLinePattern = regexp.MustCompile(`\n[ \t]*\n`)
)

// NewTextPolicy returns the sanitizer used for HTML text blocks. It keeps user
// generated content markup and drops scripts, event handlers and unsafe URLs.
func NewTextPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("code", "pre", "span")
	return p
}

// LooksLikeHTML reports whether content contains a tag-opening pattern.
func LooksLikeHTML(content string) bool {
	return htmlSniffPattern.MatchString(content)
}

func renderText(policy *bluemonday.Policy, content string) template.HTML {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if LooksLikeHTML(content) {
		clean := strings.TrimSpace(policy.Sanitize(content))
		if clean == "" {
			return ""
		}
		return template.HTML(`<div class="block-text prose prose-lg max-w-none">` + clean + `</div>`)
	}

	paragraphs := SplitParagraphs(content)
	if len(paragraphs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<div class="block-text">`)
	for _, p := range paragraphs {
		lines := strings.Split(p, "\n")
		for i, line := range lines {
			lines[i] = escape(line)
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br/>"))
		b.WriteString("</p>")
	}
	b.WriteString(`</div>`)
	return template.HTML(b.String())
}

// SplitParagraphs splits plain text on blank lines, dropping empty paragraphs.
func SplitParagraphs(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	parts := blankLinePattern.Split(content, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, "\n")
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
