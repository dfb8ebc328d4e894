package blocks

import (
	"html/template"
	"strings"
)

// RenderEquation emits display-mode LaTeX for the KaTeX script loaded by the page.
func RenderEquation(latex string) template.HTML {
	latex = strings.TrimSpace(latex)
	if latex == "" {
		return ""
	}
	return template.HTML(`<div class="block-equation"><div class="katex-render katex-display" data-display="true">` +
		escape(latex) + `</div></div>`)
}
