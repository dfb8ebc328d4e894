package article

import (
	"html/template"
	"strings"

	"github.com/fox-studio/site/internal/models"
)

const (
	katexStylesheet = `<link href="https://lf9-cdn-tos.bytecdntp.com/cdn/expire-1-M/KaTeX/0.15.2/katex.min.css" rel="stylesheet" />`
	katexScript     = `<script src="https://lf6-cdn-tos.bytecdntp.com/cdn/expire-1-M/KaTeX/0.15.2/katex.min.js" defer></script>`
)

var pageScripts = []string{
	`window.addEventListener('load', () => { document.querySelectorAll('.katex-render').forEach(el => { window.katex.render(el.textContent, el, { throwOnError: false, displayMode: el.classList.contains('katex-display') }) }) })`,
	`document.addEventListener('click', e => { const btn = e.target.closest('[data-copy-code]'); if (!btn) return; const code = btn.closest('.block-code').querySelector('code'); navigator.clipboard.writeText(code.textContent).then(() => { btn.textContent = 'Copied!'; clearTimeout(btn._t); btn._t = setTimeout(() => { btn.textContent = 'Copy' }, 2000) }).catch(() => {}) })`,
	`document.querySelectorAll('figure.block-image img').forEach(img => { img.addEventListener('load', () => { img.closest('figure').dataset.state = 'loaded' }, { once: true }); img.addEventListener('error', () => img.closest('figure').remove(), { once: true }) })`,
}

// DocumentOptions carries the page chrome around the rendered blocks.
type DocumentOptions struct {
	SiteName string
	Lang     string
}

// RenderDocument wraps rendered blocks in a standalone HTML page.
func RenderDocument(article *models.Article, body template.HTML, options DocumentOptions) string {
	var b strings.Builder
	b.Grow(4096 + len(body))

	title := template.HTMLEscapeString(strings.TrimSpace(article.Title))
	if title == "" {
		title = "Untitled"
	}
	if site := strings.TrimSpace(options.SiteName); site != "" {
		title += " | " + template.HTMLEscapeString(site)
	}
	lang := options.Lang
	if lang == "" {
		lang = "en"
	}

	b.WriteString("<!DOCTYPE html>\n<html lang=\"")
	b.WriteString(template.HTMLEscapeString(lang))
	b.WriteString("\">\n  <head>\n")
	b.WriteString("    <meta charset=\"UTF-8\" />\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\" />\n")
	if summary := strings.TrimSpace(article.Summary); summary != "" {
		b.WriteString("    <meta name=\"description\" content=\"")
		b.WriteString(template.HTMLEscapeString(summary))
		b.WriteString("\" />\n")
	}
	b.WriteString("    <link rel=\"manifest\" href=\"/manifest.json\" />\n")
	b.WriteString("    <link rel=\"icon\" href=\"/favicon.ico\" />\n")
	b.WriteString("    ")
	b.WriteString(katexStylesheet)
	b.WriteString("\n    <title>")
	b.WriteString(title)
	b.WriteString("</title>\n  </head>\n\n")

	b.WriteString("  <body>\n    <article class=\"article\" data-article-id=\"")
	b.WriteString(template.HTMLEscapeString(article.ID))
	b.WriteString("\">\n      <header>\n        <h1>")
	b.WriteString(template.HTMLEscapeString(strings.TrimSpace(article.Title)))
	b.WriteString("</h1>\n")
	if !article.CreatedAt.IsZero() {
		b.WriteString("        <time datetime=\"")
		b.WriteString(article.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
		b.WriteString("\">")
		b.WriteString(article.CreatedAt.Format("January 2, 2006"))
		b.WriteString("</time>\n")
	}
	b.WriteString("      </header>\n      <div class=\"article-blocks\">\n")
	b.WriteString(string(body))
	b.WriteString("      </div>\n    </article>\n  </body>\n\n  ")
	b.WriteString(katexScript)
	b.WriteString("\n  <script>\n    ")
	b.WriteString(strings.Join(pageScripts, "\n    "))
	b.WriteString("\n  </script>\n</html>")
	return b.String()
}

// RenderErrorDocument is the page served when an article cannot be shown.
func RenderErrorDocument(message string) string {
	msg := template.HTMLEscapeString(message)
	return "<!DOCTYPE html>\n<html lang=\"en\">\n  <head>\n    <meta charset=\"UTF-8\" />\n    <title>" + msg +
		"</title>\n  </head>\n  <body>\n    <p style=\"margin: 20px; text-align: center; opacity: 0.8;\">" + msg +
		"</p>\n  </body>\n</html>"
}
