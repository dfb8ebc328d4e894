// Package newsletter composes and mails campaigns written in markdown or
// taken from a published article.
package newsletter

import (
	"bytes"
	"errors"
	"html/template"
	"strings"

	"github.com/fox-studio/site/internal/models"
	"github.com/fox-studio/site/internal/modules/blocks"
	pkgmail "github.com/fox-studio/site/internal/pkg/mail"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var errEmptySubject = errors.New("subject is required")

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

// Campaign is a composed newsletter ready to send.
type Campaign struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	// Body is the sanitized content fragment; HTML is the full email.
	Body string `json:"body"`
	HTML string `json:"html"`
	Text string `json:"text"`
}

// Composer turns markdown or articles into campaigns.
type Composer struct {
	policy   *bluemonday.Policy
	renderer *blocks.Renderer
	siteName string
	siteURL  string
}

func NewComposer(renderer *blocks.Renderer, siteName, siteURL string) *Composer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("code", "pre", "span", "div", "figure")
	return &Composer{
		policy:   policy,
		renderer: renderer,
		siteName: siteName,
		siteURL:  strings.TrimRight(siteURL, "/"),
	}
}

// Compose renders markdown into a sanitized campaign with a text alternative.
func (c *Composer) Compose(subject, markdown string) (*Campaign, error) {
	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(strings.TrimSpace(markdown)), &out); err != nil {
		return nil, err
	}
	return c.build(subject, out.String(), "")
}

// ComposeArticle builds a campaign from an article's rendered blocks.
func (c *Composer) ComposeArticle(article *models.Article) (*Campaign, error) {
	subject := strings.TrimSpace(article.Title)
	body := string(c.renderer.RenderAll(article.Blocks))
	detail := ""
	if c.siteURL != "" && article.Slug != "" {
		detail = c.siteURL + "/articles/" + article.Slug
	}
	return c.build(subject, body, detail)
}

func (c *Composer) build(subject, rawHTML, detailURL string) (*Campaign, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, errEmptySubject
	}
	body := c.policy.Sanitize(rawHTML)
	text, err := PlainText(body)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	email, err := pkgmail.RenderNewsletter(pkgmail.NewsletterData{
		SiteName:   c.siteName,
		Subject:    subject,
		Body:       template.HTML(body),
		DetailURL:  detailURL,
		CampaignID: id,
	})
	if err != nil {
		return nil, err
	}
	if detailURL != "" {
		text += "\n\nRead on the site: " + detailURL
	}
	return &Campaign{ID: id, Subject: subject, Body: body, HTML: email, Text: text}, nil
}
