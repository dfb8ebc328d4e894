package blocks

import (
	"html/template"
	"net/url"
	"regexp"
	"strings"
)

const (
	youtubeEmbedBase = "https://www.youtube.com/embed/"
	vimeoEmbedBase   = "https://player.vimeo.com/video/"
)

var (
	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	vimeoIDPattern = regexp.MustCompile(`^\d+$`)
)

// NormalizeVideoURL turns YouTube and Vimeo page links into their embed URL.
// Other URLs are assumed embeddable and returned unchanged.
func NormalizeVideoURL(raw string) string {
	u, err := url.Parse(raw)
	if err == nil && u.Scheme == "" && u.Host == "" {
		// Bare "youtu.be/abc" style links.
		u, err = url.Parse("https://" + raw)
	}
	if err != nil || (u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https") {
		return raw
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch strings.ToLower(u.Hostname()) {
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		if id := youtubeID(u, segments); videoIDPattern.MatchString(id) {
			return youtubeEmbedBase + id
		}
	case "youtu.be":
		if len(segments) > 0 && videoIDPattern.MatchString(segments[0]) {
			return youtubeEmbedBase + segments[0]
		}
	case "vimeo.com", "www.vimeo.com":
		if len(segments) > 0 && vimeoIDPattern.MatchString(segments[0]) {
			return vimeoEmbedBase + segments[0]
		}
	case "player.vimeo.com":
		if len(segments) == 2 && segments[0] == "video" && vimeoIDPattern.MatchString(segments[1]) {
			return vimeoEmbedBase + segments[1]
		}
	}
	return raw
}

func youtubeID(u *url.URL, segments []string) string {
	if len(segments) == 1 && segments[0] == "watch" {
		return u.Query().Get("v")
	}
	if len(segments) == 2 && (segments[0] == "embed" || segments[0] == "v") {
		return segments[1]
	}
	return ""
}

func RenderVideo(rawURL, caption string) template.HTML {
	if strings.TrimSpace(rawURL) == "" {
		return ""
	}
	src, ok := safeURL(NormalizeVideoURL(strings.TrimSpace(rawURL)))
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<figure class="block-video"><div class="aspect-video">`)
	b.WriteString(`<iframe src="` + escape(src) + `" title="Embedded video" loading="lazy" `)
	b.WriteString(`allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" allowfullscreen></iframe>`)
	b.WriteString(`</div>`)
	writeCaption(&b, caption)
	b.WriteString(`</figure>`)
	return template.HTML(b.String())
}
