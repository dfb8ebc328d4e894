package blocks

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/fox-studio/site/internal/models"
)

// GalleryColumns returns the grid classes for a gallery of n items.
func GalleryColumns(n int) string {
	switch {
	case n <= 1:
		return "grid-cols-1"
	case n == 2:
		return "grid-cols-2"
	case n == 3:
		return "grid-cols-2 md:grid-cols-3"
	default:
		return "grid-cols-2 lg:grid-cols-3"
	}
}

func RenderGallery(items []models.GalleryItem) template.HTML {
	items = displayableItems(items)
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<div class="block-gallery grid gap-4 ` + GalleryColumns(len(items)) + `">`)
	for _, item := range items {
		b.WriteString(`<figure class="group relative overflow-hidden" tabindex="0">`)
		b.WriteString(`<img src="` + escape(item.URL) + `" alt="` + escape(itemAlt(item)) + `" loading="lazy"/>`)
		if caption := strings.TrimSpace(models.Deref(item.Caption)); caption != "" {
			b.WriteString(`<figcaption class="opacity-0 group-hover:opacity-100 group-focus-within:opacity-100">`)
			b.WriteString(escape(caption))
			b.WriteString(`</figcaption>`)
		}
		b.WriteString(`</figure>`)
	}
	b.WriteString(`</div>`)
	return template.HTML(b.String())
}

// displayableItems drops items whose URL is empty or not safe to embed.
func displayableItems(items []models.GalleryItem) []models.GalleryItem {
	out := make([]models.GalleryItem, 0, len(items))
	for _, item := range items {
		if u, ok := safeURL(item.URL); ok {
			item.URL = u
			out = append(out, item)
		}
	}
	return out
}

func itemAlt(item models.GalleryItem) string {
	if alt := strings.TrimSpace(models.Deref(item.Alt)); alt != "" {
		return alt
	}
	return strings.TrimSpace(models.Deref(item.Caption))
}

func itoa(i int) string { return strconv.Itoa(i) }
