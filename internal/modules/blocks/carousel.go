package blocks

import (
	"html/template"
	"strings"

	"github.com/fox-studio/site/internal/models"
)

// Carousel is the slide position of a carousel block. Navigation wraps in
// both directions.
type Carousel struct {
	count int
	index int
}

func NewCarousel(count int) *Carousel {
	if count < 0 {
		count = 0
	}
	return &Carousel{count: count}
}

func (c *Carousel) Len() int   { return c.count }
func (c *Carousel) Index() int { return c.index }

func (c *Carousel) Next() int {
	if c.count > 0 {
		c.index = (c.index + 1) % c.count
	}
	return c.index
}

func (c *Carousel) Prev() int {
	if c.count > 0 {
		c.index = (c.index - 1 + c.count) % c.count
	}
	return c.index
}

// GoTo jumps to slide i. Out-of-range indexes are ignored.
func (c *Carousel) GoTo(i int) bool {
	if i < 0 || i >= c.count {
		return false
	}
	c.index = i
	return true
}

func RenderCarousel(items []models.GalleryItem) template.HTML {
	items = displayableItems(items)
	if len(items) == 0 {
		return ""
	}
	return renderCarouselAt(items, NewCarousel(len(items)))
}

func renderCarouselAt(items []models.GalleryItem, state *Carousel) template.HTML {
	var b strings.Builder
	b.WriteString(`<div class="block-carousel relative" data-carousel data-count="` + itoa(len(items)) + `" data-index="` + itoa(state.Index()) + `">`)
	b.WriteString(`<div class="carousel-track">`)
	for i, item := range items {
		hidden := ""
		if i != state.Index() {
			hidden = " hidden"
		}
		b.WriteString(`<figure class="carousel-slide" data-slide="` + itoa(i) + `"` + hidden + `>`)
		b.WriteString(`<img src="` + escape(item.URL) + `" alt="` + escape(itemAlt(item)) + `" loading="lazy"/>`)
		writeCaption(&b, models.Deref(item.Caption))
		b.WriteString(`</figure>`)
	}
	b.WriteString(`</div>`)
	b.WriteString(`<button type="button" class="carousel-prev" data-carousel-prev aria-label="Previous slide">&lsaquo;</button>`)
	b.WriteString(`<button type="button" class="carousel-next" data-carousel-next aria-label="Next slide">&rsaquo;</button>`)
	b.WriteString(`<div class="carousel-indicators">`)
	for i := range items {
		current := "false"
		if i == state.Index() {
			current = "true"
		}
		b.WriteString(`<button type="button" data-slide-to="` + itoa(i) + `" aria-current="` + current + `" aria-label="Go to slide ` + itoa(i+1) + `"></button>`)
	}
	b.WriteString(`</div></div>`)
	return template.HTML(b.String())
}
