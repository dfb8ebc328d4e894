package blocks

import (
	"strings"
	"testing"

	"github.com/fox-studio/site/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestImageViewLifecycle(t *testing.T) {
	v := NewImageView("/a.png", "Cap", "")
	out := string(v.Render())
	assert.Contains(t, out, "image-placeholder")
	assert.Contains(t, out, `alt="Cap"`)

	v.OnLoad()
	assert.Equal(t, ImageLoaded, v.State())
	assert.NotContains(t, string(v.Render()), "image-placeholder")

	assert.True(t, v.Open())
	assert.Contains(t, string(v.Render()), `role="dialog"`)
	v.Close()
	assert.NotContains(t, string(v.Render()), `role="dialog"`)

	v.OnError()
	assert.Empty(t, v.Render())
	assert.False(t, v.Open())
}

func TestRenderImageRejectsUnsafeSource(t *testing.T) {
	assert.Empty(t, RenderImage("", "c", "a"))
	assert.Empty(t, RenderImage("javascript:alert(1)", "", ""))
	assert.Contains(t, string(RenderImage(`/x.png"onload="y`, "", "")), `&#34;onload=&#34;y`)
}

func TestRenderQuote(t *testing.T) {
	assert.Empty(t, RenderQuote(" ", "Someone"))
	out := string(RenderQuote("Ship it", ""))
	assert.Contains(t, out, "Ship it")
	assert.NotContains(t, out, "quote-author")
	assert.Contains(t, string(RenderQuote("Ship it", "Ada")), "Ada")
}

func TestRenderEquation(t *testing.T) {
	assert.Empty(t, RenderEquation(""))
	assert.Contains(t, string(RenderEquation(`a < b`)), `katex-display`)
	assert.Contains(t, string(RenderEquation(`a < b`)), `a &lt; b`)
}

func TestGalleryColumns(t *testing.T) {
	assert.Equal(t, "grid-cols-1", GalleryColumns(1))
	assert.Equal(t, "grid-cols-2", GalleryColumns(2))
	assert.Equal(t, "grid-cols-2 md:grid-cols-3", GalleryColumns(3))
	assert.Equal(t, "grid-cols-2 lg:grid-cols-3", GalleryColumns(4))
	assert.Equal(t, "grid-cols-2 lg:grid-cols-3", GalleryColumns(9))
}

func TestRenderGallery(t *testing.T) {
	assert.Empty(t, RenderGallery(nil))
	assert.Empty(t, RenderGallery([]models.GalleryItem{{URL: ""}}))

	out := string(RenderGallery([]models.GalleryItem{
		{URL: "/1.png", Caption: strPtr("First")},
		{URL: "/2.png"},
		{URL: "/3.png", Alt: strPtr("Third")},
	}))
	assert.Contains(t, out, "md:grid-cols-3")
	assert.Equal(t, 3, strings.Count(out, "<figure"))
	assert.Contains(t, out, "group-hover:opacity-100")
	assert.Contains(t, out, `alt="Third"`)
}

func TestCarouselWrapsAround(t *testing.T) {
	c := NewCarousel(3)
	assert.Equal(t, 2, c.Prev(), "previous from the first slide goes to the last")
	assert.Equal(t, 0, c.Next(), "next from the last slide goes to the first")
	assert.Equal(t, 1, c.Next())

	assert.True(t, c.GoTo(2))
	assert.Equal(t, 0, c.Next())
	assert.False(t, c.GoTo(3))
	assert.False(t, c.GoTo(-1))
	assert.Equal(t, 0, c.Index())

	empty := NewCarousel(0)
	assert.Equal(t, 0, empty.Next())
	assert.Equal(t, 0, empty.Prev())
}

func TestRenderCarousel(t *testing.T) {
	assert.Empty(t, RenderCarousel(nil))

	items := []models.GalleryItem{{URL: "/1.png"}, {URL: "/2.png"}, {URL: "/3.png"}}
	out := string(RenderCarousel(items))
	assert.Equal(t, 3, strings.Count(out, "data-slide-to="))
	assert.Equal(t, 1, strings.Count(out, `aria-current="true"`))
	assert.Equal(t, 2, strings.Count(out, " hidden>"))
	assert.Contains(t, out, "data-carousel-prev")
	assert.Contains(t, out, "data-carousel-next")

	state := NewCarousel(len(items))
	state.Prev()
	out = string(renderCarouselAt(items, state))
	assert.Contains(t, out, `data-index="2"`)
	assert.Contains(t, out, `data-slide-to="2" aria-current="true"`)
}
