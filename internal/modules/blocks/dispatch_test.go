package blocks

import (
	"strings"
	"testing"

	"github.com/fox-studio/site/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/net/html"
)

func strPtr(s string) *string { return &s }

func sampleBlock(kind models.BlockType) models.Block {
	b := models.Block{ID: "b-" + string(kind), BlockType: kind}
	items := []models.GalleryItem{
		{URL: "/img/1.png", Caption: strPtr("one")},
		{URL: "/img/2.png"},
	}
	switch kind {
	case models.BlockTypeText:
		b.TextContent = strPtr("Hello")
	case models.BlockTypeImage:
		b.ImageURL = strPtr("/img/cover.png")
	case models.BlockTypeQuote:
		b.QuoteText = strPtr("Stay hungry")
	case models.BlockTypeCode:
		b.CodeContent = strPtr("fmt.Println(1)")
	case models.BlockTypeVideo:
		b.VideoURL = strPtr("https://youtu.be/abc123")
	case models.BlockTypeEquation:
		b.EquationContent = strPtr(`e^{i\pi}+1=0`)
	case models.BlockTypeGallery, models.BlockTypeCarousel:
		b.GalleryData = items
	}
	return b
}

func newObservedRenderer() (*Renderer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return NewRenderer(zap.New(core)), logs
}

func TestRenderCoversEveryKnownKind(t *testing.T) {
	r, logs := newObservedRenderer()
	for _, kind := range models.BlockTypes() {
		t.Run(string(kind), func(t *testing.T) {
			out := string(r.Render(sampleBlock(kind)))
			require.NotEmpty(t, out)
			assert.Contains(t, out, `class="block-`+string(kind))
		})
	}
	assert.Zero(t, logs.Len(), "no known kind may fall through to the default arm")
}

func TestRenderUnknownKindRendersNothing(t *testing.T) {
	r, logs := newObservedRenderer()

	var out string
	assert.NotPanics(t, func() {
		out = string(r.Render(models.Block{ID: "x", BlockType: "hologram"}))
	})
	assert.Empty(t, out)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "unknown block type", entry.Message)
	assert.Equal(t, "hologram", entry.ContextMap()["block_type"])
}

func TestRenderImageUsesFirstNonNullSource(t *testing.T) {
	r, _ := newObservedRenderer()

	out := string(r.Render(models.Block{
		BlockType: models.BlockTypeImage,
		ImageURL:  strPtr("A"),
		Image:     strPtr("B"),
	}))
	assert.Contains(t, out, `src="A"`)
	assert.NotContains(t, out, `src="B"`)

	assert.Empty(t, r.Render(models.Block{BlockType: models.BlockTypeImage}))
}

func TestRenderAllSortsAndSkipsEmpty(t *testing.T) {
	r, _ := newObservedRenderer()
	blocks := []models.Block{
		{ID: "3", Order: 3, BlockType: models.BlockTypeQuote, QuoteText: strPtr("third")},
		{ID: "1", Order: 1, BlockType: models.BlockTypeText, TextContent: strPtr("first")},
		{ID: "2", Order: 2, BlockType: models.BlockTypeImage},
		{ID: "2b", Order: 2, BlockType: "mystery"},
		{ID: "1b", Order: 1, BlockType: models.BlockTypeText, TextContent: strPtr("second")},
	}
	out := string(r.RenderAll(blocks))

	first := strings.Index(out, "first")
	second := strings.Index(out, "second")
	third := strings.Index(out, "third")
	require.True(t, first >= 0 && second >= 0 && third >= 0, out)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
	assert.NotContains(t, out, "block-image")

	_, err := html.Parse(strings.NewReader(out))
	assert.NoError(t, err)
}
