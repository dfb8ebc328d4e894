// Package blocks renders article content blocks to HTML fragments.
//
// Every renderer returns an empty template.HTML when its block has nothing to
// show; missing payloads are a valid state, not an error.
package blocks

import (
	"html/template"
	"strings"

	"github.com/fox-studio/site/internal/models"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Renderer maps blocks to their per-kind renderer. It holds no per-render state.
type Renderer struct {
	logger *zap.Logger
	policy *bluemonday.Policy
}

func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{logger: logger, policy: NewTextPolicy()}
}

// Render returns the HTML for a single block, or "" when the block renders nothing.
func (r *Renderer) Render(b models.Block) template.HTML {
	switch b.BlockType {
	case models.BlockTypeText:
		return renderText(r.policy, models.Deref(b.TextContent))
	case models.BlockTypeImage:
		return RenderImage(b.ImageSource(), models.Deref(b.ImageCaption), models.Deref(b.ImageAlt))
	case models.BlockTypeQuote:
		return RenderQuote(models.Deref(b.QuoteText), models.Deref(b.QuoteAuthor))
	case models.BlockTypeCode:
		return RenderCode(models.Deref(b.CodeContent), models.Deref(b.CodeLanguage))
	case models.BlockTypeVideo:
		return RenderVideo(models.Deref(b.VideoURL), models.Deref(b.VideoCaption))
	case models.BlockTypeEquation:
		return RenderEquation(models.Deref(b.EquationContent))
	case models.BlockTypeGallery:
		return RenderGallery(b.GalleryData)
	case models.BlockTypeCarousel:
		return RenderCarousel(b.GalleryData)
	default:
		r.logger.Warn("unknown block type",
			zap.String("block_type", string(b.BlockType)),
			zap.String("block_id", b.ID),
		)
		return ""
	}
}

// RenderAll sorts blocks by order and concatenates their output.
func (r *Renderer) RenderAll(blocks []models.Block) template.HTML {
	var b strings.Builder
	for _, block := range models.SortBlocks(blocks) {
		out := r.renderSafely(block)
		if out == "" {
			continue
		}
		b.WriteString(string(out))
		b.WriteString("\n")
	}
	return template.HTML(b.String())
}

// RenderText renders a text block through the renderer's sanitizer policy.
func (r *Renderer) RenderText(content string) template.HTML {
	return renderText(r.policy, content)
}

func (r *Renderer) renderSafely(block models.Block) (out template.HTML) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("block render panicked",
				zap.String("block_type", string(block.BlockType)),
				zap.String("block_id", block.ID),
				zap.Any("panic", rec),
			)
			out = ""
		}
	}()
	return r.Render(block)
}
