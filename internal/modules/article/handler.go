package article

import (
	"errors"
	"net/http"

	"github.com/fox-studio/site/internal/middleware"
	"github.com/fox-studio/site/internal/models"
	"github.com/fox-studio/site/internal/modules/blocks"
	"github.com/fox-studio/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const maxPreviewBlocks = 500

type Handler struct {
	source   Source
	renderer *blocks.Renderer
	rdb      *redis.Client
	options  DocumentOptions
	logger   *zap.Logger

	unavailable func(*gin.Context) bool
}

func NewHandler(source Source, renderer *blocks.Renderer, rdb *redis.Client, options DocumentOptions, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{source: source, renderer: renderer, rdb: rdb, options: options, logger: logger}
}

// OnUnavailable sets the handler tried before the error page when the backend
// cannot be reached. It reports whether it wrote a response.
func (h *Handler) OnUnavailable(fn func(*gin.Context) bool) *Handler {
	h.unavailable = fn
	return h
}

// RegisterRoutes mounts the article page behind pageCache and the admin
// preview and purge endpoints behind authMW.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, pageCache gin.HandlerFunc) {
	rg.GET("/articles/:slug", pageCache, h.page)

	rg.POST("/api/render/blocks", authMW, h.renderBlocks)
	rg.DELETE("/admin/cache/pages", authMW, h.purgePages)
}

func (h *Handler) page(c *gin.Context) {
	slug := c.Param("slug")
	article, err := h.source.GetArticle(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.errorPage(c, http.StatusNotFound, "Article not found")
			return
		}
		h.logger.Error("load article failed", zap.String("slug", slug), zap.Error(err))
		if h.unavailable != nil && h.unavailable(c) {
			return
		}
		h.errorPage(c, http.StatusBadGateway, "Article is temporarily unavailable")
		return
	}

	body := h.renderer.RenderAll(article.Blocks)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(RenderDocument(article, body, h.options)))
}

func (h *Handler) errorPage(c *gin.Context, status int, message string) {
	c.Header("Cache-Control", "no-store")
	c.Data(status, "text/html; charset=utf-8", []byte(RenderErrorDocument(message)))
	c.Abort()
}

type renderBlocksRequest struct {
	Blocks []models.Block `json:"blocks" binding:"required"`
}

type renderBlocksResponse struct {
	HTML  string `json:"html"`
	Count int    `json:"count"`
}

func (h *Handler) renderBlocks(c *gin.Context) {
	var req renderBlocksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "blocks are required")
		return
	}
	if len(req.Blocks) > maxPreviewBlocks {
		response.UnprocessableEntity(c, "too many blocks")
		return
	}
	response.OK(c, renderBlocksResponse{
		HTML:  string(h.renderer.RenderAll(req.Blocks)),
		Count: len(req.Blocks),
	})
}

func (h *Handler) purgePages(c *gin.Context) {
	n, err := middleware.PurgeHTTPCache(c.Request.Context(), h.rdb)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	h.logger.Info("page cache purged", zap.Int64("keys", n))
	response.OK(c, gin.H{"purged": n})
}
