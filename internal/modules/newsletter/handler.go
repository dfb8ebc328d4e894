package newsletter

import (
	"errors"
	"net/http"

	"github.com/fox-studio/site/internal/modules/article"
	"github.com/fox-studio/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the admin newsletter endpoints. once guards send
// against duplicate submissions.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, once gin.HandlerFunc) {
	g := rg.Group("/admin/newsletter", authMW)
	g.POST("/preview", h.preview)
	g.POST("/send", once, h.send)
}

func (h *Handler) preview(c *gin.Context) {
	var d Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	campaign, err := h.svc.Compose(c.Request.Context(), d)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, campaign)
}

func (h *Handler) send(c *gin.Context) {
	var d Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	report, err := h.svc.Send(c.Request.Context(), d)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, report)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errEmptySubject), errors.Is(err, errNoRecipients):
		response.BadRequest(c, err.Error())
	case errors.Is(err, errTooMany):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, article.ErrNotFound):
		response.NotFoundMsg(c, "article not found")
	case errors.Is(err, errMailUnavailable):
		response.Error(c, http.StatusServiceUnavailable, err.Error())
	default:
		response.BadGateway(c, err)
	}
}
