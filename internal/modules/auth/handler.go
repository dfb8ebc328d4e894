package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/fox-studio/site/internal/middleware"
	"github.com/fox-studio/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginDTO struct {
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Handler struct {
	svc    *Service
	secure bool
	logger *zap.Logger
}

// NewHandler builds the admin session handler. secure marks the token cookie
// Secure, which production deployments behind TLS want.
func NewHandler(svc *Service, secure bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, secure: secure, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, limiter gin.HandlerFunc) {
	g := rg.Group("/admin")
	g.POST("/login", limiter, h.login)
	g.POST("/logout", h.logout)
	g.GET("/me", authMW, h.me)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "password is required")
		return
	}
	token, expires, err := h.svc.Login(dto.Password)
	if err != nil {
		switch {
		case errors.Is(err, errWrongPassword):
			h.logger.Warn("admin login rejected", zap.String("ip", c.ClientIP()))
			response.UnauthorizedMsg(c, "Wrong password")
		case errors.Is(err, errLoginDisabled):
			response.Error(c, http.StatusForbidden, "Admin login is disabled")
		default:
			response.InternalError(c, err)
		}
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(time.Until(expires).Seconds()), "/", "", h.secure, true)
	response.OK(c, loginResponse{Token: token, ExpiresAt: expires})
}

func (h *Handler) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secure, true)
	response.NoContent(c)
}

func (h *Handler) me(c *gin.Context) {
	response.OK(c, gin.H{"subject": middleware.CurrentSubject(c)})
}
