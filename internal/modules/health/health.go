package health

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fox-studio/site/internal/modules/offline"
	"github.com/fox-studio/site/internal/pkg/cron"
	pkgmail "github.com/fox-studio/site/internal/pkg/mail"
	"github.com/fox-studio/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Mailer is the part of the mail sender the test endpoint needs.
type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, msg pkgmail.Message) error
}

type Handler struct {
	reg      *offline.Registration
	rdb      *redis.Client
	sched    *cron.Scheduler
	mailer   Mailer
	siteName string
	started  time.Time
}

func NewHandler(reg *offline.Registration, rdb *redis.Client, sched *cron.Scheduler, mailer Mailer, siteName string) *Handler {
	return &Handler{reg: reg, rdb: rdb, sched: sched, mailer: mailer, siteName: siteName, started: time.Now()}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/__health", h.health)

	admin := rg.Group("/admin", authMW)
	admin.GET("/jobs", h.listJobs)
	admin.POST("/jobs/:name/run", h.runJob)
	admin.POST("/mail/test", h.testMail)
}

type healthResponse struct {
	Status     string `json:"status"`
	Redis      *bool  `json:"redis,omitempty"`
	Worker     string `json:"worker,omitempty"`
	Uptime     int64  `json:"uptime"`
	Humanize   string `json:"humanize"`
	ServerTime int64  `json:"server_time"`
}

// health reports degraded when redis is configured but unreachable. A
// missing worker is reported but does not degrade the edge, which still
// proxies to the origin.
func (h *Handler) health(c *gin.Context) {
	uptime := time.Since(h.started)
	resp := healthResponse{
		Status:     "ok",
		Uptime:     uptime.Milliseconds(),
		Humanize:   humanizeDuration(uptime),
		ServerTime: time.Now().UnixMilli(),
	}
	code := http.StatusOK
	if h.rdb != nil {
		ok := h.rdb.Ping(c.Request.Context()).Err() == nil
		resp.Redis = &ok
		if !ok {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	if h.reg != nil {
		if w := h.reg.Active(); w != nil {
			resp.Worker = w.CacheName()
		}
	}
	c.JSON(code, resp)
}

func (h *Handler) listJobs(c *gin.Context) {
	response.OK(c, h.sched.List())
}

func (h *Handler) runJob(c *gin.Context) {
	if err := h.sched.Run(c.Request.Context(), c.Param("name")); err != nil {
		response.NotFoundMsg(c, err.Error())
		return
	}
	for _, item := range h.sched.List() {
		if item.Name == c.Param("name") {
			response.OK(c, item)
			return
		}
	}
	response.NoContent(c)
}

type testMailRequest struct {
	To string `json:"to" binding:"required"`
}

func (h *Handler) testMail(c *gin.Context) {
	if h.mailer == nil || !h.mailer.Enabled() {
		response.UnprocessableEntity(c, "mail is not enabled")
		return
	}
	var req testMailRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.To) == "" {
		response.BadRequest(c, "to is required")
		return
	}
	err := h.mailer.Send(c.Request.Context(), pkgmail.Message{
		To:      []string{strings.TrimSpace(req.To)},
		Subject: h.siteName + " mail test",
		HTML:    "<h1>Mail is configured.</h1><p>This message was sent from the site admin.</p>",
		Text:    "Mail is configured. This message was sent from the site admin.",
	})
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.OK(c, gin.H{"ok": 1})
}

func humanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Truncate(time.Second).String()
	}
	if d < time.Hour {
		return d.Truncate(time.Minute).String()
	}
	if d < 24*time.Hour {
		return d.Truncate(time.Hour).String()
	}
	return d.Truncate(24 * time.Hour).String()
}
