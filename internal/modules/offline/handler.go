package offline

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/fox-studio/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CacheHeader reports how the edge resolved a request.
const CacheHeader = "x-fox-cache"

type Handler struct {
	reg     *Registration
	storage Storage
	network Network
	opts    Options
	logger  *zap.Logger

	bumpMu sync.Mutex
}

func NewHandler(reg *Registration, storage Storage, network Network, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{reg: reg, storage: storage, network: network, opts: opts, logger: logger}
}

// NewWorker builds a worker for version using the handler's storage and network.
func (h *Handler) NewWorker(version int) *Worker {
	opts := h.opts
	opts.Version = version
	return NewWorker(opts, h.storage, h.network, h.logger)
}

// Boot registers the first worker for the configured version.
func (h *Handler) Boot(ctx context.Context) error {
	return h.reg.Register(ctx, h.NewWorker(h.opts.Version))
}

// EnsureActive boots again when no worker is active, typically because the
// origin was unreachable during startup.
func (h *Handler) EnsureActive(ctx context.Context) error {
	if h.reg.Active() != nil {
		return nil
	}
	h.logger.Info("no active offline worker, installing", zap.Int("version", h.opts.Version))
	return h.Boot(ctx)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/__worker")
	g.GET("/status", h.status)
	g.POST("/message", h.message)

	a := rg.Group("/admin", authMW)
	a.POST("/cache/bump", h.bump)
}

// Edge intercepts requests that no local route claimed. Requests the worker
// does not intercept fall through to the next handler untouched.
func (h *Handler) Edge() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := RequestFromHTTP(c.Request, h.opts.Origin)
		resp, ok := h.reg.Fetch(c.Request.Context(), req)
		if !ok {
			c.Next()
			return
		}
		writeResponse(c, resp)
	}
}

// ServeOfflinePage answers a navigation with the active worker's offline page.
// It reports false, writing nothing, for other requests or when no page is
// stored. The page is marked no-store so no cache keeps it in place of the
// real document.
func (h *Handler) ServeOfflinePage(c *gin.Context) bool {
	if !RequestFromHTTP(c.Request, h.opts.Origin).IsNavigation() {
		return false
	}
	w := h.reg.Active()
	if w == nil {
		return false
	}
	page, ok := w.OfflinePage(c.Request.Context())
	if !ok {
		return false
	}
	page.Header.Set("Cache-Control", "no-store")
	c.Writer.Header().Del("Cache-Control")
	writeResponse(c, page)
	return true
}

func writeResponse(c *gin.Context, resp *Response) {
	header := c.Writer.Header()
	for k, vv := range resp.Header {
		for _, v := range vv {
			header.Add(k, v)
		}
	}
	header.Set(CacheHeader, string(resp.From))
	c.Data(resp.Status, resp.Header.Get("Content-Type"), resp.Body)
	c.Abort()
}

type statusResponse struct {
	Active  *workerStatus `json:"active"`
	Waiting *workerStatus `json:"waiting"`
	Stores  []string      `json:"stores"`
}

type workerStatus struct {
	Cache   string `json:"cache"`
	Version int    `json:"version"`
	Phase   string `json:"phase"`
}

func describe(w *Worker) *workerStatus {
	if w == nil {
		return nil
	}
	return &workerStatus{Cache: w.CacheName(), Version: w.Version(), Phase: w.Phase().String()}
}

func (h *Handler) status(c *gin.Context) {
	stores, err := h.storage.Keys(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if stores == nil {
		stores = []string{}
	}
	response.OK(c, statusResponse{
		Active:  describe(h.reg.Active()),
		Waiting: describe(h.reg.Waiting()),
		Stores:  stores,
	})
}

func (h *Handler) message(c *gin.Context) {
	var msg Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		response.BadRequest(c, "invalid message")
		return
	}
	recognized, err := h.reg.PostMessage(c.Request.Context(), msg)
	if err != nil {
		h.logger.Error("skip waiting failed", zap.Error(err))
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"ok": 1, "recognized": recognized})
}

func (h *Handler) bump(c *gin.Context) {
	h.bumpMu.Lock()
	defer h.bumpMu.Unlock()

	next := h.opts.Version
	for _, w := range []*Worker{h.reg.Active(), h.reg.Waiting()} {
		if w != nil && w.Version() >= next {
			next = w.Version() + 1
		}
	}
	w := h.NewWorker(next)
	if err := h.reg.Register(c.Request.Context(), w); err != nil {
		h.logger.Error("cache bump failed", zap.Int("version", next), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"ok": 0, "code": http.StatusBadGateway, "message": err.Error()})
		return
	}
	// A worker configured to wait needs the message before it takes over.
	if w.Phase() != PhaseActive {
		if _, err := h.reg.PostMessage(c.Request.Context(), Message{Type: SkipWaitingMessage}); err != nil {
			response.InternalError(c, err)
			return
		}
	}
	response.OK(c, describe(w))
}

// OriginURL parses the origin base URL used by the edge.
func OriginURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	u.Path, u.RawPath, u.RawQuery, u.Fragment = "", "", "", ""
	return u, nil
}
