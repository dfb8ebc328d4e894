package offline

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OriginProxy forwards requests the worker left alone to the origin.
func OriginProxy(origin *url.URL, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	proxy := httputil.NewSingleHostReverseProxy(origin)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = origin.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		if errors.Is(err, r.Context().Err()) {
			return
		}
		logger.Warn("origin unreachable", zap.String("path", r.URL.Path), zap.Error(err))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"ok":0,"code":502,"message":"origin unreachable"}`))
	}
	return func(c *gin.Context) {
		proxy.ServeHTTP(c.Writer, c.Request)
		c.Abort()
	}
}
