package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// accessLog writes one structured line per request.
func (h *Handler) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	if h.log == nil {
		return
	}
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	kv := []interface{}{
		"method", c.Request.Method,
		"path", path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"client_ip", c.ClientIP(),
	}
	switch status := c.Writer.Status(); {
	case status >= 500:
		h.log.Errorw("http_request", kv...)
	case status >= 400:
		h.log.Warnw("http_request", kv...)
	default:
		h.log.Debugw("http_request", kv...)
	}
}
