package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// HealthMeta GET /health/meta 元数据存储健康检查.
func (h *Handlers) HealthMeta(c *gin.Context) {
	h.health(c, "meta", h.meta)
}

// HealthContent GET /health/content 内容存储健康检查.
func (h *Handlers) HealthContent(c *gin.Context) {
	h.health(c, "content", h.content)
}

func (h *Handlers) health(c *gin.Context, component string, p Pinger) {
	if p == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": component + " store not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Str("component", component).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
}
