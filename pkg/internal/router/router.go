// Package router 管理路由配置，把处理器绑定到 gin 引擎.
package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filecdn/pkg/configs"
	"github.com/yeisme/filecdn/pkg/internal/handle"
	"github.com/yeisme/filecdn/pkg/metrics"
)

// Register 绑定全部路由:
//
//	GET  /               -> Browse（gzip）
//	POST /               -> Upload
//	GET  /search         -> Search
//	GET  /health/meta    -> HealthMeta
//	GET  /health/content -> HealthContent
//	GET  <metrics.path>  -> Prometheus（启用时）
//	GET  /:id            -> Download
//	PUT  /:id            -> Replace
func Register(r *gin.Engine, h *handle.Handlers, cfg configs.MetricsConfig) {
	RegisterHealthCheckRoute(r.Group(""), h)

	if cfg.Enabled {
		r.GET(cfg.Path, metrics.Handler())
	}

	RegisterFilesRoutes(r.Group(""), h)
}

// RegisterFilesRoutes 注册文件相关路由.
func RegisterFilesRoutes(g *gin.RouterGroup, h *handle.Handlers) {
	// 文件内容已压缩或为二进制，只压缩浏览页与搜索结果
	g.GET("/", gzip.Gzip(gzip.DefaultCompression), h.Browse)
	g.POST("/", h.Upload)
	g.GET("/search", gzip.Gzip(gzip.DefaultCompression), h.Search)

	g.GET("/:id", h.Download)
	g.PUT("/:id", h.Replace)
}

// RegisterHealthCheckRoute 注册健康检查路由.
func RegisterHealthCheckRoute(g *gin.RouterGroup, h *handle.Handlers) {
	healthRoutes := g.Group("/health")
	{
		healthRoutes.GET("/meta", h.HealthMeta)
		healthRoutes.GET("/content", h.HealthContent)
	}
}
