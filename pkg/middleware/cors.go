package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filecdn/pkg/configs"
)

// CORSMiddleware CORS中间件. 文件下载需要暴露 Content-Disposition 与 ETag.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	config.ExposeHeaders = []string{"Content-Disposition", "ETag", HeaderRequestID}

	if cfg.Debug {
		config.AllowAllOrigins = true
		config.AllowOrigins = nil
	}

	return cors.New(config)
}
