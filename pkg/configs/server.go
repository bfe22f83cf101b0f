package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPort          = 8080        // 监听端口
	DefaultHost          = "0.0.0.0"   // 监听地址
	DefaultReloadConfig  = false       // 是否启用配置热重载
	DefaultDebug         = false       // 是否启用调试模式
	DefaultTimeout       = 30          // 超时时间，单位秒
	DefaultMaxUploadSize = 32 << 20    // 单次上传的最大字节数
	DefaultShutdownGrace = 10          // 优雅关闭等待时间，单位秒
	DefaultPageTitle     = "CDN - GUI" // 浏览页标题
)

type (
	// ServerConfig 服务器配置.
	ServerConfig struct {
		Port          int    `mapstructure:"port"            rule:"min=1,max=65535"`
		Host          string `mapstructure:"host"            rule:"ip"`
		ReloadConfig  bool   `mapstructure:"reload_config"`
		Debug         bool   `mapstructure:"debug"`
		Timeout       int    `mapstructure:"timeout"         rule:"min=1,max=300"`
		MaxUploadSize int64  `mapstructure:"max_upload_size" rule:"min=1"`
		ShutdownGrace int    `mapstructure:"shutdown_grace"  rule:"min=0,max=300"`
		PageTitle     string `mapstructure:"page_title"`
	}
)

// GetTimeoutDuration 返回超时时间作为time.Duration.
func (s *ServerConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// GetShutdownGrace 返回优雅关闭的等待时间.
func (s *ServerConfig) GetShutdownGrace() time.Duration {
	return time.Duration(s.ShutdownGrace) * time.Second
}

// setDefaults 设置服务器配置的默认值.
func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.reload_config", DefaultReloadConfig)
	v.SetDefault("server.debug", DefaultDebug)
	v.SetDefault("server.timeout", DefaultTimeout)
	v.SetDefault("server.max_upload_size", DefaultMaxUploadSize)
	v.SetDefault("server.shutdown_grace", DefaultShutdownGrace)
	v.SetDefault("server.page_title", DefaultPageTitle)
}
