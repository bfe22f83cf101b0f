package configs

import (
	"github.com/spf13/viper"
)

// MetricsConfig Prometheus 指标配置.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`                                      // 是否启用Metrics
	Path           string `mapstructure:"path"            rule:"required,startswith=/"` // 暴露在 HTTP 服务器上的路径
	RuntimeMetrics bool   `mapstructure:"runtime_metrics"`                              // 是否收集运行时指标
	DBMetrics      bool   `mapstructure:"db_metrics"`                                   // SQL 元数据后端的 gorm 指标
}

// setDefaults 设置Metrics配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.db_metrics", false)
}
