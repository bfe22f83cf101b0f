package configs

import "github.com/spf13/viper"

// ReconcileConfig 元数据与文件内容的一致性巡检. 巡检只报告孤立的元数据，不做修复.
type ReconcileConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"    rule:"required"` // 标准 5 段 cron 表达式
}

func (c *ReconcileConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("reconcile.enabled", false)
	v.SetDefault("reconcile.cron", "0 3 * * *")
}
