// Package configs 管理应用程序配置，包括部署阶段、元数据存储、内容存储、事件与可观测性配置.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv），环境变量前缀为 FILECDN.
//
// Example:
//
//	cfg, err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(cfg.Server.Port)
//	fmt.Println(cfg.Database()) // 由部署阶段决定的数据库命名空间
//
// 配置只在启动时校验一次，未知的部署阶段会直接导致 InitConfig 失败.
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/yeisme/filecdn/pkg/rule"
)

// AppVersion 应用版本.
const AppVersion = "0.3.0"

// EnvPrefix 环境变量前缀，例如 FILECDN_SERVER_PORT.
const EnvPrefix = "FILECDN"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Stage          Stage                `mapstructure:"stage"           rule:"oneof=test local live"` // 部署阶段
		Deployments    DeploymentsConfig    `mapstructure:"deployments"`                                   // 各阶段的命名空间与公开地址
		Server         ServerConfig         `mapstructure:"server"`                                        // HTTP 服务器配置
		Log            LogConfig            `mapstructure:"log"`                                           // 日志相关配置
		Meta           MetaConfig           `mapstructure:"meta"`                                          // 元数据存储
		Content        ContentConfig        `mapstructure:"content"`                                       // 文件内容存储
		Events         EventsConfig         `mapstructure:"events"`                                        // 事件发布
		Metrics        MetricsConfig        `mapstructure:"metrics"`                                       // Prometheus 指标
		Tracing        TracingConfig        `mapstructure:"tracing"`                                       // 分布式追踪
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`                                    // 限流
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`                               // 熔断
		Reconcile      ReconcileConfig      `mapstructure:"reconcile"`                                     // 一致性巡检
	}
)

var (
	// globalConfig 最近一次成功加载的配置，仅供 CLI 调试命令读取.
	globalConfig *AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载并校验应用程序配置. path 可以是配置文件或包含 config.* 的目录；
// 找不到配置文件时使用默认值与环境变量.
func InitConfig(path string) (*AppConfig, error) {
	v := viper.New()
	setAllDefaults(v)

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(path)
		v.AddConfigPath(filepath.Join(path, "configs"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	appViper = v
	globalConfig = cfg

	return cfg, nil
}

// decode 解析并校验配置.
func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验配置，包括部署阶段是否可识别.
func (c *AppConfig) Validate() error {
	if _, err := ParseStage(string(c.Stage)); err != nil {
		return err
	}

	if err := rule.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Deployment 返回当前阶段的部署配置.
func (c *AppConfig) Deployment() DeploymentConfig {
	return c.Deployments.For(c.Stage)
}

// Database 返回当前阶段使用的数据库命名空间.
func (c *AppConfig) Database() string {
	return c.Deployment().Database
}

// PublicURL 返回生成文件链接使用的公开地址，不带结尾的 "/".
func (c *AppConfig) PublicURL() string {
	if u := strings.TrimRight(c.Deployment().PublicURL, "/"); u != "" {
		return u
	}

	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	v.SetDefault("stage", DefaultStage)

	var (
		deployments    DeploymentsConfig
		serverConfig   ServerConfig
		logConfig      LogConfig
		metaConfig     MetaConfig
		contentConfig  ContentConfig
		eventsConfig   EventsConfig
		metricsConfig  MetricsConfig
		tracingConfig  TracingConfig
		rateLimit      RateLimitConfig
		circuitBreaker CircuitBreakerConfig
		reconcile      ReconcileConfig
	)

	deployments.setDefaults(v)
	serverConfig.setDefaults(v)
	logConfig.setDefaults(v)
	metaConfig.setDefaults(v)
	contentConfig.setDefaults(v)
	eventsConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	tracingConfig.setDefaults(v)
	rateLimit.setDefaults(v)
	circuitBreaker.setDefaults(v)
	reconcile.setDefaults(v)
}

// WatchConfig 在启用 server.reload_config 时监听配置文件变化，
// 每次变更后重新解析并把新配置交给 onChange；解析失败的变更会被忽略.
// 只有可以安全热更新的字段（例如日志级别）应当在 onChange 中生效.
func WatchConfig(cfg *AppConfig, onChange func(*AppConfig, error)) {
	v := appViper
	if v == nil || !cfg.Server.ReloadConfig || v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		next, err := decode(v)
		if err == nil {
			globalConfig = next
		}

		onChange(next, err)
	})
	v.WatchConfig()
}

// GetConfig 返回最近一次加载的配置，未初始化时返回 nil.
func GetConfig() *AppConfig {
	return globalConfig
}

// GetViper 返回全局 Viper 实例.
func GetViper() *viper.Viper {
	return appViper
}
