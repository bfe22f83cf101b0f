package configs

import (
	"time"

	"github.com/spf13/viper"
)

// 事件总线类型.
const (
	EventsTypeGoChannel = "gochannel"
	EventsTypeNATS      = "nats"
	EventsTypeRedis     = "redis"
)

// EventsConfig 控制文件事件的发布. 发布失败只会记录日志，不影响请求结果.
type EventsConfig struct {
	Enabled bool        `mapstructure:"enabled"` // 总开关
	Type    string      `mapstructure:"type"    rule:"oneof=gochannel nats redis"`
	Created bool        `mapstructure:"created"` // file.created
	Updated bool        `mapstructure:"updated"` // file.updated
	NATS    NATSConfig  `mapstructure:"nats"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// NATSConfig NATS 连接配置.
type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	ClientID      string        `mapstructure:"client_id"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	Token         string        `mapstructure:"token"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	JetStream     bool          `mapstructure:"jetstream"`
	AutoProvision bool          `mapstructure:"auto_provision"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
}

// RedisConfig Redis pub/sub 连接配置.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"           rule:"min=0"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.type", EventsTypeGoChannel)
	v.SetDefault("events.created", true)
	v.SetDefault("events.updated", true)

	v.SetDefault("events.nats.url", "nats://localhost:4222")
	v.SetDefault("events.nats.client_id", "filecdn")
	v.SetDefault("events.nats.max_reconnects", 10)
	v.SetDefault("events.nats.reconnect_wait", 2*time.Second)
	v.SetDefault("events.nats.jetstream", false)
	v.SetDefault("events.nats.auto_provision", true)
	v.SetDefault("events.nats.subject_prefix", "filecdn")

	v.SetDefault("events.redis.addr", "localhost:6379")
	v.SetDefault("events.redis.db", 0)
	v.SetDefault("events.redis.dial_timeout", 5*time.Second)
}
