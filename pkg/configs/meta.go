package configs

import (
	"time"

	"github.com/spf13/viper"
)

// 元数据存储类型.
const (
	MetaTypeMongo    = "mongo"
	MetaTypeSQLite   = "sqlite"
	MetaTypePostgres = "postgres"
	MetaTypeMySQL    = "mysql"
)

const (
	DefaultMetaType           = MetaTypeMongo
	DefaultMetaCollection     = "files"
	DefaultMongoURI           = "mongodb://localhost:27017"
	DefaultMongoTimeout       = 10 * time.Second
	DefaultSQLiteDir          = "data"
	DefaultSQLMaxOpenConns    = 10
	DefaultSQLMaxIdleConns    = 5
	DefaultSQLConnMaxLifetime = time.Hour
)

type (
	// MetaConfig 元数据存储配置. 数据库名称不在此处配置，由部署阶段决定.
	MetaConfig struct {
		Type       string      `mapstructure:"type"       rule:"oneof=mongo sqlite postgres mysql"`
		Collection string      `mapstructure:"collection" rule:"required"` // mongo 集合名或 SQL 表名
		Mongo      MongoConfig `mapstructure:"mongo"`
		SQL        SQLConfig   `mapstructure:"sql"`
	}

	// MongoConfig MongoDB 连接配置.
	MongoConfig struct {
		URI            string        `mapstructure:"uri"             rule:"required"`
		ConnectTimeout time.Duration `mapstructure:"connect_timeout" rule:"min=0"`
	}

	// SQLConfig 关系型数据库连接配置，sqlite 只使用 Dir.
	SQLConfig struct {
		Host            string        `mapstructure:"host"`
		Port            int           `mapstructure:"port"     rule:"min=0,max=65535"`
		User            string        `mapstructure:"user"`
		Password        string        `mapstructure:"password"`
		SSLMode         string        `mapstructure:"ssl_mode"`
		Dir             string        `mapstructure:"dir"`
		Debug           bool          `mapstructure:"debug"`
		MaxOpenConns    int           `mapstructure:"max_open_conns"    rule:"min=0"`
		MaxIdleConns    int           `mapstructure:"max_idle_conns"    rule:"min=0"`
		ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" rule:"min=0"`
	}
)

func (c *MetaConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("meta.type", DefaultMetaType)
	v.SetDefault("meta.collection", DefaultMetaCollection)

	v.SetDefault("meta.mongo.uri", DefaultMongoURI)
	v.SetDefault("meta.mongo.connect_timeout", DefaultMongoTimeout)

	v.SetDefault("meta.sql.host", "localhost")
	v.SetDefault("meta.sql.port", 0)
	v.SetDefault("meta.sql.user", "")
	v.SetDefault("meta.sql.password", "")
	v.SetDefault("meta.sql.ssl_mode", "disable")
	v.SetDefault("meta.sql.dir", DefaultSQLiteDir)
	v.SetDefault("meta.sql.debug", false)
	v.SetDefault("meta.sql.max_open_conns", DefaultSQLMaxOpenConns)
	v.SetDefault("meta.sql.max_idle_conns", DefaultSQLMaxIdleConns)
	v.SetDefault("meta.sql.conn_max_lifetime", DefaultSQLConnMaxLifetime)
}
