package configs

import "github.com/spf13/viper"

// 文件内容存储类型.
const (
	ContentTypeLocal = "local"
	ContentTypeS3    = "s3"
)

const (
	DefaultContentType = ContentTypeLocal
	DefaultContentRoot = "assets"
)

type (
	// ContentConfig 文件内容存储配置.
	ContentConfig struct {
		Type  string             `mapstructure:"type"  rule:"oneof=local s3"`
		Local LocalContentConfig `mapstructure:"local"`
		S3    S3Config           `mapstructure:"s3"`
	}

	// LocalContentConfig 本地目录存储，所有文件平铺在 Root 下，以 id 命名.
	LocalContentConfig struct {
		Root string `mapstructure:"root" rule:"required"`
	}

	// S3Config S3 兼容对象存储配置.
	S3Config struct {
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		UseSSL          bool   `mapstructure:"use_ssl"`
		Bucket          string `mapstructure:"bucket"`
		Region          string `mapstructure:"region"`
		Prefix          string `mapstructure:"prefix"` // 对象键前缀，留空时使用部署阶段的数据库名
	}
)

func (c *ContentConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("content.type", DefaultContentType)
	v.SetDefault("content.local.root", DefaultContentRoot)

	v.SetDefault("content.s3.endpoint", "localhost:9000")
	v.SetDefault("content.s3.access_key_id", "minioadmin")
	v.SetDefault("content.s3.secret_access_key", "minioadmin")
	v.SetDefault("content.s3.use_ssl", false)
	v.SetDefault("content.s3.bucket", "filecdn")
	v.SetDefault("content.s3.region", "us-east-1")
	v.SetDefault("content.s3.prefix", "")
}
