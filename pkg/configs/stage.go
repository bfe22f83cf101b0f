package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// Stage 部署阶段.
type Stage string

const (
	StageTest  Stage = "test"  // 测试/预发环境，使用 staging 命名空间
	StageLocal Stage = "local" // 本地开发
	StageLive  Stage = "live"  // 线上
)

const (
	DefaultStage = StageLocal

	StagingDatabase = "staging"
	MainDatabase    = "main"
)

// ParseStage 解析部署阶段，未知阶段返回错误.
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageTest, StageLocal, StageLive:
		return Stage(s), nil
	default:
		return "", fmt.Errorf("unrecognized stage %q (expected one of test, local, live)", s)
	}
}

// DeploymentConfig 单个阶段的部署参数.
type DeploymentConfig struct {
	Database  string `mapstructure:"database"   rule:"required"`
	PublicURL string `mapstructure:"public_url" rule:"omitempty,url"`
}

// DeploymentsConfig 三个已知阶段的部署参数.
type DeploymentsConfig struct {
	Test  DeploymentConfig `mapstructure:"test"`
	Local DeploymentConfig `mapstructure:"local"`
	Live  DeploymentConfig `mapstructure:"live"`
}

// For 返回指定阶段的部署参数.
func (d DeploymentsConfig) For(s Stage) DeploymentConfig {
	switch s {
	case StageTest:
		return d.Test
	case StageLive:
		return d.Live
	default:
		return d.Local
	}
}

func (d *DeploymentsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("deployments.test.database", StagingDatabase)
	v.SetDefault("deployments.test.public_url", "")
	v.SetDefault("deployments.local.database", MainDatabase)
	v.SetDefault("deployments.local.public_url", "http://localhost:8080")
	v.SetDefault("deployments.live.database", MainDatabase)
	v.SetDefault("deployments.live.public_url", "")
}
