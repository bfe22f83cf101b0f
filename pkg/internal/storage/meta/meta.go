// Package meta 管理文件元数据存储. 支持 MongoDB（默认）以及通过 GORM 接入的 SQLite、PostgreSQL、MySQL.
//
// 所有后端遵循同样的约定：查询不存在的 id 返回 (nil, nil) 而不是错误，
// 存储故障以包装后的 error 返回，由上层服务决定如何分类.
package meta

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/yeisme/filecdn/pkg/configs"
	"github.com/yeisme/filecdn/pkg/internal/match"
	"github.com/yeisme/filecdn/pkg/internal/model"
)

// Store 元数据存储接口.
type Store interface {
	// Create 保存新记录并返回分配的 24 位十六进制 id，rec.ID 被忽略.
	Create(ctx context.Context, rec model.FileRecord) (string, error)
	// Get 按 id 查询，不存在时返回 (nil, nil).
	Get(ctx context.Context, id string) (*model.FileRecord, error)
	// GetAll 返回全部记录.
	GetAll(ctx context.Context) ([]model.FileRecord, error)
	// Update 合并 patch 中非空的字段并返回更新后的记录，不存在时返回 (nil, nil).
	Update(ctx context.Context, id string, patch model.Patch) (*model.FileRecord, error)
	// SearchAll 全量扫描并用模糊匹配过滤指定字段.
	SearchAll(ctx context.Context, query string, field model.Field) ([]model.FileRecord, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options 创建元数据存储所需的参数.
type Options struct {
	Config   configs.MetaConfig
	Database string // 由部署阶段决定的数据库命名空间
	Metrics  bool   // 是否注册后端自带的指标插件
	Logger   *zerolog.Logger
}

// Factory 元数据存储工厂函数.
type Factory func(ctx context.Context, opts Options) (Store, error)

// factories 存储类型到工厂的映射，各后端在 init 中注册.
var factories = map[string]Factory{}

// RegisterFactory 注册元数据存储工厂.
func RegisterFactory(kind string, f Factory) {
	factories[kind] = f
}

// RegisteredTypes 返回已注册的后端类型，按名称排序.
func RegisteredTypes() []string {
	types := make([]string, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Strings(types)

	return types
}

// New 根据配置创建元数据存储.
func New(ctx context.Context, opts Options) (Store, error) {
	f, ok := factories[opts.Config.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported meta store type: %q", opts.Config.Type)
	}

	if opts.Logger == nil {
		l := zerolog.Nop()
		opts.Logger = &l
	}

	if opts.Database == "" {
		return nil, fmt.Errorf("meta store %q: database name is required", opts.Config.Type)
	}

	return f(ctx, opts)
}

// Filter 返回 field 投影与 query 模糊匹配的记录，保持原有顺序；没有匹配时返回空切片.
func Filter(records []model.FileRecord, query string, field model.Field) []model.FileRecord {
	out := make([]model.FileRecord, 0, len(records))

	for _, r := range records {
		if match.Matches(r.Project(field), query) {
			out = append(out, r)
		}
	}

	return out
}
