// Package content 管理文件内容（原始字节）的存储，按记录 id 寻址.
// 支持本地目录（默认）与 S3 兼容对象存储.
package content

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yeisme/filecdn/pkg/configs"
)

var (
	// ErrNotExist 指定 id 的内容不存在.
	ErrNotExist = errors.New("content does not exist")
	// ErrInvalidKey id 不能安全地用作存储键.
	ErrInvalidKey = errors.New("invalid content key")
)

// Store 文件内容存储接口. Write 创建或覆盖，Replace 只覆盖已存在的内容.
type Store interface {
	Write(ctx context.Context, id string, data []byte) ([]byte, error)
	Read(ctx context.Context, id string) ([]byte, error)
	Replace(ctx context.Context, id string, data []byte) ([]byte, error)
	Exists(ctx context.Context, id string) (bool, error)
	Ping(ctx context.Context) error
}

// Options 创建内容存储所需的参数.
type Options struct {
	Config configs.ContentConfig
	// Namespace 由部署阶段决定的命名空间，对象存储在未配置前缀时用作键前缀.
	Namespace string
	Logger    *zerolog.Logger
}

// Factory 内容存储工厂函数.
type Factory func(ctx context.Context, opts Options) (Store, error)

var factories = map[string]Factory{}

// RegisterFactory 注册内容存储工厂.
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

// New 根据配置创建内容存储.
func New(ctx context.Context, opts Options) (Store, error) {
	f, ok := factories[opts.Config.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported content store type: %q", opts.Config.Type)
	}

	if opts.Logger == nil {
		l := zerolog.Nop()
		opts.Logger = &l
	}

	return f(ctx, opts)
}

// checkKey 拒绝空键以及可能逃逸出存储根目录的键.
func checkKey(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, id)
	}

	return nil
}
