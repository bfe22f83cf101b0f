// Package storage 组装元数据存储与文件内容存储，并负责它们的生命周期.
//
// Example:
//
//	mgr, err := storage.New(ctx, cfg, logger)
//	if err != nil {
//		// 处理错误
//	}
//	defer mgr.Close(context.Background())
//
//	svc := service.NewFileService(mgr.Meta, mgr.Content, logger)
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yeisme/filecdn/pkg/configs"
	"github.com/yeisme/filecdn/pkg/internal/storage/content"
	"github.com/yeisme/filecdn/pkg/internal/storage/meta"
)

// Manager 聚合所有存储资源. 由调用方显式创建并注入，不存在全局实例.
type Manager struct {
	Meta    meta.Store
	Content content.Store
}

// New 根据配置创建两个存储后端，任一失败都会释放已创建的资源.
func New(ctx context.Context, cfg *configs.AppConfig, logger *zerolog.Logger) (*Manager, error) {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	ms, err := meta.New(ctx, meta.Options{
		Config:   cfg.Meta,
		Database: cfg.Database(),
		Metrics:  cfg.Metrics.Enabled && cfg.Metrics.DBMetrics,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init meta store: %w", err)
	}

	cs, err := content.New(ctx, content.Options{
		Config:    cfg.Content,
		Namespace: cfg.Database(),
		Logger:    logger,
	})
	if err != nil {
		_ = ms.Close(ctx)

		return nil, fmt.Errorf("init content store: %w", err)
	}

	logger.Info().
		Str("stage", string(cfg.Stage)).
		Str("meta", cfg.Meta.Type).
		Str("content", cfg.Content.Type).
		Msg("storage manager initialized")

	return &Manager{Meta: ms, Content: cs}, nil
}

// Close 释放后端连接.
func (m *Manager) Close(ctx context.Context) error {
	if m == nil || m.Meta == nil {
		return nil
	}

	return m.Meta.Close(ctx)
}

// HealthCheck 依次检查两个后端.
func (m *Manager) HealthCheck(ctx context.Context) error {
	return errors.Join(
		wrap("meta", m.Meta.Ping(ctx)),
		wrap("content", m.Content.Ping(ctx)),
	)
}

func wrap(name string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}
