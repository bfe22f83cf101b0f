package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yeisme/filecdn/pkg/configs"
	"github.com/yeisme/filecdn/pkg/internal/storage"
)

func TestNewWithSQLiteAndLocal(t *testing.T) {
	ctx := context.Background()
	cfg := &configs.AppConfig{
		Stage:       configs.StageTest,
		Deployments: configs.DeploymentsConfig{Test: configs.DeploymentConfig{Database: configs.StagingDatabase}},
		Meta: configs.MetaConfig{
			Type:       configs.MetaTypeSQLite,
			Collection: "files",
			SQL:        configs.SQLConfig{Dir: t.TempDir()},
		},
		Content: configs.ContentConfig{
			Type:  configs.ContentTypeLocal,
			Local: configs.LocalContentConfig{Root: filepath.Join(t.TempDir(), "assets")},
		},
	}

	l := zerolog.Nop()

	mgr, err := storage.New(ctx, cfg, &l)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer mgr.Close(ctx)

	if err := mgr.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}

	// 数据库文件以部署阶段的命名空间命名
	if _, err := os.Stat(filepath.Join(cfg.Meta.SQL.Dir, "staging.db")); err != nil {
		t.Errorf("staging database file: %v", err)
	}
}

func TestNewFailsOnUnknownContentType(t *testing.T) {
	cfg := &configs.AppConfig{
		Stage:       configs.StageLocal,
		Deployments: configs.DeploymentsConfig{Local: configs.DeploymentConfig{Database: configs.MainDatabase}},
		Meta: configs.MetaConfig{
			Type:       configs.MetaTypeSQLite,
			Collection: "files",
			SQL:        configs.SQLConfig{Dir: t.TempDir()},
		},
		Content: configs.ContentConfig{Type: "tape"},
	}

	l := zerolog.Nop()

	if _, err := storage.New(context.Background(), cfg, &l); err == nil {
		t.Fatal("expected error for unknown content type")
	}
}
