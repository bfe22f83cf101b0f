package configs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yeisme/filecdn/pkg/configs"
)

func TestInitConfigDefaults(t *testing.T) {
	cfg, err := configs.InitConfig(t.TempDir())
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}

	if cfg.Stage != configs.StageLocal {
		t.Errorf("stage = %q, want local", cfg.Stage)
	}

	if got := cfg.Database(); got != configs.MainDatabase {
		t.Errorf("database = %q, want %q", got, configs.MainDatabase)
	}

	if got := cfg.PublicURL(); got != "http://localhost:8080" {
		t.Errorf("public url = %q", got)
	}

	if cfg.Meta.Type != configs.MetaTypeMongo || cfg.Content.Type != configs.ContentTypeLocal {
		t.Errorf("unexpected backends: meta=%q content=%q", cfg.Meta.Type, cfg.Content.Type)
	}

	if cfg.Content.Local.Root != "assets" {
		t.Errorf("content root = %q", cfg.Content.Local.Root)
	}
}

func TestInitConfigStageSelectsNamespace(t *testing.T) {
	tests := []struct {
		stage string
		want  string
	}{
		{"test", configs.StagingDatabase},
		{"local", configs.MainDatabase},
		{"live", configs.MainDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			t.Setenv("FILECDN_STAGE", tt.stage)

			cfg, err := configs.InitConfig(t.TempDir())
			if err != nil {
				t.Fatalf("InitConfig: %v", err)
			}

			if got := cfg.Database(); got != tt.want {
				t.Errorf("database = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInitConfigRejectsUnknownStage(t *testing.T) {
	t.Setenv("FILECDN_STAGE", "prod")

	if _, err := configs.InitConfig(t.TempDir()); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestInitConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filecdn.yaml")
	body := []byte(`stage: live
deployments:
  live:
    public_url: https://cdn.example.com/
server:
  port: 9000
meta:
  type: sqlite
`)

	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := configs.InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}

	if got := cfg.PublicURL(); got != "https://cdn.example.com" {
		t.Errorf("public url = %q", got)
	}

	if cfg.Meta.Type != configs.MetaTypeSQLite {
		t.Errorf("meta type = %q", cfg.Meta.Type)
	}
}

func TestParseStage(t *testing.T) {
	if _, err := configs.ParseStage(""); err == nil {
		t.Error("empty stage should be rejected")
	}

	if s, err := configs.ParseStage("test"); err != nil || s != configs.StageTest {
		t.Errorf("ParseStage(test) = %q, %v", s, err)
	}
}

func TestInitConfigRedisEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filecdn.yaml")
	body := []byte(`events:
  enabled: true
  type: redis
  redis:
    addr: redis:6380
    db: 2
`)

	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := configs.InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}

	if cfg.Events.Type != configs.EventsTypeRedis || cfg.Events.Redis.Addr != "redis:6380" || cfg.Events.Redis.DB != 2 {
		t.Errorf("events = %+v", cfg.Events)
	}

	if cfg.Events.Redis.DialTimeout != 5*time.Second {
		t.Errorf("dial timeout = %v, want default 5s", cfg.Events.Redis.DialTimeout)
	}
}
