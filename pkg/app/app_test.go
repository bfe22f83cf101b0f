package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yeisme/filecdn/pkg/app"
	"github.com/yeisme/filecdn/pkg/configs"
)

func newConfig(t *testing.T) (*configs.AppConfig, string) {
	t.Helper()

	dataDir := t.TempDir()
	assets := filepath.Join(t.TempDir(), "assets")

	t.Setenv("FILECDN_STAGE", "test")
	t.Setenv("FILECDN_META_TYPE", configs.MetaTypeSQLite)
	t.Setenv("FILECDN_META_SQL_DIR", dataDir)
	t.Setenv("FILECDN_CONTENT_LOCAL_ROOT", assets)

	cfg, err := configs.InitConfig(t.TempDir())
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}

	return cfg, assets
}

func newApp(t *testing.T) (*app.App, string) {
	t.Helper()

	cfg, assets := newConfig(t)

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}

	t.Cleanup(func() { _ = a.Close(context.Background()) })

	return a, assets
}

func TestAppServesFiles(t *testing.T) {
	a, assets := newApp(t)

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", "hello.txt")
	if err != nil {
		t.Fatal(err)
	}

	_, _ = fw.Write([]byte("hello"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d %s", w.Code, w.Body.String())
	}

	var id string
	if err := json.Unmarshal(w.Body.Bytes(), &id); err != nil {
		t.Fatal(err)
	}

	// 内容以 id 命名平铺在根目录下
	if data, err := os.ReadFile(filepath.Join(assets, id)); err != nil || string(data) != "hello" {
		t.Errorf("content on disk = %q, %v", data, err)
	}

	w = httptest.NewRecorder()
	a.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+id, nil))

	if w.Code != http.StatusOK || w.Body.String() != "hello" {
		t.Errorf("download = %d %q", w.Code, w.Body.String())
	}

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("request id header missing")
	}

	w = httptest.NewRecorder()
	a.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "filecdn_http_requests_total") {
		t.Errorf("metrics = %d", w.Code)
	}
}

func TestAppReconcile(t *testing.T) {
	a, _ := newApp(t)

	report, err := a.Files().Reconcile(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if report.Checked != 0 || len(report.Orphans) != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestNewFailsWithoutPanic(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(cfg *configs.AppConfig)
	}{
		{name: "unknown content store", mutate: func(cfg *configs.AppConfig) { cfg.Content.Type = "bogus" }},
		{name: "unknown meta store", mutate: func(cfg *configs.AppConfig) { cfg.Meta.Type = "bogus" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, _ := newConfig(t)
			tc.mutate(cfg)

			a, err := app.New(context.Background(), cfg)
			if err == nil {
				t.Fatal("expected init error")
			}

			if a != nil {
				t.Errorf("app = %v, want nil on failure", a)
			}
		})
	}
}

func TestCloseNilApp(t *testing.T) {
	var a *app.App
	if err := a.Close(context.Background()); err != nil {
		t.Errorf("Close on nil app = %v", err)
	}
}
