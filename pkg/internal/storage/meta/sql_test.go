package meta_test

import (
	"context"
	"slices"
	"testing"

	"github.com/yeisme/filecdn/pkg/configs"
	"github.com/yeisme/filecdn/pkg/internal/model"
	"github.com/yeisme/filecdn/pkg/internal/storage/meta"
)

func newSQLiteStore(t *testing.T) meta.Store {
	t.Helper()

	ctx := context.Background()

	store, err := meta.New(ctx, meta.Options{
		Config: configs.MetaConfig{
			Type:       configs.MetaTypeSQLite,
			Collection: "files",
			SQL:        configs.SQLConfig{Dir: t.TempDir()},
		},
		Database: configs.StagingDatabase,
	})
	if err != nil {
		t.Fatalf("meta.New: %v", err)
	}

	t.Cleanup(func() { _ = store.Close(ctx) })

	return store
}

func strPtr(s string) *string { return &s }

func TestSQLStoreCreateGet(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	id, err := store.Create(ctx, model.FileRecord{Name: "report.pdf", Extension: "pdf", MimeType: "application/pdf"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !model.ValidID(id) {
		t.Fatalf("Create returned malformed id %q", id)
	}

	got, err := store.Get(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}

	want := model.FileRecord{ID: id, Name: "report.pdf", Extension: "pdf", MimeType: "application/pdf"}
	if *got != want {
		t.Errorf("Get = %+v, want %+v", *got, want)
	}
}

func TestSQLStoreGetMissing(t *testing.T) {
	store := newSQLiteStore(t)

	got, err := store.Get(context.Background(), "507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got != nil {
		t.Errorf("expected nil for missing id, got %+v", got)
	}
}

func TestSQLStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	id, err := store.Create(ctx, model.FileRecord{Name: "a.png", Extension: "png", MimeType: "image/png"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.Update(ctx, id, model.Patch{Name: strPtr("b.jpg"), Extension: strPtr("jpg")})
	if err != nil || got == nil {
		t.Fatalf("Update = %v, %v", got, err)
	}

	if got.Name != "b.jpg" || got.Extension != "jpg" || got.MimeType != "image/png" {
		t.Errorf("Update merged wrong fields: %+v", *got)
	}

	again, err := store.Get(ctx, id)
	if err != nil || again == nil || *again != *got {
		t.Errorf("Get after Update = %+v, %v", again, err)
	}

	missing, err := store.Update(ctx, "507f1f77bcf86cd799439011", model.Patch{Name: strPtr("x.txt")})
	if err != nil || missing != nil {
		t.Errorf("Update missing = %+v, %v", missing, err)
	}
}

func TestSQLStoreSearchAll(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	for _, rec := range []model.FileRecord{
		{Name: "report.pdf", Extension: "pdf", MimeType: "application/pdf"},
		{Name: "photo.png", Extension: "png", MimeType: "image/png"},
		{Name: "logo.png", Extension: "png", MimeType: "image/png"},
	} {
		if _, err := store.Create(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	images, err := store.SearchAll(ctx, "image", model.FieldType)
	if err != nil {
		t.Fatal(err)
	}

	if len(images) != 2 {
		t.Errorf("type search = %d records, want 2", len(images))
	}

	none, err := store.SearchAll(ctx, "xyz", model.FieldName)
	if err != nil {
		t.Fatal(err)
	}

	if none == nil || len(none) != 0 {
		t.Errorf("no-match search = %#v, want empty slice", none)
	}

	all, err := store.GetAll(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("GetAll = %d, %v", len(all), err)
	}

	byID, err := store.SearchAll(ctx, all[0].ID, model.FieldID)
	if err != nil || len(byID) == 0 || byID[0].ID != all[0].ID {
		t.Errorf("id search = %+v, %v", byID, err)
	}
}

func TestRegisteredTypes(t *testing.T) {
	types := meta.RegisteredTypes()

	for _, want := range []string{configs.MetaTypeMongo, configs.MetaTypeSQLite, configs.MetaTypePostgres, configs.MetaTypeMySQL} {
		if !slices.Contains(types, want) {
			t.Errorf("RegisteredTypes() = %v, missing %q", types, want)
		}
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := meta.New(context.Background(), meta.Options{
		Config:   configs.MetaConfig{Type: "duckdb"},
		Database: "main",
	})
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestFilter(t *testing.T) {
	records := []model.FileRecord{
		{ID: "1", Name: "John Smith.txt", MimeType: "text/plain"},
		{ID: "2", Name: "abc123.bin", MimeType: "application/octet-stream"},
	}

	got := meta.Filter(records, "JohnSmith", model.FieldName)
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("Filter = %+v", got)
	}
}
