package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/yeisme/filecdn/pkg/internal/errs"
	"github.com/yeisme/filecdn/pkg/internal/model"
	"github.com/yeisme/filecdn/pkg/internal/service"
	"github.com/yeisme/filecdn/pkg/queue"
)

const unknownID = "ffffffffffffffffffffffff"

func newService(opts ...service.Option) (*service.FileService, *memMeta, *memContent) {
	m := newMemMeta()
	c := newMemContent()

	return service.NewFileService(m, c, nil, opts...), m, c
}

func wantKind(t *testing.T, err error, kind errs.Kind) {
	t.Helper()

	if got := errs.KindOf(err); got != kind {
		t.Fatalf("error kind = %v (%v), want %v", got, err, kind)
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	id, err := svc.CreateFile(ctx, "report.pdf", "application/pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	f, err := svc.GetFile(ctx, id)
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}

	if f.ID != id || f.Name != "report.pdf" || f.Extension != "pdf" || f.MimeType != "application/pdf" {
		t.Errorf("unexpected record %+v", f.FileRecord)
	}

	if !bytes.Equal(f.Content, []byte("%PDF")) {
		t.Errorf("content = %q", f.Content)
	}

	// 读取是幂等的
	again, err := svc.GetFile(ctx, id)
	if err != nil || again.FileRecord != f.FileRecord || !bytes.Equal(again.Content, f.Content) {
		t.Errorf("second GetFile = %+v, %v", again, err)
	}
}

func TestCreateRejectsNameWithoutExtensionBeforeWriting(t *testing.T) {
	for _, name := range []string{"README", "archive."} {
		t.Run(name, func(t *testing.T) {
			svc, m, c := newService()

			_, err := svc.CreateFile(context.Background(), name, "text/plain", []byte("x"))
			wantKind(t, err, errs.KindInvalidInput)

			if m.writes != 0 || c.writes != 0 {
				t.Errorf("storage written: meta=%d content=%d", m.writes, c.writes)
			}
		})
	}
}

func TestCreateStorageFailures(t *testing.T) {
	t.Run("meta", func(t *testing.T) {
		svc, m, c := newService()
		m.failCreate = true

		_, err := svc.CreateFile(context.Background(), "a.png", "image/png", []byte("x"))
		wantKind(t, err, errs.KindStorageFailure)

		if c.writes != 0 {
			t.Error("content written after metadata failure")
		}

		if errs.Message(err) == errBackend.Error() {
			t.Error("backend cause leaked into public message")
		}
	})

	t.Run("content", func(t *testing.T) {
		svc, m, c := newService()
		c.failWrite = true

		_, err := svc.CreateFile(context.Background(), "a.png", "image/png", []byte("x"))
		wantKind(t, err, errs.KindStorageFailure)

		// 没有回滚：元数据保留，由巡检发现
		if len(m.records) != 1 {
			t.Errorf("metadata records = %d, want 1", len(m.records))
		}
	})
}

func TestGetFileNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, c := newService()

	_, err := svc.GetFile(ctx, unknownID)
	wantKind(t, err, errs.KindNotFound)

	id, err := svc.CreateFile(ctx, "a.txt", "text/plain", []byte("a"))
	if err != nil {
		t.Fatal(err)
	}

	c.drop(id)

	_, err = svc.GetFile(ctx, id)
	wantKind(t, err, errs.KindNotFound)
}

func TestGetFileMalformedID(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.GetFile(context.Background(), "not-an-id")
	wantKind(t, err, errs.KindInvalidInput)
}

func TestGetFileStorageFailure(t *testing.T) {
	ctx := context.Background()
	svc, m, c := newService()

	id, err := svc.CreateFile(ctx, "a.txt", "text/plain", []byte("a"))
	if err != nil {
		t.Fatal(err)
	}

	c.failRead = true

	_, err = svc.GetFile(ctx, id)
	wantKind(t, err, errs.KindStorageFailure)

	c.failRead = false
	m.failGet = true

	_, err = svc.GetFile(ctx, id)
	wantKind(t, err, errs.KindStorageFailure)

	if !errors.Is(err, errBackend) {
		t.Error("cause should stay reachable through Unwrap for logging")
	}
}

func TestUpdateOverwrites(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	id, err := svc.CreateFile(ctx, "a.png", "image/png", []byte("old"))
	if err != nil {
		t.Fatal(err)
	}

	f, err := svc.UpdateFile(ctx, id, "b.jpg", "image/jpeg", []byte("new"))
	if err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}

	want := model.FileRecord{ID: id, Name: "b.jpg", Extension: "jpg", MimeType: "image/jpeg"}
	if f.FileRecord != want || string(f.Content) != "new" {
		t.Errorf("UpdateFile = %+v %q", f.FileRecord, f.Content)
	}

	got, err := svc.GetFile(ctx, id)
	if err != nil || got.FileRecord != want || string(got.Content) != "new" {
		t.Errorf("GetFile after update = %+v, %v", got, err)
	}
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id", func(t *testing.T) {
		svc, m, c := newService()

		_, err := svc.UpdateFile(ctx, unknownID, "a.txt", "text/plain", []byte("x"))
		wantKind(t, err, errs.KindNotFound)

		if m.writes != 0 || c.writes != 0 {
			t.Error("update of unknown id must not write")
		}
	})

	t.Run("no extension", func(t *testing.T) {
		svc, m, _ := newService()

		id, err := svc.CreateFile(ctx, "a.txt", "text/plain", []byte("x"))
		if err != nil {
			t.Fatal(err)
		}

		_, err = svc.UpdateFile(ctx, id, "Makefile", "text/plain", []byte("y"))
		wantKind(t, err, errs.KindInvalidInput)

		if m.records[id].Name != "a.txt" {
			t.Error("metadata changed despite invalid name")
		}
	})

	t.Run("record vanished", func(t *testing.T) {
		svc, m, _ := newService()

		id, err := svc.CreateFile(ctx, "a.txt", "text/plain", []byte("x"))
		if err != nil {
			t.Fatal(err)
		}

		m.vanish = true

		_, err = svc.UpdateFile(ctx, id, "b.txt", "text/plain", []byte("y"))
		wantKind(t, err, errs.KindStorageFailure)
	})

	t.Run("content missing", func(t *testing.T) {
		svc, _, c := newService()

		id, err := svc.CreateFile(ctx, "a.txt", "text/plain", []byte("x"))
		if err != nil {
			t.Fatal(err)
		}

		c.drop(id)

		_, err = svc.UpdateFile(ctx, id, "b.txt", "text/plain", []byte("y"))
		wantKind(t, err, errs.KindNotFound)

		if ok, _ := c.Exists(ctx, id); ok {
			t.Error("replace must not create content")
		}
	})

	t.Run("meta failure", func(t *testing.T) {
		svc, m, _ := newService()

		id, err := svc.CreateFile(ctx, "a.txt", "text/plain", []byte("x"))
		if err != nil {
			t.Fatal(err)
		}

		m.failUpdate = true

		_, err = svc.UpdateFile(ctx, id, "b.txt", "text/plain", []byte("y"))
		wantKind(t, err, errs.KindStorageFailure)
	})
}

func TestListAndSearch(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	empty, err := svc.ListAll(ctx)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("ListAll on empty store = %#v, %v", empty, err)
	}

	var ids []string

	for _, f := range []struct{ name, mime string }{
		{"report.pdf", "application/pdf"},
		{"photo.png", "image/png"},
		{"John Smith.txt", "text/plain"},
	} {
		id, err := svc.CreateFile(ctx, f.name, f.mime, []byte(f.name))
		if err != nil {
			t.Fatal(err)
		}

		ids = append(ids, id)
	}

	all, err := svc.ListAll(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListAll = %d, %v", len(all), err)
	}

	tests := []struct {
		query string
		field model.Field
		want  []string
	}{
		{"report", model.FieldName, []string{ids[0]}},
		{"image", model.FieldType, []string{ids[1]}},
		{"JohnSmith", model.FieldName, []string{ids[2]}},
		{ids[1], model.FieldID, []string{ids[1]}},
		{"xyz", model.FieldName, []string{}},
	}

	for _, tt := range tests {
		got, err := svc.Search(ctx, tt.query, tt.field)
		if err != nil {
			t.Fatalf("Search(%q, %s): %v", tt.query, tt.field, err)
		}

		if got == nil {
			t.Fatalf("Search(%q, %s) returned nil slice", tt.query, tt.field)
		}

		gotIDs := make([]string, 0, len(got))
		for _, r := range got {
			gotIDs = append(gotIDs, r.ID)
		}

		if len(gotIDs) != len(tt.want) {
			t.Errorf("Search(%q, %s) = %v, want %v", tt.query, tt.field, gotIDs, tt.want)
			continue
		}

		for i := range gotIDs {
			if gotIDs[i] != tt.want[i] {
				t.Errorf("Search(%q, %s) = %v, want %v", tt.query, tt.field, gotIDs, tt.want)
			}
		}
	}

	_, err = svc.Search(ctx, "x", model.Field("size"))
	wantKind(t, err, errs.KindInvalidInput)
}

func TestEventsArePublishedBestEffort(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, _, _ := newService(service.WithEvents(pub), service.WithDeployment("local", "http://localhost:8080"))

	id, err := svc.CreateFile(ctx, "a.txt", "text/plain", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}

	pub.err = errors.New("broker down")

	if _, err := svc.UpdateFile(ctx, id, "b.txt", "text/plain", []byte("y")); err != nil {
		t.Fatalf("publish failure must not fail the update: %v", err)
	}

	if len(pub.topics) != 2 || pub.topics[0] != queue.TopicFileCreated || pub.topics[1] != queue.TopicFileUpdated {
		t.Errorf("published topics = %v", pub.topics)
	}
}

func TestNoEventsOnFailure(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _, c := newService(service.WithEvents(pub))
	c.failWrite = true

	_, _ = svc.CreateFile(context.Background(), "a.txt", "text/plain", []byte("x"))

	if len(pub.topics) != 0 {
		t.Errorf("published %v after failed create", pub.topics)
	}
}
