package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/filecdn/pkg/internal/model"
	"github.com/yeisme/filecdn/pkg/internal/storage/content"
	"github.com/yeisme/filecdn/pkg/internal/storage/meta"
)

var errBackend = errors.New("backend unavailable")

// memMeta 内存元数据存储，可注入故障.
type memMeta struct {
	mu      sync.Mutex
	seq     int
	records map[string]model.FileRecord
	order   []string

	failCreate bool
	failGet    bool
	failUpdate bool
	vanish     bool // Update 时假装记录不存在
	writes     int
}

func newMemMeta() *memMeta {
	return &memMeta{records: map[string]model.FileRecord{}}
}

func (m *memMeta) Create(_ context.Context, rec model.FileRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCreate {
		return "", errBackend
	}

	m.seq++
	m.writes++
	rec.ID = fmt.Sprintf("%024x", m.seq)
	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)

	return rec.ID, nil
}

func (m *memMeta) Get(_ context.Context, id string) (*model.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failGet {
		return nil, errBackend
	}

	rec, ok := m.records[id]
	if !ok {
		return nil, nil //nolint:nilnil // 不存在
	}

	return &rec, nil
}

func (m *memMeta) GetAll(_ context.Context) ([]model.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failGet {
		return nil, errBackend
	}

	out := make([]model.FileRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id])
	}

	return out, nil
}

func (m *memMeta) Update(_ context.Context, id string, patch model.Patch) (*model.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failUpdate {
		return nil, errBackend
	}

	rec, ok := m.records[id]
	if !ok || m.vanish {
		return nil, nil //nolint:nilnil // 不存在
	}

	m.writes++
	patch.Apply(&rec)
	m.records[id] = rec

	return &rec, nil
}

func (m *memMeta) SearchAll(ctx context.Context, query string, field model.Field) ([]model.FileRecord, error) {
	all, err := m.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return meta.Filter(all, query, field), nil
}

func (m *memMeta) Ping(context.Context) error  { return nil }
func (m *memMeta) Close(context.Context) error { return nil }

// memContent 内存内容存储，可注入故障.
type memContent struct {
	mu    sync.Mutex
	blobs map[string][]byte

	failWrite  bool
	failRead   bool
	failExists bool
	writes     int
}

func newMemContent() *memContent {
	return &memContent{blobs: map[string][]byte{}}
}

func (c *memContent) Write(_ context.Context, id string, data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failWrite {
		return nil, errBackend
	}

	c.writes++
	c.blobs[id] = append([]byte(nil), data...)

	return data, nil
}

func (c *memContent) Read(_ context.Context, id string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failRead {
		return nil, errBackend
	}

	data, ok := c.blobs[id]
	if !ok {
		return nil, content.ErrNotExist
	}

	return data, nil
}

func (c *memContent) Replace(ctx context.Context, id string, data []byte) ([]byte, error) {
	c.mu.Lock()
	_, ok := c.blobs[id]
	c.mu.Unlock()

	if !ok {
		return nil, content.ErrNotExist
	}

	return c.Write(ctx, id, data)
}

func (c *memContent) Exists(_ context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failExists {
		return false, errBackend
	}

	_, ok := c.blobs[id]

	return ok, nil
}

func (c *memContent) Ping(context.Context) error { return nil }

func (c *memContent) drop(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.blobs, id)
}

// recordingPublisher 记录发布的主题.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.topics = append(p.topics, topic)

	return p.err
}
