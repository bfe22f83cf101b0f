// Package service 实现文件业务逻辑：在元数据存储与内容存储之间协调上传、读取、替换与搜索，
// 并把后端故障统一归类为 errs 中的错误种类. 不处理 HTTP 细节.
package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/filecdn/pkg/internal/errs"
	"github.com/yeisme/filecdn/pkg/internal/model"
	"github.com/yeisme/filecdn/pkg/internal/storage/content"
	"github.com/yeisme/filecdn/pkg/internal/storage/meta"
	"github.com/yeisme/filecdn/pkg/metrics"
	"github.com/yeisme/filecdn/pkg/queue"
	"github.com/yeisme/filecdn/pkg/tracing"
)

// 操作名，用于日志、指标与 span.
const (
	OpCreate = "create"
	OpGet    = "get"
	OpUpdate = "update"
	OpList   = "list"
	OpSearch = "search"
)

// FileService 负责文件相关业务逻辑. 服务本身无锁，并发安全由各后端保证.
type FileService struct {
	meta      meta.Store
	content   content.Store
	events    queue.Publisher
	logger    *zerolog.Logger
	stage     string
	publicURL string
}

// Option FileService 可选项.
type Option func(*FileService)

// WithEvents 在写入成功后发布 file.created / file.updated 事件.
func WithEvents(pub queue.Publisher) Option {
	return func(s *FileService) { s.events = pub }
}

// WithDeployment 事件中携带的部署阶段与公开地址.
func WithDeployment(stage, publicURL string) Option {
	return func(s *FileService) {
		s.stage = stage
		s.publicURL = publicURL
	}
}

// NewFileService 使用显式注入的后端创建服务.
func NewFileService(ms meta.Store, cs content.Store, logger *zerolog.Logger, opts ...Option) *FileService {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	s := &FileService{meta: ms, content: cs, logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateFile 保存新文件并返回分配的 id. 扩展名在任何写入之前校验；
// 内容写入失败时已写入的元数据不会回滚.
func (s *FileService) CreateFile(ctx context.Context, name, mimeType string, data []byte) (id string, err error) {
	ctx, span := s.start(ctx, OpCreate, attribute.String("file.name", name), attribute.Int("file.size", len(data)))
	defer func() { s.finish(span, OpCreate, err, len(data)) }()

	ext, err := model.Extension(name)
	if err != nil {
		return "", errs.InvalidInput("file name %q has no extension", name)
	}

	rec := model.FileRecord{Name: name, Extension: ext, MimeType: mimeType}

	id, err = s.meta.Create(ctx, rec)
	if err != nil {
		return "", s.fail(OpCreate, "", "failed to save file metadata", err)
	}

	rec.ID = id
	span.SetAttributes(attribute.String("file.id", id))

	if _, err := s.content.Write(ctx, id, data); err != nil {
		return "", s.fail(OpCreate, id, "failed to save file content", err)
	}

	s.publishCreated(ctx, rec, data)

	return id, nil
}

// GetFile 返回元数据与内容；任一缺失都视为 NotFound.
func (s *FileService) GetFile(ctx context.Context, id string) (file *model.File, err error) {
	ctx, span := s.start(ctx, OpGet, attribute.String("file.id", id))
	defer func() { s.finish(span, OpGet, err, fileSize(file)) }()

	if !model.ValidID(id) {
		return nil, errs.InvalidInput("malformed file id %q", id)
	}

	rec, err := s.meta.Get(ctx, id)
	if err != nil {
		return nil, s.fail(OpGet, id, "failed to load file metadata", err)
	}

	if rec == nil {
		return nil, errs.NotFound("file %s not found", id)
	}

	data, err := s.content.Read(ctx, id)
	if errors.Is(err, content.ErrNotExist) {
		s.logger.Warn().Str("op", OpGet).Str("id", id).Msg("metadata exists but content is missing")

		return nil, errs.NotFound("file %s not found", id)
	}

	if err != nil {
		return nil, s.fail(OpGet, id, "failed to load file content", err)
	}

	return &model.File{FileRecord: *rec, Content: data}, nil
}

// UpdateFile 替换已存在文件的名称、类型与内容. 元数据与内容是两次独立写入，
// 内容替换失败时元数据不会回滚.
func (s *FileService) UpdateFile(ctx context.Context, id, name, mimeType string, data []byte) (file *model.File, err error) {
	ctx, span := s.start(ctx, OpUpdate,
		attribute.String("file.id", id),
		attribute.String("file.name", name),
		attribute.Int("file.size", len(data)),
	)
	defer func() { s.finish(span, OpUpdate, err, len(data)) }()

	if !model.ValidID(id) {
		return nil, errs.InvalidInput("malformed file id %q", id)
	}

	prev, err := s.meta.Get(ctx, id)
	if err != nil {
		return nil, s.fail(OpUpdate, id, "failed to load file metadata", err)
	}

	if prev == nil {
		return nil, errs.NotFound("file %s not found", id)
	}

	ext, err := model.Extension(name)
	if err != nil {
		return nil, errs.InvalidInput("file name %q has no extension", name)
	}

	updated, err := s.meta.Update(ctx, id, model.Patch{Name: &name, Extension: &ext, MimeType: &mimeType})
	if err != nil {
		return nil, s.fail(OpUpdate, id, "failed to update file metadata", err)
	}

	if updated == nil {
		// 前置检查通过后记录消失，属于不变量被破坏而不是普通的未找到
		return nil, s.fail(OpUpdate, id, "failed to update file metadata", errors.New("record vanished during update"))
	}

	if _, err := s.content.Replace(ctx, id, data); err != nil {
		if errors.Is(err, content.ErrNotExist) {
			s.logger.Warn().Str("op", OpUpdate).Str("id", id).Msg("metadata updated but content is missing")

			return nil, errs.NotFound("file %s not found", id)
		}

		return nil, s.fail(OpUpdate, id, "failed to replace file content", err)
	}

	s.publishUpdated(ctx, *updated, prev.Name, data)

	return &model.File{FileRecord: *updated, Content: data}, nil
}

// ListAll 返回全部文件元数据.
func (s *FileService) ListAll(ctx context.Context) (records []model.FileRecord, err error) {
	ctx, span := s.start(ctx, OpList)
	defer func() { s.finish(span, OpList, err, -1) }()

	records, err = s.meta.GetAll(ctx)
	if err != nil {
		return nil, s.fail(OpList, "", "failed to list files", err)
	}

	if records == nil {
		records = []model.FileRecord{}
	}

	return records, nil
}

// Search 返回 field 与 query 模糊匹配的记录；没有匹配时返回空切片而不是错误.
func (s *FileService) Search(ctx context.Context, query string, field model.Field) (records []model.FileRecord, err error) {
	ctx, span := s.start(ctx, OpSearch, attribute.String("search.field", string(field)), attribute.String("search.query", query))
	defer func() { s.finish(span, OpSearch, err, -1) }()

	switch field {
	case model.FieldID, model.FieldName, model.FieldType:
	default:
		return nil, errs.InvalidInput("unknown search field %q", field)
	}

	records, err = s.meta.SearchAll(ctx, query, field)
	if err != nil {
		return nil, s.fail(OpSearch, "", "failed to search files", err)
	}

	if records == nil {
		records = []model.FileRecord{}
	}

	return records, nil
}

func (s *FileService) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracing.StartSpan(ctx, "files."+op, trace.WithAttributes(attrs...))
}

// finish 结束 span 并记录指标.
func (s *FileService) finish(span trace.Span, op string, err error, size int) {
	result := "ok"

	switch errs.KindOf(err) {
	case errs.KindInvalidInput:
		result = "invalid_input"
	case errs.KindNotFound:
		result = "not_found"
	case errs.KindStorageFailure:
		result = "storage_failure"

		tracing.RecordError(span, err)
	case errs.KindUnknown:
	}

	metrics.RecordFileOp(op, result, size)
	span.End()
}

// fail 记录原因并返回不暴露细节的 StorageFailure.
func (s *FileService) fail(op, id, msg string, cause error) error {
	ev := s.logger.Error().Err(cause).Str("op", op)
	if id != "" {
		ev = ev.Str("id", id)
	}

	ev.Msg(msg)

	return errs.StorageFailure(msg, cause)
}

func fileSize(f *model.File) int {
	if f == nil {
		return -1
	}

	return len(f.Content)
}
