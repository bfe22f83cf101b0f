package service

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/filecdn/pkg/internal/model"
	"github.com/yeisme/filecdn/pkg/queue"
)

const producer = "filecdn"

func (s *FileService) fileRef(rec model.FileRecord, data []byte) queue.FileRef {
	return queue.FileRef{
		ID:        rec.ID,
		Name:      rec.Name,
		Extension: rec.Extension,
		MimeType:  rec.MimeType,
		Size:      len(data),
		ETag:      model.ETag(data),
	}
}

func (s *FileService) fileURL(id string) string {
	if s.publicURL == "" {
		return ""
	}

	return s.publicURL + "/" + id
}

func headerOpts(ctx context.Context) []func(*queue.EventHeader) {
	opts := []func(*queue.EventHeader){queue.WithProducer(producer)}

	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		opts = append(opts, queue.WithTraceID(sc.TraceID().String()))
	}

	return opts
}

// publishCreated 尽力发布，失败只记录日志.
func (s *FileService) publishCreated(ctx context.Context, rec model.FileRecord, data []byte) {
	if s.events == nil {
		return
	}

	payload := queue.FileCreatedPayload{File: s.fileRef(rec, data), Stage: s.stage, URL: s.fileURL(rec.ID)}
	if err := queue.PublishFileCreated(ctx, s.events, payload, headerOpts(ctx)...); err != nil {
		s.logger.Warn().Err(err).Str("id", rec.ID).Str("topic", queue.TopicFileCreated).Msg("publish event failed")
	}
}

// publishUpdated 尽力发布，失败只记录日志.
func (s *FileService) publishUpdated(ctx context.Context, rec model.FileRecord, prevName string, data []byte) {
	if s.events == nil {
		return
	}

	payload := queue.FileUpdatedPayload{File: s.fileRef(rec, data), PrevName: prevName, Stage: s.stage, URL: s.fileURL(rec.ID)}
	if err := queue.PublishFileUpdated(ctx, s.events, payload, headerOpts(ctx)...); err != nil {
		s.logger.Warn().Err(err).Str("id", rec.ID).Str("topic", queue.TopicFileUpdated).Msg("publish event failed")
	}
}
