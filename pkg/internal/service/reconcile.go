package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yeisme/filecdn/pkg/internal/model"
	"github.com/yeisme/filecdn/pkg/metrics"
	"github.com/yeisme/filecdn/pkg/tracing"
)

// DefaultReconcileConcurrency 同时检查内容是否存在的最大并发数.
const DefaultReconcileConcurrency = 8

// ReconcileReport 一次巡检的结果.
type ReconcileReport struct {
	Checked   int                `json:"checked"`
	Orphans   []model.FileRecord `json:"orphans"`
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration"`
}

// Reconcile 找出有元数据但没有内容的记录（创建或替换中途失败留下的），
// 只报告不修复.
func (s *FileService) Reconcile(ctx context.Context) (report *ReconcileReport, err error) {
	ctx, span := tracing.StartSpan(ctx, "files.reconcile")
	defer span.End()

	started := time.Now()

	defer func() {
		result := "ok"
		if err != nil {
			result = "error"

			tracing.RecordError(span, err)
		}

		metrics.ReconcileRuns.WithLabelValues(result).Inc()
	}()

	records, err := s.meta.GetAll(ctx)
	if err != nil {
		return nil, s.fail("reconcile", "", "failed to list files", err)
	}

	missing := make([]bool, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultReconcileConcurrency)

	for i := range records {
		g.Go(func() error {
			ok, err := s.content.Exists(gctx, records[i].ID)
			if err != nil {
				return err
			}

			missing[i] = !ok

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, s.fail("reconcile", "", "failed to check file content", err)
	}

	report = &ReconcileReport{Checked: len(records), Orphans: []model.FileRecord{}, StartedAt: started}

	for i, m := range missing {
		if !m {
			continue
		}

		report.Orphans = append(report.Orphans, records[i])
		s.logger.Warn().
			Str("id", records[i].ID).
			Str("name", records[i].Name).
			Msg("orphaned metadata: content is missing")
	}

	report.Duration = time.Since(started)
	metrics.OrphanedRecords.Set(float64(len(report.Orphans)))

	s.logger.Info().
		Int("checked", report.Checked).
		Int("orphans", len(report.Orphans)).
		Dur("duration", report.Duration).
		Msg("reconciliation finished")

	return report, nil
}
