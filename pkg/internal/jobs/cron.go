// Package jobs 负责注册业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"errors"

	"github.com/yeisme/filecdn/pkg/configs"
	"github.com/yeisme/filecdn/pkg/internal/service"
	"github.com/yeisme/filecdn/pkg/scheduler"
)

// Reconciler 执行一致性巡检.
type Reconciler interface {
	Reconcile(ctx context.Context) (*service.ReconcileReport, error)
}

// RegisterCronJobs 按配置注册业务定时任务:
//   - reconcile.cron 执行一次元数据与内容的一致性巡检（默认每天 03:00）
func RegisterCronJobs(ctx context.Context, sched *scheduler.Scheduler, r Reconciler, cfg configs.ReconcileConfig) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if r == nil {
		return errors.New("reconciler is nil")
	}

	if !cfg.Enabled {
		return nil
	}

	return sched.AddCron(ctx, JobReconcile, cfg.Cron, func(ctx context.Context) error {
		_, err := r.Reconcile(ctx)
		return err
	})
}
