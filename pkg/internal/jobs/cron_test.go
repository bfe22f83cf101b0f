package jobs_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/filecdn/pkg/configs"
	"github.com/yeisme/filecdn/pkg/internal/jobs"
	"github.com/yeisme/filecdn/pkg/internal/service"
	"github.com/yeisme/filecdn/pkg/scheduler"
)

type countingReconciler struct{ runs atomic.Int32 }

func (c *countingReconciler) Reconcile(context.Context) (*service.ReconcileReport, error) {
	c.runs.Add(1)
	return &service.ReconcileReport{}, nil
}

func TestRegisterCronJobs(t *testing.T) {
	ctx := context.Background()

	sched, err := scheduler.NewScheduler(nil)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = sched.Shutdown() })

	r := &countingReconciler{}

	if err := jobs.RegisterCronJobs(ctx, sched, r, configs.ReconcileConfig{Enabled: false, Cron: "0 3 * * *"}); err != nil {
		t.Fatal(err)
	}

	if len(sched.GetJobInfos()) != 0 {
		t.Fatal("disabled reconcile job registered")
	}

	if err := jobs.RegisterCronJobs(ctx, sched, r, configs.ReconcileConfig{Enabled: true, Cron: "0 3 * * *"}); err != nil {
		t.Fatal(err)
	}

	sched.Start()

	if err := sched.RunNow(jobs.JobReconcile); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for r.runs.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("reconcile job did not run")
		}

		time.Sleep(10 * time.Millisecond)
	}
}

func TestRegisterCronJobsRequiresDependencies(t *testing.T) {
	if err := jobs.RegisterCronJobs(context.Background(), nil, &countingReconciler{}, configs.ReconcileConfig{}); err == nil {
		t.Error("nil scheduler accepted")
	}
}
