package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yeisme/filecdn/pkg/scheduler"
)

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()

	s, err := scheduler.NewScheduler(nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	t.Cleanup(func() { _ = s.Shutdown() })

	return s
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}

		time.Sleep(10 * time.Millisecond)
	}
}

func TestAddCronAndRunNow(t *testing.T) {
	ctx := context.Background()
	s := newScheduler(t)

	ran := make(chan struct{}, 1)

	if err := s.AddCron(ctx, "files.reconcile", "0 3 * * *", func(context.Context) error {
		ran <- struct{}{}
		return nil
	}); err != nil {
		t.Fatalf("AddCron: %v", err)
	}

	if err := s.AddCron(ctx, "files.reconcile", "0 4 * * *", func(context.Context) error { return nil }); err == nil {
		t.Fatal("duplicate job name accepted")
	}

	info, err := s.GetJobInfoByName("files.reconcile")
	if err != nil {
		t.Fatal(err)
	}

	if info.Status != scheduler.StatusScheduled || info.NextRun.IsZero() {
		t.Errorf("info = %+v", info)
	}

	s.Start()

	if err := s.RunNow("files.reconcile"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}

	waitFor(t, func() bool {
		info, _ := s.GetJobInfoByName("files.reconcile")
		return !info.LastSuccess.IsZero()
	})
}

func TestJobErrorIsRecorded(t *testing.T) {
	ctx := context.Background()
	s := newScheduler(t)

	if err := s.AddCron(ctx, "failing", "0 3 * * *", func(context.Context) error {
		return errors.New("boom")
	}); err != nil {
		t.Fatal(err)
	}

	s.Start()

	if err := s.RunNow("failing"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		info, _ := s.GetJobInfoByName("failing")
		return info.Status == scheduler.StatusError && info.Error == "boom"
	})
}

func TestUnknownJob(t *testing.T) {
	s := newScheduler(t)

	if err := s.RunNow("missing"); !errors.Is(err, scheduler.ErrJobNotFound) {
		t.Errorf("RunNow = %v", err)
	}

	if err := s.RemoveJobByName("missing"); !errors.Is(err, scheduler.ErrJobNotFound) {
		t.Errorf("RemoveJobByName = %v", err)
	}

	if err := s.AddCron(context.Background(), "bad", "not a cron", func(context.Context) error { return nil }); err == nil {
		t.Error("invalid cron expression accepted")
	}

	if len(s.GetJobInfos()) != 0 {
		t.Error("failed registrations must not be listed")
	}
}
