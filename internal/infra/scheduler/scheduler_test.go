package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"school_dashboard/internal/infra/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestPollingScheduler_InvalidSpec(t *testing.T) {
	s := NewPollingScheduler(testLogger(), Job{Name: "bad", Spec: "not a spec", Run: func(context.Context) error { return nil }})

	err := s.Start()
	assert.Error(t, err)
}

func TestPollingScheduler_RunNow(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	s := NewPollingScheduler(testLogger(),
		Job{Name: "ok", Spec: "@every 1h", Run: func(context.Context) error { calls.Add(1); return nil }},
		Job{Name: "fail", Spec: "@every 1h", Run: func(context.Context) error { return boom }},
	)

	require.NoError(t, s.RunNow("ok"))
	assert.ErrorIs(t, s.RunNow("fail"), boom)
	assert.Error(t, s.RunNow("missing"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestPollingScheduler_TimeoutReachesJob(t *testing.T) {
	s := NewPollingScheduler(testLogger(), Job{
		Name:    "slow",
		Spec:    "@every 1h",
		Timeout: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})

	assert.ErrorIs(t, s.RunNow("slow"), context.DeadlineExceeded)
}

func TestPollingScheduler_InitialDelayRunsOnce(t *testing.T) {
	done := make(chan struct{}, 1)
	s := NewPollingScheduler(testLogger(), Job{
		Name:         "plans",
		Spec:         "@every 1h",
		InitialDelay: 5 * time.Millisecond,
		Run: func(context.Context) error {
			done <- struct{}{}
			return nil
		},
	})
	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("initial run did not happen")
	}
}

func TestPollingScheduler_StopCancelsRunningJob(t *testing.T) {
	started := make(chan struct{})
	s := NewPollingScheduler(testLogger(), Job{
		Name:         "blocking",
		Spec:         "@every 1h",
		InitialDelay: time.Millisecond,
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	})
	require.NoError(t, s.Start())
	<-started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestDashboardJobs_CalendarOnlyWhenConfigured(t *testing.T) {
	cfg := &config.AppConfig{
		CronSpecPlans:    "*/5 * * * *",
		CronSpecCalendar: "*/30 * * * *",
		CronSpecWeather:  "*/10 * * * *",
		CronSpecTransit:  "@every 30s",
		CronSpecHolidays: "0 5 * * *",
	}
	names := func(jobs []Job) []string {
		out := make([]string, 0, len(jobs))
		for _, j := range jobs {
			out = append(out, j.Name)
		}
		return out
	}

	assert.Equal(t, []string{JobPlans, JobWeather, JobTransit, JobHolidays}, names(DashboardJobs(cfg, Services{})))

	cfg.CalendarICSURL = "https://example.org/cal.ics"
	jobs := DashboardJobs(cfg, Services{})
	assert.Contains(t, names(jobs), JobCalendar)
	assert.Equal(t, initialPlanDelay, jobs[0].InitialDelay)
}

func TestPollingScheduler_NoRunsAfterStop(t *testing.T) {
	var calls atomic.Int32
	s := NewPollingScheduler(testLogger(), Job{
		Name: "weather",
		Spec: "@every 1h",
		Run:  func(context.Context) error { calls.Add(1); return nil },
	})
	require.NoError(t, s.Start())

	results := make(chan error, 20)
	for i := 0; i < cap(results); i++ {
		go func() { results <- s.RunNow("weather") }()
	}
	s.Stop()

	before := calls.Load()
	for i := 0; i < cap(results); i++ {
		err := <-results
		if err != nil {
			assert.ErrorIs(t, err, ErrStopped)
		}
	}
	assert.Equal(t, before, calls.Load())
	assert.ErrorIs(t, s.RunNow("weather"), ErrStopped)
	assert.ErrorIs(t, s.Start(), ErrStopped)
}
