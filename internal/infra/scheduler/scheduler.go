package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ErrStopped is returned for runs requested after Stop.
var ErrStopped = errors.New("scheduler is stopped")

// Job is one polling task.
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	// InitialDelay, when set, runs the job once that long after Start.
	InitialDelay time.Duration
	Run          func(ctx context.Context) error
}

// PollingScheduler runs every data source on its own cron spec. A run that
// is still busy when the next tick arrives is skipped.
type PollingScheduler struct {
	cronEngine *cron.Cron
	jobs       []Job
	log        *logrus.Entry

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	timers  []*time.Timer
	stopped bool
	// running is only added to under mu while stopped is false.
	running sync.WaitGroup
}

func NewPollingScheduler(log *logrus.Entry, jobs ...Job) *PollingScheduler {
	log = log.WithField("component", "scheduler")
	cronLogger := cron.PrintfLogger(log)
	return &PollingScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		jobs: jobs,
		log:  log,
	}
}

// Start registers every job and starts the cron engine. An invalid spec
// aborts before anything runs.
func (s *PollingScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if s.cancel != nil {
		return nil
	}

	for _, job := range s.jobs {
		job := job
		if _, err := s.cronEngine.AddFunc(job.Spec, func() { s.execute(job) }); err != nil {
			return fmt.Errorf("could not add cron job %q (%s): %w", job.Name, job.Spec, err)
		}
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	for _, job := range s.jobs {
		if job.InitialDelay <= 0 {
			continue
		}
		job := job
		s.timers = append(s.timers, time.AfterFunc(job.InitialDelay, func() { s.execute(job) }))
	}

	s.cronEngine.Start()
	s.log.WithField("jobs", len(s.jobs)).Info("Polling scheduler started")
	return nil
}

// RunNow runs the named job synchronously.
func (s *PollingScheduler) RunNow(name string) error {
	for _, job := range s.jobs {
		if job.Name == name {
			return s.execute(job)
		}
	}
	return fmt.Errorf("unknown job %q", name)
}

func (s *PollingScheduler) execute(job Job) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	parent := s.ctx
	if parent == nil {
		parent = context.Background()
	}
	s.running.Add(1)
	s.mu.Unlock()
	defer s.running.Done()

	ctx := parent
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, job.Timeout)
		defer cancel()
	}

	started := time.Now()
	log := s.log.WithField("job", job.Name)
	log.Debug("Job triggered")
	if err := job.Run(ctx); err != nil {
		log.WithError(err).WithField("duration", time.Since(started).String()).Error("Job failed")
		return err
	}
	log.WithField("duration", time.Since(started).String()).Debug("Job finished")
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (s *PollingScheduler) Stop() {
	s.log.Info("Stopping polling scheduler...")
	s.mu.Lock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.running.Wait()
	s.log.Info("Polling scheduler gracefully stopped.")
}
