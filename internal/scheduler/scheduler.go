// Package scheduler runs periodic maintenance jobs such as the overdue sweep.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner. Jobs never overlap with themselves.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	// runs tracks jobs started by RunNow.
	runs sync.WaitGroup

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	entries map[string]cron.EntryID
}

// New creates a Scheduler using the local time zone.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cronLogger := cronLog{logger: logger}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers job under name with a standard cron spec or descriptor
// (e.g. "@hourly"). Adding a name twice replaces the earlier job.
func (s *Scheduler) Add(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[name]; ok {
		s.cron.Remove(prev)
	}

	entryID, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("add job %q: %w", name, err)
	}
	s.entries[name] = entryID
	return nil
}

// RunNow starts the named job once in the background, outside its
// schedule. The run goes through the same chain as scheduled runs, so it is
// skipped while the job is already running, and Stop waits for it. It
// reports whether a run was started.
func (s *Scheduler) RunNow(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, ok := s.entries[name]
	if !ok || s.ctx.Err() != nil {
		return false
	}
	job := s.cron.Entry(entryID).WrappedJob
	if job == nil {
		return false
	}

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		job.Run()
	}()
	return true
}

// Next returns the next scheduled run of the named job.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	entryID, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(entryID).Next, true
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.cron.Start()
		s.started = true
		s.logger.Info("scheduler started", slog.Int("jobs", len(s.entries)))
	}
}

// Stop halts the scheduler and waits for running jobs to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if started {
			<-s.cron.Stop().Done()
		}
		s.runs.Wait()
	}()

	select {
	case <-done:
		if started {
			s.logger.Info("scheduler stopped")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run(name string, job Job) {
	start := time.Now()
	if err := job(s.ctx); err != nil {
		s.logger.Error("scheduled job failed",
			slog.String("job", name),
			slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("scheduled job finished",
		slog.String("job", name),
		slog.Duration("duration", time.Since(start)))
}

// cronLog adapts slog to the cron.Logger interface.
type cronLog struct {
	logger *slog.Logger
}

func (l cronLog) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLog) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err.Error())...)
}
