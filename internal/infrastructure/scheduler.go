package infrastructure

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron with named interval jobs and slog-routed internals.
type Scheduler struct {
	inner gocron.Scheduler
	log   *slog.Logger
}

func NewScheduler(log *slog.Logger) (*Scheduler, error) {
	inner, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(&gocronSlog{log: log}),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{
		inner: inner,
		log:   log.With("component", "scheduler"),
	}, nil
}

// AddEvery registers job to run at the given interval. Jobs do their own
// error handling; panics are gocron's to recover.
func (s *Scheduler) AddEvery(name string, interval time.Duration, job func()) error {
	_, err := s.inner.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(job),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.log.Info("job scheduled", "name", name, "interval", interval)
	return nil
}

// Start launches the job loop.
func (s *Scheduler) Start() {
	s.inner.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	return s.inner.Shutdown()
}

// gocronSlog adapts slog to gocron's logger interface.
type gocronSlog struct {
	log *slog.Logger
}

func (g *gocronSlog) Debug(msg string, args ...any) { g.log.Debug(msg, args...) }
func (g *gocronSlog) Error(msg string, args ...any) { g.log.Error(msg, args...) }
func (g *gocronSlog) Info(msg string, args ...any)  { g.log.Info(msg, args...) }
func (g *gocronSlog) Warn(msg string, args ...any)  { g.log.Warn(msg, args...) }
