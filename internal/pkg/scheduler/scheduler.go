package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Scheduler manages periodic background jobs
type Scheduler struct {
	cron *cron.Cron
}

// New creates a Scheduler; jobs recover from panics and never overlap themselves
func New() *Scheduler {
	l := cronLogger{log.With().Str("component", "scheduler").Logger()}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(l), cron.WithChain(
			cron.Recover(l),
			cron.SkipIfStillRunning(l),
		)),
	}
}

// Every registers fn to run at a constant interval
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) error {
	if interval <= 0 {
		return fmt.Errorf("register %s: interval must be positive", name)
	}
	s.cron.Schedule(cron.Every(interval), cron.FuncJob(fn))
	log.Debug().Str("job", name).Dur("interval", interval).Msg("Scheduler job registered")
	return nil
}

// AddFunc registers fn with a cron expression
func (s *Scheduler) AddFunc(name, spec string, fn func()) error {
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	return nil
}

// Start starts the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		log.Info().Msg("Scheduler stopped")
	case <-ctx.Done():
		log.Warn().Msg("Scheduler stop timed out with jobs still running")
	}
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
