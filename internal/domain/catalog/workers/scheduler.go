// Package workers runs catalog ingests in the background
package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/RaShaimardanov/franky/internal/domain/catalog/entities"
)

// Runner is one catalog ingest run
type Runner interface {
	Run(ctx context.Context) (entities.Summary, error)
}

// Scheduler triggers ingest runs on a cron spec; overlapping runs are skipped
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger zerolog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler validates spec and registers the ingest job
func NewScheduler(spec string, runner Runner, logger zerolog.Logger) (*Scheduler, error) {
	cronLogger := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		runner: runner,
		logger: logger,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid scraper schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the schedule
func (s *Scheduler) Start() {
	s.logger.Info().Msg("Starting catalog scheduler...")
	s.cron.Start()
}

// Stop cancels a running ingest and waits for it to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping catalog scheduler...")

	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runOnce() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if _, err := s.runner.Run(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled catalog ingest failed")
	}
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
