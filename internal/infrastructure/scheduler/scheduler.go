package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/makerspace/membership-service/internal/api/metrics"
	"github.com/makerspace/membership-service/internal/core/ports"
)

const (
	defaultSchedule  = "@every 1m"
	defaultBatchSize = 50
	runTimeout       = 2 * time.Minute
)

// Config controls the reconcile job.
type Config struct {
	Schedule  string
	BatchSize int
}

// Scheduler runs the periodic reconcile drain.
type Scheduler struct {
	cron      *cron.Cron
	reconcile ports.ReconcileService
	queue     ports.ReconcileQueue
	cfg       Config
	log       zerolog.Logger
}

func New(reconcile ports.ReconcileService, queue ports.ReconcileQueue, cfg Config, log zerolog.Logger) *Scheduler {
	if cfg.Schedule == "" {
		cfg.Schedule = defaultSchedule
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	cronLog := cronLogger{log: log}
	c := cron.New(cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)))

	return &Scheduler{cron: c, reconcile: reconcile, queue: queue, cfg: cfg, log: log}
}

// Start registers the reconcile job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.RunReconcile); err != nil {
		return fmt.Errorf("schedule reconcile job %q: %w", s.cfg.Schedule, err)
	}
	s.log.Info().Str("schedule", s.cfg.Schedule).Int("batch_size", s.cfg.BatchSize).Msg("scheduled reconcile job")
	s.cron.Start()
	return nil
}

// Stop stops the cron loop. The returned context is done once a running job
// has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunReconcile drains one batch of the reconcile queue.
func (s *Scheduler) RunReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	res, err := s.reconcile.Drain(ctx, s.cfg.BatchSize)
	if err != nil {
		s.log.Error().Err(err).Msg("reconcile drain failed")
	}
	if res != nil {
		metrics.ReconcileJobsTotal.WithLabelValues("succeeded").Add(float64(res.Succeeded))
		metrics.ReconcileJobsTotal.WithLabelValues("requeued").Add(float64(res.Requeued))
		metrics.ReconcileJobsTotal.WithLabelValues("dropped").Add(float64(res.Dropped))
		metrics.ReconcileJobsTotal.WithLabelValues("skipped").Add(float64(res.Skipped))
		metrics.ReconcileJobsTotal.WithLabelValues("lost").Add(float64(res.Lost))
	}

	if n, err := s.queue.Len(ctx); err == nil {
		metrics.ReconcileQueueLength.Set(float64(n))
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
