package job

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/itrun-git/itrun-back/internal/metrics"
)

// Job is a unit of background work run on a cron schedule
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs jobs on cron schedules and waits for in-flight runs on Stop
type Scheduler struct {
	cron    *cron.Cron
	metrics *metrics.Metrics
	logger  *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	running sync.WaitGroup
}

// NewScheduler creates a scheduler evaluating schedules in UTC
func NewScheduler(m *metrics.Metrics, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		metrics: m,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers job under a standard five field cron spec
func (s *Scheduler) Add(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.RunNow(job)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Scheduled job", zap.String("job", job.Name()), zap.String("schedule", spec))
	return nil
}

// RunNow executes job synchronously with the scheduler's context
func (s *Scheduler) RunNow(job Job) {
	s.running.Add(1)
	defer s.running.Done()

	start := time.Now()
	logger := s.logger.With(zap.String("job", job.Name()))
	logger.Debug("Starting scheduled job")

	err := job.Run(s.ctx)
	if s.metrics != nil {
		s.metrics.RecordJobRun(job.Name(), err)
	}
	if err != nil {
		logger.Error("Scheduled job failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return
	}
	logger.Debug("Scheduled job completed", zap.Duration("duration", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them, bounded by ctx
func (s *Scheduler) Stop(ctx context.Context) {
	stopped := s.cron.Stop()
	s.cancel()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("All scheduled jobs stopped")
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for scheduled jobs", zap.Error(ctx.Err()))
	}
}
