package cron

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/discountsync/pkg/logger"
)

// Job is a task run on every tick of the scheduler.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// ServiceParams configure the scheduler. Jobs run in order; nil entries are
// skipped.
type ServiceParams struct {
	Logger   *logger.Logger
	Jobs     []Job
	Interval time.Duration
}

// Service runs its jobs on a fixed cadence.
type Service struct {
	logg     *logger.Logger
	jobs     []Job
	interval time.Duration
}

// NewService builds a scheduler. The interval must be positive.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Interval <= 0 {
		return nil, errors.New("interval must be positive")
	}
	jobs := make([]Job, 0, len(params.Jobs))
	for _, job := range params.Jobs {
		if job != nil {
			jobs = append(jobs, job)
		}
	}
	return &Service{
		logg:     params.Logger,
		jobs:     jobs,
		interval: params.Interval,
	}, nil
}

// Run ticks until the context is canceled. The first cycle runs after one
// interval; the initial load follows the selection.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Debug(ctx, "scheduler context canceled")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Service) runCycle(ctx context.Context) {
	for _, job := range s.jobs {
		s.runJob(ctx, job)
	}
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	start := time.Now()
	err := job.Run(jobCtx)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		s.logg.WarnErr(jobCtx, "job failed", err)
		return
	}
	s.logg.Debug(jobCtx, "job completed")
}
