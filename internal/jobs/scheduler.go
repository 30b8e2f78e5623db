package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"panchayat/internal/config"
	"panchayat/internal/queue"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, values map[string]any) error
}

// Scheduler periodically enqueues maintenance tasks for the worker.
type Scheduler struct {
	cron  *cron.Cron
	queue Enqueuer
	cfg   config.JobsConfig
	log   zerolog.Logger
}

func NewScheduler(q Enqueuer, cfg config.JobsConfig, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithSeconds()),
		queue: q,
		cfg:   cfg,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.PollExpirySpec, s.enqueue(queue.TaskPollExpiry)); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.ResetPurgeSpec, s.enqueue(queue.TaskResetPurge)); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().
		Str("poll_expiry", s.cfg.PollExpirySpec).
		Str("reset_purge", s.cfg.ResetPurgeSpec).
		Msg("scheduler started")
	return nil
}

// Stop halts scheduling and waits up to timeout for running jobs.
func (s *Scheduler) Stop(timeout time.Duration) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(timeout):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueue(taskType string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.queue.Enqueue(ctx, taskType, map[string]any{
			"scheduledAt": time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			s.log.Error().Err(err).Str("type", taskType).Msg("enqueue scheduled task failed")
		}
	}
}
