package jobs

import (
	"context"
	"fmt"
	"time"

	"hotelbooking/internal/config"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// StayCompleter is satisfied by booking.Service.
type StayCompleter interface {
	CompleteFinishedStays(ctx context.Context, asOf time.Time) (int, error)
}

type Scheduler struct {
	cron      *cron.Cron
	completer StayCompleter
	logger    zerolog.Logger
	timeout   time.Duration
	now       func() time.Time
}

func NewScheduler(completer StayCompleter, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		completer: completer,
		logger:    logger.With().Str("component", "jobs").Logger(),
		timeout:   time.Minute,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register adds the enabled jobs from cfg. A disabled job is not scheduled at all.
func (s *Scheduler) Register(cfg config.JobsConfig) error {
	if !cfg.CompleteStays.Enabled {
		return nil
	}
	if _, err := s.cron.AddFunc(cfg.CompleteStays.Schedule, func() { s.CompleteStays(context.Background()) }); err != nil {
		return fmt.Errorf("schedule complete_stays %q: %w", cfg.CompleteStays.Schedule, err)
	}
	s.logger.Info().Str("job", "complete_stays").Str("schedule", cfg.CompleteStays.Schedule).Msg("job scheduled")
	return nil
}

// CompleteStays is a single run of the stay completion job.
func (s *Scheduler) CompleteStays(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.completer.CompleteFinishedStays(ctx, s.now())
	if err != nil {
		s.logger.Error().Err(err).Str("job", "complete_stays").Int("completed", n).Msg("job failed")
		return
	}
	s.logger.Info().Str("job", "complete_stays").Int("completed", n).Msg("job finished")
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("jobs still running at shutdown")
	}
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
