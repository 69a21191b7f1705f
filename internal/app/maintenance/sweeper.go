package maintenance

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/deskhaven/authcore/internal/core"
	"github.com/deskhaven/authcore/pkg/logger"
	"github.com/deskhaven/authcore/pkg/metrics"
)

const defaultSweepSpec = "@hourly"

// Sweeper periodically expires idle access tokens so the live session indexes
// stay bounded. Lazy check-time expiry remains the authoritative mechanism;
// the sweep only catches tokens that are never presented again.
type Sweeper struct {
	core     *core.Core
	cron     *cron.Cron
	schedule string
	log      *zap.Logger
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper with sensible defaults.
func NewSweeper(authCore *core.Core, opts ...Option) *Sweeper {
	sweeper := &Sweeper{
		core:     authCore,
		schedule: defaultSweepSpec,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(sweeper)
	}

	if sweeper.cron == nil {
		sweeper.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return sweeper
}

// Start registers the sweep job and launches the scheduler.
func (s *Sweeper) Start() error {
	if s.core == nil {
		return errors.New("maintenance: core is required")
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep()
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any running sweep to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes the sweep immediately. Used in tests and during graceful
// shutdown.
func (s *Sweeper) RunOnce() error {
	var errs error
	if s.core == nil {
		errs = multierr.Append(errs, errors.New("maintenance: core is required"))
		return errs
	}

	s.runSweep()
	return errs
}

func (s *Sweeper) runSweep() {
	swept := s.core.SweepExpiredTokens()
	if swept > 0 {
		metrics.ExpiredTokensSwept.Add(float64(swept))
		s.log.Info("expired idle tokens", zap.Int("count", swept))
	}
}
