// Package sweeper periodically cancels review sessions that have been idle
// longer than a configured timeout.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Expirer cancels idle sessions. It is implemented by the review service.
type Expirer interface {
	ExpireIdleSessions(ctx context.Context, idle time.Duration) (int, error)
}

// Config controls how often the sweeper runs and what counts as idle.
type Config struct {
	Interval    time.Duration
	IdleTimeout time.Duration
	// RunTimeout bounds a single sweep. Zero means the interval.
	RunTimeout time.Duration
}

// Sweeper runs an Expirer on a fixed interval.
type Sweeper struct {
	expirer   Expirer
	cfg       Config
	scheduler *gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *slog.Logger
}

// New creates a Sweeper. It does nothing until Start is called.
func New(expirer Expirer, cfg Config, logger *slog.Logger) (*Sweeper, error) {
	if expirer == nil {
		return nil, errors.New("expirer cannot be nil")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", cfg.Interval)
	}
	if cfg.IdleTimeout <= 0 {
		return nil, fmt.Errorf("idle timeout must be positive, got %s", cfg.IdleTimeout)
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = cfg.Interval
	}
	if logger == nil {
		logger = slog.Default()
	}

	scheduler := gocron.NewScheduler(time.UTC)
	// A slow sweep must not overlap the next one.
	scheduler.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		expirer:   expirer,
		cfg:       cfg,
		scheduler: scheduler,
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger.With(slog.String("component", "session_sweeper")),
	}, nil
}

// Start schedules the sweep and returns immediately. The first sweep runs at
// once.
func (s *Sweeper) Start() error {
	if _, err := s.scheduler.Every(s.cfg.Interval).Do(s.sweep); err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	s.scheduler.StartAsync()

	s.logger.Info("session sweeper started",
		slog.Duration("interval", s.cfg.Interval),
		slog.Duration("idle_timeout", s.cfg.IdleTimeout))
	return nil
}

// Stop cancels a running sweep and stops the schedule.
func (s *Sweeper) Stop() {
	s.cancel()
	s.scheduler.Stop()
	s.logger.Info("session sweeper stopped")
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.expirer.ExpireIdleSessions(ctx, s.cfg.IdleTimeout)
	if err != nil {
		return n, fmt.Errorf("session sweep failed: %w", err)
	}

	s.logger.Debug("session sweep finished",
		slog.Int("expired", n),
		slog.Duration("duration", time.Since(start)))
	return n, nil
}

func (s *Sweeper) sweep() {
	if _, err := s.RunOnce(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("session sweep failed", slog.String("error", err.Error()))
	}
}
