package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"chime/internal/logging"
)

// Scheduler drives an Engine from a ticker for runs without the task view.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	onFire   func(Reminder)
	now      func() time.Time
	logger   *log.Logger
}

func NewScheduler(engine *Engine, interval time.Duration, onFire func(Reminder), logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	if onFire == nil {
		onFire = func(Reminder) {}
	}
	return &Scheduler{
		engine:   engine,
		interval: interval,
		onFire:   onFire,
		now:      time.Now,
		logger:   logger,
	}
}

// Run evaluates immediately and then once per interval until ctx is
// cancelled. The ticker is stopped on return.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.engine == nil {
		return errors.New("scheduler has no engine")
	}
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}

	s.logger.Info("scheduler started", "interval", s.interval, "threshold", s.engine.Threshold())

	s.tick()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	fired, err := s.engine.Evaluate(s.now())
	if err != nil {
		s.logger.Error("reminder check failed", "err", err)
	}
	for _, r := range fired {
		s.onFire(r)
	}
}
