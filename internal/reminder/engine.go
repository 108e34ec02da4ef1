// Package reminder decides when a task needs a reminder and delivers it.
package reminder

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"chime/internal/logging"
	"chime/internal/task"
)

const (
	DefaultThreshold      = 5 * time.Minute
	DefaultCheckInterval  = 30 * time.Second
	DefaultBannerDuration = 5 * time.Second
)

// Source is the task collection the engine scans. MarkNotified must report
// false when the task can no longer be notified.
type Source interface {
	Pending() ([]task.Task, error)
	MarkNotified(id int64) (bool, error)
}

// Reminder is one fired reminder.
type Reminder struct {
	Task         task.Task
	Banner       string
	Notification Notification
}

func BannerFor(t task.Task) string {
	return fmt.Sprintf("Reminder: \"%s\" is due soon!", t.Name)
}

// ShouldFire reports whether t is eligible right now: not completed, not yet
// notified and due within (0, threshold] of now.
func ShouldFire(t task.Task, now time.Time, threshold time.Duration) bool {
	if t.Completed || t.Notified {
		return false
	}
	due := t.Due()
	if due.IsZero() {
		return false
	}
	delta := due.Sub(now)
	return delta > 0 && delta <= threshold
}

// Select returns the tasks that fire at now, in the order given.
func Select(tasks []task.Task, now time.Time, threshold time.Duration) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if ShouldFire(t, now, threshold) {
			out = append(out, t)
		}
	}
	return out
}

type Engine struct {
	source    Source
	sink      NotificationSink
	threshold time.Duration
	icon      string
	logger    *log.Logger
}

type Option func(*Engine)

func WithThreshold(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.threshold = d
		}
	}
}

func WithIcon(path string) Option {
	return func(e *Engine) { e.icon = path }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEngine(source Source, sink NotificationSink, opts ...Option) *Engine {
	if sink == nil {
		sink = NopSink{}
	}
	e := &Engine{
		source:    source,
		sink:      sink,
		threshold: DefaultThreshold,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Threshold() time.Duration {
	return e.threshold
}

// Evaluate scans the pending tasks once. Every task that fires is marked
// notified before its notification goes out, so a second call with the same
// now fires nothing.
func (e *Engine) Evaluate(now time.Time) ([]Reminder, error) {
	pending, err := e.source.Pending()
	if err != nil {
		return nil, fmt.Errorf("load pending tasks: %w", err)
	}

	var fired []Reminder
	for _, t := range Select(pending, now, e.threshold) {
		ok, err := e.source.MarkNotified(t.ID)
		if err != nil {
			return fired, err
		}
		if !ok {
			continue
		}
		t.Notified = true
		r := Reminder{
			Task:         t,
			Banner:       BannerFor(t),
			Notification: NotificationFor(t, e.icon),
		}
		e.logger.Info("reminder fired", "id", t.ID, "task", t.Name, "due", t.Due().Format(time.RFC3339))
		if err := e.sink.Notify(r.Notification); err != nil {
			e.logger.Warn("notification not delivered", "id", t.ID, "err", err)
		}
		fired = append(fired, r)
	}
	return fired, nil
}
