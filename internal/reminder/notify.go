package reminder

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gen2brain/beeep"

	"chime/internal/logging"
	"chime/internal/task"
)

const NotificationTitle = "Task Reminder"

// Permission mirrors the host permission states for system notifications.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

func ParsePermission(v string) (Permission, error) {
	switch p := Permission(v); p {
	case PermissionDefault, PermissionGranted, PermissionDenied:
		return p, nil
	case "":
		return PermissionDefault, nil
	default:
		return "", fmt.Errorf("unknown notification permission %q (want default, granted or denied)", v)
	}
}

type Notification struct {
	Title string
	Body  string
	Icon  string
}

func NotificationFor(t task.Task, icon string) Notification {
	return Notification{
		Title: NotificationTitle,
		Body:  fmt.Sprintf("\"%s\" is scheduled at %s", t.Name, t.Time),
		Icon:  icon,
	}
}

// NotificationSink delivers system notifications. Delivery is best effort:
// callers log a returned error and carry on.
type NotificationSink interface {
	Notify(n Notification) error
}

// Gate is implemented by sinks whose delivery depends on a permission the
// user settles once.
type Gate interface {
	Permission() Permission
	Resolve(granted bool) Permission
}

type NopSink struct{}

func (NopSink) Notify(Notification) error { return nil }

// DesktopSink sends notifications through the desktop notification service.
type DesktopSink struct {
	permission Permission
	send       func(title, body, icon string) error
	logger     *log.Logger
}

func NewDesktopSink(p Permission, logger *log.Logger) *DesktopSink {
	if logger == nil {
		logger = logging.Discard()
	}
	return &DesktopSink{
		permission: p,
		send:       beeepNotify,
		logger:     logger,
	}
}

func beeepNotify(title, body, icon string) error {
	return beeep.Notify(title, body, icon)
}

func (s *DesktopSink) Permission() Permission {
	return s.permission
}

// Resolve settles a default permission. Once granted or denied the answer is
// kept and later calls change nothing.
func (s *DesktopSink) Resolve(granted bool) Permission {
	if s.permission != PermissionDefault {
		return s.permission
	}
	if granted {
		s.permission = PermissionGranted
	} else {
		s.permission = PermissionDenied
	}
	s.logger.Info("notification permission resolved", "permission", s.permission)
	return s.permission
}

// Notify is a silent no-op unless permission was granted.
func (s *DesktopSink) Notify(n Notification) error {
	if s.permission != PermissionGranted {
		s.logger.Debug("notification skipped", "permission", s.permission, "title", n.Title)
		return nil
	}
	if err := s.send(n.Title, n.Body, n.Icon); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}
