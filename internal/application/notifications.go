package application

import (
	"log/slog"
	"sync"
	"time"

	"github.com/example/calendar-events/internal/logging"
)

// NotificationLifetime is how long a notification stays at the head of the
// queue before it is dismissed.
const NotificationLifetime = 2 * time.Second

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a transient user-visible message.
type Notification struct {
	ID        string
	Title     string
	Message   string
	Severity  Severity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Notifier receives the outcome of user actions.
type Notifier interface {
	Notify(title, message string, severity Severity) Notification
}

// NotificationCenter queues notifications and dismisses them one at a time:
// each one expires NotificationLifetime after it reaches the head of the queue.
type NotificationCenter struct {
	mu          sync.Mutex
	items       []Notification
	lifetime    time.Duration
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewNotificationCenter constructs a center. A non-positive lifetime selects
// NotificationLifetime.
func NewNotificationCenter(lifetime time.Duration, idGenerator func() string, now func() time.Time) *NotificationCenter {
	return NewNotificationCenterWithLogger(lifetime, idGenerator, now, nil)
}

// NewNotificationCenterWithLogger constructs a center with an explicit logger.
func NewNotificationCenterWithLogger(lifetime time.Duration, idGenerator func() string, now func() time.Time, logger *slog.Logger) *NotificationCenter {
	if lifetime <= 0 {
		lifetime = NotificationLifetime
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationCenter{
		lifetime:    lifetime,
		idGenerator: idGenerator,
		now:         now,
		logger:      logging.Or(logger),
	}
}

// Notify enqueues a notification and returns it.
func (c *NotificationCenter) Notify(title, message string, severity Severity) Notification {
	if c == nil {
		return Notification{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.pruneLocked(now)

	headFree := now
	if n := len(c.items); n > 0 && c.items[n-1].ExpiresAt.After(headFree) {
		headFree = c.items[n-1].ExpiresAt
	}

	notification := Notification{
		ID:        c.idGenerator(),
		Title:     title,
		Message:   message,
		Severity:  severity,
		CreatedAt: now,
		ExpiresAt: headFree.Add(c.lifetime),
	}
	c.items = append(c.items, notification)

	c.logger.Debug("notification queued", "notification_id", notification.ID, "severity", string(severity), "title", title)
	return notification
}

// Active returns the notifications that have not expired, oldest first.
func (c *NotificationCenter) Active() []Notification {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked(c.now())
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Dismiss removes a notification before it expires.
func (c *NotificationCenter) Dismiss(id string) error {
	if c == nil {
		return ErrNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Sweep drops expired notifications and reports how many were removed.
func (c *NotificationCenter) Sweep() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pruneLocked(c.now())
}

func (c *NotificationCenter) pruneLocked(now time.Time) int {
	kept := c.items[:0]
	for _, item := range c.items {
		if now.Before(item.ExpiresAt) {
			kept = append(kept, item)
		}
	}
	removed := len(c.items) - len(kept)
	c.items = kept
	return removed
}
