// Package notify keeps transient, auto-dismissing user notifications.
package notify

import (
	"sync"
	"time"
)

// Kind is the severity of a notification.
type Kind string

// Kinds.
const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

// Notification is one message shown to the user until it expires.
type Notification struct {
	ID      MessageID
	Kind    Kind
	Message string
	Expires time.Time
}

// Center collects notifications. It is safe for concurrent use.
type Center struct {
	tr  *Translator
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items []Notification
}

// NewCenter returns a Center rendering messages with tr. A non-positive ttl
// means [DefaultTTL]; a nil now means [time.Now].
func NewCenter(tr *Translator, ttl time.Duration, now func() time.Time) *Center {
	if tr == nil {
		panic("notify: translator is nil")
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if now == nil {
		now = time.Now
	}

	return &Center{tr: tr, ttl: ttl, now: now}
}

// Push renders id with data and queues it.
func (c *Center) Push(kind Kind, id MessageID, data map[string]any) Notification {
	n := Notification{
		ID:      id,
		Kind:    kind,
		Message: c.tr.Text(id, data),
		Expires: c.now().Add(c.ttl),
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()

	return n
}

// Active drops expired notifications and returns the rest, oldest first.
func (c *Center) Active() []Notification {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]

	for _, n := range c.items {
		if now.Before(n.Expires) {
			kept = append(kept, n)
		}
	}

	c.items = kept

	return append([]Notification(nil), kept...)
}

// Drain returns every queued notification, expired or not, and empties the
// queue. Controllers that print each notification once use this.
func (c *Center) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.items
	c.items = nil

	return out
}
