// Package render holds surface-independent Renderer decorators.
package render

import (
	"log/slog"
	"sync"

	"github.com/mmcdole/datapass/internal/domain"
)

// Tracker remembers the last frame drawn for each widget
type Tracker struct {
	next domain.Renderer

	mu   sync.RWMutex
	last map[int]domain.Frame
}

// NewTracker wraps next; next may be nil
func NewTracker(next domain.Renderer) *Tracker {
	return &Tracker{next: next, last: make(map[int]domain.Frame)}
}

func (t *Tracker) Render(f domain.Frame) {
	t.Remember(f)
	if t.next != nil {
		t.next.Render(f)
	}
}

// Remember records f as the last frame for its widget without drawing it
func (t *Tracker) Remember(f domain.Frame) {
	t.mu.Lock()
	t.last[f.WidgetID] = f
	t.mu.Unlock()
}

// Last returns the most recent frame for id
func (t *Tracker) Last(id int) (domain.Frame, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f, ok := t.last[id]
	return f, ok
}

// Clickable reports whether a tap on id should reach the scheduler.
// Widgets that were never drawn accept taps.
func (t *Tracker) Clickable(id int) bool {
	f, ok := t.Last(id)
	return !ok || f.ClickEnabled
}

// Forget drops the remembered frame for id
func (t *Tracker) Forget(id int) {
	t.mu.Lock()
	delete(t.last, id)
	t.mu.Unlock()
}

// Log writes frames to a logger: intermediate frames at debug, settled
// frames at info. It is the surface when no terminal is attached.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Render(f domain.Frame) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !f.ClickEnabled {
		logger.Debug("frame", "widget", f.WidgetID, "progress", f.Progress)
		return
	}
	logger.Info("widget updated",
		"widget", f.WidgetID,
		"progress", f.Progress,
		"usage", f.PrimaryText,
		"unit", f.SecondaryText,
		"updated", f.TimestampText,
		"hint", f.HintText,
		"color", f.Color.String(),
	)
}

// Multi draws every frame on each renderer in order
type Multi []domain.Renderer

func (m Multi) Render(f domain.Frame) {
	for _, r := range m {
		r.Render(f)
	}
}
