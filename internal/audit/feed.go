// Package audit keeps the bounded, newest-first trail of back-office events.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"securekyc/internal/models"
)

// Capacity is the number of events a feed retains.
const Capacity = 500

// Feed stores audit events. List returns newest first.
type Feed interface {
	Emit(ctx context.Context, evt models.AuditEvent) error
	List(ctx context.Context) ([]models.AuditEvent, error)
}

// Emitter records events on a feed without ever failing the caller.
type Emitter struct {
	feed Feed
	log  *zap.Logger
	now  func() time.Time
}

// NewEmitter wraps feed.
func NewEmitter(feed Feed, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{feed: feed, log: log.Named("audit"), now: time.Now}
}

// Feed returns the wrapped feed.
func (e *Emitter) Feed() Feed { return e.feed }

// Emit appends an event. Feed errors are logged and dropped.
func (e *Emitter) Emit(ctx context.Context, kind, title, message, source string, meta map[string]any) {
	evt := models.AuditEvent{
		ID:        uuid.NewString(),
		Type:      kind,
		Title:     title,
		Message:   message,
		Source:    source,
		Timestamp: e.now().UTC(),
		Meta:      meta,
	}
	if evt.Meta == nil {
		evt.Meta = map[string]any{}
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("audit emit panicked", zap.String("title", title), zap.Any("panic", r))
		}
	}()
	if err := e.feed.Emit(ctx, evt); err != nil {
		e.log.Warn("audit emit failed", zap.String("title", title), zap.Error(err))
	}
}

// List returns the feed's events, newest first.
func (e *Emitter) List(ctx context.Context) ([]models.AuditEvent, error) {
	return e.feed.List(ctx)
}
