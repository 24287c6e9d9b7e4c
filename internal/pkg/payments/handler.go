package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrEventTypeMismatch means a handler was invoked with an event of a type it
// was not built for. This is a wiring bug, not a runtime condition: correctly
// registered handlers never see it.
var ErrEventTypeMismatch = errors.New("payments: event type does not match handler")

// Handler is a unit of business logic bound to one webhook event type.
// Callers never invoke Handle directly; dispatch goes through Execute, which
// wraps it with validation, timing and logging.
type Handler interface {
	Name() string
	EventType() string
	Handle(ctx context.Context, event *Event) error
}

// Guard is implemented by handlers that share a wire-level event type with
// others and claim only a content-based subset of it. Handlers without a
// guard act as the generic fallback for their event type.
type Guard interface {
	CanHandle(event *Event) bool
}

// BaseHandler carries the identity and logger every concrete handler embeds.
type BaseHandler struct {
	name      string
	eventType string
	logger    *zap.Logger
}

// NewBaseHandler builds the embedded base for a concrete handler.
func NewBaseHandler(name, eventType string, logger *zap.Logger) BaseHandler {
	return BaseHandler{name: name, eventType: eventType, logger: logger}
}

// Name returns the handler name used in logs.
func (b *BaseHandler) Name() string { return b.name }

// EventType returns the single event type this handler is bound to.
func (b *BaseHandler) EventType() string { return b.eventType }

// Logger returns the handler-scoped logger.
func (b *BaseHandler) Logger() *zap.Logger { return b.logger }

type loggerProvider interface {
	Logger() *zap.Logger
}

// Execute is the only way handlers run. It asserts the event type matches,
// logs start and outcome with wall-clock duration, and propagates any error
// from Handle unchanged. It never swallows or retries: retry policy belongs
// to the provider's webhook redelivery.
func Execute(ctx context.Context, h Handler, event *Event) error {
	if event.Type != h.EventType() {
		return fmt.Errorf("%w: handler %s expects %q, got %q (event %s)",
			ErrEventTypeMismatch, h.Name(), h.EventType(), event.Type, event.ID)
	}

	log := zap.NewNop()
	if lp, ok := h.(loggerProvider); ok && lp.Logger() != nil {
		log = lp.Logger()
	}

	log.Info("webhook handler started",
		zap.String("handler", h.Name()),
		zap.String("event_type", event.Type),
		zap.String("event_id", event.ID),
	)

	start := time.Now()
	err := h.Handle(ctx, event)
	duration := time.Since(start)

	if err != nil {
		log.Error("webhook handler failed",
			zap.String("handler", h.Name()),
			zap.String("event_id", event.ID),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return err
	}

	log.Info("webhook handler completed",
		zap.String("handler", h.Name()),
		zap.String("event_id", event.ID),
		zap.Duration("duration", duration),
	)
	return nil
}
