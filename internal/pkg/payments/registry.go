package payments

import (
	"context"

	"go.uber.org/zap"
)

// Registry routes webhook events to handlers. Per event type it keeps an
// ordered list of guarded candidates plus at most one unguarded fallback.
// Dispatch evaluates guards in registration order and runs the first handler
// that claims the event; the fallback runs when no guard matches. Guarded
// handlers for the same type are mutually exclusive by product slug, so
// first-match is sufficient.
type Registry struct {
	entries map[string]*registryEntry
	logger  *zap.Logger
}

type registryEntry struct {
	guarded  []Handler
	fallback Handler
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		logger:  logger,
	}
}

// Register adds a handler for its event type. Guarded handlers accumulate in
// call order; registering a second unguarded handler for a type replaces the
// previous one with a warning. Replacement is intentional (test and override
// scenarios), not a silent bug.
func (r *Registry) Register(h Handler) {
	entry, ok := r.entries[h.EventType()]
	if !ok {
		entry = &registryEntry{}
		r.entries[h.EventType()] = entry
	}

	if _, guarded := h.(Guard); guarded {
		entry.guarded = append(entry.guarded, h)
		return
	}

	if entry.fallback != nil {
		r.logger.Warn("replacing registered webhook handler",
			zap.String("event_type", h.EventType()),
			zap.String("previous", entry.fallback.Name()),
			zap.String("handler", h.Name()),
		)
	}
	entry.fallback = h
}

// RegisterAll registers handlers preserving call order, which determines
// guard precedence for shared event types.
func (r *Registry) RegisterAll(handlers []Handler) {
	for _, h := range handlers {
		r.Register(h)
	}
}

// Get returns the handlers registered for an event type in dispatch order:
// guarded candidates first, fallback last.
func (r *Registry) Get(eventType string) []Handler {
	entry, ok := r.entries[eventType]
	if !ok {
		return nil
	}
	handlers := make([]Handler, 0, len(entry.guarded)+1)
	handlers = append(handlers, entry.guarded...)
	if entry.fallback != nil {
		handlers = append(handlers, entry.fallback)
	}
	return handlers
}

// Has reports whether any handler is registered for the event type.
func (r *Registry) Has(eventType string) bool {
	return len(r.Get(eventType)) > 0
}

// Dispatch routes the event to its handler. The bool reports whether a
// handler ran. An unhandled event type is normal, not an error: the provider
// sends many types the application does not care about, so it logs at debug
// level and returns false. Handler errors propagate unchanged; the registry
// is a router, not an error boundary.
func (r *Registry) Dispatch(ctx context.Context, event *Event) (bool, error) {
	entry, ok := r.entries[event.Type]
	if !ok {
		r.logger.Debug("no handler registered for event type",
			zap.String("event_type", event.Type),
			zap.String("event_id", event.ID),
		)
		return false, nil
	}

	for _, h := range entry.guarded {
		if h.(Guard).CanHandle(event) {
			return true, Execute(ctx, h, event)
		}
	}

	if entry.fallback != nil {
		return true, Execute(ctx, entry.fallback, event)
	}

	r.logger.Debug("no handler claimed event",
		zap.String("event_type", event.Type),
		zap.String("event_id", event.ID),
	)
	return false, nil
}

// Clear removes all registrations.
func (r *Registry) Clear() {
	r.entries = make(map[string]*registryEntry)
}

// Count returns the number of registered handlers.
func (r *Registry) Count() int {
	n := 0
	for _, entry := range r.entries {
		n += len(entry.guarded)
		if entry.fallback != nil {
			n++
		}
	}
	return n
}
