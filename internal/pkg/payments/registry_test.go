package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newGuardedSpy(name, eventType string, claims func(*Event) bool) *guardedSpyHandler {
	return &guardedSpyHandler{
		spyHandler: spyHandler{BaseHandler: NewBaseHandler(name, eventType, zap.NewNop())},
		claims:     claims,
	}
}

func TestRegistryReplacesUnguardedHandler(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	first := newSpy("First", "checkout.session.completed", nil)
	second := newSpy("Second", "checkout.session.completed", nil)

	registry.Register(first)
	registry.Register(second)

	handlers := registry.Get("checkout.session.completed")
	require.Len(t, handlers, 1, "second unguarded registration must replace the first")
	assert.Equal(t, "Second", handlers[0].Name())
	assert.Equal(t, 1, registry.Count())
}

func TestRegistryGuardedHandlersAccumulate(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	registry.RegisterAll([]Handler{
		newGuardedSpy("GuardA", "checkout.session.completed", func(*Event) bool { return false }),
		newGuardedSpy("GuardB", "checkout.session.completed", func(*Event) bool { return false }),
		newSpy("Fallback", "checkout.session.completed", nil),
	})

	handlers := registry.Get("checkout.session.completed")
	require.Len(t, handlers, 3)
	assert.Equal(t, "GuardA", handlers[0].Name())
	assert.Equal(t, "GuardB", handlers[1].Name())
	assert.Equal(t, "Fallback", handlers[2].Name(), "fallback dispatches last")
	assert.True(t, registry.Has("checkout.session.completed"))
}

func TestDispatchPrefersClaimingGuard(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	claiming := newGuardedSpy("Claiming", "checkout.session.completed", func(*Event) bool { return true })
	fallback := newSpy("Fallback", "checkout.session.completed", nil)
	registry.RegisterAll([]Handler{claiming, fallback})

	handled, err := registry.Dispatch(context.Background(), &Event{ID: "evt_1", Type: "checkout.session.completed"})

	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 1, claiming.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestDispatchFallsBackWhenNoGuardClaims(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	declining := newGuardedSpy("Declining", "checkout.session.completed", func(*Event) bool { return false })
	fallback := newSpy("Fallback", "checkout.session.completed", nil)
	registry.RegisterAll([]Handler{declining, fallback})

	handled, err := registry.Dispatch(context.Background(), &Event{ID: "evt_1", Type: "checkout.session.completed"})

	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 0, declining.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestDispatchUnhandledEventTypeIsNotAnError(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	handled, err := registry.Dispatch(context.Background(), &Event{ID: "evt_1", Type: "invoice.paid"})

	assert.NoError(t, err)
	assert.False(t, handled)
}

func TestDispatchUnclaimedEventWithoutFallback(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	registry.Register(newGuardedSpy("Declining", "checkout.session.completed", func(*Event) bool { return false }))

	handled, err := registry.Dispatch(context.Background(), &Event{ID: "evt_1", Type: "checkout.session.completed"})

	assert.NoError(t, err)
	assert.False(t, handled)
}

func TestRegistryClear(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	registry.Register(newSpy("Fallback", "checkout.session.completed", nil))
	require.Equal(t, 1, registry.Count())

	registry.Clear()

	assert.Equal(t, 0, registry.Count())
	assert.False(t, registry.Has("checkout.session.completed"))
}
