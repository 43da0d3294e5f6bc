package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/shared"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers event to subscribed handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		handler := newTestHandler("inventory.stock_below_reorder")
		bus.Subscribe(handler)

		event := newTestEvent("inventory.stock_below_reorder")
		err := bus.Publish(context.Background(), event)

		require.NoError(t, err)
		require.Len(t, handler.getHandled(), 1)
		assert.Equal(t, event, handler.getHandled()[0])
	})

	t.Run("does not deliver events of other types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		handler := newTestHandler("inventory.transfer_requested")
		bus.Subscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent("sales.sale_completed"))

		require.NoError(t, err)
		assert.Empty(t, handler.getHandled())
	})

	t.Run("handler error does not fail publish or block other handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		failing := newTestHandler("sales.sale_completed")
		failing.err = errors.New("smtp unavailable")
		healthy := newTestHandler("sales.sale_completed")

		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(context.Background(), newTestEvent("sales.sale_completed"))

		require.NoError(t, err)
		assert.Len(t, failing.getHandled(), 1)
		assert.Len(t, healthy.getHandled(), 1)
	})

	t.Run("wildcard subscription receives all events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		handler := newTestHandler()
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("sales.sale_completed")))
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("inventory.transfer_requested")))

		assert.Len(t, handler.getHandled(), 2)
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("sales.sale_completed")
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("sales.sale_completed")))
	assert.Empty(t, handler.getHandled())
}
