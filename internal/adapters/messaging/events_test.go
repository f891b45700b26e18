package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/gomarket-storefront/pkg/interfaces"
)

// loopbackPort доставляет опубликованные сообщения подписчикам синхронно
type loopbackPort struct {
	mu       sync.Mutex
	handlers map[string][]interfaces.MessageHandler
	keys     []string
}

func newLoopbackPort() *loopbackPort {
	return &loopbackPort{handlers: make(map[string][]interfaces.MessageHandler)}
}

func (p *loopbackPort) PublishWithKey(ctx context.Context, topic, key string, message []byte) error {
	p.mu.Lock()
	p.keys = append(p.keys, key)
	handlers := append([]interfaces.MessageHandler(nil), p.handlers[topic]...)
	p.mu.Unlock()

	for _, h := range handlers {
		if err := h(ctx, &interfaces.Message{Topic: topic, Key: key, Value: message}); err != nil {
			return err
		}
	}
	return nil
}

func (p *loopbackPort) Subscribe(_ context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[topic] = append(p.handlers[topic], handler)
	return func() error { return nil }, nil
}

func (p *loopbackPort) Close() error { return nil }

func TestEventBusPublishAndSubscribe(t *testing.T) {
	port := newLoopbackPort()
	bus := NewEventBus(port, "products", "instance-a")

	var got []ProductEvent
	_, err := bus.Subscribe(context.Background(), func(_ context.Context, evt ProductEvent) error {
		got = append(got, evt)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), ProductUpdatedEvent, "new-slug", "old-slug"))

	require.Len(t, got, 1)
	assert.Equal(t, ProductUpdatedEvent, got[0].Type)
	assert.Equal(t, "new-slug", got[0].Slug)
	assert.Equal(t, "old-slug", got[0].PreviousSlug)
	assert.Equal(t, "instance-a", got[0].Source)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, []string{"new-slug"}, port.keys)
}

func TestEventBusRejectsMalformedPayload(t *testing.T) {
	port := newLoopbackPort()
	bus := NewEventBus(port, "products", "")
	assert.NotEmpty(t, bus.Source())

	called := false
	_, err := bus.Subscribe(context.Background(), func(context.Context, ProductEvent) error {
		called = true
		return nil
	})
	require.NoError(t, err)

	err = port.PublishWithKey(context.Background(), "products", "k", []byte("not json"))
	assert.Error(t, err)
	assert.False(t, called)
}

func TestProductEventJSON(t *testing.T) {
	raw, err := json.Marshal(ProductEvent{Type: ProductDeletedEvent, Slug: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"product_deleted"`)
	assert.NotContains(t, string(raw), "previousSlug")
}

func TestNoopMessaging(t *testing.T) {
	port := NewNoopMessaging()
	assert.NoError(t, port.PublishWithKey(context.Background(), "t", "k", nil))
	unsubscribe, err := port.Subscribe(context.Background(), "t", nil)
	require.NoError(t, err)
	assert.NoError(t, unsubscribe())
	assert.NoError(t, port.Close())
}
