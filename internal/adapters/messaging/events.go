package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/athebyme/gomarket-storefront/pkg/interfaces"
)

// EventType тип события об изменении товара
type EventType string

const (
	ProductCreatedEvent EventType = "product_created"
	ProductUpdatedEvent EventType = "product_updated"
	ProductDeletedEvent EventType = "product_deleted"
)

// ProductEvent событие, которое экземпляры витрины рассылают после изменения товара,
// чтобы остальные сбросили свой кэш
type ProductEvent struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	Slug         string    `json:"slug"`
	PreviousSlug string    `json:"previousSlug,omitempty"`
	Source       string    `json:"source"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// EventBus публикует и читает ProductEvent через MessagingPort
type EventBus struct {
	port   interfaces.MessagingPort
	topic  string
	source string
}

// NewEventBus создает шину событий. source идентифицирует экземпляр сервиса.
func NewEventBus(port interfaces.MessagingPort, topic, source string) *EventBus {
	if source == "" {
		source = uuid.NewString()
	}
	return &EventBus{port: port, topic: topic, source: source}
}

// Source идентификатор этого экземпляра
func (b *EventBus) Source() string {
	return b.source
}

// Publish отправляет событие, ключ партиционирования slug товара
func (b *EventBus) Publish(ctx context.Context, eventType EventType, slug, previousSlug string) error {
	evt := ProductEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		Slug:         slug,
		PreviousSlug: previousSlug,
		Source:       b.source,
		OccurredAt:   time.Now().UTC(),
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("ошибка сериализации события: %w", err)
	}

	if err := b.port.PublishWithKey(ctx, b.topic, slug, payload); err != nil {
		return fmt.Errorf("ошибка публикации события %s: %w", eventType, err)
	}
	return nil
}

// Subscribe вызывает handler для каждого события из топика
func (b *EventBus) Subscribe(ctx context.Context, handler func(context.Context, ProductEvent) error) (func() error, error) {
	return b.port.Subscribe(ctx, b.topic, func(ctx context.Context, msg *interfaces.Message) error {
		var evt ProductEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return fmt.Errorf("некорректное событие %s: %w", msg.ID, err)
		}
		return handler(ctx, evt)
	})
}
