package messaging

import (
	"context"

	"github.com/athebyme/gomarket-storefront/pkg/interfaces"
)

// NoopMessaging используется, когда Kafka выключена: публикация ничего не делает
type NoopMessaging struct{}

// NewNoopMessaging создает пустую реализацию MessagingPort
func NewNoopMessaging() interfaces.MessagingPort {
	return NoopMessaging{}
}

func (NoopMessaging) PublishWithKey(context.Context, string, string, []byte) error {
	return nil
}

func (NoopMessaging) Subscribe(context.Context, string, interfaces.MessageHandler) (func() error, error) {
	return func() error { return nil }, nil
}

func (NoopMessaging) Close() error {
	return nil
}
