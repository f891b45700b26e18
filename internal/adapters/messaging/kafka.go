package messaging

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"

	"github.com/athebyme/gomarket-storefront/pkg/interfaces"
)

// KafkaOptions параметры подключения к Kafka
type KafkaOptions struct {
	Brokers         []string
	GroupID         string
	ClientID        string
	AutoOffsetReset string
	PollTimeout     time.Duration
}

// KafkaMessaging реализация MessagingPort с использованием Kafka
type KafkaMessaging struct {
	producer *kafka.Producer
	opts     KafkaOptions
	logger   interfaces.LoggerPort
	wg       sync.WaitGroup

	subsMutex     sync.Mutex
	subscriptions map[string]func() error
}

// NewKafkaMessaging создает producer. Потребители создаются при подписке.
func NewKafkaMessaging(opts KafkaOptions, logger interfaces.LoggerPort) (*KafkaMessaging, error) {
	if len(opts.Brokers) == 0 {
		return nil, fmt.Errorf("не заданы брокеры Kafka")
	}
	if opts.ClientID == "" {
		opts.ClientID = "storefront"
	}
	if opts.AutoOffsetReset == "" {
		opts.AutoOffsetReset = "latest"
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 100 * time.Millisecond
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": strings.Join(opts.Brokers, ","),
		"client.id":         opts.ClientID + "-producer",
		"acks":              "all",
		"retries":           5,
		"retry.backoff.ms":  500,
		"linger.ms":         10,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka producer: %w", err)
	}

	k := &KafkaMessaging{
		producer:      producer,
		opts:          opts,
		logger:        logger,
		subscriptions: make(map[string]func() error),
	}

	k.wg.Add(1)
	go k.deliveryReports()

	return k, nil
}

// deliveryReports читает отчеты о доставке, иначе очередь producer переполнится
func (k *KafkaMessaging) deliveryReports() {
	defer k.wg.Done()
	for ev := range k.producer.Events() {
		switch e := ev.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error != nil {
				k.logger.Error("Сообщение не доставлено",
					interfaces.LogField{Key: "topic", Value: topicOf(e)},
					interfaces.LogField{Key: "error", Value: e.TopicPartition.Error.Error()},
				)
			}
		case kafka.Error:
			k.logger.Error("Ошибка Kafka producer", interfaces.LogField{Key: "error", Value: e.Error()})
		}
	}
}

// messageToKafkaMessage преобразует данные публикации в kafka.Message
func messageToKafkaMessage(topic string, message []byte, key string, headers map[string]string) *kafka.Message {
	kafkaHeaders := make([]kafka.Header, 0, len(headers)+2)
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: k, Value: []byte(v)})
	}

	kafkaHeaders = append(kafkaHeaders,
		kafka.Header{Key: "message_id", Value: []byte(uuid.NewString())},
		kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339Nano))},
	)

	var keyBytes []byte
	if key != "" {
		keyBytes = []byte(key)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          message,
		Key:            keyBytes,
		Headers:        kafkaHeaders,
	}
}

// kafkaMessageToMessage преобразует kafka.Message в Message
func kafkaMessageToMessage(msg *kafka.Message) *interfaces.Message {
	headers := make(map[string]string, len(msg.Headers))
	for _, header := range msg.Headers {
		headers[header.Key] = string(header.Value)
	}

	publishedAt := msg.Timestamp
	if ts, err := time.Parse(time.RFC3339Nano, headers["timestamp"]); err == nil {
		publishedAt = ts
	}
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}

	return &interfaces.Message{
		ID:          headers["message_id"],
		Topic:       topicOf(msg),
		Key:         string(msg.Key),
		Value:       msg.Value,
		Headers:     headers,
		PublishedAt: publishedAt,
	}
}

func topicOf(msg *kafka.Message) string {
	if msg.TopicPartition.Topic == nil {
		return ""
	}
	return *msg.TopicPartition.Topic
}

// PublishWithKey публикует сообщение с указанным ключом
func (k *KafkaMessaging) PublishWithKey(ctx context.Context, topic string, key string, message []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return k.producer.Produce(messageToKafkaMessage(topic, message, key, nil), nil)
}

// Subscribe подписывается на тему. Каждая подписка получает свой consumer.
func (k *KafkaMessaging) Subscribe(ctx context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":       strings.Join(k.opts.Brokers, ","),
		"group.id":                k.opts.GroupID,
		"client.id":               k.opts.ClientID + "-consumer",
		"auto.offset.reset":       k.opts.AutoOffsetReset,
		"enable.auto.commit":      true,
		"auto.commit.interval.ms": 5000,
		"session.timeout.ms":      30000,
		"heartbeat.interval.ms":   3000,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka consumer: %w", err)
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		_ = consumer.Close()
		return nil, fmt.Errorf("ошибка подписки на топик %s: %w", topic, err)
	}

	id := uuid.NewString()
	consumeCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		k.consumeMessages(consumeCtx, consumer, handler)
	}()

	var once sync.Once
	unsubscribe := func() error {
		var closeErr error
		once.Do(func() {
			cancel()
			<-done

			k.subsMutex.Lock()
			delete(k.subscriptions, id)
			k.subsMutex.Unlock()

			closeErr = consumer.Close()
		})
		return closeErr
	}

	k.subsMutex.Lock()
	k.subscriptions[id] = unsubscribe
	k.subsMutex.Unlock()

	return unsubscribe, nil
}

// consumeMessages читает сообщения, пока не отменен контекст
func (k *KafkaMessaging) consumeMessages(ctx context.Context, consumer *kafka.Consumer, handler interfaces.MessageHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ev := consumer.Poll(int(k.opts.PollTimeout.Milliseconds()))
		if ev == nil {
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			msg := kafkaMessageToMessage(e)
			if err := handler(ctx, msg); err != nil {
				k.logger.Warn("Ошибка обработки сообщения",
					interfaces.LogField{Key: "topic", Value: msg.Topic},
					interfaces.LogField{Key: "message_id", Value: msg.ID},
					interfaces.LogField{Key: "error", Value: err.Error()},
				)
			}
		case kafka.Error:
			k.logger.Error("Ошибка Kafka consumer",
				interfaces.LogField{Key: "code", Value: e.Code().String()},
				interfaces.LogField{Key: "error", Value: e.Error()},
			)
			if e.Code() == kafka.ErrAllBrokersDown {
				return
			}
		}
	}
}

// Close останавливает потребителей и дожидается отправки сообщений producer
func (k *KafkaMessaging) Close() error {
	k.subsMutex.Lock()
	subs := make([]func() error, 0, len(k.subscriptions))
	for _, unsubscribe := range k.subscriptions {
		subs = append(subs, unsubscribe)
	}
	k.subsMutex.Unlock()

	for _, unsubscribe := range subs {
		if err := unsubscribe(); err != nil {
			k.logger.Warn("Ошибка закрытия Kafka consumer", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}

	k.producer.Flush(15 * 1000)
	k.producer.Close()
	k.wg.Wait()

	return nil
}
