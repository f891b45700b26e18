package messaging

import (
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaMessageConversion(t *testing.T) {
	before := time.Now().Add(-time.Second)

	km := messageToKafkaMessage("products", []byte(`{"a":1}`), "slug-1", map[string]string{"source": "a"})
	require.NotNil(t, km.TopicPartition.Topic)
	assert.Equal(t, "products", *km.TopicPartition.Topic)
	assert.Equal(t, kafka.PartitionAny, km.TopicPartition.Partition)
	assert.Equal(t, []byte("slug-1"), km.Key)

	msg := kafkaMessageToMessage(km)
	assert.Equal(t, "products", msg.Topic)
	assert.Equal(t, "slug-1", msg.Key)
	assert.Equal(t, `{"a":1}`, string(msg.Value))
	assert.Equal(t, "a", msg.Headers["source"])
	assert.NotEmpty(t, msg.ID)
	assert.True(t, msg.PublishedAt.After(before))
}

func TestKafkaMessageWithoutKeyOrTopic(t *testing.T) {
	msg := kafkaMessageToMessage(&kafka.Message{Value: []byte("x")})
	assert.Empty(t, msg.Topic)
	assert.Empty(t, msg.Key)
	assert.False(t, msg.PublishedAt.IsZero())
}

func TestNewKafkaMessagingRequiresBrokers(t *testing.T) {
	_, err := NewKafkaMessaging(KafkaOptions{}, nil)
	assert.Error(t, err)
}
