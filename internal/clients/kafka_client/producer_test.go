package kafka_client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/steamnoodles/internal/models"
)

func TestNewReviewMessage(t *testing.T) {
	record := models.ReviewRecord{
		ID:        "rev-1",
		Timestamp: time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC),
		Text:      "Great broth",
		Sentiment: models.SentimentPositive,
		Reply:     "Thank you!",
	}

	msg, err := newReviewMessage(KAFKA_TOPIC_REVIEW_RESULTS, record)
	require.NoError(t, err)

	assert.Equal(t, KAFKA_TOPIC_REVIEW_RESULTS, *msg.TopicPartition.Topic)
	assert.Equal(t, kafka.PartitionAny, msg.TopicPartition.Partition)
	assert.Equal(t, []byte("rev-1"), msg.Key)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "positive", string(msg.Headers[0].Value))

	var decoded models.ReviewRecord
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, record.Text, decoded.Text)
	assert.Equal(t, record.Reply, decoded.Reply)
}

func TestKafkaConfigDefaults(t *testing.T) {
	cfg := KafkaConfig{Broker: "localhost:29092"}.withDefaults()
	assert.Equal(t, KAFKA_TOPIC_REVIEW_RESULTS, cfg.Topic)
	assert.Equal(t, DEFAULT_TRANSACTIONAL_ID, cfg.TransactionalID)
}
