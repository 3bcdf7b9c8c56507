package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/steamnoodles/internal/models"
)

// Producer publishes review records transactionally, one transaction per
// batch.
type Producer struct {
	producer *kafka.Producer
	topic    string
}

func NewProducer(cfg KafkaConfig) (*Producer, error) {
	cfg = cfg.withDefaults()
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker),
		slog.String("topic", cfg.Topic))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
		"transactional.id":                      cfg.TransactionalID,
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), TRANSACTION_TIMEOUT)
	defer cancel()
	if err := p.InitTransactions(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to init transactions: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &Producer{producer: p, topic: cfg.Topic}, nil
}

func (p *Producer) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := p.producer.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}

// PublishReviews sends records keyed by review ID inside one transaction.
func (p *Producer) PublishReviews(ctx context.Context, records []models.ReviewRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := p.producer.BeginTransaction(); err != nil {
		return fmt.Errorf("[KafkaClient] failed to begin transaction: %w", err)
	}

	for _, record := range records {
		msg, err := newReviewMessage(p.topic, record)
		if err != nil {
			return p.abort(ctx, err)
		}

		for i := 0; i < MAX_RETRIES; i++ {
			err = p.producer.Produce(msg, nil)
			if err == nil {
				break
			}
			slog.Warn("[KafkaClient] Failed to produce message, retrying...",
				slog.Int("attempt", i+1),
				slog.String("id", record.ID))
		}
		if err != nil {
			return p.abort(ctx, err)
		}
	}

	var commitErr error
	for i := 0; i < MAX_RETRIES; i++ {
		commitErr = p.producer.CommitTransaction(ctx)
		if commitErr == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to commit transaction, retrying...",
			slog.Int("attempt", i+1))
	}
	if commitErr != nil {
		return fmt.Errorf("[KafkaClient] failed to commit transaction after %d retries: %w", MAX_RETRIES, commitErr)
	}

	slog.Info("[KafkaClient] Published reviews to Kafka transactionally",
		slog.String("topic", p.topic),
		slog.Int("count", len(records)))
	return nil
}

func (p *Producer) abort(ctx context.Context, cause error) error {
	if abortErr := p.producer.AbortTransaction(ctx); abortErr != nil {
		return fmt.Errorf("[KafkaClient] failed to abort transaction after %v: %w", cause, abortErr)
	}
	return cause
}

func newReviewMessage(topic string, record models.ReviewRecord) (*kafka.Message, error) {
	value, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] failed to marshal review %s: %w", record.ID, err)
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(record.ID),
		Value:          value,
		Headers: []kafka.Header{
			{Key: "sentiment", Value: []byte(record.Sentiment)},
		},
	}, nil
}
