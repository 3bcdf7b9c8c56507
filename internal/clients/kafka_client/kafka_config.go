package kafka_client

type KafkaConfig struct {
	Broker          string
	Topic           string
	TransactionalID string
}

func (c KafkaConfig) withDefaults() KafkaConfig {
	if c.Topic == "" {
		c.Topic = KAFKA_TOPIC_REVIEW_RESULTS
	}
	if c.TransactionalID == "" {
		c.TransactionalID = DEFAULT_TRANSACTIONAL_ID
	}
	return c
}
