package kafka_client

import "time"

const (
	KAFKA_TOPIC_REVIEW_RESULTS = "review-results" // classified and replied reviews
	DEFAULT_TRANSACTIONAL_ID   = "steamnoodles-producer-1"
)

const (
	MAX_RETRIES         = 3
	FLUSH_TIMEOUT_MS    = 5000
	TRANSACTION_TIMEOUT = 10 * time.Second
)
