package kafka_client

const (
	KAFKA_TOPIC_TONE_RESULTS = "tone-results" // one message per classified submission
)

const (
	MAX_RETRIES    = 3
	FLUSH_TIMEOUT  = 5000 // ms
	DEFAULT_BROKER = "localhost:29092"
)
