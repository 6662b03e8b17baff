package kafka_client

import "github.com/spacesedan/tonecheck/config"

type KafkaConfig struct {
	Broker string
	Topic  string
}

func GetKafkaConfig(s config.Settings) KafkaConfig {
	cfg := KafkaConfig{
		Broker: s.KafkaBroker,
		Topic:  s.KafkaTopic,
	}
	if cfg.Broker == "" {
		cfg.Broker = DEFAULT_BROKER
	}
	if cfg.Topic == "" {
		cfg.Topic = KAFKA_TOPIC_TONE_RESULTS
	}
	return cfg
}
