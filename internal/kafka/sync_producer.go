package kafka

import (
	"fmt"

	"github.com/IBM/sarama"

	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// NewSyncProducer connects a synchronous producer to the brokers
func NewSyncProducer(cfg *Config, log *logger.Logger) (sarama.SyncProducer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg, log))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info("Kafka producer connected to brokers: %v", cfg.Brokers)
	return producer, nil
}
