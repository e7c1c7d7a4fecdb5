package publish

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"swellforecaster/config"
)

// ForecastEvent is the message emitted when a forecast is published.
type ForecastEvent struct {
	BundleID    string    `json:"bundle_id"`
	MarkdownURL string    `json:"markdown_path"`
	HTMLURL     string    `json:"html_path"`
	PDFURL      string    `json:"pdf_path,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// KafkaPublisher emits forecast events to a Kafka topic.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher builds a publisher from the publish settings, or nil when
// no brokers are configured.
func NewKafkaPublisher(cfg config.Publish) (*KafkaPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 || cfg.KafkaTopic == "" {
		return nil, nil
	}
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}
	return &KafkaPublisher{producer: producer, topic: cfg.KafkaTopic}, nil
}

// Publish sends a forecast event keyed by bundle id.
func (p *KafkaPublisher) Publish(event ForecastEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling forecast event: %w", err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.BundleID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("sending forecast event: %w", err)
	}
	return nil
}

// Close shuts the underlying producer down.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
