package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
)

const defaultTopic = "reservation.events.v1"

// Publisher is a synchronous sarama producer bound to the reservation
// event topic. Records are keyed by reservation ID so every transition
// of one reservation lands on the same partition, in order.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects to the brokers with an idempotent producer so a
// broker-side retry cannot duplicate a lifecycle record. topicPrefix is
// prepended verbatim when set, matching the environment naming scheme.
func NewPublisher(brokers []string, topicPrefix, clientID string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	// sarama rejects the idempotent producer unless in-flight is capped at 1.
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: connect %v: %w", brokers, err)
	}
	return &Publisher{producer: producer, topic: topicPrefix + defaultTopic}, nil
}

func (p *Publisher) Publish(ctx context.Context, key string, payload []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hs := make([]sarama.RecordHeader, 0, len(headers))
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: hs,
	})
	if err != nil {
		return fmt.Errorf("kafka: publish to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
