// Package kafka provides a Logger sink (and matching Input Source)
// backed by Kafka: a retry-connect loop, a SyncProducer with
// RequiredAcks = WaitForAll, and a sticky-rebalanced consumer group.
package kafka

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// NewProducer dials brokers with a reliable configuration and a
// bounded connection-retry loop.
func NewProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	var prod sarama.SyncProducer
	var err error
	for i := 0; i < 10; i++ {
		prod, err = sarama.NewSyncProducer(brokers, cfg)
		if err == nil {
			return prod, nil
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("kafka: failed to start producer after retries: %w", err)
}

// Sink publishes each logged line as a Kafka record to topic. It is
// the forward-only, publish-side counterpart to Source: the engine
// never reads this topic back for replay or recovery.
type Sink struct {
	producer sarama.SyncProducer
	topic    string
}

func NewSink(producer sarama.SyncProducer, topic string) *Sink {
	return &Sink{producer: producer, topic: topic}
}

func (s *Sink) Write(line string) error {
	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Value: sarama.StringEncoder(line),
	}
	_, _, err := s.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("kafka sink: send to %s failed: %w", s.topic, err)
	}
	return nil
}

func (s *Sink) Close() error { return s.producer.Close() }
