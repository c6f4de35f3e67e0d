package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/orderflow/matchcore/source"
)

// NewConsumerGroup dials brokers with the same retry loop as
// NewProducer: oldest offsets, sticky rebalancing.
func NewConsumerGroup(brokers []string, groupID string) (sarama.ConsumerGroup, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategySticky()

	var cg sarama.ConsumerGroup
	var err error
	for i := 0; i < 10; i++ {
		cg, err = sarama.NewConsumerGroup(brokers, groupID, cfg)
		if err == nil {
			return cg, nil
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("kafka: failed to start consumer group after retries: %w", err)
}

// sourceHandler relays every message's value, as a raw line, onto the
// pipeline's Q1 sink, implementing the Input Source contract
// (source.Sink) at the boundary of a sarama.ConsumerGroupHandler.
type sourceHandler struct {
	sink    source.Sink
	timeout time.Duration
}

func (h *sourceHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *sourceHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *sourceHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if !h.sink.WaitPush(string(msg.Value), h.timeout) {
			slog.Warn("kafka source: dropped message, Q1 still full at deadline",
				"partition", msg.Partition, "offset", msg.Offset)
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}

// Source is an Input Source that relays a Kafka topic's messages onto
// Q1, an alternative to source.Console for deployments that already
// route order flow through Kafka.
type Source struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler *sourceHandler
}

func NewSource(group sarama.ConsumerGroup, topics []string, sink source.Sink, timeout time.Duration) *Source {
	return &Source{
		group:   group,
		topics:  topics,
		handler: &sourceHandler{sink: sink, timeout: timeout},
	}
}

// Run blocks, consuming until ctx is cancelled, then pushes the
// pipeline's poison pill onto Q1.
func (s *Source) Run(ctx context.Context) {
	go func() {
		for err := range s.group.Errors() {
			slog.Error("kafka source: consumer group error", "error", err)
		}
	}()

	for ctx.Err() == nil {
		if err := s.group.Consume(ctx, s.topics, s.handler); err != nil {
			slog.Error("kafka source: consume error", "error", err)
		}
	}
	s.handler.sink.WaitPush(source.Poison, s.handler.timeout)
}
