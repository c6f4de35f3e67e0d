package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/orderflow/matchcore/common"
	kafkasrc "github.com/orderflow/matchcore/sinks/kafka"
	"github.com/orderflow/matchcore/source"
)

// inputSource is the uniform surface main needs regardless of which
// concrete Input Source feeds Q1: run until told to stop.
// source.Console already satisfies it; kafkaSourceAdapter wraps
// sinks/kafka.Source's context-based Run into the same shape.
type inputSource interface {
	Run()
	Shutdown()
}

type kafkaSourceAdapter struct {
	src    *kafkasrc.Source
	ctx    context.Context
	cancel context.CancelFunc
}

func newKafkaSourceAdapter(src *kafkasrc.Source) *kafkaSourceAdapter {
	ctx, cancel := context.WithCancel(context.Background())
	return &kafkaSourceAdapter{src: src, ctx: ctx, cancel: cancel}
}

func (a *kafkaSourceAdapter) Run()      { a.src.Run(a.ctx) }
func (a *kafkaSourceAdapter) Shutdown() { a.cancel() }

// buildSource constructs the Input Source from SOURCE_KIND, defaulting
// to a stdin console reader. The returned close func releases any
// connection the source opened and is always safe to call.
func buildSource(sink source.Sink, waitTimeout time.Duration) (inputSource, func() error, error) {
	kind, _ := common.GetEnv("SOURCE_KIND", "")

	switch kind {
	case "kafka":
		brokersRaw, _ := common.GetEnv("KAFKA_BROKERS", "localhost:9092")
		brokers := strings.Split(brokersRaw, ",")
		groupID, _ := common.GetEnv("KAFKA_GROUP_ID", "matchcore-engine")
		topic, _ := common.GetEnv("KAFKA_INPUT_TOPIC", "matchcore.in")

		group, err := kafkasrc.NewConsumerGroup(brokers, groupID)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: kafka source: %w", err)
		}
		ksrc := kafkasrc.NewSource(group, []string{topic}, sink, waitTimeout)
		return newKafkaSourceAdapter(ksrc), group.Close, nil

	default:
		return source.NewConsole(os.Stdin, sink, waitTimeout), func() error { return nil }, nil
	}
}
