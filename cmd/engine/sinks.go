package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/orderflow/matchcore/common"
	"github.com/orderflow/matchcore/logger"
	kafkasink "github.com/orderflow/matchcore/sinks/kafka"
	"github.com/orderflow/matchcore/sinks/pebble"
	"github.com/orderflow/matchcore/sinks/postgres"
)

// buildSink constructs the logger.Sink for one channel ("out" or
// "err") from environment configuration, defaulting to def (the
// stdout/stderr writer sink main wires up) when envVar is unset. The
// returned close func releases any connection the sink opened and is
// always safe to call.
func buildSink(channel, envVar string, def logger.Sink) (logger.Sink, func() error, error) {
	kind, _ := common.GetEnv(envVar, "")
	noop := func() error { return nil }

	switch kind {
	case "kafka":
		brokersRaw, _ := common.GetEnv("KAFKA_BROKERS", "localhost:9092")
		brokers := strings.Split(brokersRaw, ",")
		topicVar := "KAFKA_" + strings.ToUpper(channel) + "_TOPIC"
		topic, _ := common.GetEnv(topicVar, "matchcore."+channel)

		producer, err := kafkasink.NewProducer(brokers)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: %s sink: %w", channel, err)
		}
		sink := kafkasink.NewSink(producer, topic)
		return sink, sink.Close, nil

	case "postgres":
		cfg := postgres.Config{}
		cfg.Host, _ = common.GetEnv("PG_HOST", "localhost")
		cfg.Port, _ = common.GetEnv("PG_PORT", "5432")
		cfg.User, _ = common.GetEnv("PG_USER", "postgres")
		cfg.Password, _ = common.GetEnv("PG_PASSWORD", "")
		cfg.DBName, _ = common.GetEnv("PG_DBNAME", "matchcore")

		db, err := postgres.ConnectWithRetries(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: %s sink: %w", channel, err)
		}
		if err := postgres.EnsureTableExists(db); err != nil {
			return nil, nil, fmt.Errorf("engine: %s sink: %w", channel, err)
		}
		return postgres.NewSink(db, channel), db.Close, nil

	case "pebble":
		dir, _ := common.GetEnv("PEBBLE_DIR", "./data/pebble")
		sink, err := pebble.Open(filepath.Join(dir, channel))
		if err != nil {
			return nil, nil, fmt.Errorf("engine: %s sink: %w", channel, err)
		}
		return sink, sink.Close, nil

	default:
		return def, noop, nil
	}
}
