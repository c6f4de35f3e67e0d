// Command engine boots the matching-engine pipeline: it wires the
// Input Source, the SPSC queues, the tokenizer/validator/engine
// stages, the async logger and its sinks, and an optional health
// endpoint, then blocks until an interrupt requests a graceful drain.
// Configuration is read from the environment and logged with slog.
//
// The Input Source (SOURCE_KIND) and each Logger channel's sink
// (OUT_SINK_KIND, ERR_SINK_KIND) default to the console/stdout/stderr
// in-process implementations but can each be switched independently to
// "kafka", and the sinks additionally to "postgres" or "pebble" — see
// sinks.go and source.go.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/orderflow/matchcore/common"
	"github.com/orderflow/matchcore/health"
	"github.com/orderflow/matchcore/logger"
	"github.com/orderflow/matchcore/matchengine"
	"github.com/orderflow/matchcore/pipeline"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("engine: no .env file loaded", "error", err)
	}

	logQueueCap, _ := common.GetEnv("LOG_QUEUE_CAPACITY", 1000)
	q1Cap, _ := common.GetEnv("Q1_CAPACITY", 10000)
	q2Cap, _ := common.GetEnv("Q2_CAPACITY", 10000)
	q3Cap, _ := common.GetEnv("Q3_CAPACITY", 10000)
	waitTimeout, _ := common.GetEnv("WAIT_TIMEOUT", 500*time.Millisecond)
	healthAddr, _ := common.GetEnv("HEALTH_ADDR", "")

	slog.Info("engine: starting", "q1", q1Cap, "q2", q2Cap, "q3", q3Cap, "wait_timeout", waitTimeout)

	log := logger.New(logger.Config{QueueCapacity: logQueueCap, DrainTimeout: 200 * time.Millisecond})

	outSink, closeOutSink, err := buildSink("out", "OUT_SINK_KIND", logger.NewWriterSink(os.Stdout))
	if err != nil {
		slog.Error("engine: failed to build out sink", "error", err)
		os.Exit(1)
	}
	defer closeOutSink()

	errSink, closeErrSink, err := buildSink("err", "ERR_SINK_KIND", logger.NewWriterSink(os.Stderr))
	if err != nil {
		slog.Error("engine: failed to build err sink", "error", err)
		os.Exit(1)
	}
	defer closeErrSink()

	// Stop (and fully drain) the logger before the deferred sink closes
	// above run, so no in-flight line is written to an already-closed
	// connection: defers run LIFO, so this must be declared last.
	defer log.Stop()

	log.SetSinks(outSink, errSink)

	eng := matchengine.New()
	cfg := pipeline.Config{Q1Capacity: q1Cap, Q2Capacity: q2Cap, Q3Capacity: q3Cap, WaitTimeout: waitTimeout}
	driver := pipeline.New(cfg, eng, log)

	var healthSrv *health.Server
	if healthAddr != "" {
		healthSrv = health.New()
		go func() {
			if err := healthSrv.Serve(healthAddr); err != nil {
				slog.Error("engine: health server stopped", "error", err)
			}
		}()
	}

	src, closeSrc, err := buildSource(driver.Q1(), waitTimeout)
	if err != nil {
		slog.Error("engine: failed to build input source", "error", err)
		os.Exit(1)
	}
	defer closeSrc()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	pipelineDone := make(chan struct{})
	go func() {
		driver.Run()
		close(pipelineDone)
	}()
	go src.Run()

	if healthSrv != nil {
		healthSrv.SetServing(true)
	}

	<-sigCh
	slog.Info("engine: shutdown signal received, draining")
	if healthSrv != nil {
		healthSrv.SetServing(false)
	}
	src.Shutdown()
	driver.Shutdown()

	<-pipelineDone
	if healthSrv != nil {
		healthSrv.GracefulStop()
	}
	slog.Info("engine: stopped cleanly")
}
