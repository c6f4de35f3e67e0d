// Package logger implements the process-wide asynchronous logger: two
// channels ("out" for emitted trade/fill events, "err" for
// diagnostics), each backed by a bounded queue and drained by a
// dedicated worker goroutine. Construction spawns the worker; Stop
// signals shutdown and joins it.
package logger

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/orderflow/matchcore/queue"
)

// Sink is a destination for a single logger channel. Stdout/stderr are
// the defaults; sinks/kafka, sinks/postgres and sinks/pebble provide
// alternatives that satisfy the same interface.
type Sink interface {
	Write(line string) error
}

// WriterSink adapts any io.Writer-like Write([]byte) target; it is used
// to build the stdout/stderr defaults.
type WriterSink struct {
	w interface{ Write([]byte) (int, error) }
}

func NewWriterSink(w interface{ Write([]byte) (int, error) }) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(line string) error {
	_, err := s.w.Write([]byte(line + "\n"))
	return err
}

type channel struct {
	q    *queue.Queue[string]
	sink Sink
	mu   sync.Mutex // guards sink swaps via SetSinks

	pushMu sync.Mutex // serialises producers onto the single-producer queue
}

func (c *channel) setSink(s Sink) {
	c.mu.Lock()
	c.sink = s
	c.mu.Unlock()
}

func (c *channel) write(line string) {
	c.mu.Lock()
	sink := c.sink
	c.mu.Unlock()
	if sink == nil {
		return
	}
	if err := sink.Write(line); err != nil {
		fmt.Fprintf(os.Stderr, "logger: sink write failed: %v\n", err)
	}
}

// Logger is the process-wide asynchronous logger. The zero value is not
// usable; construct with New.
type Logger struct {
	out *channel
	err *channel

	enabled atomic.Bool // true when async, false when synchronous

	shutdown chan struct{}
	wg       sync.WaitGroup

	drainTimeout time.Duration
}

// Config controls queue capacity and the drain timeout each worker
// waits on between poll attempts while draining at shutdown.
type Config struct {
	QueueCapacity int
	DrainTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{QueueCapacity: 1000, DrainTimeout: 200 * time.Millisecond}
}

// New constructs a Logger with the default stdout/stderr sinks enabled
// and spawns its two worker goroutines.
func New(cfg Config) *Logger {
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 1000
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 200 * time.Millisecond
	}
	l := &Logger{
		out:          &channel{q: queue.New[string](cfg.QueueCapacity), sink: NewWriterSink(os.Stdout)},
		err:          &channel{q: queue.New[string](cfg.QueueCapacity), sink: NewWriterSink(os.Stderr)},
		shutdown:     make(chan struct{}),
		drainTimeout: cfg.DrainTimeout,
	}
	l.enabled.Store(true)
	l.wg.Add(2)
	go l.drain(l.out)
	go l.drain(l.err)
	return l
}

// SetSinks swaps the sinks both channels write to. Safe to call
// concurrently with logging calls.
func (l *Logger) SetSinks(out, err Sink) {
	l.out.setSink(out)
	l.err.setSink(err)
}

// SetEnabled toggles between asynchronous (queued, worker-drained) and
// synchronous (written on the caller's goroutine) delivery. Tests that
// need deterministic ordering across multiple producers disable
// asynchrony.
func (l *Logger) SetEnabled(enabled bool) {
	l.enabled.Store(enabled)
}

// LogOut enqueues (or, if disabled, synchronously writes) an event line.
func (l *Logger) LogOut(msg string) { l.log(l.out, msg) }

// LogErr enqueues (or, if disabled, synchronously writes) a diagnostic line.
func (l *Logger) LogErr(msg string) { l.log(l.err, msg) }

func (l *Logger) log(c *channel, msg string) {
	if !l.enabled.Load() {
		c.write(msg)
		return
	}
	// Bounded queue with back-pressure: a blocked producer retries
	// briefly, then drops the line rather than stalling indefinitely.
	c.pushMu.Lock()
	pushed := c.q.WaitPush(msg, 50*time.Millisecond)
	c.pushMu.Unlock()
	if !pushed {
		fmt.Fprintf(os.Stderr, "logger: dropped line after back-pressure timeout: %s\n", msg)
	}
}

// drain is the worker loop for one channel. It keeps draining until
// shutdown has been requested AND the queue is empty, so no message
// enqueued before shutdown is lost.
func (l *Logger) drain(c *channel) {
	defer l.wg.Done()
	for {
		var msg string
		if c.q.WaitPop(&msg, l.drainTimeout) {
			c.write(msg)
			continue
		}
		select {
		case <-l.shutdown:
			if !c.q.Pop(&msg) {
				return
			}
			c.write(msg)
		default:
		}
	}
}

// Stop signals shutdown and blocks until both workers have drained
// their queues and returned.
func (l *Logger) Stop() {
	close(l.shutdown)
	l.wg.Wait()
}
