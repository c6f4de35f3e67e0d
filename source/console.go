package source

import (
	"bufio"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

// Console reads newline-delimited messages from an io.Reader (stdin
// in cmd/engine) and pushes each line onto a Sink, stopping and
// pushing the poison pill once Shutdown is called or the reader hits EOF.
type Console struct {
	r        *bufio.Scanner
	sink     Sink
	shutdown atomic.Bool
	timeout  time.Duration
}

func NewConsole(r io.Reader, sink Sink, timeout time.Duration) *Console {
	return &Console{r: bufio.NewScanner(r), sink: sink, timeout: timeout}
}

// Shutdown requests the read loop stop after its current line.
func (c *Console) Shutdown() { c.shutdown.Store(true) }

// Run blocks, reading lines and pushing them until EOF or Shutdown,
// then pushes the poison pill.
func (c *Console) Run() {
	for !c.shutdown.Load() && c.r.Scan() {
		throttle(c.sink)
		line := c.r.Text()
		if !c.sink.WaitPush(line, c.timeout) {
			slog.Warn("source.Console: dropped line, downstream still full at deadline")
		}
	}
	if err := c.r.Err(); err != nil {
		slog.Error("source.Console: scan error", "error", err)
	}
	for !c.sink.WaitPush(Poison, c.timeout) {
		if c.shutdown.Load() {
			break
		}
	}
}
