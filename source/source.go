// Package source defines the Input Source contract: something that
// produces raw message lines and pushes them onto Q1, throttling
// itself at the high-water mark rather than relying solely on
// downstream back-pressure. Console and synthetic producers are
// included here because the pipeline needs something to run.
package source

import (
	"time"

	"github.com/orderflow/matchcore/queue"
)

// Sink is the minimal surface a Source needs from the pipeline: a
// place to push raw lines, and a way to measure depth for throttling.
type Sink interface {
	WaitPush(v string, timeout time.Duration) bool
	Len() int
	Cap() int
}

var _ Sink = (*queue.Queue[string])(nil)

// Poison is the literal sentinel a Source pushes onto Q1 once it has
// no more lines to produce.
const Poison = "DUMMY"

// throttle blocks while sink depth exceeds half capacity, the
// high-water mark that keeps a fast producer from running the queue
// to its hard limit before downstream back-pressure even engages.
func throttle(sink Sink) {
	for sink.Len() > sink.Cap()/2 {
		time.Sleep(time.Millisecond)
	}
}
