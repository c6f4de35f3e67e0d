package source

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Synthetic generates deterministic add messages from a seeded
// sequence, for load-testing the pipeline without a console attached.
type Synthetic struct {
	sink     Sink
	timeout  time.Duration
	shutdown atomic.Bool

	nextID uint64
}

func NewSynthetic(sink Sink, timeout time.Duration) *Synthetic {
	return &Synthetic{sink: sink, timeout: timeout, nextID: 1}
}

func (s *Synthetic) Shutdown() { s.shutdown.Store(true) }

// RunN emits n add messages (alternating sides, walking price by one
// cent) followed by the poison pill, throttling at the high-water mark.
func (s *Synthetic) RunN(n int) {
	for i := 0; i < n && !s.shutdown.Load(); i++ {
		throttle(s.sink)
		id := atomic.AddUint64(&s.nextID, 1) - 1
		side := i % 2
		price := 100.00 + float64(i%50)/100.0
		line := fmt.Sprintf("0,%d,%d,%d,%.2f", id, side, 1+i%10, price)
		s.sink.WaitPush(line, s.timeout)
	}
	for !s.sink.WaitPush(Poison, s.timeout) {
		if s.shutdown.Load() {
			break
		}
	}
}
