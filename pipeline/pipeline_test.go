package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/orderflow/matchcore/logger"
	"github.com/orderflow/matchcore/matchengine"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *memSink) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	return nil
}

func (s *memSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func newHarness(t *testing.T) (*Driver, *memSink, *memSink, *logger.Logger) {
	eng := matchengine.New()
	log := logger.New(logger.DefaultConfig())
	out, errS := &memSink{}, &memSink{}
	log.SetSinks(out, errS)

	cfg := DefaultConfig()
	cfg.WaitTimeout = 20 * time.Millisecond
	d := New(cfg, eng, log)

	go d.Run()
	t.Cleanup(func() { log.Stop() })

	return d, out, errS, log
}

func feed(d *Driver, lines ...string) {
	for _, l := range lines {
		for !d.Q1().WaitPush(l, time.Second) {
		}
	}
}

func TestPipelineEndToEndFullFill(t *testing.T) {
	d, out, _, _ := newHarness(t)

	feed(d, "0,10,1,5,100.00", "0,11,0,5,100.00")

	waitFor(t, func() bool { return len(out.snapshot()) >= 3 })
	require.Equal(t, []string{"2,5,100.00", "3,11", "3,10"}, out.snapshot())
}

func TestPipelineRoutesInvalidMessageToErrChannel(t *testing.T) {
	d, out, errS, _ := newHarness(t)

	feed(d, "0,1,0,-5,100.00")

	waitFor(t, func() bool { return len(errS.snapshot()) >= 1 })
	require.Empty(t, out.snapshot())
}

func TestPipelineShutdownDrainsInFlightMessages(t *testing.T) {
	d, out, _, _ := newHarness(t)

	feed(d, "0,1,1,5,100.00", "0,2,0,5,100.00")
	d.Shutdown()

	waitFor(t, func() bool { return len(out.snapshot()) >= 3 })
	require.Equal(t, []string{"2,5,100.00", "3,2", "3,1"}, out.snapshot())
}
