// Package pipeline implements the stage lifecycle that wires
// Input -> Q1 -> Tokenizer -> Q2 -> Validator -> Q3 -> Engine,
// shutdown propagation via a poison pill, and graceful drain: spawn
// the work in a goroutine, wait on a WaitGroup, and let an external
// signal flip the shared stop flag.
package pipeline

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/orderflow/matchcore/logger"
	"github.com/orderflow/matchcore/matchengine"
	"github.com/orderflow/matchcore/model"
	"github.com/orderflow/matchcore/queue"
	"github.com/orderflow/matchcore/tokenizer"
	"github.com/orderflow/matchcore/validator"
)

// Config controls queue capacities and the bounded timeout every
// blocking wait carries.
type Config struct {
	Q1Capacity  int
	Q2Capacity  int
	Q3Capacity  int
	WaitTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Q1Capacity:  10000,
		Q2Capacity:  10000,
		Q3Capacity:  10000,
		WaitTimeout: 500 * time.Millisecond,
	}
}

// Driver owns the three SPSC queues between stages and the Engine they
// feed. It does not own the Input Source — that is an external
// collaborator that pushes raw lines onto Q1().
type Driver struct {
	cfg Config

	q1 *queue.Queue[string]
	q2 *queue.Queue[[]string]
	q3 *queue.Queue[model.Message]

	engine *matchengine.Engine
	log    *logger.Logger

	shutdown atomic.Bool
}

// New constructs a Driver over the given Engine and Logger, sized per cfg.
func New(cfg Config, engine *matchengine.Engine, log *logger.Logger) *Driver {
	return &Driver{
		cfg:    cfg,
		q1:     queue.New[string](cfg.Q1Capacity),
		q2:     queue.New[[]string](cfg.Q2Capacity),
		q3:     queue.New[model.Message](cfg.Q3Capacity),
		engine: engine,
		log:    log,
	}
}

// Q1 exposes the input queue so an Input Source can push raw lines onto it.
func (d *Driver) Q1() *queue.Queue[string] { return d.q1 }

// Shutdown requests graceful shutdown; Run's stages drain their inbound
// queues and exit within one wait-timeout period.
func (d *Driver) Shutdown() { d.shutdown.Store(true) }

// Run starts the tokenizer, validator and engine stages and blocks
// until all three have drained and exited. It is safe to call Shutdown
// concurrently from another goroutine (e.g. a signal handler).
func (d *Driver) Run() {
	done := make(chan struct{}, 3)

	go d.runTokenizer(done)
	go d.runValidator(done)
	go d.runEngine(done)

	for i := 0; i < 3; i++ {
		<-done
	}
}

// loopCondition holds while running or while the inbound queue still
// has work: !shutdown || inbound_queue_non_empty.
func (d *Driver) loopCondition(inboundEmpty bool) bool {
	return !d.shutdown.Load() || !inboundEmpty
}

func (d *Driver) runTokenizer(done chan struct{}) {
	defer func() { done <- struct{}{} }()
	for d.loopCondition(d.q1.Empty()) {
		var raw string
		if !d.q1.WaitPop(&raw, d.cfg.WaitTimeout) {
			continue
		}
		if raw == "DUMMY" {
			d.pushPoisonTokens()
			return
		}
		tokens := tokenizer.Split(raw)
		d.pushTokens(tokens)
	}
	d.pushPoisonTokens()
}

func (d *Driver) pushTokens(tokens []string) {
	for !d.q2.WaitPush(tokens, d.cfg.WaitTimeout) {
		if d.shutdown.Load() {
			slog.Warn("pipeline: dropped tokens during shutdown back-pressure")
			return
		}
	}
}

func (d *Driver) pushPoisonTokens() {
	for !d.q2.WaitPush(nil, d.cfg.WaitTimeout) {
		if d.shutdown.Load() {
			return
		}
	}
}

func (d *Driver) runValidator(done chan struct{}) {
	defer func() { done <- struct{}{} }()
	for {
		var tokens []string
		if !d.q2.WaitPop(&tokens, d.cfg.WaitTimeout) {
			if d.loopCondition(d.q2.Empty()) {
				continue
			}
			d.pushPoisonMessage()
			return
		}
		if tokens == nil { // poison pill: empty token list
			d.pushPoisonMessage()
			return
		}

		msg, ok, diag := validator.Validate(tokens)
		if !ok {
			d.log.LogErr(diag)
			continue
		}
		d.pushMessage(msg)
	}
}

func (d *Driver) pushMessage(msg model.Message) {
	for !d.q3.WaitPush(msg, d.cfg.WaitTimeout) {
		if d.shutdown.Load() {
			slog.Warn("pipeline: dropped order during shutdown back-pressure", "order_id", msg.Order.ID)
			return
		}
	}
}

func (d *Driver) pushPoisonMessage() {
	for !d.q3.WaitPush(model.Poison(), d.cfg.WaitTimeout) {
		if d.shutdown.Load() {
			return
		}
	}
}

func (d *Driver) runEngine(done chan struct{}) {
	defer func() { done <- struct{}{} }()
	for {
		var msg model.Message
		if !d.q3.WaitPop(&msg, d.cfg.WaitTimeout) {
			if d.loopCondition(d.q3.Empty()) {
				continue
			}
			return
		}
		if msg.Op == model.OpPoison {
			return
		}
		d.apply(msg)
	}
}

func (d *Driver) apply(msg model.Message) {
	switch msg.Op {
	case model.OpAdd:
		events, err := d.engine.AddOrder(msg.Order.ID, msg.Order.Quantity, msg.Order.Price, msg.Order.Side)
		if err != nil {
			d.log.LogErr(err.Error())
			return
		}
		for _, ev := range events {
			d.log.LogOut(ev.String())
		}
	case model.OpCancel:
		if err := d.engine.CancelOrder(msg.Order.ID); err != nil {
			d.log.LogErr(err.Error())
		}
	default:
		d.log.LogErr("pipeline: unknown op code on Q3")
	}
}
