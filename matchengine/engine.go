// Package matchengine implements the single-instrument, price-time
// priority matching engine: the book data model, the add/cancel
// operations, and the match loop. The Engine is not safe for
// concurrent use — it is driven single-threaded by one pipeline stage,
// so no internal locking is required.
package matchengine

import (
	"container/list"
	"fmt"

	"github.com/orderflow/matchcore/model"
)

// orderHandle is an arena-style locator: a direct pointer to the list
// element and the level it lives in, stable under level reordering,
// avoiding a revalidated (side, price, position) triple on cancel.
type orderHandle struct {
	side  model.Side
	book  *BookSide
	level *priceLevel
	elem  *list.Element
}

// Engine owns both book sides and the order index exclusively;
// nothing else mutates them.
type Engine struct {
	buys  *BookSide // descending: best = highest price
	sells *BookSide // ascending: best = lowest price
	index map[uint64]*orderHandle
}

func New() *Engine {
	return &Engine{
		buys:  newBookSide(func(a, b model.Price) bool { return a > b }),
		sells: newBookSide(func(a, b model.Price) bool { return a < b }),
		index: make(map[uint64]*orderHandle),
	}
}

func (e *Engine) bookFor(side model.Side) *BookSide {
	if side == model.Buy {
		return e.buys
	}
	return e.sells
}

func (e *Engine) oppositeOf(side model.Side) *BookSide {
	if side == model.Buy {
		return e.sells
	}
	return e.buys
}

// noCross reports the stop condition for an aggressive order of the
// given side against a candidate level price: true once the book can
// no longer cross with it.
func noCross(side model.Side, aggPrice, levelPrice model.Price) bool {
	if side == model.Buy {
		return aggPrice < levelPrice
	}
	return aggPrice > levelPrice
}

// AddOrder rejects a duplicate id, otherwise matches the aggressive
// order against the opposite book and rests any residual quantity on
// its own side.
func (e *Engine) AddOrder(id, qty uint64, price model.Price, side model.Side) ([]model.Event, error) {
	if _, exists := e.index[id]; exists {
		return nil, fmt.Errorf("add rejected: order_id %d already live", id)
	}

	agg := &model.Order{ID: id, Quantity: qty, Price: price, Side: side}
	events := e.match(agg)

	if agg.Quantity > 0 {
		e.rest(agg)
	}
	return events, nil
}

// match drains the opposite book while the aggressive order still has
// quantity and the book doesn't stop it on price. Event emission
// order per step is fixed: TRADE, then the aggressive side's fill
// notice, then the resting side's.
func (e *Engine) match(agg *model.Order) []model.Event {
	opp := e.oppositeOf(agg.Side)
	var events []model.Event

	for agg.Quantity > 0 {
		level := opp.Best()
		if level == nil {
			break
		}
		if noCross(agg.Side, agg.Price, level.price) {
			break
		}

		front := level.orders.Front()
		resting := front.Value.(*model.Order)

		tq := minU64(agg.Quantity, resting.Quantity)
		tp := resting.Price // maker price wins

		events = append(events, model.Trade(tq, tp))

		agg.Quantity -= tq
		if agg.Quantity > 0 {
			events = append(events, model.Partial(agg.ID, agg.Quantity))
		} else {
			events = append(events, model.Filled(agg.ID))
		}

		resting.Quantity -= tq
		if resting.Quantity == 0 {
			events = append(events, model.Filled(resting.ID))
			level.orders.Remove(front)
			delete(e.index, resting.ID)
			if level.orders.Len() == 0 {
				opp.removeLevel(level)
			}
		} else {
			events = append(events, model.Partial(resting.ID, resting.Quantity))
		}
	}

	return events
}

// rest appends a still-live order to its own side and records it in
// the order index.
func (e *Engine) rest(o *model.Order) {
	book := e.bookFor(o.Side)
	level := book.levelFor(o.Price)
	elem := level.orders.PushBack(o)
	e.index[o.ID] = &orderHandle{side: o.Side, book: book, level: level, elem: elem}
}

// CancelOrder rejects an unknown id, otherwise removes the order from
// its level and the index, and drops the level if it is now empty.
func (e *Engine) CancelOrder(id uint64) error {
	h, ok := e.index[id]
	if !ok {
		return fmt.Errorf("cancel rejected: unknown order_id %d", id)
	}

	h.level.orders.Remove(h.elem)
	if h.level.orders.Len() == 0 {
		h.book.removeLevel(h.level)
	}
	delete(e.index, id)
	return nil
}

// BestBid and BestAsk expose the top of each book, for invariant
// checks and diagnostics. They return ok=false on an empty side.
func (e *Engine) BestBid() (model.Price, bool) {
	lvl := e.buys.Best()
	if lvl == nil {
		return 0, false
	}
	return lvl.price, true
}

func (e *Engine) BestAsk() (model.Price, bool) {
	lvl := e.sells.Best()
	if lvl == nil {
		return 0, false
	}
	return lvl.price, true
}

// Live reports whether id currently rests in the book, and its side,
// price and quantity if so.
func (e *Engine) Live(id uint64) (model.Order, bool) {
	h, ok := e.index[id]
	if !ok {
		return model.Order{}, false
	}
	o := h.elem.Value.(*model.Order)
	return *o, true
}

// LevelOrders returns, for tests, the order ids resting at price on
// the given side, oldest first.
func (e *Engine) LevelOrders(side model.Side, price model.Price) []uint64 {
	book := e.bookFor(side)
	lvl, ok := book.byPrice[price]
	if !ok {
		return nil
	}
	out := make([]uint64, 0, lvl.orders.Len())
	for el := lvl.orders.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*model.Order).ID)
	}
	return out
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
