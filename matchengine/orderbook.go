package matchengine

import (
	"container/heap"
	"container/list"

	"github.com/orderflow/matchcore/model"
)

// priceLevel is one price in a BookSide: a FIFO of resting orders plus
// the bookkeeping container/heap needs to support removal from an
// arbitrary position, not only the root — a cancel can target any
// level, not just the best one.
type priceLevel struct {
	price  model.Price
	orders *list.List // of *model.Order, oldest at Front
	index  int        // current position in the owning heap; kept in sync by levelHeap.Swap and Push
}

// levelHeap is a container/heap.Interface over *priceLevel, ordered by
// the BookSide's comparator. Buy and Sell differ only in this
// comparator; the match loop and cancel path are written once against
// BookSide regardless of which comparator it holds.
type levelHeap struct {
	better func(a, b model.Price) bool // true if a takes priority over b
	levels []*priceLevel
}

func (h *levelHeap) Len() int { return len(h.levels) }
func (h *levelHeap) Less(i, j int) bool {
	return h.better(h.levels[i].price, h.levels[j].price)
}
func (h *levelHeap) Swap(i, j int) {
	h.levels[i], h.levels[j] = h.levels[j], h.levels[i]
	h.levels[i].index = i
	h.levels[j].index = j
}
func (h *levelHeap) Push(x any) {
	lvl := x.(*priceLevel)
	lvl.index = len(h.levels)
	h.levels = append(h.levels, lvl)
}
func (h *levelHeap) Pop() any {
	n := len(h.levels)
	lvl := h.levels[n-1]
	h.levels = h.levels[:n-1]
	return lvl
}

// BookSide is an ordered mapping from price to a FIFO of resting
// orders. The Buy side orders by descending price, the Sell side by
// ascending price; both are otherwise identical.
type BookSide struct {
	h       *levelHeap
	byPrice map[model.Price]*priceLevel
}

func newBookSide(better func(a, b model.Price) bool) *BookSide {
	return &BookSide{
		h:       &levelHeap{better: better},
		byPrice: make(map[model.Price]*priceLevel),
	}
}

// Best returns the highest-priority level, or nil if the side is empty.
func (s *BookSide) Best() *priceLevel {
	if s.h.Len() == 0 {
		return nil
	}
	return s.h.levels[0]
}

// levelFor returns the level at price, creating it if absent.
func (s *BookSide) levelFor(price model.Price) *priceLevel {
	if lvl, ok := s.byPrice[price]; ok {
		return lvl
	}
	lvl := &priceLevel{price: price, orders: list.New()}
	s.byPrice[price] = lvl
	heap.Push(s.h, lvl)
	return lvl
}

// removeLevel deletes an empty level from the heap and the map. The
// caller must only call this once orders.Len() == 0.
func (s *BookSide) removeLevel(lvl *priceLevel) {
	heap.Remove(s.h, lvl.index)
	delete(s.byPrice, lvl.price)
}

// Depth is the number of distinct price levels currently resting.
func (s *BookSide) Depth() int { return s.h.Len() }

// Levels returns resting levels best-first, for snapshotting/tests.
// It does not mutate the heap.
func (s *BookSide) Levels() []*priceLevel {
	out := make([]*priceLevel, len(s.h.levels))
	copy(out, s.h.levels)
	sortByPriority(out, s.h.better)
	return out
}

func sortByPriority(levels []*priceLevel, better func(a, b model.Price) bool) {
	for i := 1; i < len(levels); i++ {
		for j := i; j > 0 && better(levels[j].price, levels[j-1].price); j-- {
			levels[j], levels[j-1] = levels[j-1], levels[j]
		}
	}
}
