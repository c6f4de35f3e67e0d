package matchengine

import (
	"testing"

	"github.com/orderflow/matchcore/model"
	"github.com/stretchr/testify/require"
)

func price(t *testing.T, s string) model.Price {
	t.Helper()
	p, err := model.ParsePrice(s)
	require.NoError(t, err)
	return p
}

func eventStrings(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.String()
	}
	return out
}

// S1: passive resting, no cross.
func TestScenarioPassiveResting(t *testing.T) {
	e := New()

	events, err := e.AddOrder(1, 10, price(t, "100.00"), model.Buy)
	require.NoError(t, err)
	require.Empty(t, events)

	events, err = e.AddOrder(2, 5, price(t, "101.00"), model.Sell)
	require.NoError(t, err)
	require.Empty(t, events)

	require.Equal(t, []uint64{1}, e.LevelOrders(model.Buy, price(t, "100.00")))
	require.Equal(t, []uint64{2}, e.LevelOrders(model.Sell, price(t, "101.00")))
}

// S2: aggressive buy fully fills one resting sell.
func TestScenarioFullFill(t *testing.T) {
	e := New()

	_, err := e.AddOrder(10, 5, price(t, "100.00"), model.Sell)
	require.NoError(t, err)

	events, err := e.AddOrder(11, 5, price(t, "100.00"), model.Buy)
	require.NoError(t, err)

	require.Equal(t, []string{"2,5,100.00", "3,11", "3,10"}, eventStrings(events))

	_, bidOK := e.BestBid()
	_, askOK := e.BestAsk()
	require.False(t, bidOK)
	require.False(t, askOK)
}

// S3: aggressive buy sweeps two levels with residual resting.
func TestScenarioSweepTwoLevels(t *testing.T) {
	e := New()

	_, err := e.AddOrder(20, 3, price(t, "100.00"), model.Sell)
	require.NoError(t, err)
	_, err = e.AddOrder(21, 2, price(t, "101.00"), model.Sell)
	require.NoError(t, err)

	events, err := e.AddOrder(22, 10, price(t, "101.00"), model.Buy)
	require.NoError(t, err)

	require.Equal(t, []string{
		"2,3,100.00",
		"4,22,7",
		"3,20",
		"2,2,101.00",
		"4,22,5",
		"3,21",
	}, eventStrings(events))

	require.Equal(t, []uint64{22}, e.LevelOrders(model.Buy, price(t, "101.00")))
	live, ok := e.Live(22)
	require.True(t, ok)
	require.Equal(t, uint64(5), live.Quantity)
}

// S4: price-time priority within a level.
func TestScenarioPriceTimePriority(t *testing.T) {
	e := New()

	_, err := e.AddOrder(30, 4, price(t, "99.00"), model.Buy)
	require.NoError(t, err)
	_, err = e.AddOrder(31, 6, price(t, "99.00"), model.Buy)
	require.NoError(t, err)

	events, err := e.AddOrder(32, 5, price(t, "99.00"), model.Sell)
	require.NoError(t, err)

	require.Equal(t, []string{
		"2,4,99.00",
		"4,32,1",
		"3,30",
		"2,1,99.00",
		"3,32",
		"4,31,5",
	}, eventStrings(events))

	require.Equal(t, []uint64{31}, e.LevelOrders(model.Buy, price(t, "99.00")))
}

// S5: cancel of resting order removes it cleanly.
func TestScenarioCancel(t *testing.T) {
	e := New()

	_, err := e.AddOrder(40, 10, price(t, "100.00"), model.Buy)
	require.NoError(t, err)

	require.NoError(t, e.CancelOrder(40))
	_, ok := e.Live(40)
	require.False(t, ok)
	_, ok = e.BestBid()
	require.False(t, ok)

	events, err := e.AddOrder(41, 10, price(t, "100.00"), model.Sell)
	require.NoError(t, err)
	require.Empty(t, events)
	require.Equal(t, []uint64{41}, e.LevelOrders(model.Sell, price(t, "100.00")))
}

// S6: duplicate add rejected, first remains live.
func TestScenarioDuplicateAddRejected(t *testing.T) {
	e := New()

	_, err := e.AddOrder(50, 5, price(t, "100.00"), model.Buy)
	require.NoError(t, err)

	_, err = e.AddOrder(50, 7, price(t, "101.00"), model.Buy)
	require.Error(t, err)

	require.Equal(t, []uint64{50}, e.LevelOrders(model.Buy, price(t, "100.00")))
	live, ok := e.Live(50)
	require.True(t, ok)
	require.Equal(t, uint64(5), live.Quantity)
}

func TestCancelUnknownIsNoopOnState(t *testing.T) {
	e := New()
	_, err := e.AddOrder(1, 5, price(t, "10.00"), model.Buy)
	require.NoError(t, err)

	err = e.CancelOrder(999)
	require.Error(t, err)

	require.Equal(t, []uint64{1}, e.LevelOrders(model.Buy, price(t, "10.00")))
}

func TestAddThenCancelRestoresState(t *testing.T) {
	e := New()
	_, err := e.AddOrder(1, 5, price(t, "10.00"), model.Buy)
	require.NoError(t, err)
	require.NoError(t, e.CancelOrder(1))

	_, ok := e.BestBid()
	require.False(t, ok, "book must be empty after add then cancel")
	_, ok = e.Live(1)
	require.False(t, ok)
}

// P4: uncrossed book invariant holds after every scenario above too,
// but exercise it directly with resting orders on both sides.
func TestUncrossedBookInvariant(t *testing.T) {
	e := New()
	_, err := e.AddOrder(1, 5, price(t, "10.00"), model.Buy)
	require.NoError(t, err)
	_, err = e.AddOrder(2, 5, price(t, "11.00"), model.Sell)
	require.NoError(t, err)

	bid, _ := e.BestBid()
	ask, _ := e.BestAsk()
	require.Less(t, int64(bid), int64(ask))
}

// P5: conservation of quantity — every unit removed from the book is
// accounted for by a TRADE event of matching size.
func TestConservationOfTradedQuantity(t *testing.T) {
	e := New()
	_, err := e.AddOrder(1, 3, price(t, "10.00"), model.Sell)
	require.NoError(t, err)
	_, err = e.AddOrder(2, 4, price(t, "10.00"), model.Sell)
	require.NoError(t, err)

	events, err := e.AddOrder(3, 7, price(t, "10.00"), model.Buy)
	require.NoError(t, err)

	var traded uint64
	for _, ev := range events {
		if ev.Kind == model.EventTrade {
			traded += ev.Quantity
		}
	}
	require.Equal(t, uint64(7), traded)
}
