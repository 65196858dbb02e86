package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedrichaddad/flash-lob/matching"
)

func TestProcessPlaceAndCancel(t *testing.T) {
	e := New(100)

	events := e.Process(matching.PlaceCommand(1, 10, matching.Bid, 9000, 50, matching.Limit))
	require.Len(t, events, 2)

	events = e.Process(matching.CancelCommand(1))
	require.Len(t, events, 2)
	assert.Equal(t, matching.EventCanceled, events[0].Kind)
	assert.Equal(t, 0, e.OrderCount())
}

func TestModifyPreservesSideAndUser(t *testing.T) {
	e := New(100)
	e.Process(matching.PlaceCommand(1, 77, matching.Bid, 9000, 50, matching.Limit))

	events := e.Process(matching.ModifyCommand(1, 1, 9100, 60))

	var accepted *matching.OutputEvent
	for i := range events {
		if events[i].Kind == matching.EventAccepted {
			accepted = &events[i]
		}
	}
	require.NotNil(t, accepted, "modify must re-place the order")
	assert.Equal(t, matching.Bid, accepted.AcceptedSide)
	assert.EqualValues(t, 9100, accepted.AcceptedPrice)
	assert.EqualValues(t, 60, accepted.AcceptedQty)

	loc, ok := e.Matcher().Book.GetOrder(1)
	require.True(t, ok)
	assert.EqualValues(t, 77, loc.UserID, "modify must preserve the original owner")
}

func TestModifyResetsTimePriority(t *testing.T) {
	e := New(100)
	e.Process(matching.PlaceCommand(1, 1, matching.Ask, 9000, 50, matching.Limit))
	e.Process(matching.PlaceCommand(2, 2, matching.Ask, 9000, 50, matching.Limit))

	// Order 1 modifies in place at the same price - it should lose its
	// head-of-queue position to order 2.
	e.Process(matching.ModifyCommand(1, 1, 9000, 50))

	events := e.Process(matching.PlaceCommand(3, 3, matching.Bid, 9000, 50, matching.Limit))

	var trade *matching.OutputEvent
	for i := range events {
		if events[i].Kind == matching.EventTrade {
			trade = &events[i]
		}
	}
	require.NotNil(t, trade)
	assert.EqualValues(t, 2, trade.MakerOrderID, "order 2 now has time priority after order 1's modify")
}

func TestModifyNonexistentOrderRejects(t *testing.T) {
	e := New(100)
	events := e.Process(matching.ModifyCommand(999, 1000, 9000, 10))

	require.Len(t, events, 1)
	assert.Equal(t, matching.EventRejected, events[0].Kind)
	assert.Equal(t, matching.RejectOrderNotFound, events[0].Reason)
}

func TestModifyRelocatesLevelUnderNewID(t *testing.T) {
	e := New(100)
	e.Process(matching.PlaceCommand(1, 100, matching.Bid, 10000, 100, matching.Limit))

	events := e.Process(matching.ModifyCommand(1, 2, 10500, 200))

	require.Len(t, events, 4)
	assert.Equal(t, matching.EventCanceled, events[0].Kind)
	assert.EqualValues(t, 1, events[0].CanceledOrderID)
	assert.EqualValues(t, 100, events[0].CanceledQty)

	assert.Equal(t, matching.EventBookDelta, events[1].Kind)
	assert.EqualValues(t, 10000, events[1].DeltaPrice)
	assert.True(t, events[1].LevelRemoved)

	assert.Equal(t, matching.EventAccepted, events[2].Kind)
	assert.EqualValues(t, 2, events[2].AcceptedOrderID)
	assert.EqualValues(t, 10500, events[2].AcceptedPrice)
	assert.EqualValues(t, 200, events[2].AcceptedQty)
	assert.Equal(t, matching.Bid, events[2].AcceptedSide)

	assert.Equal(t, matching.EventBookDelta, events[3].Kind)
	assert.EqualValues(t, 10500, events[3].DeltaPrice)
	assert.EqualValues(t, 200, events[3].DeltaQty)
	assert.EqualValues(t, 1, events[3].DeltaCount)

	bb, _ := e.BestBid()
	assert.EqualValues(t, 10500, bb)
	assert.False(t, e.Matcher().Book.ContainsOrder(1))
}

func TestPlaceThenCancelRestoresStateHash(t *testing.T) {
	e := New(100)
	e.Process(matching.PlaceCommand(1, 1, matching.Ask, 10100, 50, matching.Limit))
	before := e.StateHash()

	e.Process(matching.PlaceCommand(2, 2, matching.Bid, 9900, 30, matching.Limit))
	e.Process(matching.CancelCommand(2))

	assert.Equal(t, before, e.StateHash())
}

func TestDoubleCancelRejected(t *testing.T) {
	e := New(100)
	e.Process(matching.PlaceCommand(1, 1, matching.Bid, 9000, 50, matching.Limit))

	events := e.Process(matching.CancelCommand(1))
	assert.Equal(t, matching.EventCanceled, events[0].Kind)

	events = e.Process(matching.CancelCommand(1))
	require.Len(t, events, 1)
	assert.Equal(t, matching.EventRejected, events[0].Kind)
	assert.Equal(t, matching.RejectOrderNotFound, events[0].Reason)
}

func TestStateHashStableAcrossIdenticalRuns(t *testing.T) {
	commands := []matching.Command{
		matching.PlaceCommand(1, 1, matching.Bid, 9000, 50, matching.Limit),
		matching.PlaceCommand(2, 2, matching.Ask, 9100, 50, matching.Limit),
		matching.CancelCommand(1),
	}

	run := func() uint64 {
		e := New(100)
		for _, cmd := range commands {
			e.Process(cmd)
		}
		return e.StateHash()
	}

	assert.Equal(t, run(), run())
}

func TestWarmUpDoesNotPanic(t *testing.T) {
	e := New(1000)
	assert.NotPanics(t, func() { e.WarmUp() })
}
