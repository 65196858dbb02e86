package matching

import (
	"github.com/cedrichaddad/flash-lob/arena"
	"github.com/cedrichaddad/flash-lob/orderbook"
)

// Matcher is the core cross/rest engine: an arena plus the book it
// backs. It has no notion of Modify - that is a two-step dispatch
// composed by the engine package out of ProcessCancel + ProcessPlace.
type Matcher struct {
	Arena *arena.Arena
	Book  *orderbook.Book
}

// New creates a Matcher with the given arena capacity.
func New(capacity uint32) *Matcher {
	return &Matcher{
		Arena: arena.New(capacity),
		Book:  orderbook.NewWithCapacity(1000, int(capacity)),
	}
}

// ProcessPlace validates, crosses, and (if quantity remains and the
// order type allows it) rests a new order. An IOC that never crosses
// is the one case that returns an empty event list - its residual is
// discarded silently.
func (m *Matcher) ProcessPlace(cmd Command) []OutputEvent {
	events := make([]OutputEvent, 0, 4)

	if cmd.Qty == 0 {
		return append(events, rejectedEvent(cmd.OrderID, RejectInvalidQuantity))
	}

	if m.Book.ContainsOrder(cmd.OrderID) {
		return append(events, rejectedEvent(cmd.OrderID, RejectDuplicateOrderID))
	}

	if cmd.OrderType == FOK && !m.canFillCompletely(cmd.Side, cmd.Price, cmd.Qty) {
		return append(events, rejectedEvent(cmd.OrderID, RejectInsufficientLiquidity))
	}

	remaining := m.crossOrder(cmd, cmd.Qty, &events)

	if remaining > 0 {
		if cmd.OrderType == Limit {
			if !m.restOrder(cmd, remaining, &events) {
				events = append(events, rejectedEvent(cmd.OrderID, RejectArenaFull))
			}
		}
		// IOC and FOK never rest a remainder: IOC cancels it, FOK can
		// only reach here having already matched its entire quantity
		// (canFillCompletely guaranteed it), so remaining is always 0
		// for FOK in practice; the branch above is dead for FOK but
		// kept for IOC's sake.
	}

	return events
}

// canFillCompletely walks the opposite side's crossable levels
// read-only to decide whether a FOK order could be filled in full
// without mutating any state - the pre-trade check fill-or-kill
// semantics require.
func (m *Matcher) canFillCompletely(side Side, price uint64, qty uint32) bool {
	oppositeSide := side.Opposite()
	remaining := qty

	for _, lp := range m.Book.CrossableLevels(side, price) {
		if remaining == 0 {
			break
		}
		level, ok := m.Book.GetLevel(oppositeSide, lp)
		if !ok {
			continue
		}
		if uint64(remaining) <= level.TotalQty {
			remaining = 0
			break
		}
		remaining -= uint32(level.TotalQty)
	}

	return remaining == 0
}

func (m *Matcher) pricesCross(orderPrice, oppositeBest uint64, side Side) bool {
	if side == Bid {
		return orderPrice >= oppositeBest
	}
	return orderPrice <= oppositeBest
}

// crossOrder repeatedly matches the incoming order against the best
// opposite level while prices cross, returning the quantity left
// unmatched.
func (m *Matcher) crossOrder(cmd Command, remaining uint32, events *[]OutputEvent) uint32 {
	oppositeSide := cmd.Side.Opposite()

	for remaining > 0 {
		bestOpposite, ok := m.Book.BestPrice(oppositeSide)
		if !ok {
			break
		}
		if !m.pricesCross(cmd.Price, bestOpposite, cmd.Side) {
			break
		}
		remaining = m.matchAtLevel(cmd, bestOpposite, oppositeSide, remaining, events)
	}

	return remaining
}

// matchAtLevel consumes resting orders FIFO at price until remaining
// hits zero or the level empties.
func (m *Matcher) matchAtLevel(cmd Command, price uint64, makerSide Side, remaining uint32, events *[]OutputEvent) uint32 {
	for remaining > 0 {
		level, ok := m.Book.GetLevel(makerSide, price)
		if !ok || level.IsEmpty() {
			break
		}

		makerIdx := level.PeekHead()
		maker := m.Arena.Get(makerIdx)
		makerOrderID := maker.OrderID
		makerUserID := maker.UserID
		makerQty := maker.Qty

		tradeQty := remaining
		if makerQty < tradeQty {
			tradeQty = makerQty
		}

		*events = append(*events, tradeEvent(cmd.OrderID, makerOrderID, cmd.UserID, makerUserID, price, tradeQty, cmd.Side))

		remaining -= tradeQty
		newMakerQty := makerQty - tradeQty

		if newMakerQty == 0 {
			level.PopFront(m.Arena)
			m.Book.RemoveOrderFromLocator(makerOrderID)
			m.Arena.Free(makerIdx)

			if level.IsEmpty() {
				*events = append(*events, bookDeltaEvent(makerSide, price, 0, 0, true))
				m.Book.RemoveEmptyLevel(makerSide, price)
			} else {
				*events = append(*events, bookDeltaEvent(makerSide, price, level.TotalQty, level.Count, false))
			}
		} else {
			m.Arena.Get(makerIdx).Qty = newMakerQty
			level.SubtractQty(tradeQty)
			*events = append(*events, bookDeltaEvent(makerSide, price, level.TotalQty, level.Count, false))
		}
	}

	return remaining
}

// restOrder allocates an arena slot for qty and adds it to the book.
// It returns false if the arena is exhausted.
func (m *Matcher) restOrder(cmd Command, qty uint32, events *[]OutputEvent) bool {
	idx, ok := m.Arena.Alloc()
	if !ok {
		return false
	}

	rec := m.Arena.Get(idx)
	rec.OrderID = cmd.OrderID
	rec.UserID = cmd.UserID
	rec.Price = cmd.Price
	rec.Qty = qty

	m.Book.AddOrder(m.Arena, cmd.OrderID, cmd.UserID, cmd.Side, cmd.Price, idx)

	*events = append(*events, acceptedEvent(cmd.OrderID, cmd.Side, cmd.Price, qty))

	level, _ := m.Book.GetLevel(cmd.Side, cmd.Price)
	*events = append(*events, bookDeltaEvent(cmd.Side, cmd.Price, level.TotalQty, level.Count, false))

	return true
}

// ProcessCancel removes a resting order, freeing its arena slot.
func (m *Matcher) ProcessCancel(orderID uint64) []OutputEvent {
	loc, ok := m.Book.GetOrder(orderID)
	if !ok {
		return []OutputEvent{rejectedEvent(orderID, RejectOrderNotFound)}
	}

	canceledQty := m.Arena.Get(loc.ArenaIndex).Qty

	m.Book.RemoveOrder(m.Arena, orderID)
	m.Arena.Free(loc.ArenaIndex)

	events := make([]OutputEvent, 0, 2)
	ce := canceledEvent(orderID)
	ce.CanceledQty = canceledQty
	events = append(events, ce)

	qty, count := m.Book.DepthAt(loc.Side, loc.Price)
	events = append(events, bookDeltaEvent(loc.Side, loc.Price, qty, count, count == 0))

	return events
}

// BestBid forwards to the underlying book.
func (m *Matcher) BestBid() (uint64, bool) { return m.Book.BestBid() }

// BestAsk forwards to the underlying book.
func (m *Matcher) BestAsk() (uint64, bool) { return m.Book.BestAsk() }

// Spread forwards to the underlying book.
func (m *Matcher) Spread() (uint64, bool) { return m.Book.Spread() }

// OrderCount forwards to the underlying book.
func (m *Matcher) OrderCount() int { return m.Book.OrderCount() }

// WarmUp pre-faults the arena's backing pages.
func (m *Matcher) WarmUp() { m.Arena.WarmUp() }
