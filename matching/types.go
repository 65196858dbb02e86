// Package matching implements the crossing/resting algorithm: given a
// Place or Cancel, it mutates an orderbook.Book and an arena.Arena and
// returns the OutputEvents that resulted. Modify is defined here as a
// Command kind but is composed from Cancel and Place by the engine
// package.
//
// Crossing is strict price-time priority: an incoming order walks the
// best opposite levels while prices cross, pairing with makers in
// arrival order. Limit orders rest their remainder; IOC discards it
// silently; FOK runs a read-only liquidity pre-check and either fills
// in full or rejects without touching the book.
package matching

import "github.com/cedrichaddad/flash-lob/orderbook"

// Side re-exports orderbook.Side so callers of this package need not
// import orderbook directly for the common case.
type Side = orderbook.Side

const (
	Bid = orderbook.Bid
	Ask = orderbook.Ask
)

// OrderType selects the resting/cancellation behavior of a Place command.
type OrderType uint8

const (
	// Limit rests unmatched quantity in the book at its limit price.
	Limit OrderType = iota
	// IOC (Immediate-Or-Cancel) matches whatever it can immediately and
	// cancels any unfilled remainder instead of resting it.
	IOC
	// FOK (Fill-Or-Kill) matches in full immediately or not at all: if
	// the book cannot fill the entire requested quantity without
	// resting, the order is rejected and the book is left untouched.
	FOK
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "Limit"
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	default:
		return "Unknown"
	}
}

// Command is the single mutating input to a Matcher.
type Command struct {
	Kind CommandKind

	// Place fields. Modify reuses OrderID as the id its re-placed
	// order enters the book under.
	OrderID   uint64
	UserID    uint64
	Side      Side
	Price     uint64
	Qty       uint32
	OrderType OrderType

	// Cancel fields (and Modify's target order id).
	CancelID uint64
}

// CommandKind discriminates the Command union.
type CommandKind uint8

const (
	Place CommandKind = iota
	Cancel
	Modify
)

// PlaceCommand builds a Place command.
func PlaceCommand(orderID, userID uint64, side Side, price uint64, qty uint32, ot OrderType) Command {
	return Command{Kind: Place, OrderID: orderID, UserID: userID, Side: side, Price: price, Qty: qty, OrderType: ot}
}

// CancelCommand builds a Cancel command.
func CancelCommand(orderID uint64) Command {
	return Command{Kind: Cancel, CancelID: orderID}
}

// ModifyCommand builds a Modify command: cancel orderID, then place a
// fresh order under newOrderID with the given price/qty, preserving
// side and user from the canceled order.
func ModifyCommand(orderID, newOrderID uint64, newPrice uint64, newQty uint32) Command {
	return Command{Kind: Modify, CancelID: orderID, OrderID: newOrderID, Price: newPrice, Qty: newQty, OrderType: Limit}
}

// RejectReason explains why a command was refused. An ArenaFull
// rejection can follow trades the same command already executed;
// those trades stand.
type RejectReason uint8

const (
	RejectNone RejectReason = iota
	RejectInvalidQuantity
	RejectDuplicateOrderID
	RejectArenaFull
	RejectOrderNotFound
	RejectInsufficientLiquidity
	// RejectInvalidPrice is reserved for an outer price-validation
	// layer; this package never raises it.
	RejectInvalidPrice
)

func (r RejectReason) String() string {
	switch r {
	case RejectInvalidQuantity:
		return "InvalidQuantity"
	case RejectDuplicateOrderID:
		return "DuplicateOrderId"
	case RejectArenaFull:
		return "ArenaFull"
	case RejectOrderNotFound:
		return "OrderNotFound"
	case RejectInsufficientLiquidity:
		return "InsufficientLiquidity"
	case RejectInvalidPrice:
		return "InvalidPrice"
	default:
		return "None"
	}
}

// EventKind discriminates the OutputEvent union.
type EventKind uint8

const (
	EventTrade EventKind = iota
	EventBookDelta
	EventRejected
	EventCanceled
	EventAccepted
)

// OutputEvent is one observable effect of processing a Command. A
// single command can emit several: a resting order crossing three
// maker levels emits three Trade events plus the BookDelta events for
// each affected level.
type OutputEvent struct {
	Kind EventKind

	// Trade fields.
	TakerOrderID uint64
	MakerOrderID uint64
	TakerUserID  uint64
	MakerUserID  uint64
	Price        uint64
	Qty          uint32
	TakerSide    Side

	// BookDelta fields: the level's state after the delta, or
	// LevelRemoved=true (with DeltaQty=DeltaCount=0) if the level no
	// longer exists.
	DeltaSide    Side
	DeltaPrice   uint64
	DeltaQty     uint64
	DeltaCount   uint32
	LevelRemoved bool

	// Rejected fields.
	RejectedOrderID uint64
	Reason          RejectReason

	// Canceled fields.
	CanceledOrderID uint64
	CanceledQty     uint32

	// Accepted fields: the resting order's id, side, price and
	// remaining quantity, kept separate from the Trade fields above.
	AcceptedOrderID uint64
	AcceptedSide    Side
	AcceptedPrice   uint64
	AcceptedQty     uint32
}

func tradeEvent(takerID, makerID, takerUser, makerUser, price uint64, qty uint32, takerSide Side) OutputEvent {
	return OutputEvent{
		Kind:         EventTrade,
		TakerOrderID: takerID,
		MakerOrderID: makerID,
		TakerUserID:  takerUser,
		MakerUserID:  makerUser,
		Price:        price,
		Qty:          qty,
		TakerSide:    takerSide,
	}
}

func bookDeltaEvent(side Side, price uint64, qty uint64, count uint32, removed bool) OutputEvent {
	return OutputEvent{
		Kind:         EventBookDelta,
		DeltaSide:    side,
		DeltaPrice:   price,
		DeltaQty:     qty,
		DeltaCount:   count,
		LevelRemoved: removed,
	}
}

func rejectedEvent(orderID uint64, reason RejectReason) OutputEvent {
	return OutputEvent{Kind: EventRejected, RejectedOrderID: orderID, Reason: reason}
}

func canceledEvent(orderID uint64) OutputEvent {
	return OutputEvent{Kind: EventCanceled, CanceledOrderID: orderID}
}

func acceptedEvent(orderID uint64, side Side, price uint64, qty uint32) OutputEvent {
	return OutputEvent{
		Kind:            EventAccepted,
		AcceptedOrderID: orderID,
		AcceptedSide:    side,
		AcceptedPrice:   price,
		AcceptedQty:     qty,
	}
}
