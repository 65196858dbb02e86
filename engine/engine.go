// Package engine composes the matching package's cross/rest Matcher
// into the full command surface a caller drives: Place, Cancel, and
// Modify. It also carries the deterministic state hash and warm-up
// hook used for replay/backtest harnesses.
//
// The engine is strictly single-writer: one synchronous Process call
// at a time, no goroutines, no locks. CPU pinning and queue plumbing
// belong to whatever runtime wraps it.
package engine

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/cedrichaddad/flash-lob/matching"
)

// Engine is the top-level, single-writer entry point: one Matcher
// plus the Modify composition that sits above it.
type Engine struct {
	matcher *matching.Matcher
}

// New creates an Engine with an arena sized for capacity resting orders.
func New(capacity uint32) *Engine {
	return &Engine{matcher: matching.New(capacity)}
}

// Process dispatches a single Command and returns the events it produced.
func (e *Engine) Process(cmd matching.Command) []matching.OutputEvent {
	switch cmd.Kind {
	case matching.Place:
		return e.matcher.ProcessPlace(cmd)
	case matching.Cancel:
		return e.matcher.ProcessCancel(cmd.CancelID)
	case matching.Modify:
		return e.processModify(cmd)
	default:
		return nil
	}
}

// processModify cancels the existing order, snapshotting its side and
// user id before doing so, then places a new order with the requested
// price/qty under that side/user - price-time priority is reset, since
// the new order enters the book as brand new. If the target does not
// exist, a single Rejected event is returned and no place is attempted.
func (e *Engine) processModify(cmd matching.Command) []matching.OutputEvent {
	loc, ok := e.matcher.Book.GetOrder(cmd.CancelID)
	if !ok {
		return []matching.OutputEvent{
			{Kind: matching.EventRejected, RejectedOrderID: cmd.CancelID, Reason: matching.RejectOrderNotFound},
		}
	}

	cancelEvents := e.matcher.ProcessCancel(cmd.CancelID)

	placeCmd := matching.PlaceCommand(cmd.OrderID, loc.UserID, loc.Side, cmd.Price, cmd.Qty, matching.Limit)
	placeEvents := e.matcher.ProcessPlace(placeCmd)

	events := make([]matching.OutputEvent, 0, len(cancelEvents)+len(placeEvents))
	events = append(events, cancelEvents...)
	events = append(events, placeEvents...)
	return events
}

// BestBid forwards to the underlying matcher.
func (e *Engine) BestBid() (uint64, bool) { return e.matcher.BestBid() }

// BestAsk forwards to the underlying matcher.
func (e *Engine) BestAsk() (uint64, bool) { return e.matcher.BestAsk() }

// Spread forwards to the underlying matcher.
func (e *Engine) Spread() (uint64, bool) { return e.matcher.Spread() }

// OrderCount forwards to the underlying matcher.
func (e *Engine) OrderCount() int { return e.matcher.OrderCount() }

// Matcher exposes the underlying matcher for callers (tests, fixture
// loaders) that need direct book access.
func (e *Engine) Matcher() *matching.Matcher { return e.matcher }

// WarmUp pre-faults the arena's backing pages before the hot path starts.
func (e *Engine) WarmUp() { e.matcher.WarmUp() }

// StateHash computes a deterministic digest of the engine's visible
// state - best bid, best ask, resting order count, and allocated
// record count mixed through FNV-1a - for golden-master and
// replay-determinism testing. Stable across runs for the same command
// history on the same build.
func (e *Engine) StateHash() uint64 {
	h := fnv.New64a()
	var buf [8]byte

	writeOptional := func(v uint64, ok bool) {
		if ok {
			buf[0] = 1
		} else {
			buf[0] = 0
			v = 0
		}
		h.Write(buf[:1])
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}

	bb, bbOK := e.BestBid()
	writeOptional(bb, bbOK)

	ba, baOK := e.BestAsk()
	writeOptional(ba, baOK)

	binary.LittleEndian.PutUint64(buf[:], uint64(e.OrderCount()))
	h.Write(buf[:])

	binary.LittleEndian.PutUint64(buf[:], uint64(e.matcher.Arena.Allocated()))
	h.Write(buf[:])

	return h.Sum64()
}
