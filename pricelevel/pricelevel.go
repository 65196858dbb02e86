// Package pricelevel implements a FIFO queue of resting orders at a
// single price, as an intrusive doubly-linked list of arena indices:
// O(1) append, O(1) pop-head, and O(1) removal of any known member.
package pricelevel

import "github.com/cedrichaddad/flash-lob/arena"

// PriceLevel is a FIFO of orders resting at one price. Build one with
// New: an empty level has Head and Tail set to arena.NullIndex, which
// the zero value does not.
type PriceLevel struct {
	Head     uint32
	Tail     uint32
	TotalQty uint64
	Count    uint32
}

// New returns an empty price level.
func New() *PriceLevel {
	return &PriceLevel{Head: arena.NullIndex, Tail: arena.NullIndex}
}

// IsEmpty reports whether the level holds no orders.
func (l *PriceLevel) IsEmpty() bool { return l.Count == 0 }

// PushBack appends the order at idx to the tail of the queue - O(1).
func (l *PriceLevel) PushBack(a *arena.Arena, idx uint32) {
	qty := a.Get(idx).Qty

	if l.Tail == arena.NullIndex {
		l.Head = idx
		l.Tail = idx
		a.Get(idx).Prev = arena.NullIndex
		a.Get(idx).Next = arena.NullIndex
	} else {
		a.Get(l.Tail).Next = idx
		a.Get(idx).Prev = l.Tail
		a.Get(idx).Next = arena.NullIndex
		l.Tail = idx
	}

	l.Count++
	l.TotalQty += uint64(qty)
}

// PopFront detaches and returns the head order - O(1). The record is
// not freed from the arena; the caller owns that decision.
func (l *PriceLevel) PopFront(a *arena.Arena) (uint32, bool) {
	if l.Head == arena.NullIndex {
		return arena.NullIndex, false
	}

	idx := l.Head
	node := a.Get(idx)
	next := node.Next
	qty := node.Qty

	if next == arena.NullIndex {
		l.Head = arena.NullIndex
		l.Tail = arena.NullIndex
	} else {
		l.Head = next
		a.Get(next).Prev = arena.NullIndex
	}

	l.Count--
	l.TotalQty -= uint64(qty)

	a.Get(idx).Prev = arena.NullIndex
	a.Get(idx).Next = arena.NullIndex

	return idx, true
}

// Remove detaches idx from anywhere in the queue, handling all four
// cases (only node, head, tail, middle). It returns true iff the
// level is now empty. The caller must guarantee idx is actually a
// member of this level. The record is not freed here.
func (l *PriceLevel) Remove(a *arena.Arena, idx uint32) bool {
	node := a.Get(idx)
	prev := node.Prev
	next := node.Next
	qty := node.Qty

	switch {
	case prev == arena.NullIndex && next == arena.NullIndex:
		l.Head = arena.NullIndex
		l.Tail = arena.NullIndex
	case prev == arena.NullIndex:
		l.Head = next
		a.Get(next).Prev = arena.NullIndex
	case next == arena.NullIndex:
		l.Tail = prev
		a.Get(prev).Next = arena.NullIndex
	default:
		a.Get(prev).Next = next
		a.Get(next).Prev = prev
	}

	l.Count--
	l.TotalQty -= uint64(qty)

	a.Get(idx).Prev = arena.NullIndex
	a.Get(idx).Next = arena.NullIndex

	return l.Count == 0
}

// PeekHead returns the head index without removing it, or NullIndex if empty.
func (l *PriceLevel) PeekHead() uint32 { return l.Head }

// SubtractQty adjusts TotalQty after an in-place partial fill of the
// head record. Call this instead of PopFront when the head record
// still has quantity remaining.
func (l *PriceLevel) SubtractQty(q uint32) {
	l.TotalQty -= uint64(q)
}
