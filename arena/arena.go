// Package arena implements a fixed-capacity slab allocator for order
// records, with O(1) allocation and deallocation via an intrusive free
// list threaded through the records themselves.
//
// One contiguous, pre-allocated block; no heap allocation once the
// arena is built. Indices (not pointers) link a record into either a
// price-level FIFO or the free list, halving the size of the linkage
// fields versus native pointers and making every record trivially
// copyable.
package arena

import (
	"math"
	"unsafe"
)

// NullIndex is the sentinel meaning "no record" - used for both the
// free-list terminator and the FIFO head/prev/next fields.
const NullIndex uint32 = math.MaxUint32

// OrderRecord is one resting (or free-listed) order. It is exactly 64
// bytes - one cache line on essentially every x86_64 and arm64 part.
//
// Go offers no way to demand 64-byte alignment of slice elements
// without hand-rolling a bump allocator over a raw byte buffer, so
// alignment is best-effort; the exact size is asserted below, which
// is what record packing density depends on.
type OrderRecord struct {
	Price   uint64 // fixed-point price; opaque to this package
	Qty     uint32 // remaining unfilled quantity
	OrderID uint64 // external, caller-assigned identity
	UserID  uint64 // attribution tag, opaque to this package
	Next    uint32 // slab index: next in FIFO or free list, NullIndex if none
	Prev    uint32 // slab index: previous in FIFO, NullIndex if none

	_reserved [24]byte // pad out to one cache line
}

// compile-time assertion that OrderRecord is exactly 64 bytes, checked
// against unsafe.Sizeof rather than a hand-summed field-width constant
// so that field reordering or compiler-inserted padding can't silently
// desync the assertion from the real layout; a negative array length
// is a compile error, so whichever of these two declarations would be
// negative breaks the build.
var (
	_ [64 - unsafe.Sizeof(OrderRecord{})]byte
	_ [unsafe.Sizeof(OrderRecord{}) - 64]byte
)

func (r *OrderRecord) reset() {
	r.Price = 0
	r.Qty = 0
	r.OrderID = 0
	r.UserID = 0
	r.Next = NullIndex
	r.Prev = NullIndex
}

// Arena is a pre-allocated, fixed-capacity pool of OrderRecords.
type Arena struct {
	records   []OrderRecord
	freeHead  uint32
	allocated uint32
	capacity  uint32
}

// New creates an arena with room for exactly capacity records.
// Capacity must be strictly less than NullIndex so that no live index
// can ever collide with the sentinel.
func New(capacity uint32) *Arena {
	if capacity >= NullIndex {
		panic("arena: capacity must be less than NullIndex")
	}

	a := &Arena{
		records:  make([]OrderRecord, capacity),
		capacity: capacity,
	}

	if capacity == 0 {
		a.freeHead = NullIndex
		return a
	}

	for i := uint32(0); i < capacity-1; i++ {
		a.records[i].Next = i + 1
		a.records[i].Prev = NullIndex
	}
	a.records[capacity-1].Next = NullIndex
	a.records[capacity-1].Prev = NullIndex
	a.freeHead = 0

	return a
}

// Alloc pops a record off the free list in O(1). It returns
// (NullIndex, false) when the arena is exhausted - the only failure
// mode in this package.
func (a *Arena) Alloc() (uint32, bool) {
	if a.freeHead == NullIndex {
		return NullIndex, false
	}

	idx := a.freeHead
	a.freeHead = a.records[idx].Next
	a.allocated++

	a.records[idx].Next = NullIndex
	a.records[idx].Prev = NullIndex

	return idx, true
}

// Free resets a record and pushes it back onto the free list in O(1).
// The caller must guarantee idx was previously allocated and has not
// already been freed; there is no double-free detection.
func (a *Arena) Free(idx uint32) {
	a.records[idx].reset()
	a.records[idx].Next = a.freeHead
	a.freeHead = idx
	a.allocated--
}

// Get returns a pointer to the record at idx for direct, O(1) access.
func (a *Arena) Get(idx uint32) *OrderRecord {
	return &a.records[idx]
}

// Allocated returns the number of currently live (non-free) records.
func (a *Arena) Allocated() uint32 { return a.allocated }

// Capacity returns the total number of records the arena was built with.
func (a *Arena) Capacity() uint32 { return a.capacity }

// IsFull reports whether no more records can be allocated.
func (a *Arena) IsFull() bool { return a.freeHead == NullIndex }

// WarmUp touches every record once, pre-faulting its backing pages so
// that steady-state allocation never takes a page fault. Startup-only;
// never called on the hot path.
func (a *Arena) WarmUp() {
	for i := range a.records {
		a.records[i]._reserved[0] = 0
	}
}
