package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRecordSize(t *testing.T) {
	assert.EqualValues(t, 64, unsafe.Sizeof(OrderRecord{}))
}

func TestNewArena(t *testing.T) {
	a := New(100)
	assert.EqualValues(t, 100, a.Capacity())
	assert.EqualValues(t, 0, a.Allocated())
	assert.False(t, a.IsFull())
}

func TestAllocFree(t *testing.T) {
	a := New(3)

	idx0, ok := a.Alloc()
	require.True(t, ok)
	idx1, ok := a.Alloc()
	require.True(t, ok)
	idx2, ok := a.Alloc()
	require.True(t, ok)

	assert.EqualValues(t, 3, a.Allocated())
	assert.True(t, a.IsFull())

	_, ok = a.Alloc()
	assert.False(t, ok, "arena should be exhausted")

	a.Free(idx1)
	assert.EqualValues(t, 2, a.Allocated())
	assert.False(t, a.IsFull())

	idx3, ok := a.Alloc()
	require.True(t, ok)
	assert.Equal(t, idx1, idx3, "freed slot should be reused")

	a.Free(idx0)
	a.Free(idx2)
	a.Free(idx3)
	assert.EqualValues(t, 0, a.Allocated())
}

func TestGetSet(t *testing.T) {
	a := New(10)
	idx, ok := a.Alloc()
	require.True(t, ok)

	rec := a.Get(idx)
	rec.OrderID = 12345
	rec.UserID = 999
	rec.Price = 10050000
	rec.Qty = 100

	rec = a.Get(idx)
	assert.EqualValues(t, 12345, rec.OrderID)
	assert.EqualValues(t, 999, rec.UserID)
	assert.EqualValues(t, 10050000, rec.Price)
	assert.EqualValues(t, 100, rec.Qty)
}

func TestFreedRecordIsReset(t *testing.T) {
	a := New(4)
	idx, _ := a.Alloc()
	rec := a.Get(idx)
	rec.OrderID = 7
	rec.Qty = 42

	a.Free(idx)

	reused, _ := a.Alloc()
	require.Equal(t, idx, reused)
	rec = a.Get(reused)
	assert.Zero(t, rec.OrderID)
	assert.Zero(t, rec.Qty)
	assert.Equal(t, NullIndex, rec.Next)
	assert.Equal(t, NullIndex, rec.Prev)
}

func TestWarmUpDoesNotPanic(t *testing.T) {
	a := New(1000)
	assert.NotPanics(t, func() { a.WarmUp() })
}

func TestZeroCapacityArena(t *testing.T) {
	a := New(0)
	assert.True(t, a.IsFull())
	_, ok := a.Alloc()
	assert.False(t, ok)
}
