// Package orderbook maintains the two sides of a limit order book:
// sparse bid/ask price level maps, a secondary order-id locator, and
// cached best-bid/best-ask prices.
//
// The price domain is an opaque uint64, far too wide for a dense
// per-price array, so each side is a hash map keyed by price. The
// cached best prices update monotonically on insert and are rebuilt
// by a full key scan only when the level holding the best empties.
package orderbook

import (
	"sort"

	"github.com/cedrichaddad/flash-lob/arena"
	"github.com/cedrichaddad/flash-lob/pricelevel"
)

// Side identifies which book side an order rests on.
type Side uint8

const (
	Bid Side = iota
	Ask
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

func (s Side) String() string {
	if s == Bid {
		return "Bid"
	}
	return "Ask"
}

// Locator is the per-order-id metadata needed for O(1) cancel: which
// arena slot holds the record, which side/price it rests at, and
// which user it belongs to (needed by Modify to preserve ownership).
type Locator struct {
	ArenaIndex uint32
	Side       Side
	Price      uint64
	UserID     uint64
}

// Book is the central limit order book: two sparse price level maps
// plus an order-id locator and cached best prices.
type Book struct {
	bids map[uint64]*pricelevel.PriceLevel
	asks map[uint64]*pricelevel.PriceLevel

	locator map[uint64]Locator

	bestBid    uint64
	hasBestBid bool
	bestAsk    uint64
	hasBestAsk bool
}

// New creates an empty order book.
func New() *Book {
	return &Book{
		bids:    make(map[uint64]*pricelevel.PriceLevel),
		asks:    make(map[uint64]*pricelevel.PriceLevel),
		locator: make(map[uint64]Locator),
	}
}

// NewWithCapacity creates an empty order book with map capacity hints,
// avoiding rehashing churn for workloads of a known rough size.
func NewWithCapacity(levels, orders int) *Book {
	return &Book{
		bids:    make(map[uint64]*pricelevel.PriceLevel, levels),
		asks:    make(map[uint64]*pricelevel.PriceLevel, levels),
		locator: make(map[uint64]Locator, orders),
	}
}

// BestBid returns the highest resting bid price, if any.
func (b *Book) BestBid() (uint64, bool) { return b.bestBid, b.hasBestBid }

// BestAsk returns the lowest resting ask price, if any.
func (b *Book) BestAsk() (uint64, bool) { return b.bestAsk, b.hasBestAsk }

// BestPrice returns the best price cached for the given side.
func (b *Book) BestPrice(side Side) (uint64, bool) {
	if side == Bid {
		return b.BestBid()
	}
	return b.BestAsk()
}

// BestOpposite returns the best price on the side opposite to side -
// the price an incoming order on side would need to cross.
func (b *Book) BestOpposite(side Side) (uint64, bool) {
	return b.BestPrice(side.Opposite())
}

// GetLevel returns the price level at (side, price), if one exists.
func (b *Book) GetLevel(side Side, price uint64) (*pricelevel.PriceLevel, bool) {
	m := b.sideMap(side)
	l, ok := m[price]
	return l, ok
}

// GetOrCreateLevel returns the price level at (side, price), creating
// an empty one if none exists yet.
func (b *Book) GetOrCreateLevel(side Side, price uint64) *pricelevel.PriceLevel {
	m := b.sideMap(side)
	if l, ok := m[price]; ok {
		return l
	}
	l := pricelevel.New()
	m[price] = l
	return l
}

func (b *Book) sideMap(side Side) map[uint64]*pricelevel.PriceLevel {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

// AddOrder rests a new order in the book. It returns false without
// any side effect if orderID already has a live locator entry.
func (b *Book) AddOrder(a *arena.Arena, orderID, userID uint64, side Side, price uint64, idx uint32) bool {
	if _, exists := b.locator[orderID]; exists {
		return false
	}

	b.locator[orderID] = Locator{
		ArenaIndex: idx,
		Side:       side,
		Price:      price,
		UserID:     userID,
	}

	level := b.GetOrCreateLevel(side, price)
	level.PushBack(a, idx)

	b.updateBestOnAdd(side, price)

	return true
}

// RemoveOrder removes orderID from the locator and its price level,
// cleaning up an emptied level and recomputing the cached best price
// if needed. It returns the removed locator, or false if orderID was
// not found.
func (b *Book) RemoveOrder(a *arena.Arena, orderID uint64) (Locator, bool) {
	loc, ok := b.locator[orderID]
	if !ok {
		return Locator{}, false
	}
	delete(b.locator, orderID)

	if level, ok := b.GetLevel(loc.Side, loc.Price); ok {
		if level.Remove(a, loc.ArenaIndex) {
			b.RemoveEmptyLevel(loc.Side, loc.Price)
		}
	}

	return loc, true
}

// GetOrder looks up the locator for orderID without removing it.
func (b *Book) GetOrder(orderID uint64) (Locator, bool) {
	loc, ok := b.locator[orderID]
	return loc, ok
}

// ContainsOrder reports whether orderID currently has a resting order.
func (b *Book) ContainsOrder(orderID uint64) bool {
	_, ok := b.locator[orderID]
	return ok
}

// RemoveOrderFromLocator drops orderID's locator entry without
// touching its price level - used by the matcher when a maker is
// fully filled during matching (the level's FIFO is already being
// popped directly by the matcher in that path).
func (b *Book) RemoveOrderFromLocator(orderID uint64) {
	delete(b.locator, orderID)
}

// RemoveEmptyLevel deletes the (now-empty) level at (side, price) and,
// if it held the cached best price, recomputes best by a full scan of
// the remaining keys. Level counts stay small enough in practice that
// the O(levels) scan wins over maintaining an ordered index.
func (b *Book) RemoveEmptyLevel(side Side, price uint64) {
	m := b.sideMap(side)
	delete(m, price)

	if side == Bid {
		if b.hasBestBid && b.bestBid == price {
			b.recalculateBestBid()
		}
	} else {
		if b.hasBestAsk && b.bestAsk == price {
			b.recalculateBestAsk()
		}
	}
}

func (b *Book) updateBestOnAdd(side Side, price uint64) {
	if side == Bid {
		if !b.hasBestBid || price > b.bestBid {
			b.bestBid = price
			b.hasBestBid = true
		}
	} else {
		if !b.hasBestAsk || price < b.bestAsk {
			b.bestAsk = price
			b.hasBestAsk = true
		}
	}
}

func (b *Book) recalculateBestBid() {
	b.hasBestBid = false
	for price := range b.bids {
		if !b.hasBestBid || price > b.bestBid {
			b.bestBid = price
			b.hasBestBid = true
		}
	}
}

func (b *Book) recalculateBestAsk() {
	b.hasBestAsk = false
	for price := range b.asks {
		if !b.hasBestAsk || price < b.bestAsk {
			b.bestAsk = price
			b.hasBestAsk = true
		}
	}
}

// OrderCount returns the total number of resting orders.
func (b *Book) OrderCount() int { return len(b.locator) }

// BidLevels returns the number of distinct bid price levels.
func (b *Book) BidLevels() int { return len(b.bids) }

// AskLevels returns the number of distinct ask price levels.
func (b *Book) AskLevels() int { return len(b.asks) }

// IsEmpty reports whether the book holds no resting orders.
func (b *Book) IsEmpty() bool { return len(b.locator) == 0 }

// Spread returns best ask minus best bid, if the book is crossed-free
// and both sides are populated.
func (b *Book) Spread() (uint64, bool) {
	if b.hasBestBid && b.hasBestAsk && b.bestAsk > b.bestBid {
		return b.bestAsk - b.bestBid, true
	}
	return 0, false
}

// CrossableLevels returns the price levels on the opposite side of
// side that a new order resting at price would cross, in matching
// priority order (best opposite price first). It performs no
// mutation, making it suitable for a fill-or-kill pretrade check.
func (b *Book) CrossableLevels(side Side, price uint64) []uint64 {
	opposite := b.sideMap(side.Opposite())
	prices := make([]uint64, 0, len(opposite))

	for p := range opposite {
		if side == Bid {
			if price >= p {
				prices = append(prices, p)
			}
		} else {
			if price <= p {
				prices = append(prices, p)
			}
		}
	}

	if side == Bid {
		sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })
	} else {
		sort.Slice(prices, func(i, j int) bool { return prices[i] > prices[j] })
	}

	return prices
}

// DepthAt returns the aggregate (qty, count) resting at (side, price).
func (b *Book) DepthAt(side Side, price uint64) (uint64, uint32) {
	if l, ok := b.GetLevel(side, price); ok {
		return l.TotalQty, l.Count
	}
	return 0, 0
}
