// Package feed generates synthetic command streams for replay and
// load-testing harnesses outside the matching core. Streams are fully
// determined by their seed and config, so a replay run is repeatable
// by quoting those two values.
package feed

import (
	"math/rand"

	"github.com/cedrichaddad/flash-lob/matching"
)

// UserChoices is the pool of synthetic participant identifiers
// generated orders are attributed to.
var UserChoices = []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8}

// Config parameterizes synthetic command generation.
type Config struct {
	// MinPrice/MaxPrice bound the generated limit price (inclusive).
	MinPrice uint64
	MaxPrice uint64
	// MaxQty bounds generated order quantity (inclusive lower bound is 1).
	MaxQty uint32
	// CancelChance is the probability [0,1) that a generated command
	// cancels a previously placed, still-active order instead of
	// placing a new one.
	CancelChance float64
	// IOCChance and FOKChance are the probabilities of generating
	// those order types instead of Limit; they must sum to <= 1.
	IOCChance float64
	FOKChance float64
}

// DefaultConfig is a realistic replay workload: dense price range
// around a mid, modest size cap, a small cancel rate.
func DefaultConfig() Config {
	return Config{
		MinPrice:     9500 * 100,
		MaxPrice:     10500 * 100,
		MaxQty:       1000,
		CancelChance: 0.05,
		IOCChance:    0.1,
		FOKChance:    0.05,
	}
}

// Generator produces a stream of synthetic Commands against a pool of
// order ids it tracks as "active" (placed, not yet canceled or
// known-filled) so that generated cancels target real orders.
type Generator struct {
	cfg    Config
	rng    *rand.Rand
	active []uint64
	nextID uint64
}

// New creates a Generator seeded for reproducible synthetic streams.
func New(cfg Config, seed int64) *Generator {
	return &Generator{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		nextID: 1,
	}
}

// Next produces the next synthetic command. Call NotifyFilled to keep
// the generator's active-order pool consistent with what the engine
// actually did with a Place, since a generated Place may match
// immediately and never become cancelable.
func (g *Generator) Next() matching.Command {
	if len(g.active) > 0 && g.rng.Float64() < g.cfg.CancelChance {
		idx := g.rng.Intn(len(g.active))
		orderID := g.active[idx]
		g.active[idx] = g.active[len(g.active)-1]
		g.active = g.active[:len(g.active)-1]
		return matching.CancelCommand(orderID)
	}

	orderID := g.nextID
	g.nextID++

	side := matching.Bid
	if g.rng.Intn(2) == 1 {
		side = matching.Ask
	}

	priceRange := g.cfg.MaxPrice - g.cfg.MinPrice
	price := g.cfg.MinPrice
	if priceRange > 0 {
		price += uint64(g.rng.Int63n(int64(priceRange) + 1))
	}

	qty := uint32(1 + g.rng.Intn(int(g.cfg.MaxQty)))
	userID := UserChoices[g.rng.Intn(len(UserChoices))]

	orderType := matching.Limit
	roll := g.rng.Float64()
	switch {
	case roll < g.cfg.FOKChance:
		orderType = matching.FOK
	case roll < g.cfg.FOKChance+g.cfg.IOCChance:
		orderType = matching.IOC
	}

	if orderType == matching.Limit {
		g.active = append(g.active, orderID)
	}

	return matching.PlaceCommand(orderID, userID, side, price, qty, orderType)
}

// NotifyFilled removes orderID from the active pool once the caller
// has observed it was fully filled (and thus no longer cancelable).
func (g *Generator) NotifyFilled(orderID uint64) {
	for i, id := range g.active {
		if id == orderID {
			g.active[i] = g.active[len(g.active)-1]
			g.active = g.active[:len(g.active)-1]
			return
		}
	}
}

// GenerateBatch produces count sequential commands.
func (g *Generator) GenerateBatch(count int) []matching.Command {
	out := make([]matching.Command, count)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}
