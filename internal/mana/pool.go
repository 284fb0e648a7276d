// Package mana implements the per-turn mana pool.
package mana

import (
	"fmt"
	"strings"

	"manasim/internal/deck"
)

const numColors = 6

// Pool tracks generic mana and one counter per recognized color.
// The zero value is an empty pool.
type Pool struct {
	Generic uint
	colors  [numColors]uint
}

// NewPool returns an empty pool.
func NewPool() Pool {
	return Pool{}
}

func colorIndex(c deck.Color) (int, bool) {
	for i, known := range deck.Colors {
		if c == known {
			return i, true
		}
	}
	return 0, false
}

// Add increments the counter for c by n. Unrecognized symbols are ignored.
func (p *Pool) Add(c deck.Color, n uint) {
	if i, ok := colorIndex(c); ok {
		p.colors[i] += n
	}
}

// Of returns the amount of mana of color c.
func (p Pool) Of(c deck.Color) uint {
	if i, ok := colorIndex(c); ok {
		return p.colors[i]
	}
	return 0
}

// Total returns all mana in the pool.
func (p Pool) Total() uint {
	total := p.Generic
	for _, n := range p.colors {
		total += n
	}
	return total
}

// pipCounts turns a pip list into per-color requirements. It fails for a
// symbol the pool cannot hold.
func pipCounts(pips []deck.Color) ([numColors]uint, bool) {
	var need [numColors]uint
	for _, c := range pips {
		i, ok := colorIndex(c)
		if !ok {
			return need, false
		}
		need[i]++
	}
	return need, true
}

// CanPay reports whether every pip can be paid with its own color and the
// mana left over afterwards covers generic.
func (p Pool) CanPay(generic uint, pips []deck.Color) bool {
	need, ok := pipCounts(pips)
	if !ok {
		return false
	}
	remaining := p.Generic
	for i, have := range p.colors {
		if have < need[i] {
			return false
		}
		remaining += have - need[i]
	}
	return remaining >= generic
}

// Spend pays a cost. Pips come out of their colors first, then generic is
// paid from the generic counter and from leftover colors in WUBRGC order.
// When the cost is unaffordable Spend returns false and the pool is unchanged.
func (p *Pool) Spend(generic uint, pips []deck.Color) bool {
	if !p.CanPay(generic, pips) {
		return false
	}
	need, _ := pipCounts(pips)
	for i := range p.colors {
		p.colors[i] -= need[i]
	}

	take := min(generic, p.Generic)
	p.Generic -= take
	generic -= take
	for i := range p.colors {
		if generic == 0 {
			break
		}
		take := min(generic, p.colors[i])
		p.colors[i] -= take
		generic -= take
	}
	if generic != 0 {
		panic("mana: generic cost left unpaid after affordability check")
	}
	return true
}

// String renders the pool for traces and debugging, e.g. "2 generic, G:1".
func (p Pool) String() string {
	parts := []string{fmt.Sprintf("%d generic", p.Generic)}
	for i, n := range p.colors {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", deck.Colors[i], n))
		}
	}
	return strings.Join(parts, ", ")
}
