package sim

import (
	"manasim/internal/deck"
	"manasim/internal/mana"
)

// Table is what a strategy sees when choosing a play.
type Table struct {
	Hand        []deck.Card
	Battlefield []deck.Card
	// Commander is nil when the commander is not in the command zone.
	Commander *deck.Commander
	// CommanderTax is the extra generic cost for casting the commander now.
	CommanderTax uint
	Pool         mana.Pool
}

// Play is a chosen cast: either the commander or the card at HandIndex.
type Play struct {
	Commander bool
	HandIndex int
}

// Strategy chooses the next affordable play, or reports that there is none.
// Plays it returns must be payable from t.Pool; an unpayable play ends the
// casting step for the turn.
type Strategy interface {
	Next(t Table) (Play, bool)
}

// Greedy casts mana first, then the commander, then the first affordable
// spell, preferring spells that draw cards.
type Greedy struct{}

// Next implements Strategy.
func (Greedy) Next(t Table) (Play, bool) {
	for i, c := range t.Hand {
		switch c := c.(type) {
		case deck.Ramp:
			if t.Pool.CanPay(c.Generic, nil) {
				return Play{HandIndex: i}, true
			}
		case deck.Fetch:
			if t.Pool.CanPay(c.Generic, nil) {
				return Play{HandIndex: i}, true
			}
		case deck.Commander, deck.Spell, deck.Land:
		default:
			panic("sim: unknown card type in hand")
		}
	}

	// An empty pool never casts the commander, even at zero cost.
	if cmd := t.Commander; cmd != nil && t.Pool.Total() > 0 {
		if t.Pool.CanPay(cmd.Generic+t.CommanderTax, cmd.Pips) {
			return Play{Commander: true}, true
		}
	}

	first := -1
	for i, c := range t.Hand {
		s, ok := c.(deck.Spell)
		if !ok || !t.Pool.CanPay(s.Generic, s.Pips) {
			continue
		}
		if s.Features.Draws() > 0 {
			return Play{HandIndex: i}, true
		}
		if first < 0 {
			first = i
		}
	}
	if first >= 0 {
		return Play{HandIndex: first}, true
	}
	return Play{}, false
}
