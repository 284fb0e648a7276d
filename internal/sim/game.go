// Package sim runs goldfish games of a Commander deck and reduces them into
// per-turn screw, flood and ok rates.
package sim

import (
	"math/rand"

	"manasim/internal/deck"
	"manasim/internal/mana"
)

const (
	openingHandSize = 7
	// minHandSize is the floor of the mulligan loop; a hand this small is always kept.
	minHandSize = 4
	maxHandSize = 7
	// fastManaCost is the highest cost at which a ramp card counts toward a keepable hand.
	fastManaCost = 2
)

// Game is one simulated game. The tail of Library is the top of the deck.
type Game struct {
	Hand        []deck.Card
	Battlefield []deck.Card
	Graveyard   []deck.Card
	Library     []deck.Card
	// Commander is nil once the commander has been cast.
	Commander   *deck.Commander
	Recasts     uint
	LandsPlayed int
	Mulligans   int

	rng      *rand.Rand
	policy   mana.Policy
	strategy Strategy
}

// GameOptions configures how a game generates mana and picks plays.
type GameOptions struct {
	MultiColor mana.Policy
	Strategy   Strategy
}

// NewGame copies pool into a fresh library, shuffles it and draws an opening
// hand, taking mulligans as needed.
func NewGame(pool []deck.Card, commander deck.Commander, rng *rand.Rand, opts GameOptions) *Game {
	library := make([]deck.Card, len(pool))
	copy(library, pool)

	if opts.Strategy == nil {
		opts.Strategy = Greedy{}
	}
	if opts.MultiColor == "" {
		opts.MultiColor = mana.PolicyGeneric
	}

	g := &Game{
		Hand:      make([]deck.Card, 0, maxHandSize+4),
		Library:   library,
		Commander: &commander,
		rng:       rng,
		policy:    opts.MultiColor,
		strategy:  opts.Strategy,
	}
	g.shuffle()
	g.mulligan()
	return g
}

// shuffle shuffles the library in place.
func (g *Game) shuffle() {
	g.rng.Shuffle(len(g.Library), func(i, j int) {
		g.Library[i], g.Library[j] = g.Library[j], g.Library[i]
	})
}

// draw moves up to n cards from the top of the library into the hand and
// returns how many were drawn. An empty library is not an error.
func (g *Game) draw(n int) int {
	drawn := 0
	for ; drawn < n && len(g.Library) > 0; drawn++ {
		top := len(g.Library) - 1
		g.Hand = append(g.Hand, g.Library[top])
		g.Library = g.Library[:top]
	}
	return drawn
}

// mulligan draws 7 and redraws one card fewer until the hand is keepable.
// A 4-card hand is kept no matter what it holds.
func (g *Game) mulligan() {
	for size := openingHandSize; ; size-- {
		g.draw(size)
		if size <= minHandSize || keepable(g.Hand) {
			return
		}
		g.Library = append(g.Library, g.Hand...)
		g.Hand = g.Hand[:0]
		g.shuffle()
		g.Mulligans++
	}
}

// keepable wants at least 3 mana sources, counting cheap ramp, without
// holding more than 5 lands.
func keepable(hand []deck.Card) bool {
	lands, fast := 0, 0
	for _, c := range hand {
		switch c := c.(type) {
		case deck.Land:
			lands++
		case deck.Ramp:
			if c.Generic <= fastManaCost {
				fast++
			}
		case deck.Commander, deck.Spell, deck.Fetch:
		default:
			panic("sim: unknown card type in hand")
		}
	}
	return lands+fast >= 3 && lands <= 5
}

// removeAt deletes cards[i] keeping order.
func removeAt(cards []deck.Card, i int) []deck.Card {
	return append(cards[:i], cards[i+1:]...)
}

// names returns the card names in order.
func names(cards []deck.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Name()
	}
	return out
}
