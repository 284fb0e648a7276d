// Package manasim estimates how often a Commander deck is mana screwed or
// flooded by playing many goldfish games against an empty board.
//
// RunSim is the in-process entry point for hosts embedding the simulator:
//
//	stats, err := manasim.RunSim("decks/omnath.json", 10_000, 12)
package manasim

import (
	"time"

	"manasim/internal/deck"
	"manasim/internal/sim"
)

// Stats is the per-turn result of a run.
type Stats = sim.Stats

// Deck is a parsed deck document.
type Deck = deck.Deck

// RunSim loads the deck at path and simulates sims games of turns turns
// each. The seed is taken from the clock.
func RunSim(path string, sims, turns int) (*Stats, error) {
	d, err := deck.Load(path)
	if err != nil {
		return nil, err
	}
	return RunDeck(d, sims, turns)
}

// RunDeck simulates an already parsed deck.
func RunDeck(d *Deck, sims, turns int) (*Stats, error) {
	opts := sim.DefaultOptions()
	opts.Simulations = sims
	opts.Turns = turns
	opts.Seed = time.Now().UnixNano()
	return sim.Run(d, opts)
}
