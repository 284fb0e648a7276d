package sim

import (
	"manasim/internal/deck"
	"manasim/internal/mana"
)

// Status classifies a turn.
type Status string

const (
	StatusScrew Status = "screw"
	StatusFlood Status = "flood"
	StatusOK    Status = "ok"
)

const (
	// floodLeftover is the unspent mana at which a turn that cast something is a flood.
	floodLeftover = 4
	// floodLandRatio is the share of lands in hand at which a turn that cast nothing is a flood.
	floodLandRatio = 0.8
	landsPerTurn   = 1
	taxPerRecast   = 2
)

// TurnResult is the outcome of one turn.
type TurnResult struct {
	Turn          int
	ManaAvailable uint
	ManaSpent     uint
	CardsCast     int
	HandSize      int
	Status        Status
	// Played lists the land played and every card cast, in order.
	Played []string
}

type resolution struct {
	name     string
	draws    int
	produced uint
}

// PlayTurn advances the game by one turn: draw, land drop, mana, casting,
// extra draws, cleanup and classification.
func (g *Game) PlayTurn(turn int) TurnResult {
	res := TurnResult{Turn: turn}
	g.LandsPlayed = 0

	g.draw(1)
	if name, ok := g.playLand(); ok {
		res.Played = append(res.Played, name)
	}

	pool := g.generateMana()
	available := pool.Total()
	draws := 0
	for {
		play, ok := g.strategy.Next(g.table(pool))
		if !ok {
			break
		}
		r, ok := g.cast(play, &pool)
		if !ok {
			break
		}
		available += r.produced
		draws += r.draws
		res.CardsCast++
		res.Played = append(res.Played, r.name)
	}
	leftover := pool.Total()

	g.draw(draws)
	g.cleanup()

	res.ManaAvailable = available
	res.ManaSpent = available - leftover
	res.HandSize = len(g.Hand)
	res.Status = classify(res.CardsCast, leftover, landRatio(g.Hand))
	return res
}

func (g *Game) table(pool mana.Pool) Table {
	return Table{
		Hand:         g.Hand,
		Battlefield:  g.Battlefield,
		Commander:    g.Commander,
		CommanderTax: g.commanderTax(),
		Pool:         pool,
	}
}

func (g *Game) commanderTax() uint {
	return taxPerRecast * g.Recasts
}

// playLand plays the first land in hand. A fetch land is cracked right away.
func (g *Game) playLand() (string, bool) {
	if g.LandsPlayed >= landsPerTurn {
		return "", false
	}
	for i, c := range g.Hand {
		land, ok := c.(deck.Land)
		if !ok {
			continue
		}
		g.Hand = removeAt(g.Hand, i)
		g.LandsPlayed++
		if land.IsFetch {
			g.crackFetch(land)
		} else {
			g.Battlefield = append(g.Battlefield, land)
		}
		return land.CardName, true
	}
	return "", false
}

// crackFetch puts the first matching land from the library onto the
// battlefield, shuffles, and sends the fetch land to the graveyard.
func (g *Game) crackFetch(fetch deck.Land) {
	for i, c := range g.Library {
		if target, ok := c.(deck.Land); ok && target.Finds(fetch.Fetches) {
			g.Library = removeAt(g.Library, i)
			g.Battlefield = append(g.Battlefield, target)
			break
		}
	}
	g.shuffle()
	g.Graveyard = append(g.Graveyard, fetch)
}

// generateMana taps every land and ramp permanent once.
func (g *Game) generateMana() mana.Pool {
	pool := mana.NewPool()
	for _, c := range g.Battlefield {
		switch c := c.(type) {
		case deck.Land:
			pool.Produce(c.Produces, g.policy)
		case deck.Ramp:
			pool.Produce(c.Produces, g.policy)
		case deck.Commander, deck.Spell, deck.Fetch:
		default:
			panic("sim: unknown card type on battlefield")
		}
	}
	return pool
}

// cast pays for and resolves a play. It returns false when the play is not
// castable, leaving the game unchanged.
func (g *Game) cast(p Play, pool *mana.Pool) (resolution, bool) {
	if p.Commander {
		cmd := g.Commander
		if cmd == nil || !pool.Spend(cmd.Generic+g.commanderTax(), cmd.Pips) {
			return resolution{}, false
		}
		g.Battlefield = append(g.Battlefield, *cmd)
		g.Commander = nil
		g.Recasts++
		return resolution{name: cmd.CardName, draws: cmd.Features.Draws()}, true
	}

	if p.HandIndex < 0 || p.HandIndex >= len(g.Hand) {
		return resolution{}, false
	}
	card := g.Hand[p.HandIndex]
	res := resolution{name: card.Name()}
	switch c := card.(type) {
	case deck.Ramp:
		if !pool.Spend(c.Generic, nil) {
			return resolution{}, false
		}
		g.Battlefield = append(g.Battlefield, c)
		res.draws = c.Features.Draws()
	case deck.Fetch:
		if !pool.Spend(c.Generic, nil) {
			return resolution{}, false
		}
		before := pool.Total()
		pool.AddEach(c.Fetches)
		res.produced = pool.Total() - before
		g.Graveyard = append(g.Graveyard, c)
	case deck.Spell:
		if !pool.Spend(c.Generic, c.Pips) {
			return resolution{}, false
		}
		if c.Permanent() {
			g.Battlefield = append(g.Battlefield, c)
		} else {
			g.Graveyard = append(g.Graveyard, c)
		}
		res.draws = c.Features.Draws()
	case deck.Land, deck.Commander:
		return resolution{}, false
	default:
		panic("sim: unknown card type in hand")
	}
	g.Hand = removeAt(g.Hand, p.HandIndex)
	return res, true
}

// cleanup discards from the end of the hand down to the maximum hand size.
func (g *Game) cleanup() {
	if len(g.Hand) <= maxHandSize {
		return
	}
	g.Graveyard = append(g.Graveyard, g.Hand[maxHandSize:]...)
	g.Hand = g.Hand[:maxHandSize]
}

func landRatio(hand []deck.Card) float64 {
	if len(hand) == 0 {
		return 0
	}
	lands := 0
	for _, c := range hand {
		if _, ok := c.(deck.Land); ok {
			lands++
		}
	}
	return float64(lands) / float64(len(hand))
}

func classify(cardsCast int, leftover uint, handLandRatio float64) Status {
	switch {
	case cardsCast == 0 && handLandRatio >= floodLandRatio:
		return StatusFlood
	case cardsCast == 0:
		return StatusScrew
	case leftover >= floodLeftover:
		return StatusFlood
	default:
		return StatusOK
	}
}
