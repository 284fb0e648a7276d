package report

import "manasim/internal/sim"

// Consistency grades how often a deck avoids screw and flood.
type Consistency string

const (
	Excellent Consistency = "Excellent"
	Good      Consistency = "Good"
	Average   Consistency = "Average"
	Poor      Consistency = "Poor"
)

// Speed grades how many spells a deck casts per turn.
type Speed string

const (
	Fast   Speed = "Fast"
	Medium Speed = "Medium"
	Slow   Speed = "Slow"
)

// Rating is the overall classification of a deck's simulated performance.
type Rating struct {
	Consistency Consistency `json:"consistency"`
	Speed       Speed       `json:"speed"`
	Issues      []string    `json:"issues"`
}

// Rate classifies a summary.
func Rate(s sim.Summary) Rating {
	r := Rating{Issues: []string{}}

	switch {
	case s.ScrewRate < 0.15 && s.FloodRate < 0.20:
		r.Consistency = Excellent
	case s.ScrewRate < 0.25 && s.FloodRate < 0.30:
		r.Consistency = Good
	case s.ScrewRate < 0.35 || s.FloodRate < 0.40:
		r.Consistency = Average
	default:
		r.Consistency = Poor
	}

	switch {
	case s.AvgCardsCast >= 2.0:
		r.Speed = Fast
	case s.AvgCardsCast >= 1.5:
		r.Speed = Medium
	default:
		r.Speed = Slow
	}

	if s.ScrewRate > 0.30 {
		r.Issues = append(r.Issues, "High screw rate - consider more lands or ramp")
	}
	if s.FloodRate > 0.35 {
		r.Issues = append(r.Issues, "High flood rate - too many lands or need more card draw")
	}
	if s.ManaEfficiency < 0.65 {
		r.Issues = append(r.Issues, "Low mana efficiency - mana curve issues")
	}
	if s.AvgCardsCast < 1.2 {
		r.Issues = append(r.Issues, "Low cast rate - curve too high or mana issues")
	}
	return r
}

// Phase holds the mean screw and flood rates over a range of turns.
type Phase struct {
	Screw float64 `json:"screw"`
	Flood float64 `json:"flood"`
}

const (
	earlyTurns     = 4
	lateFirstTurn  = 9
	exampleTraces  = 3
	turnsPerTrace  = 8
	handPreviewLen = 5
)

// Early returns the rates over turns 1 to 4. Missing turns count as zero.
func Early(stats *sim.Stats) Phase {
	var p Phase
	for i := 0; i < earlyTurns && i < stats.Turns(); i++ {
		p.Screw += stats.Screw[i]
		p.Flood += stats.Flood[i]
	}
	p.Screw /= earlyTurns
	p.Flood /= earlyTurns
	return p
}

// Late returns the rates from turn 9 on, or zero for shorter games.
func Late(stats *sim.Stats) Phase {
	var p Phase
	first := lateFirstTurn - 1
	n := stats.Turns() - first
	if n <= 0 {
		return p
	}
	for i := first; i < stats.Turns(); i++ {
		p.Screw += stats.Screw[i]
		p.Flood += stats.Flood[i]
	}
	p.Screw /= float64(n)
	p.Flood /= float64(n)
	return p
}

// BestTurn returns the first turn with the highest average cards cast.
func BestTurn(stats *sim.Stats) (turn int, cast float64) {
	for i, c := range stats.AvgCardsCast {
		if turn == 0 || c > cast {
			turn, cast = i+1, c
		}
	}
	return turn, cast
}

// Recommendations lists deck building suggestions for a run.
func Recommendations(stats *sim.Stats) []string {
	s := stats.Summary()
	early, late := Early(stats), Late(stats)

	var recs []string
	if s.ScrewRate > 0.25 {
		recs = append(recs, "Increase land count by 1-2 or add more 0-2 CMC ramp")
	}
	if s.FloodRate > 0.30 {
		recs = append(recs, "Reduce land count by 1-2 or add more card draw")
	}
	if s.ManaEfficiency < 0.70 {
		recs = append(recs, "Adjust mana curve to better match land progression")
	}
	if s.AvgCardsCast < 1.5 {
		recs = append(recs, "Lower average CMC or add more fast mana")
	}
	if early.Screw > 0.30 {
		recs = append(recs, "Critical early game issues - prioritize low-cost cards")
	}
	if late.Flood > 0.35 {
		recs = append(recs, "Add mana sinks or card draw to use excess late-game mana")
	}
	return recs
}
