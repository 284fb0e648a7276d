package sim

// Snapshot is the state of a sampled game at the end of a turn.
type Snapshot struct {
	Turn          int      `json:"turn"`
	Hand          []string `json:"hand"`
	Battlefield   []string `json:"battlefield"`
	PlayedCards   []string `json:"played_cards"`
	ManaAvailable uint     `json:"mana_available"`
	ManaSpent     uint     `json:"mana_spent"`
	CardsCast     int      `json:"cards_cast"`
	Status        Status   `json:"status"`
}

// Trace is the turn-by-turn record of one sampled game.
type Trace struct {
	FinalStatus Status     `json:"final_status"`
	Turns       []Snapshot `json:"turns"`
}

// Snapshot captures the zones of g together with the turn's result.
func (g *Game) Snapshot(r TurnResult) Snapshot {
	played := make([]string, len(r.Played))
	copy(played, r.Played)
	return Snapshot{
		Turn:          r.Turn,
		Hand:          names(g.Hand),
		Battlefield:   names(g.Battlefield),
		PlayedCards:   played,
		ManaAvailable: r.ManaAvailable,
		ManaSpent:     r.ManaSpent,
		CardsCast:     r.CardsCast,
		Status:        r.Status,
	}
}

// finalStatus returns the most frequent status. Ties go to screw, then flood.
func finalStatus(turns []Snapshot) Status {
	counts := map[Status]int{}
	for _, s := range turns {
		counts[s.Status]++
	}
	best := StatusOK
	bestCount := -1
	for _, s := range []Status{StatusScrew, StatusFlood, StatusOK} {
		if counts[s] > bestCount {
			best, bestCount = s, counts[s]
		}
	}
	return best
}

// Stats holds per-turn rates and averages over all simulated games, indexed
// by turn (index 0 is turn 1).
type Stats struct {
	Screw            []float64 `json:"screw"`
	Flood            []float64 `json:"flood"`
	OK               []float64 `json:"ok"`
	AvgManaSpent     []float64 `json:"avg_mana_spent"`
	AvgManaAvailable []float64 `json:"avg_mana_available"`
	AvgCardsCast     []float64 `json:"avg_cards_cast"`
	AvgHandSize      []float64 `json:"avg_hand_size"`
	ExampleTraces    []Trace   `json:"example_traces"`
}

// Turns returns the number of simulated turns.
func (s *Stats) Turns() int {
	return len(s.Screw)
}

// Summary collapses the per-turn arrays into whole-game figures.
type Summary struct {
	ScrewRate        float64 `json:"screw_rate"`
	FloodRate        float64 `json:"flood_rate"`
	OKRate           float64 `json:"ok_rate"`
	AvgCardsCast     float64 `json:"avg_cards_cast"`
	AvgManaAvailable float64 `json:"avg_mana_available"`
	AvgManaSpent     float64 `json:"avg_mana_spent"`
	// ManaEfficiency is total mana spent over total mana available.
	ManaEfficiency float64 `json:"avg_mana_efficiency"`
	AvgHandSize    float64 `json:"avg_hand_size"`
}

// Summary averages every per-turn series.
func (s *Stats) Summary() Summary {
	sum := Summary{
		ScrewRate:        mean(s.Screw),
		FloodRate:        mean(s.Flood),
		OKRate:           mean(s.OK),
		AvgCardsCast:     mean(s.AvgCardsCast),
		AvgManaAvailable: mean(s.AvgManaAvailable),
		AvgManaSpent:     mean(s.AvgManaSpent),
		AvgHandSize:      mean(s.AvgHandSize),
	}
	if available := total(s.AvgManaAvailable); available > 0 {
		sum.ManaEfficiency = total(s.AvgManaSpent) / available
	}
	return sum
}

func total(xs []float64) float64 {
	t := 0.0
	for _, x := range xs {
		t += x
	}
	return t
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return total(xs) / float64(len(xs))
}

// Tally accumulates integer per-turn counts and sums. Because it only adds
// integers, folding games in any order gives identical results.
type Tally struct {
	Games         int
	screw         []int64
	flood         []int64
	ok            []int64
	manaAvailable []int64
	manaSpent     []int64
	cardsCast     []int64
	handSize      []int64
}

// NewTally returns an empty tally for games of the given length.
func NewTally(turns int) *Tally {
	return &Tally{
		screw:         make([]int64, turns),
		flood:         make([]int64, turns),
		ok:            make([]int64, turns),
		manaAvailable: make([]int64, turns),
		manaSpent:     make([]int64, turns),
		cardsCast:     make([]int64, turns),
		handSize:      make([]int64, turns),
	}
}

// Add folds one game into the tally. Turns beyond the tally length are ignored.
func (t *Tally) Add(results []TurnResult) {
	t.Games++
	for i, r := range results {
		if i >= len(t.screw) {
			break
		}
		switch r.Status {
		case StatusScrew:
			t.screw[i]++
		case StatusFlood:
			t.flood[i]++
		case StatusOK:
			t.ok[i]++
		}
		t.manaAvailable[i] += int64(r.ManaAvailable)
		t.manaSpent[i] += int64(r.ManaSpent)
		t.cardsCast[i] += int64(r.CardsCast)
		t.handSize[i] += int64(r.HandSize)
	}
}

// Merge adds every count of o into t.
func (t *Tally) Merge(o *Tally) {
	t.Games += o.Games
	for i := range t.screw {
		if i >= len(o.screw) {
			break
		}
		t.screw[i] += o.screw[i]
		t.flood[i] += o.flood[i]
		t.ok[i] += o.ok[i]
		t.manaAvailable[i] += o.manaAvailable[i]
		t.manaSpent[i] += o.manaSpent[i]
		t.cardsCast[i] += o.cardsCast[i]
		t.handSize[i] += o.handSize[i]
	}
}

// Stats divides every count by the number of games.
func (t *Tally) Stats() *Stats {
	n := float64(t.Games)
	div := func(xs []int64) []float64 {
		out := make([]float64, len(xs))
		if n == 0 {
			return out
		}
		for i, x := range xs {
			out[i] = float64(x) / n
		}
		return out
	}
	return &Stats{
		Screw:            div(t.screw),
		Flood:            div(t.flood),
		OK:               div(t.ok),
		AvgManaSpent:     div(t.manaSpent),
		AvgManaAvailable: div(t.manaAvailable),
		AvgCardsCast:     div(t.cardsCast),
		AvgHandSize:      div(t.handSize),
		ExampleTraces:    []Trace{},
	}
}
