package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"manasim/internal/deck"
	"manasim/internal/mana"
)

// MaxTraceSamples bounds how many games of one run keep a full trace.
const MaxTraceSamples = 100

// Options holds the configuration for a simulation run.
type Options struct {
	Simulations int
	Turns       int
	// Seed is mixed with the simulation index so each game gets its own
	// reproducible random stream.
	Seed int64
	// Workers defaults to runtime.NumCPU().
	Workers int
	// TraceSamples is how many games, counted from index 0, keep a full trace.
	TraceSamples int
	MultiColor   mana.Policy
	// NewStrategy builds the casting strategy for each game. Nil means Greedy.
	NewStrategy func() Strategy
	// Progress, when set, is called from a single goroutine after each game.
	Progress func(done, total int)
}

// DefaultOptions returns the settings of a standard run.
func DefaultOptions() Options {
	return Options{
		Simulations:  50_000,
		Turns:        12,
		TraceSamples: 5,
		MultiColor:   mana.PolicyGeneric,
	}
}

func (o Options) validate() error {
	if o.Simulations < 1 {
		return errors.New("simulations must be at least 1")
	}
	if o.Turns < 1 {
		return errors.New("turns must be at least 1")
	}
	if o.TraceSamples < 0 {
		return errors.New("trace samples cannot be negative")
	}
	if o.TraceSamples > MaxTraceSamples {
		return fmt.Errorf("trace samples cannot exceed %d", MaxTraceSamples)
	}
	if o.Workers < 0 {
		return errors.New("workers cannot be negative")
	}
	if _, err := mana.ParsePolicy(string(o.MultiColor)); err != nil {
		return err
	}
	return nil
}

// traceSink collects sampled traces from all workers.
type traceSink struct {
	mu     sync.Mutex
	traces map[int]Trace
}

func (s *traceSink) add(index int, t Trace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traces[index] = t
}

// ordered returns the traces sorted by simulation index.
func (s *traceSink) ordered() []Trace {
	s.mu.Lock()
	defer s.mu.Unlock()
	indexes := make([]int, 0, len(s.traces))
	for i := range s.traces {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	out := make([]Trace, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, s.traces[i])
	}
	return out
}

// Run plays a full run with no cancellation. See RunContext.
func Run(d *deck.Deck, opts Options) (*Stats, error) {
	return RunContext(context.Background(), d, opts)
}

// RunContext validates the deck and plays opts.Simulations independent games
// across a pool of workers. Each worker folds its games into its own Tally and
// the tallies are merged into Stats once every worker is done. When ctx is
// cancelled no further games are started and ctx.Err() is returned.
func RunContext(ctx context.Context, d *deck.Deck, opts Options) (*Stats, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deck: %w", err)
	}
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	policy, _ := mana.ParsePolicy(string(opts.MultiColor))

	pool := d.Expand()
	commander, _ := d.Commander()

	workerCount := opts.Workers
	if workerCount == 0 {
		workerCount = runtime.NumCPU()
	}
	jobs := make(chan int, workerCount)
	output := make(chan struct{}, 1024)
	sink := &traceSink{traces: make(map[int]Trace)}
	tallies := make([]*Tally, workerCount)

	workers := &sync.WaitGroup{}
	workers.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		tally := NewTally(opts.Turns)
		tallies[i] = tally
		go func() {
			defer workers.Done()
			for simIndex := range jobs {
				rng := rand.New(rand.NewSource(simSeed(opts.Seed, simIndex)))
				gopts := GameOptions{MultiColor: policy}
				if opts.NewStrategy != nil {
					gopts.Strategy = opts.NewStrategy()
				}
				results, trace := PlayGame(pool, commander, opts.Turns, rng, gopts, simIndex < opts.TraceSamples)
				if trace != nil {
					sink.add(simIndex, *trace)
				}
				tally.Add(results)
				output <- struct{}{}
			}
		}()
	}

	go func() {
		defer func() {
			close(jobs)
			workers.Wait()
			close(output)
		}()
		for i := 0; i < opts.Simulations; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := 0
	for range output {
		done++
		if opts.Progress != nil {
			opts.Progress(done, opts.Simulations)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := NewTally(opts.Turns)
	for _, t := range tallies {
		total.Merge(t)
	}
	stats := total.Stats()
	stats.ExampleTraces = sink.ordered()
	return stats, nil
}

// PlayGame plays one game for the given number of turns. When trace is set
// it also returns the snapshot of every turn.
func PlayGame(pool []deck.Card, commander deck.Commander, turns int, rng *rand.Rand, opts GameOptions, trace bool) ([]TurnResult, *Trace) {
	g := NewGame(pool, commander, rng, opts)
	results := make([]TurnResult, 0, turns)
	var t *Trace
	if trace {
		t = &Trace{Turns: make([]Snapshot, 0, turns)}
	}
	for turn := 1; turn <= turns; turn++ {
		r := g.PlayTurn(turn)
		results = append(results, r)
		if t != nil {
			t.Turns = append(t.Turns, g.Snapshot(r))
		}
	}
	if t != nil {
		t.FinalStatus = finalStatus(t.Turns)
	}
	return results, t
}

func simSeed(baseSeed int64, simIndex int) int64 {
	// Mix the base seed with simulation index for deterministic, distinct RNG streams.
	x := uint64(baseSeed) + uint64(simIndex) + 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}
