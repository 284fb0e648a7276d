package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"manasim/internal/sim"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is a stored simulation run.
type Run struct {
	ID          string      `json:"id"`
	DeckName    string      `json:"deck_name"`
	Commander   string      `json:"commander"`
	Simulations int         `json:"simulations"`
	Turns       int         `json:"turns"`
	Seed        int64       `json:"seed"`
	MultiColor  string      `json:"multicolor"`
	CreatedAt   time.Time   `json:"created_at"`
	Summary     sim.Summary `json:"summary"`

	// Stats is only loaded by GetRun.
	Stats *sim.Stats `json:"stats,omitempty"`
}

// SaveRun stores run and its per-turn rows. An empty ID is filled with a new
// UUID and a zero CreatedAt with the current time.
func (db *DB) SaveRun(ctx context.Context, run *Run) error {
	if run.Stats == nil {
		return fmt.Errorf("run has no stats")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Summary = run.Stats.Summary()

	traces, err := json.Marshal(run.Stats.ExampleTraces)
	if err != nil {
		return fmt.Errorf("failed to marshal traces: %w", err)
	}

	return db.WithTransaction(ctx, func(tx *sql.Tx) error {
		s := run.Summary
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (
				id, deck_name, commander, simulations, turns, seed, multicolor,
				screw_rate, flood_rate, ok_rate, avg_cards_cast, avg_mana_available,
				avg_mana_spent, mana_efficiency, avg_hand_size, example_traces, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.DeckName, run.Commander, run.Simulations, run.Turns, run.Seed, run.MultiColor,
			s.ScrewRate, s.FloodRate, s.OKRate, s.AvgCardsCast, s.AvgManaAvailable,
			s.AvgManaSpent, s.ManaEfficiency, s.AvgHandSize, string(traces),
			run.CreatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		st := run.Stats
		for i := 0; i < st.Turns(); i++ {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO run_turns (
					run_id, turn, screw, flood, ok, avg_mana_available,
					avg_mana_spent, avg_cards_cast, avg_hand_size
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				run.ID, i+1, st.Screw[i], st.Flood[i], st.OK[i], st.AvgManaAvailable[i],
				st.AvgManaSpent[i], st.AvgCardsCast[i], st.AvgHandSize[i],
			)
			if err != nil {
				return fmt.Errorf("failed to insert turn %d: %w", i+1, err)
			}
		}
		return nil
	})
}

const runColumns = `id, deck_name, commander, simulations, turns, seed, multicolor,
	screw_rate, flood_rate, ok_rate, avg_cards_cast, avg_mana_available,
	avg_mana_spent, mana_efficiency, avg_hand_size, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner, extra ...any) (*Run, error) {
	var (
		run       Run
		createdAt string
	)
	s := &run.Summary
	dest := []any{
		&run.ID, &run.DeckName, &run.Commander, &run.Simulations, &run.Turns, &run.Seed, &run.MultiColor,
		&s.ScrewRate, &s.FloodRate, &s.OKRate, &s.AvgCardsCast, &s.AvgManaAvailable,
		&s.AvgManaSpent, &s.ManaEfficiency, &s.AvgHandSize, &createdAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	run.CreatedAt = t
	return &run, nil
}

// ListRuns returns up to limit runs, newest first, without per-turn stats.
// A limit of zero or less returns every run.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run with id including its per-turn stats and traces.
func (db *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	var traces string
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+runColumns+`, example_traces FROM runs WHERE id = ?`, id)
	run, err := scanRun(row, &traces)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	stats := &sim.Stats{ExampleTraces: []sim.Trace{}}
	if err := json.Unmarshal([]byte(traces), &stats.ExampleTraces); err != nil {
		return nil, fmt.Errorf("failed to unmarshal traces: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT screw, flood, ok, avg_mana_available, avg_mana_spent, avg_cards_cast, avg_hand_size
		FROM run_turns WHERE run_id = ? ORDER BY turn`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var screw, flood, ok, avail, spent, cast, hand float64
		if err := rows.Scan(&screw, &flood, &ok, &avail, &spent, &cast, &hand); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		stats.Screw = append(stats.Screw, screw)
		stats.Flood = append(stats.Flood, flood)
		stats.OK = append(stats.OK, ok)
		stats.AvgManaAvailable = append(stats.AvgManaAvailable, avail)
		stats.AvgManaSpent = append(stats.AvgManaSpent, spent)
		stats.AvgCardsCast = append(stats.AvgCardsCast, cast)
		stats.AvgHandSize = append(stats.AvgHandSize, hand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}

	run.Stats = stats
	return run, nil
}

// DeleteRun removes a run and its per-turn rows.
func (db *DB) DeleteRun(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
