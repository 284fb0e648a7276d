package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manasim/internal/sim"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(DefaultConfig(filepath.Join(t.TempDir(), "runs.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testStats() *sim.Stats {
	return &sim.Stats{
		Screw:            []float64{0.5, 0.25},
		Flood:            []float64{0.125, 0.25},
		OK:               []float64{0.375, 0.5},
		AvgManaSpent:     []float64{1, 2.5},
		AvgManaAvailable: []float64{1.5, 3},
		AvgCardsCast:     []float64{0.75, 1.25},
		AvgHandSize:      []float64{6.5, 6},
		ExampleTraces: []sim.Trace{{
			FinalStatus: sim.StatusScrew,
			Turns: []sim.Snapshot{{
				Turn:          1,
				Hand:          []string{"Forest", "Bear"},
				Battlefield:   []string{"Forest"},
				PlayedCards:   []string{"Forest"},
				ManaAvailable: 1,
				Status:        sim.StatusScrew,
			}},
		}},
	}
}

func TestMigrationManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")

	mgr, err := NewMigrationManager(path)
	require.NoError(t, err)
	require.NoError(t, mgr.Up())
	require.NoError(t, mgr.Up(), "second Up is a no-op")

	version, dirty, err := mgr.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)

	require.NoError(t, mgr.Down())
	require.NoError(t, mgr.Close())
}

func TestSaveAndGetRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	run := &Run{
		DeckName:    "Landfall",
		Commander:   "Omnath",
		Simulations: 1000,
		Turns:       2,
		Seed:        42,
		MultiColor:  "generic",
		Stats:       testStats(),
	}
	require.NoError(t, db.SaveRun(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "Omnath", got.Commander)
	assert.Equal(t, int64(42), got.Seed)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, run.Stats.Summary(), got.Summary)
	assert.Equal(t, run.Stats, got.Stats)
}

func TestGetRunNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSaveRunRequiresStats(t *testing.T) {
	db := openTestDB(t)
	assert.Error(t, db.SaveRun(context.Background(), &Run{DeckName: "x"}))
}

func TestListRuns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		require.NoError(t, db.SaveRun(ctx, &Run{
			DeckName:  name,
			Turns:     2,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Stats:     testStats(),
		}))
	}

	runs, err := db.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third", runs[0].DeckName)
	assert.Equal(t, "first", runs[2].DeckName)
	assert.Nil(t, runs[0].Stats)

	limited, err := db.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDeleteRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	run := &Run{DeckName: "gone", Turns: 2, Stats: testStats()}
	require.NoError(t, db.SaveRun(ctx, run))
	require.NoError(t, db.DeleteRun(ctx, run.ID))

	_, err := db.GetRun(ctx, run.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, db.DeleteRun(ctx, run.ID), ErrRunNotFound)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open(&Config{})
	assert.Error(t, err)
	_, err = Open(nil)
	assert.Error(t, err)
}
