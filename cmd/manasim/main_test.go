package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"manasim/internal/config"
	"manasim/internal/storage"
)

const testDeck = `{"name":"cli test","cards":[
	{"type":"Commander","name":"Cmdr","mana_cost":"{3}{G}"},
	{"type":"Land","name":"Forest","produces":["G"],"count":37},
	{"type":"Land","name":"Evolving Wilds","is_fetch":true,"fetches":["G"],"count":1},
	{"type":"Ramp","name":"Sol Ring","generic":1,"produces":["C","C"],"count":1},
	{"type":"Spell","name":"Harmonize","mana_cost":"{2}{G}{G}","type_line":"Sorcery","features":["DRAW"],"count":4},
	{"type":"Spell","name":"Bear","mana_cost":"{1}{G}","type_line":"Creature","count":56}
]}`

func writeDeck(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "deck.json")
	if err := os.WriteFile(path, []byte(testDeck), 0o644); err != nil {
		t.Fatalf("write deck: %v", err)
	}
	return path
}

func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Simulation.Simulations = 500
	cfg.Simulation.Turns = 6
	cfg.Simulation.Seed = 42
	cfg.Output.JSONPath = filepath.Join(dir, "out", "result.json")
	return cfg
}

func TestApplyOnlyOverridesSetFlags(t *testing.T) {
	fs := flag.NewFlagSet("manasim", flag.ContinueOnError)
	f, set, err := parseFlags(fs, []string{"-sims", "100", "-db", "runs.db", "-multicolor", "first"})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Simulation.Turns = 20
	f.apply(cfg, set)

	if cfg.Simulation.Simulations != 100 {
		t.Fatalf("sims not applied: got=%d want=100", cfg.Simulation.Simulations)
	}
	if cfg.Simulation.Turns != 20 {
		t.Fatalf("unset -turns overrode config: got=%d want=20", cfg.Simulation.Turns)
	}
	if !cfg.Storage.Enabled || cfg.Storage.DBPath != "runs.db" {
		t.Fatalf("-db should enable storage: %+v", cfg.Storage)
	}
	if cfg.Simulation.MultiColor != "first" {
		t.Fatalf("multicolor not applied: got=%q", cfg.Simulation.MultiColor)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config should stay valid: %v", err)
	}
}

func TestParseFlagsRejectsUnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("manasim", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, _, err := parseFlags(fs, []string{"-nope"}); err == nil {
		t.Fatal("expected unknown flag to be rejected")
	}
}

func TestRunDeterministicWithSeed(t *testing.T) {
	dir := t.TempDir()
	deckPath := writeDeck(t, dir)

	var outputs [][]byte
	for i := 0; i < 2; i++ {
		cfg := testConfig(dir)
		cfg.Output.JSONPath = filepath.Join(dir, "out", "result"+string(rune('a'+i))+".json")
		r := &runner{cfg: cfg, deckPath: deckPath, out: io.Discard}
		if err := r.run(context.Background()); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
		data, err := os.ReadFile(cfg.Output.JSONPath)
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		outputs = append(outputs, data)
	}

	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Fatal("results differ for same seed/config")
	}
}

func TestRunWritesEveryOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Output.CSVPath = filepath.Join(dir, "out", "turns.csv")
	cfg.Output.ReportPath = filepath.Join(dir, "out", "report.txt")
	cfg.Output.ChartPath = filepath.Join(dir, "out", "chart.html")
	cfg.Storage.Enabled = true
	cfg.Storage.DBPath = filepath.Join(dir, "runs.db")

	var out bytes.Buffer
	r := &runner{cfg: cfg, deckPath: writeDeck(t, dir), verbose: true, out: &out}
	if err := r.run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, path := range []string{cfg.Output.JSONPath, cfg.Output.CSVPath, cfg.Output.ReportPath, cfg.Output.ChartPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("missing output %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("empty output %s", path)
		}
	}

	for _, want := range []string{"🎲 RNG seed: 42", "commander: Cmdr", "lands: 38", "🔍 game 5", "saved to"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}

	db, err := storage.Open(storage.DefaultConfig(cfg.Storage.DBPath))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	runs, err := db.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Seed != 42 || runs[0].Turns != 6 {
		t.Fatalf("unexpected stored runs: %+v", runs)
	}
}

func TestRunRejectsMissingDeck(t *testing.T) {
	dir := t.TempDir()
	r := &runner{cfg: testConfig(dir), deckPath: filepath.Join(dir, "missing.json"), out: io.Discard}
	if err := r.run(context.Background()); err == nil {
		t.Fatal("expected a missing deck file to fail")
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &runner{cfg: cfg, deckPath: writeDeck(t, dir), out: io.Discard}
	if err := r.run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(cfg.Output.JSONPath); !os.IsNotExist(err) {
		t.Fatalf("cancelled run should not write output: %v", err)
	}
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, out *syncBuffer, want string, count int) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Count(out.String(), want) >= count {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d x %q:\n%s", count, want, out.String())
}

func TestWatchRerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	deckPath := writeDeck(t, dir)
	cfg := testConfig(dir)
	cfg.Simulation.Simulations = 50

	out := &syncBuffer{}
	r := &runner{cfg: cfg, deckPath: deckPath, out: out}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.watch(ctx) }()

	waitFor(t, out, "👀 watching", 1)
	if err := os.WriteFile(deckPath, []byte(testDeck), 0o644); err != nil {
		t.Fatalf("rewrite deck: %v", err)
	}
	waitFor(t, out, "🎲 RNG seed", 2)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
