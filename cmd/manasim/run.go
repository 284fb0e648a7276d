package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/time/rate"

	"manasim/internal/charts"
	"manasim/internal/config"
	"manasim/internal/deck"
	"manasim/internal/export"
	"manasim/internal/report"
	"manasim/internal/sim"
	"manasim/internal/storage"
)

var (
	screwColor = color.New(color.FgRed).SprintfFunc()
	floodColor = color.New(color.FgBlue).SprintfFunc()
	okColor    = color.New(color.FgYellow).SprintfFunc()
)

// runner simulates one deck file with a fixed configuration.
type runner struct {
	cfg      *config.Config
	deckPath string
	verbose  bool
	out      io.Writer
}

// result is a finished run together with what produced it.
type result struct {
	run   export.Run
	stats *sim.Stats
}

func (r *runner) run(ctx context.Context) error {
	res, err := r.simulate(ctx)
	if err != nil {
		return err
	}
	r.printSummary(res)
	if r.verbose {
		r.printTraces(res.stats)
	}
	return r.writeOutputs(ctx, res)
}

func (r *runner) simulate(ctx context.Context) (*result, error) {
	d, err := deck.Load(r.deckPath)
	if err != nil {
		return nil, err
	}
	cmdr, _ := d.Commander()

	sc := r.cfg.Simulation
	seed := sc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	fmt.Fprintf(r.out, "🃏 deck: %s | commander: %s | lands: %d\n", d.Name, cmdr.Name(), d.LandCount())
	fmt.Fprintf(r.out, "🎲 RNG seed: %d\n", seed)

	progress := rate.Sometimes{Interval: time.Second}
	opts := sim.Options{
		Simulations:  sc.Simulations,
		Turns:        sc.Turns,
		Seed:         seed,
		Workers:      sc.Workers,
		TraceSamples: sc.TraceSamples,
		MultiColor:   r.cfg.MultiColorPolicy(),
		Progress: func(done, total int) {
			progress.Do(func() {
				fmt.Fprintf(r.out, "⏳ %d/%d games\n", done, total)
			})
		},
	}

	start := time.Now()
	stats, err := sim.RunContext(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(r.out, "✅ %d games in %s\n", sc.Simulations, time.Since(start).Round(time.Millisecond))

	return &result{
		run: export.Run{
			Deck:        d.Name,
			Commander:   cmdr.Name(),
			Simulations: sc.Simulations,
			Turns:       sc.Turns,
			Seed:        seed,
		},
		stats: stats,
	}, nil
}

func (r *runner) printSummary(res *result) {
	stats := res.stats
	s := stats.Summary()
	rating := report.Rate(s)

	fmt.Fprintf(r.out, "📊 results:\n")
	fmt.Fprintf(r.out, "  screw %s | flood %s | ok %s\n",
		screwColor("%5.1f%%", s.ScrewRate*100),
		floodColor("%5.1f%%", s.FloodRate*100),
		okColor("%5.1f%%", s.OKRate*100))
	fmt.Fprintf(r.out, "  cards cast %.2f | mana efficiency %.1f%% | hand %.1f\n",
		s.AvgCardsCast, s.ManaEfficiency*100, s.AvgHandSize)
	fmt.Fprintf(r.out, "  consistency %s | speed %s\n", rating.Consistency, rating.Speed)

	fmt.Fprintln(r.out, "  turn  screw  flood     ok   mana  spent   cast   hand")
	for i := 0; i < stats.Turns(); i++ {
		fmt.Fprintf(r.out, "  %4d %s %s %s %6.2f %6.2f %6.2f %6.2f\n",
			i+1,
			screwColor("%5.1f%%", stats.Screw[i]*100),
			floodColor("%5.1f%%", stats.Flood[i]*100),
			okColor("%5.1f%%", stats.OK[i]*100),
			stats.AvgManaAvailable[i], stats.AvgManaSpent[i],
			stats.AvgCardsCast[i], stats.AvgHandSize[i])
	}
	for _, issue := range rating.Issues {
		fmt.Fprintf(r.out, "⚠️  %s\n", issue)
	}
}

func (r *runner) printTraces(stats *sim.Stats) {
	for i, trace := range stats.ExampleTraces {
		fmt.Fprintf(r.out, "🔍 game %d: %s\n", i+1, strings.ToUpper(string(trace.FinalStatus)))
		for _, t := range trace.Turns {
			fmt.Fprintf(r.out, "  T%-2d %-5s mana %d/%d cast %d | played: %s | hand: %s\n",
				t.Turn, t.Status, t.ManaSpent, t.ManaAvailable, t.CardsCast,
				strings.Join(t.PlayedCards, ", "), strings.Join(t.Hand, ", "))
		}
	}
}

func (r *runner) writeOutputs(ctx context.Context, res *result) error {
	out := r.cfg.Output

	exports := []struct {
		path   string
		format export.Format
	}{
		{out.JSONPath, export.FormatJSON},
		{out.CSVPath, export.FormatCSV},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		exporter := export.NewExporter(export.Options{Format: e.format, FilePath: e.path, PrettyJSON: out.PrettyJSON})
		if err := exporter.Export(res.run, res.stats); err != nil {
			return fmt.Errorf("export %s: %w", e.format, err)
		}
		fmt.Fprintf(r.out, "💾 %s written to %s\n", e.format, e.path)
	}

	if out.ReportPath != "" {
		if err := writeReport(out.ReportPath, res); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "📝 report written to %s\n", out.ReportPath)
	}

	if out.ChartPath != "" {
		chartCfg := charts.DefaultChartConfig()
		chartCfg.Title = fmt.Sprintf("%s - %s", res.run.Deck, res.run.Commander)
		if err := charts.RenderFile(res.stats, chartCfg, out.ChartPath); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "📈 charts written to %s\n", out.ChartPath)
	}

	if r.cfg.Storage.Enabled {
		id, err := r.store(ctx, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "🗄️  run %s saved to %s\n", id, r.cfg.Storage.DBPath)
	}
	return nil
}

func writeReport(path string, res *result) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	h := report.Header{
		Commander:   res.run.Commander,
		Simulations: res.run.Simulations,
		Generated:   time.Now(),
	}
	if err := report.Write(f, h, res.stats); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}

func (r *runner) store(ctx context.Context, res *result) (string, error) {
	db, err := storage.Open(storage.DefaultConfig(r.cfg.Storage.DBPath))
	if err != nil {
		return "", err
	}
	defer db.Close()

	run := &storage.Run{
		DeckName:    res.run.Deck,
		Commander:   res.run.Commander,
		Simulations: res.run.Simulations,
		Turns:       res.run.Turns,
		Seed:        res.run.Seed,
		MultiColor:  string(r.cfg.MultiColorPolicy()),
		Stats:       res.stats,
	}
	if err := db.SaveRun(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}
