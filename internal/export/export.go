package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"manasim/internal/sim"
)

// Format represents the export format.
type Format string

const (
	// FormatCSV writes one row per turn.
	FormatCSV Format = "csv"
	// FormatJSON writes the full result document including traces.
	FormatJSON Format = "json"
)

// Options holds configuration for export operations.
type Options struct {
	Format     Format
	FilePath   string
	PrettyJSON bool
}

// Run describes the simulation that produced a result.
type Run struct {
	Deck        string `json:"deck"`
	Commander   string `json:"commander"`
	Simulations int    `json:"simulations"`
	Turns       int    `json:"turns"`
	Seed        int64  `json:"seed"`
}

// Document is the JSON output of a run.
type Document struct {
	Run           Run         `json:"run"`
	Summary       sim.Summary `json:"summary"`
	Screw         []float64   `json:"screw"`
	Flood         []float64   `json:"flood"`
	OK            []float64   `json:"ok"`
	AvgManaSpent  []float64   `json:"avg_mana_spent"`
	AvgManaAvail  []float64   `json:"avg_mana_available"`
	AvgCardsCast  []float64   `json:"avg_cards_cast"`
	AvgHandSize   []float64   `json:"avg_hand_size"`
	ExampleTraces []sim.Trace `json:"example_traces"`
}

// NewDocument assembles the output document for stats.
func NewDocument(run Run, stats *sim.Stats) Document {
	return Document{
		Run:           run,
		Summary:       stats.Summary(),
		Screw:         stats.Screw,
		Flood:         stats.Flood,
		OK:            stats.OK,
		AvgManaSpent:  stats.AvgManaSpent,
		AvgManaAvail:  stats.AvgManaAvailable,
		AvgCardsCast:  stats.AvgCardsCast,
		AvgHandSize:   stats.AvgHandSize,
		ExampleTraces: stats.ExampleTraces,
	}
}

// Exporter writes results to a file.
type Exporter struct {
	opts Options
}

// NewExporter creates a new Exporter with the given options.
func NewExporter(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export writes the run to the configured file.
func (e *Exporter) Export(run Run, stats *sim.Stats) (err error) {
	if e.opts.FilePath == "" {
		return fmt.Errorf("no output path")
	}
	if dir := filepath.Dir(e.opts.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(e.opts.FilePath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return e.Write(f, run, stats)
}

// Write encodes the run to w in the configured format.
func (e *Exporter) Write(w io.Writer, run Run, stats *sim.Stats) error {
	switch e.opts.Format {
	case FormatJSON:
		return e.writeJSON(w, NewDocument(run, stats))
	case FormatCSV:
		return writeCSV(w, stats)
	default:
		return fmt.Errorf("unsupported export format: %s", e.opts.Format)
	}
}

func (e *Exporter) writeJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	if e.opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

var csvHeader = []string{"turn", "screw", "flood", "ok", "avg_mana_available", "avg_mana_spent", "avg_cards_cast", "avg_hand_size"}

func writeCSV(w io.Writer, stats *sim.Stats) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for i := 0; i < stats.Turns(); i++ {
		row := []string{
			strconv.Itoa(i + 1),
			format(stats.Screw[i]),
			format(stats.Flood[i]),
			format(stats.OK[i]),
			format(stats.AvgManaAvailable[i]),
			format(stats.AvgManaSpent[i]),
			format(stats.AvgCardsCast[i]),
			format(stats.AvgHandSize[i]),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
