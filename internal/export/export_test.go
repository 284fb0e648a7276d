package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manasim/internal/sim"
)

func sampleStats() *sim.Stats {
	return &sim.Stats{
		Screw:            []float64{0.5, 0.25},
		Flood:            []float64{0.1, 0.25},
		OK:               []float64{0.4, 0.5},
		AvgManaSpent:     []float64{1, 2},
		AvgManaAvailable: []float64{1.5, 3},
		AvgCardsCast:     []float64{0.8, 1.2},
		AvgHandSize:      []float64{6, 5.5},
		ExampleTraces: []sim.Trace{{
			FinalStatus: sim.StatusOK,
			Turns:       []sim.Snapshot{{Turn: 1, Hand: []string{"Forest"}, Status: sim.StatusOK}},
		}},
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.json")
	e := NewExporter(Options{Format: FormatJSON, FilePath: path, PrettyJSON: true})
	run := Run{Deck: "test", Commander: "Cmdr", Simulations: 100, Turns: 2, Seed: 7}
	require.NoError(t, e.Export(run, sampleStats()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "screw")
	assert.Contains(t, doc, "avg_hand_size")
	assert.Contains(t, doc, "summary")
	traces, ok := doc["example_traces"].([]any)
	require.True(t, ok)
	assert.Len(t, traces, 1)
	assert.Equal(t, "ok", traces[0].(map[string]any)["final_status"])
	assert.Equal(t, "Cmdr", doc["run"].(map[string]any)["commander"])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	e := NewExporter(Options{Format: FormatCSV})
	require.NoError(t, e.Write(&buf, Run{}, sampleStats()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "0.500000", rows[1][1])
	assert.Equal(t, "5.500000", rows[2][7])
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	e := NewExporter(Options{Format: "xml", FilePath: filepath.Join(t.TempDir(), "x")})
	assert.Error(t, e.Export(Run{}, sampleStats()))
}

func TestExportRequiresPath(t *testing.T) {
	assert.Error(t, NewExporter(Options{Format: FormatJSON}).Export(Run{}, sampleStats()))
}
