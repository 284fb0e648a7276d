package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manasim/internal/sim"
)

func testStats() *sim.Stats {
	return &sim.Stats{
		Screw:            []float64{0.5, 0.2, 0.1},
		Flood:            []float64{0.1, 0.2, 0.3},
		OK:               []float64{0.4, 0.6, 0.6},
		AvgManaSpent:     []float64{1, 2, 3},
		AvgManaAvailable: []float64{1, 2.5, 4},
		AvgCardsCast:     []float64{0.5, 1, 1.5},
		AvgHandSize:      []float64{7, 6, 5},
		ExampleTraces:    []sim.Trace{},
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, testStats(), DefaultChartConfig()))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Game State by Turn")
	assert.Contains(t, html, "Mana by Turn")
	assert.Contains(t, html, "Cards by Turn")
	assert.Contains(t, html, "Hand Size")
}

func TestRenderRejectsEmptyStats(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, &sim.Stats{}, DefaultChartConfig()))
}

func TestRenderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.html")
	require.NoError(t, RenderFile(testStats(), DefaultChartConfig(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, turnLabels(3))
	assert.Equal(t, []float64{50, 25}, percent([]float64{0.5, 0.25}))
}
