package analyze

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const header = "cpu,little_law_lifetime,period_avg_way_occupancy,period_total_evictions_caused,period_evictions_caused\n"

func TestReadRows(t *testing.T) {
	chk := require.New(t)
	csv := header +
		"0,10.0,4.0,100,30\n" +
		"1,20.0,2.0,200,60\n"
	rows, err := ReadRows(strings.NewReader(csv))
	chk.NoError(err)
	chk.Len(rows, 2)
	chk.Equal(10.0, rows[0].Lifetime)
	chk.Equal(2.0, rows[1].WayOccupancy)
	chk.Equal(200.0, rows[1].TotalEvictions)
	chk.Equal(30.0, rows[0].EvictionsCaused)
}

func TestReadRowsMissingColumn(t *testing.T) {
	_, err := ReadRows(strings.NewReader("a,b\n1,2\n"))
	require.ErrorContains(t, err, "missing column")
}

func TestReadRowsBadValue(t *testing.T) {
	_, err := ReadRows(strings.NewReader(header + "0,x,4.0,100,30\n"))
	require.ErrorContains(t, err, "little_law_lifetime")
}

func TestPredict(t *testing.T) {
	chk := require.New(t)
	rows := []Row{
		{Lifetime: 10, WayOccupancy: 4, TotalEvictions: 100, EvictionsCaused: 30},
		{Lifetime: 20, WayOccupancy: 2, TotalEvictions: 200, EvictionsCaused: 60},
	}
	points, skipped := Predict(rows)
	chk.Zero(skipped)
	chk.Len(points, 2)

	// denom = 10*2 + 20*4 = 100
	chk.InDelta(100*(10.0*2/100), points[0].Predicted, 1e-9) // Ê21 = 20
	chk.Equal(30.0, points[0].Actual)
	chk.InDelta(200*(20.0*4/100), points[1].Predicted, 1e-9) // Ê12 = 160
	chk.Equal(60.0, points[1].Actual)
}

func TestPredictZeroDenominatorSkipped(t *testing.T) {
	chk := require.New(t)
	rows := []Row{
		{Lifetime: 0, WayOccupancy: 4, TotalEvictions: 100, EvictionsCaused: 30},
		{Lifetime: 20, WayOccupancy: 0, TotalEvictions: 200, EvictionsCaused: 60},
		{Lifetime: 10, WayOccupancy: 4, TotalEvictions: 100, EvictionsCaused: 30},
		{Lifetime: 20, WayOccupancy: 2, TotalEvictions: 200, EvictionsCaused: 60},
	}
	points, skipped := Predict(rows)
	chk.Equal(1, skipped)
	chk.Len(points, 2)
}

func TestRunPerfectCorrelation(t *testing.T) {
	chk := require.New(t)
	// Rows crafted so predicted == actual for every point.
	var rows []Row
	for _, scale := range []float64{1, 2, 5, 13} {
		rows = append(rows,
			Row{Lifetime: 10 * scale, WayOccupancy: 4, TotalEvictions: 100 * scale},
			Row{Lifetime: 20 * scale, WayOccupancy: 2, TotalEvictions: 200 * scale},
		)
	}
	// Fill actuals with the exact predictions.
	pts, _ := Predict(rows)
	for i := range rows {
		rows[i].EvictionsCaused = pts[i].Predicted
	}

	rep, err := Run(rows)
	chk.NoError(err)
	chk.InDelta(1.0, rep.R, 1e-9)
	chk.InDelta(1.0, rep.RSquared, 1e-9)
	chk.False(math.IsNaN(rep.R))
}

func TestRunTooFewPoints(t *testing.T) {
	_, err := Run(nil)
	require.Error(t, err)
}

func TestLoadFilesAndCollect(t *testing.T) {
	chk := require.New(t)
	dir := t.TempDir()
	csv := header + "0,10,4,100,30\n1,20,2,200,60\n"
	chk.NoError(os.WriteFile(filepath.Join(dir, "a+b.csv"), []byte(csv), 0o644))
	chk.NoError(os.WriteFile(filepath.Join(dir, "a+c.csv"), []byte(csv), 0o644))
	chk.NoError(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	paths, err := CollectCSVs(dir)
	chk.NoError(err)
	chk.Len(paths, 2)

	rows, err := LoadFiles(paths)
	chk.NoError(err)
	chk.Len(rows, 4)
}

func TestLoadFilesOddRowCount(t *testing.T) {
	dir := t.TempDir()
	csv := header + "0,10,4,100,30\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a+b.csv"), []byte(csv), 0o644))
	_, err := LoadFiles([]string{filepath.Join(dir, "a+b.csv")})
	require.ErrorContains(t, err, "pairs")
}

func TestRenderScatter(t *testing.T) {
	chk := require.New(t)
	rep := Report{Points: []Point{
		{Predicted: 10, Actual: 12},
		{Predicted: 100, Actual: 90},
		{Predicted: 1000, Actual: 1100},
		{Predicted: 0, Actual: 5}, // dropped from drawing
	}}
	path := filepath.Join(t.TempDir(), "scatter.png")
	chk.NoError(RenderScatter(rep, path))
	chk.FileExists(path)
}
