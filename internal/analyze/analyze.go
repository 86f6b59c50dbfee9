// Package analyze is the offline reader of the per-pair simulator CSVs. It
// pairs rows two at a time (one row per trace identity in a pairing),
// computes predicted evictions from the lifetime/occupancy model, and
// reports how well prediction tracks the measured value.
package analyze

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Column names the simulator writes and this reader depends on.
const (
	colLifetime        = "little_law_lifetime"
	colWayOccupancy    = "period_avg_way_occupancy"
	colTotalEvictions  = "period_total_evictions_caused"
	colEvictionsCaused = "period_evictions_caused"
)

// Row is one simulator CSV row, reduced to the fields the model consumes.
type Row struct {
	Lifetime        float64
	WayOccupancy    float64
	TotalEvictions  float64
	EvictionsCaused float64
}

// Point is one predicted/actual eviction pair.
type Point struct {
	Predicted float64
	Actual    float64
}

// Report is the aggregate outcome over every row pair.
type Report struct {
	Points       []Point
	PairsSkipped int // pairs dropped for a zero denominator
	R            float64
	RSquared     float64
}

// ReadRows parses simulator CSV rows from r. The header row must name all
// four model columns; extra columns are ignored.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, want := range []string{colLifetime, colWayOccupancy, colTotalEvictions, colEvictionsCaused} {
		if _, ok := idx[want]; !ok {
			return nil, fmt.Errorf("csv missing column %q", want)
		}
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		row, err := parseRow(record, idx)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string, idx map[string]int) (Row, error) {
	get := func(col string) (float64, error) {
		i := idx[col]
		if i >= len(record) {
			return 0, fmt.Errorf("csv row too short for column %q", col)
		}
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", col, err)
		}
		return v, nil
	}

	var row Row
	var err error
	if row.Lifetime, err = get(colLifetime); err != nil {
		return row, err
	}
	if row.WayOccupancy, err = get(colWayOccupancy); err != nil {
		return row, err
	}
	if row.TotalEvictions, err = get(colTotalEvictions); err != nil {
		return row, err
	}
	row.EvictionsCaused, err = get(colEvictionsCaused)
	return row, err
}

// LoadFiles reads rows from every path in order. A stats directory can be
// passed through CollectCSVs first.
func LoadFiles(paths []string) ([]Row, error) {
	var rows []Row
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		fileRows, err := ReadRows(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(fileRows)%2 != 0 {
			return nil, fmt.Errorf("%s: %d rows, expected an even count (rows arrive in pairs)", path, len(fileRows))
		}
		rows = append(rows, fileRows...)
	}
	return rows, nil
}

// CollectCSVs returns the sorted *.csv paths under dir.
func CollectCSVs(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("glob stats dir: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", dir)
	}
	sort.Strings(matches)
	return matches, nil
}

// Predict consumes rows two at a time and produces the predicted/actual
// point set.
//
// For a pair (row1, row2) the shared denominator is L1*W2 + L2*W1; the
// predicted cross-evictions are
//
//	Ê21 = E1 * L1*W2 / (L1*W2 + L2*W1)
//	Ê12 = E2 * L2*W1 / (L1*W2 + L2*W1)
//
// compared against the measured period_evictions_caused of each row. Pairs
// with a zero denominator are skipped, not errors.
func Predict(rows []Row) ([]Point, int) {
	var points []Point
	skipped := 0
	for i := 0; i+1 < len(rows); i += 2 {
		r1, r2 := rows[i], rows[i+1]

		denom := r1.Lifetime*r2.WayOccupancy + r2.Lifetime*r1.WayOccupancy
		if denom == 0 {
			skipped++
			continue
		}

		e21hat := r1.TotalEvictions * (r1.Lifetime * r2.WayOccupancy / denom)
		e12hat := r2.TotalEvictions * (r2.Lifetime * r1.WayOccupancy / denom)

		points = append(points,
			Point{Predicted: e21hat, Actual: r1.EvictionsCaused},
			Point{Predicted: e12hat, Actual: r2.EvictionsCaused},
		)
	}
	return points, skipped
}

// Run builds the full report for the given rows.
func Run(rows []Row) (Report, error) {
	points, skipped := Predict(rows)
	if len(points) < 2 {
		return Report{}, fmt.Errorf("not enough usable row pairs (%d points)", len(points))
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Predicted
		ys[i] = p.Actual
	}
	r := stat.Correlation(xs, ys, nil)

	return Report{
		Points:       points,
		PairsSkipped: skipped,
		R:            r,
		RSquared:     r * r,
	}, nil
}
