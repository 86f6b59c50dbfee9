package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"simbatch/internal/trace"
)

func catalog(names ...string) []trace.Trace {
	out := make([]trace.Trace, 0, len(names))
	for _, n := range names {
		out = append(out, trace.Trace{Path: "/traces/" + n + ".trace.xz", Name: n})
	}
	return out
}

func TestGeneratePairCount(t *testing.T) {
	chk := require.New(t)
	for _, k := range []int{2, 3, 5, 10} {
		names := make([]string, k)
		for i := range names {
			names[i] = string(rune('a' + i))
		}
		tasks := Generate(catalog(names...), "/stats", 100, 200)
		chk.Len(tasks, k*(k-1)/2, "catalog size %d", k)

		seen := make(map[string]struct{}, len(tasks))
		for _, tk := range tasks {
			chk.NotEqual(tk.TraceA.Name, tk.TraceB.Name)
			seen[tk.Output] = struct{}{}
		}
		chk.Len(seen, len(tasks), "duplicate unordered pair")
	}
}

func TestGenerateOrderAndOutputs(t *testing.T) {
	chk := require.New(t)
	tasks := Generate(catalog("a", "b", "c"), "/stats", 1, 2)
	chk.Len(tasks, 3)
	chk.Equal(filepath.Join("/stats", "a+b.csv"), tasks[0].Output)
	chk.Equal(filepath.Join("/stats", "a+c.csv"), tasks[1].Output)
	chk.Equal(filepath.Join("/stats", "b+c.csv"), tasks[2].Output)
	chk.EqualValues(1, tasks[0].Warmup)
	chk.EqualValues(2, tasks[0].Sim)
}

func TestGenerateTooSmall(t *testing.T) {
	require.Nil(t, Generate(catalog("a"), "/stats", 1, 1))
	require.Nil(t, Generate(nil, "/stats", 1, 1))
}

func TestOutputPathDeterministic(t *testing.T) {
	a := OutputPath("/stats", "mcf", "lbm")
	b := OutputPath("/stats", "mcf", "lbm")
	require.Equal(t, a, b)
}

func TestFilterExisting(t *testing.T) {
	chk := require.New(t)
	dir := t.TempDir()
	tasks := Generate(catalog("a", "b", "c"), dir, 1, 1)
	chk.NoError(os.WriteFile(filepath.Join(dir, "a+b.csv"), nil, 0o644))

	filtered := FilterExisting(tasks)
	chk.Len(filtered, 2)
	chk.Equal(filepath.Join(dir, "a+c.csv"), filtered[0].Output)
	chk.Equal(filepath.Join(dir, "b+c.csv"), filtered[1].Output)

	// Idempotent on an unchanged filesystem.
	chk.Equal(filtered, FilterExisting(filtered))
}

func TestLimit(t *testing.T) {
	chk := require.New(t)
	tasks := Generate(catalog("a", "b", "c", "d"), "/stats", 1, 1)

	chk.Len(Limit(tasks, 1), 1)
	chk.Equal(tasks[0], Limit(tasks, 1)[0])
	chk.Len(Limit(tasks, 100), len(tasks))
	chk.Len(Limit(tasks, 0), len(tasks))
	chk.Len(Limit(tasks, -1), len(tasks))
	chk.Equal(tasks[:3], Limit(tasks, 3))
}
