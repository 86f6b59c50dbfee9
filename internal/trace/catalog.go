// Package trace discovers simulator trace files and derives the canonical
// short names used to build output paths.
package trace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Known trace suffixes, tried in order. The first match is stripped to form
// the short name.
var knownSuffixes = []string{".champsimtrace.xz", ".trace.xz"}

// Sentinel errors for the two distinct setup failures around discovery.
var (
	ErrDirMissing   = errors.New("traces directory does not exist")
	ErrEmptyCatalog = errors.New("no trace files found")
)

// Trace is one discovered input file. Immutable once discovered.
type Trace struct {
	Path string
	Name string
}

// ShortName strips the first matching known suffix from the base filename.
// If no suffix matches, the full base filename is returned.
func ShortName(path string) string {
	base := filepath.Base(path)
	for _, suffix := range knownSuffixes {
		if strings.HasSuffix(base, suffix) {
			return base[:len(base)-len(suffix)]
		}
	}
	return base
}

// Discover returns the sorted, duplicate-free catalog of trace files under
// dir. A missing directory and an empty result are reported as distinct
// errors so callers can hint accordingly.
func Discover(dir string) ([]Trace, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirMissing, dir)
		}
		return nil, fmt.Errorf("stat traces dir: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirMissing, dir)
	}

	seen := make(map[string]struct{})
	var paths []string
	for _, suffix := range knownSuffixes {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+suffix))
		if err != nil {
			return nil, fmt.Errorf("glob traces: %w", err)
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s (supported: *%s)", ErrEmptyCatalog, dir, strings.Join(knownSuffixes, ", *"))
	}
	sort.Strings(paths)

	catalog := make([]Trace, 0, len(paths))
	for _, p := range paths {
		catalog = append(catalog, Trace{Path: p, Name: ShortName(p)})
	}
	return catalog, nil
}
