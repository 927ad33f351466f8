package scanner

import (
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"
)

// Totals is what a single walk of a directory tree found
type Totals struct {
	Bytes   uint64
	Files   uint64
	Skipped uint64 // entries that could not be read
}

// Aggregate returns the total size in bytes of the regular files under path.
// Unreadable entries contribute zero and symlinks are never followed.
func Aggregate(path string) uint64 {
	return Measure(path).Bytes
}

// Measure walks path and returns its byte and file totals
func Measure(path string) Totals {
	return measure(path, nil)
}

// measure walks the tree with an explicit stack so deep trees cannot exhaust
// the goroutine stack.
func measure(root string, log *slog.Logger) Totals {
	var t Totals

	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// ReadDir returns what it managed to read alongside the error
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Skipped++
			if log != nil {
				log.Debug("skipping unreadable directory", "path", dir, "error", err)
			}
		}

		for _, entry := range entries {
			typ := entry.Type()
			switch {
			case typ.IsDir():
				stack = append(stack, filepath.Join(dir, entry.Name()))
			case typ.IsRegular():
				info, err := entry.Info()
				if err != nil {
					t.Skipped++
					if log != nil {
						log.Debug("skipping unreadable file", "path", filepath.Join(dir, entry.Name()), "error", err)
					}
					continue
				}
				t.Bytes += uint64(info.Size())
				t.Files++
			}
		}
	}

	return t
}

// Aggregator measures directories, letting concurrent callers that ask for
// the same path share one walk. Nothing is kept after the walk returns.
type Aggregator struct {
	group singleflight.Group
	log   *slog.Logger
}

// NewAggregator creates an aggregator that logs skipped entries to log
func NewAggregator(log *slog.Logger) *Aggregator {
	return &Aggregator{log: log}
}

// Measure returns the totals for path
func (a *Aggregator) Measure(path string) Totals {
	v, _, _ := a.group.Do(filepath.Clean(path), func() (any, error) {
		return measure(path, a.log), nil
	})
	return v.(Totals)
}
