package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// CountFiles returns the number of regular files anywhere under path.
// Unreadable subtrees contribute zero.
func CountFiles(path string) uint64 {
	return countFiles(context.Background(), path, nil)
}

func countFiles(ctx context.Context, root string, log *slog.Logger) uint64 {
	var count atomic.Uint64

	conf := &fastwalk.Config{
		Follow: false,
	}

	// fastwalk calls back from several goroutines
	err := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if log != nil {
				log.Debug("skipping unreadable path", "path", path, "error", err)
			}
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d != nil && d.Type().IsRegular() {
			count.Add(1)
		}
		return nil
	})
	if err != nil && log != nil && ctx.Err() == nil {
		log.Debug("file count incomplete", "root", root, "error", err)
	}

	return count.Load()
}
