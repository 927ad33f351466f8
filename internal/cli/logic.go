package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rahulvramesh/appdata-cleaner/internal/cleaner"
	"github.com/rahulvramesh/appdata-cleaner/internal/history"
	"github.com/rahulvramesh/appdata-cleaner/internal/scanner"
	"github.com/rahulvramesh/appdata-cleaner/internal/types"
	"github.com/rahulvramesh/appdata-cleaner/internal/utils"
)

type scanOptions struct {
	target  string
	all     bool
	root    string
	json    bool
	minSize string
}

// Report is everything one session produced
type Report struct {
	Label   string              `json:"target"`
	Root    string              `json:"root"`
	Entries []types.FolderEntry `json:"entries"`
	Outcome types.ScanOutcome   `json:"outcome"`
}

// progressFunc receives every progress event of a session
type progressFunc func(label string, p types.ProgressEvent)

func runScan(cmd *cobra.Command, a *app, opts scanOptions) error {
	log, err := a.stderrLogger(cmd)
	if err != nil {
		return err
	}

	var minSize uint64
	if opts.minSize != "" {
		if minSize, err = humanize.ParseBytes(opts.minSize); err != nil {
			return fmt.Errorf("invalid min-size: %w", err)
		}
	}

	var extra []scanner.Option
	if opts.all {
		extra = append(extra, scanner.WithOverlap())
	}
	sc, err := a.newScanner(log, minSize, extra...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var sessions []*scanner.Session
	switch {
	case opts.root != "":
		root, err := filepath.Abs(opts.root)
		if err != nil {
			return fmt.Errorf("resolving --root: %w", err)
		}
		sessions = append(sessions, sc.ScanRoot(ctx, root))
	case opts.all:
		for _, target := range types.AllTargets() {
			sessions = append(sessions, sc.StartScan(ctx, target))
		}
	default:
		target := types.Roaming
		if opts.target != "" {
			if target, err = types.ParseScanTarget(opts.target); err != nil {
				return err
			}
		}
		sessions = append(sessions, sc.StartScan(ctx, target))
	}

	stderr := cmd.ErrOrStderr()
	enableProgress := !opts.json && stderr == os.Stderr && isatty.IsTerminal(os.Stderr.Fd())

	var onProgress progressFunc
	if enableProgress {
		var mu sync.Mutex
		onProgress = func(label string, p types.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(stderr, "\r\033[2K%s: scanning… %3.0f%% (%d/%d files)\r",
				label, p.Percent, p.Processed, p.Total)
		}
	}

	reports, err := collectAll(ctx, sessions, onProgress)

	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}
	if err != nil {
		return err
	}

	for _, r := range reports {
		log.Info("scan finished",
			"target", r.Label,
			"root", r.Root,
			"entries", r.Outcome.Entries,
			"cancelled", r.Outcome.Cancelled,
			"elapsed", r.Outcome.Elapsed)
	}

	if opts.json {
		return PrintJSON(reports, cmd.OutOrStdout())
	}
	return PrintTable(reports, cmd.OutOrStdout())
}

// collectAll drains every session concurrently. Reports keep the order of
// sessions.
func collectAll(ctx context.Context, sessions []*scanner.Session, onProgress progressFunc) ([]Report, error) {
	reports := make([]Report, len(sessions))

	g, gctx := errgroup.WithContext(ctx)
	for i, sess := range sessions {
		g.Go(func() error {
			r, err := collect(gctx, sess, onProgress)
			reports[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// collect receives events until the session's final outcome. An interrupt
// cancels the session but still waits for its outcome.
func collect(ctx context.Context, sess *scanner.Session, onProgress progressFunc) (Report, error) {
	stop := context.AfterFunc(ctx, sess.Cancel)
	defer stop()

	r := Report{Label: sess.Label, Root: sess.Root}
	events := sess.Events()
	for {
		ev, ok := events.Recv(context.Background())
		if !ok {
			break
		}
		switch ev.Kind {
		case types.KindFolder:
			r.Entries = append(r.Entries, *ev.Folder)
		case types.KindProgress:
			if onProgress != nil {
				onProgress(sess.Label, *ev.Progress)
			}
		case types.KindOutcome:
			r.Outcome = *ev.Outcome
		}
	}
	utils.SortBySize(r.Entries)

	if r.Outcome.Cancelled {
		return r, fmt.Errorf("scan of %s cancelled", sess.Label)
	}
	return r, nil
}

func runDelete(cmd *cobra.Command, a *app, target types.ScanTarget, name string, useTrash bool) error {
	log, err := a.stderrLogger(cmd)
	if err != nil {
		return err
	}

	resolver, err := a.resolver()
	if err != nil {
		return err
	}
	root, ok := resolver.Resolve(target)
	if !ok {
		return fmt.Errorf("%s folder not found on this system", target)
	}

	cl, hist := a.newCleaner(log, useTrash)
	defer hist.Close()

	res, err := cl.Delete(root, name, cleaner.ForTarget(target.String()))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.TrashedTo != "" {
		fmt.Fprintf(out, "Moved %s (%s) to %s\n", res.Path, utils.FormatFileSize(res.Freed), res.TrashedTo)
		return nil
	}
	fmt.Fprintf(out, "Deleted %s (%s freed)\n", res.Path, utils.FormatFileSize(res.Freed))
	return nil
}

func runHistory(cmd *cobra.Command, a *app, query string, sinceDays int, jsonOut bool) error {
	db, err := history.Open(a.cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer db.Close()

	var ops []history.Operation
	if query != "" {
		ops, err = db.Search(query)
	} else {
		ops, err = db.Since(time.Now().AddDate(0, 0, -sinceDays))
	}
	if err != nil {
		return err
	}

	if jsonOut {
		return PrintHistoryJSON(ops, cmd.OutOrStdout())
	}
	return PrintHistory(ops, cmd.OutOrStdout())
}
