package scanner

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rahulvramesh/appdata-cleaner/internal/types"
)

// Resolver maps a scan target to its root directory
type Resolver interface {
	Resolve(target types.ScanTarget) (string, bool)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(types.ScanTarget) (string, bool)

func (f ResolverFunc) Resolve(target types.ScanTarget) (string, bool) {
	return f(target)
}

// Scanner runs background scans of application-data roots.
//
// By default a scanner keeps a single active session: starting a new scan
// cancels the one in flight. The cancelled session still ends with a
// ScanOutcome, marked Cancelled. Every event carries its session ID so a
// consumer can discard events from a session it no longer shows.
type Scanner struct {
	resolver   Resolver
	agg        *Aggregator
	log        *slog.Logger
	skipHidden bool
	minSize    uint64
	overlap    bool

	mu     sync.Mutex
	lastID uint64
	active *Session
}

// Option configures a Scanner
type Option func(*Scanner)

// WithLogger sets the logger used for session and skipped-entry messages
func WithLogger(log *slog.Logger) Option {
	return func(s *Scanner) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSkipHidden skips dot-directories directly under the root
func WithSkipHidden(skip bool) Option {
	return func(s *Scanner) { s.skipHidden = skip }
}

// WithMinSize only reports folders of at least n bytes
func WithMinSize(n uint64) Option {
	return func(s *Scanner) { s.minSize = n }
}

// WithOverlap lets sessions run side by side instead of the latest
// cancelling the previous one
func WithOverlap() Option {
	return func(s *Scanner) { s.overlap = true }
}

// New creates a scanner that resolves targets with resolver
func New(resolver Resolver, opts ...Option) *Scanner {
	s := &Scanner{
		resolver: resolver,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.agg = NewAggregator(s.log)
	return s
}

// Session is one scan of one root
type Session struct {
	ID    uint64
	Label string
	Root  string

	events *Channel
	cancel context.CancelFunc
	done   chan struct{}
}

// Events returns the session's event stream
func (s *Session) Events() *Channel { return s.events }

// Cancel stops the scan at the next entry boundary
func (s *Session) Cancel() { s.cancel() }

// Done is closed once the background goroutine has exited
func (s *Session) Done() <-chan struct{} { return s.done }

// StartScan resolves target and scans its root in the background.
// An unresolvable or missing root yields a session whose only event is the
// ScanOutcome.
func (s *Scanner) StartScan(ctx context.Context, target types.ScanTarget) *Session {
	var (
		root  string
		found bool
	)
	if s.resolver != nil {
		root, found = s.resolver.Resolve(target)
	}
	return s.start(ctx, target.String(), root, found && root != "")
}

// ScanRoot scans an explicit directory in the background
func (s *Scanner) ScanRoot(ctx context.Context, root string) *Session {
	return s.start(ctx, root, root, root != "")
}

// Active returns the current session, if any
func (s *Scanner) Active() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Scanner) start(ctx context.Context, label, root string, found bool) *Session {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.lastID++
	sess := &Session{
		ID:     s.lastID,
		Label:  label,
		Root:   root,
		events: NewChannel(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	var prev *Session
	if !s.overlap {
		prev = s.active
		s.active = sess
	}
	s.mu.Unlock()

	if prev != nil {
		s.log.Info("cancelling superseded scan", "session", prev.ID, "root", prev.Root)
		prev.Cancel()
	}

	go s.run(ctx, sess, found)
	return sess
}

func (s *Scanner) release(sess *Session) {
	s.mu.Lock()
	if s.active == sess {
		s.active = nil
	}
	s.mu.Unlock()
}

// emitter sends a session's events and remembers if the consumer went away
type emitter struct {
	sess   *Session
	log    *slog.Logger
	closed bool
}

func (e *emitter) send(ev types.ScanEvent) bool {
	if e.closed {
		return false
	}
	if err := e.sess.events.Send(ev); err != nil {
		if errors.Is(err, ErrChannelClosed) {
			e.log.Debug("consumer gone, stopping scan", "session", e.sess.ID)
		}
		e.closed = true
		return false
	}
	return true
}

func (s *Scanner) run(ctx context.Context, sess *Session, found bool) {
	defer close(sess.done)
	defer sess.cancel()
	defer s.release(sess)
	defer sess.events.CloseSend()

	start := time.Now()
	e := &emitter{sess: sess, log: s.log}

	s.log.Info("scan started", "session", sess.ID, "target", sess.Label, "root", sess.Root)

	outcome := s.scan(ctx, sess, found, e)
	outcome.Elapsed = time.Since(start)

	e.send(types.OutcomeEvent(sess.ID, outcome))

	s.log.Info("scan finished",
		"session", sess.ID,
		"entries", outcome.Entries,
		"cancelled", outcome.Cancelled,
		"root_found", outcome.RootFound,
		"elapsed", outcome.Elapsed)
}

func (s *Scanner) scan(ctx context.Context, sess *Session, found bool, e *emitter) types.ScanOutcome {
	var outcome types.ScanOutcome

	if !found {
		s.log.Info("root unavailable", "session", sess.ID, "target", sess.Label)
		return outcome
	}

	info, err := os.Stat(sess.Root)
	if err != nil || !info.IsDir() {
		s.log.Info("root missing", "session", sess.ID, "root", sess.Root, "error", err)
		return outcome
	}
	outcome.RootFound = true

	progress := progressTracker{total: countFiles(ctx, sess.Root, s.log)}
	if ctx.Err() != nil {
		outcome.Cancelled = true
		return outcome
	}

	entries, err := os.ReadDir(sess.Root)
	if err != nil {
		s.log.Warn("root only partly readable", "root", sess.Root, "error", err)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			outcome.Cancelled = true
			return outcome
		}
		if e.closed {
			return outcome
		}

		typ := entry.Type()
		switch {
		case typ.IsDir():
			if s.skipHidden && strings.HasPrefix(entry.Name(), ".") {
				continue
			}

			path := filepath.Join(sess.Root, entry.Name())
			t := s.agg.Measure(path)
			if t.Bytes >= s.minSize {
				e.send(types.FolderEvent(sess.ID, types.FolderEntry{
					Name:      entry.Name(),
					Path:      path,
					SizeBytes: t.Bytes,
					Files:     t.Files,
				}))
				outcome.Entries++
			}
			if ev, ok := progress.advance(t.Files); ok {
				e.send(types.ProgressUpdate(sess.ID, ev))
			}

		case typ.IsRegular():
			if ev, ok := progress.advance(1); ok {
				e.send(types.ProgressUpdate(sess.ID, ev))
			}
		}
	}

	if ev, ok := progress.finish(); ok {
		e.send(types.ProgressUpdate(sess.ID, ev))
	}

	return outcome
}

// progressTracker turns processed file counts into non-decreasing
// percentages. A zero total suppresses progress entirely.
type progressTracker struct {
	total     uint64
	processed uint64
	last      float64
}

func (p *progressTracker) advance(n uint64) (types.ProgressEvent, bool) {
	if p.total == 0 {
		return types.ProgressEvent{}, false
	}

	p.processed += n
	pct := 100 * float64(p.processed) / float64(p.total)
	pct = min(pct, 100)
	pct = max(pct, p.last)
	p.last = pct

	return types.ProgressEvent{Percent: pct, Processed: p.processed, Total: p.total}, true
}

// finish tops progress up to 100 when the tree shrank during the scan
func (p *progressTracker) finish() (types.ProgressEvent, bool) {
	if p.total == 0 || p.last >= 100 {
		return types.ProgressEvent{}, false
	}

	p.last = 100
	return types.ProgressEvent{Percent: 100, Processed: p.processed, Total: p.total}, true
}
