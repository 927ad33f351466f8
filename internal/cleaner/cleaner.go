package cleaner

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rahulvramesh/appdata-cleaner/internal/history"
	"github.com/rahulvramesh/appdata-cleaner/internal/scanner"
)

var (
	ErrProtectedPath = errors.New("refusing to delete protected path")
	ErrInvalidName   = errors.New("invalid folder name")
	ErrNotDirectory  = errors.New("not a directory")
)

// Recorder stores completed deletions
type Recorder interface {
	Record(op history.Operation) (int64, error)
}

// Result describes a completed deletion
type Result struct {
	Path      string
	Freed     uint64
	TrashedTo string
}

// Cleaner deletes immediate subfolders of an application-data root
type Cleaner struct {
	history  Recorder
	useTrash bool
	trashDir string
	log      *slog.Logger
}

type Option func(*Cleaner)

// WithHistory records every deletion in r
func WithHistory(r Recorder) Option {
	return func(c *Cleaner) { c.history = r }
}

// WithTrash moves folders into dir instead of removing them
func WithTrash(dir string) Option {
	return func(c *Cleaner) {
		c.useTrash = dir != ""
		c.trashDir = dir
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Cleaner) {
		if log != nil {
			c.log = log
		}
	}
}

func New(opts ...Option) *Cleaner {
	c := &Cleaner{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidateName checks that name is a single path element as reported by a scan
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsRune(name, '/'), strings.ContainsRune(name, filepath.Separator):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidName, name)
	}
	return nil
}

// validatePath ensures path is a direct child of root and not a location that
// must never be removed
func validatePath(root, path string) error {
	if !filepath.IsAbs(root) {
		return fmt.Errorf("root must be absolute: %s", root)
	}

	cleanRoot := filepath.Clean(root)
	cleaned := filepath.Clean(path)

	if filepath.Dir(cleaned) != cleanRoot {
		return fmt.Errorf("%w: %s is not directly inside %s", ErrProtectedPath, path, root)
	}
	if filepath.Dir(cleaned) == cleaned {
		return fmt.Errorf("%w: filesystem root", ErrProtectedPath)
	}
	if home, err := os.UserHomeDir(); err == nil && cleaned == filepath.Clean(home) {
		return fmt.Errorf("%w: home directory", ErrProtectedPath)
	}
	return nil
}

type deleteRequest struct {
	target string
}

// DeleteOption adjusts a single Delete call
type DeleteOption func(*deleteRequest)

// ForTarget labels the history row with the scan target the folder came from.
// Without it the base name of root is used.
func ForTarget(label string) DeleteOption {
	return func(r *deleteRequest) { r.target = label }
}

// Delete removes root/name. The folder size is measured first so the result
// reports how much space was freed.
func (c *Cleaner) Delete(root, name string, opts ...DeleteOption) (Result, error) {
	req := deleteRequest{target: filepath.Base(filepath.Clean(root))}
	for _, opt := range opts {
		opt(&req)
	}

	if err := ValidateName(name); err != nil {
		return Result{}, err
	}

	path := filepath.Join(root, name)
	if err := validatePath(root, path); err != nil {
		return Result{}, err
	}

	info, err := os.Lstat(path)
	if err != nil {
		return Result{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}

	res := Result{Path: path, Freed: scanner.Aggregate(path)}

	opType := history.OpDelete
	if c.useTrash {
		opType = history.OpTrash
		res.TrashedTo, err = c.moveToTrash(path)
	} else {
		err = os.RemoveAll(path)
	}
	if err != nil {
		c.log.Warn("delete failed", "path", path, "error", err)
		return Result{}, fmt.Errorf("deleting %s: %w", path, err)
	}

	c.log.Info("deleted folder", "path", path, "freed", res.Freed, "trashed_to", res.TrashedTo)

	if c.history != nil {
		if _, err := c.history.Record(history.Operation{
			Type:       opType,
			Target:     req.target,
			SourcePath: path,
			DestPath:   res.TrashedTo,
			SizeBytes:  res.Freed,
			Reversible: c.useTrash,
		}); err != nil {
			// the folder is already gone; a missing history row is not a failed delete
			c.log.Warn("recording deletion failed", "path", path, "error", err)
		}
	}

	return res, nil
}

func (c *Cleaner) moveToTrash(path string) (string, error) {
	if err := os.MkdirAll(c.trashDir, 0755); err != nil {
		return "", fmt.Errorf("creating trash: %w", err)
	}

	dest := filepath.Join(c.trashDir, filepath.Base(path))

	// Handle duplicates in trash
	if _, err := os.Lstat(dest); err == nil {
		dest = filepath.Join(c.trashDir, fmt.Sprintf("%s_%d", filepath.Base(path), time.Now().UnixNano()))
	}

	if err := rename(path, dest); err != nil {
		if !errors.Is(err, errCrossDevice) {
			return "", err
		}
		// trash lives on another volume
		if err := moveAcross(path, dest); err != nil {
			return "", fmt.Errorf("moving %s to trash across volumes: %w", path, err)
		}
	}
	return dest, nil
}
