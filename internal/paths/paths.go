// Package paths resolves application-data roots for each scan target.
//
// On Windows the roots are %APPDATA% (Roaming), %LOCALAPPDATA% (Local) and
// the LocalLow directory beside it. Elsewhere Roaming maps to the user config
// directory, Local to the user cache directory, and LocalLow is unavailable.
// Configured overrides take precedence over the platform defaults.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rahulvramesh/appdata-cleaner/internal/types"
)

// Resolver maps targets to root directories
type Resolver struct {
	overrides map[types.ScanTarget]string
	lookup    func(types.ScanTarget) (string, bool)
}

// New creates a resolver using platform defaults and the given overrides
func New(overrides map[types.ScanTarget]string) *Resolver {
	return &Resolver{
		overrides: overrides,
		lookup:    platformRoot,
	}
}

// Resolve returns the absolute root directory for target, or false when the
// platform has no such root. Relative overrides are taken from the working
// directory.
func (r *Resolver) Resolve(target types.ScanTarget) (string, bool) {
	if dir, ok := r.overrides[target]; ok && dir != "" {
		abs, err := filepath.Abs(ExpandHome(dir))
		if err != nil {
			return "", false
		}
		return abs, true
	}
	return r.lookup(target)
}

func platformRoot(target types.ScanTarget) (string, bool) {
	switch target {
	case types.Roaming:
		return nonEmpty(os.UserConfigDir())
	case types.Local:
		return nonEmpty(os.UserCacheDir())
	case types.LocalLow:
		if runtime.GOOS != "windows" {
			return "", false
		}
		local, ok := nonEmpty(os.UserCacheDir())
		if !ok {
			return "", false
		}
		return filepath.Join(filepath.Dir(local), "LocalLow"), true
	}
	return "", false
}

func nonEmpty(dir string, err error) (string, bool) {
	if err != nil || dir == "" {
		return "", false
	}
	return dir, true
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
