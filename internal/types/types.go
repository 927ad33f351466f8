package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownTarget is returned when a target name is not recognised
var ErrUnknownTarget = errors.New("unknown scan target")

// ScanTarget identifies one of the application-data roots
type ScanTarget int

const (
	Roaming ScanTarget = iota
	Local
	LocalLow
)

var targetNames = []string{"Roaming", "Local", "LocalLow"}

// AllTargets returns every target in display order
func AllTargets() []ScanTarget {
	return []ScanTarget{Roaming, Local, LocalLow}
}

func (t ScanTarget) String() string {
	if t < 0 || int(t) >= len(targetNames) {
		return fmt.Sprintf("ScanTarget(%d)", int(t))
	}
	return targetNames[t]
}

// ParseScanTarget parses a target name, ignoring case
func ParseScanTarget(s string) (ScanTarget, error) {
	for i, name := range targetNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return ScanTarget(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

// FolderEntry is one immediate subdirectory of a scanned root
type FolderEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SizeBytes uint64 `json:"size_bytes"`
	Files     uint64 `json:"files"`
}

// ProgressEvent reports traversal completion against the pre-scan file count
type ProgressEvent struct {
	Percent   float64 `json:"percent"`
	Processed uint64  `json:"processed"`
	Total     uint64  `json:"total"`
}

// ScanOutcome marks the end of a scan session
type ScanOutcome struct {
	Cancelled bool          `json:"cancelled"`
	RootFound bool          `json:"root_found"`
	Entries   int           `json:"entries"`
	Elapsed   time.Duration `json:"elapsed"`
}

// EventKind tags the payload carried by a ScanEvent
type EventKind int

const (
	KindFolder EventKind = iota
	KindProgress
	KindOutcome
)

func (k EventKind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindProgress:
		return "progress"
	case KindOutcome:
		return "outcome"
	default:
		return "unknown"
	}
}

// MarshalText lets EventKind appear as a word in JSON output
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ScanEvent is what flows from a scan session to its consumer.
// Exactly one of Folder, Progress or Outcome is set, matching Kind.
type ScanEvent struct {
	Session  uint64         `json:"session"`
	Kind     EventKind      `json:"kind"`
	Folder   *FolderEntry   `json:"folder,omitempty"`
	Progress *ProgressEvent `json:"progress,omitempty"`
	Outcome  *ScanOutcome   `json:"outcome,omitempty"`
}

// FolderEvent wraps a folder entry
func FolderEvent(session uint64, f FolderEntry) ScanEvent {
	return ScanEvent{Session: session, Kind: KindFolder, Folder: &f}
}

// ProgressUpdate wraps a progress event
func ProgressUpdate(session uint64, p ProgressEvent) ScanEvent {
	return ScanEvent{Session: session, Kind: KindProgress, Progress: &p}
}

// OutcomeEvent wraps the terminal sentinel
func OutcomeEvent(session uint64, o ScanOutcome) ScanEvent {
	return ScanEvent{Session: session, Kind: KindOutcome, Outcome: &o}
}

// Messages

// PollTickMsg asks the UI to drain pending scan events
type PollTickMsg struct {
	Session uint64
}

// DeleteCompleteMsg reports the result of a confirmed delete
type DeleteCompleteMsg struct {
	Name  string
	Freed uint64
	Err   error
}
