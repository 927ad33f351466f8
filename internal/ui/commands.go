package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rahulvramesh/appdata-cleaner/internal/cleaner"
	"github.com/rahulvramesh/appdata-cleaner/internal/types"
)

// pollEvents schedules the next drain of the session's event stream. The
// Update loop only ever does non-blocking receives on these ticks.
func pollEvents(session uint64, every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return types.PollTickMsg{Session: session}
	})
}

// deleteFolder removes a confirmed folder off the Update goroutine
func deleteFolder(c *cleaner.Cleaner, target types.ScanTarget, root, name string) tea.Cmd {
	return func() tea.Msg {
		res, err := c.Delete(root, name, cleaner.ForTarget(target.String()))
		return types.DeleteCompleteMsg{
			Name:  name,
			Freed: res.Freed,
			Err:   err,
		}
	}
}
