package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rahulvramesh/appdata-cleaner/internal/scanner"
	"github.com/rahulvramesh/appdata-cleaner/internal/types"
	"github.com/rahulvramesh/appdata-cleaner/internal/utils"
)

const recentLimit = 10

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.stopScan()
			return m, tea.Quit

		case "enter":
			switch m.state {
			case "menu":
				targets := types.AllTargets()
				if m.menuChoice >= len(targets) { // Exit
					return m, tea.Quit
				}
				return m.startScan(targets[m.menuChoice])
			case "results":
				if len(m.entries) == 0 {
					m.state = "menu"
				}
			}

		case "up", "k":
			switch m.state {
			case "menu":
				if m.menuChoice > 0 {
					m.menuChoice--
				}
			case "results":
				if m.choice > 0 {
					m.choice--
					if m.choice < m.offset {
						m.offset = m.choice
					}
				}
			}

		case "down", "j":
			switch m.state {
			case "menu":
				if m.menuChoice < len(types.AllTargets()) {
					m.menuChoice++
				}
			case "results":
				if m.choice < len(m.entries)-1 {
					m.choice++
					viewportHeight := m.viewportHeight()
					if m.choice >= m.offset+viewportHeight {
						m.offset = m.choice - viewportHeight + 1
					}
				}
			}

		case "pgup":
			if m.state == "results" {
				viewportHeight := m.viewportHeight()
				m.choice = max(0, m.choice-viewportHeight)
				m.offset = max(0, m.offset-viewportHeight)
			}

		case "pgdown":
			if m.state == "results" && len(m.entries) > 0 {
				viewportHeight := m.viewportHeight()
				m.choice = min(len(m.entries)-1, m.choice+viewportHeight)
				m.offset = min(max(0, len(m.entries)-viewportHeight), m.offset+viewportHeight)
			}

		case "r":
			if m.state == "results" || m.state == "scanning" {
				return m.startScan(m.target)
			}

		case "d", "c":
			if m.state == "results" && m.choice < len(m.entries) {
				m.pending = m.entries[m.choice].Name
				m.status = ""
				m.err = nil
				m.state = "confirm"
			}

		case "y":
			if m.state == "confirm" && m.session != nil {
				m.state = "deleting"
				return m, tea.Batch(
					m.spinner.Tick,
					deleteFolder(m.cleaner, m.target, m.session.Root, m.pending),
				)
			}

		case "n":
			if m.state == "confirm" {
				m.pending = ""
				m.state = "results"
			}

		case "esc":
			switch m.state {
			case "confirm":
				m.pending = ""
				m.state = "results"
			case "scanning", "results":
				m.stopScan()
				m.state = "menu"
				m.status = ""
				m.err = nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case types.PollTickMsg:
		if m.session == nil || msg.Session != m.session.ID || !m.scanning {
			// tick for a replaced session
			return m, nil
		}
		return m.drainEvents()

	case types.DeleteCompleteMsg:
		if m.state != "deleting" {
			return m, nil
		}
		m.pending = ""
		m.state = "results"
		if msg.Err != nil {
			m.log.Warn("delete failed", "name", msg.Name, "error", msg.Err)
			m.err = msg.Err
			return m, nil
		}
		m.entries = utils.RemoveEntry(m.entries, msg.Name)
		if m.choice >= len(m.entries) {
			m.choice = max(0, len(m.entries)-1)
		}
		if m.offset > m.choice {
			m.offset = m.choice
		}
		m.status = fmt.Sprintf("✅ Deleted %s (%s)", msg.Name, utils.FormatFileSize(msg.Freed))
		return m, nil
	}

	return m, nil
}

// startScan replaces any running session with a new one for target
func (m Model) startScan(target types.ScanTarget) (tea.Model, tea.Cmd) {
	if m.scanner == nil {
		m.err = fmt.Errorf("no scanner configured")
		return m, nil
	}
	// the scanner cancels the previous session itself; this only drops our handle
	sess := m.scanner.StartScan(m.ctx, target)
	m.log.Debug("scan started", "session", sess.ID, "target", target, "root", sess.Root)

	m.target = target
	m.session = sess
	m.scanning = true
	m.percent = 0
	m.entries = nil
	m.recent = nil
	m.outcome = nil
	m.choice = 0
	m.offset = 0
	m.status = ""
	m.err = nil
	m.state = "scanning"

	return m, tea.Batch(
		m.spinner.Tick,
		pollEvents(sess.ID, m.pollInterval),
	)
}

func (m *Model) stopScan() {
	if m.session != nil && m.scanning {
		m.session.Cancel()
	}
	m.scanning = false
}

// drainEvents takes at most maxPerTick queued events without blocking
func (m Model) drainEvents() (tea.Model, tea.Cmd) {
	events := m.session.Events()
	for range m.maxPerTick {
		ev, state := events.TryRecv()
		switch state {
		case scanner.Empty:
			return m, pollEvents(m.session.ID, m.pollInterval)
		case scanner.Closed:
			m.finishScan()
			return m, nil
		}
		if ev.Session != m.session.ID {
			continue
		}

		switch ev.Kind {
		case types.KindFolder:
			m.entries = append(m.entries, *ev.Folder)
			m.recent = append(m.recent, ev.Folder.Name)
			if len(m.recent) > recentLimit {
				m.recent = m.recent[len(m.recent)-recentLimit:]
			}
		case types.KindProgress:
			m.percent = ev.Progress.Percent / 100
		case types.KindOutcome:
			outcome := *ev.Outcome
			m.outcome = &outcome
			m.finishScan()
			return m, nil
		}
	}
	return m, pollEvents(m.session.ID, m.pollInterval)
}

func (m *Model) finishScan() {
	m.scanning = false
	utils.SortBySize(m.entries)
	m.choice = 0
	m.offset = 0
	if m.state == "scanning" {
		m.state = "results"
	}
	if m.outcome != nil {
		m.log.Debug("scan finished",
			"session", m.session.ID,
			"entries", m.outcome.Entries,
			"cancelled", m.outcome.Cancelled,
			"elapsed", m.outcome.Elapsed)
	}
}

func (m Model) viewportHeight() int {
	return max(5, m.height-15)
}
