package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rahulvramesh/appdata-cleaner/internal/types"
	"github.com/rahulvramesh/appdata-cleaner/internal/utils"
)

// View renders the UI
func (m Model) View() string {
	var s strings.Builder

	// Header with padding
	header := TitleStyle.Render("🧹 AppData Cleaner")
	s.WriteString("\n")
	s.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, header))
	s.WriteString("\n\n\n")

	var content string
	switch m.state {
	case "menu":
		content = m.renderMenu()
	case "scanning":
		content = m.renderScanning()
	case "results":
		content = m.renderResults()
	case "confirm":
		content = m.renderConfirm()
	case "deleting":
		content = m.renderDeleting()
	}

	s.WriteString(lipgloss.NewStyle().Padding(0, 3).Render(content))

	if m.err != nil {
		s.WriteString("\n\n")
		errMsg := lipgloss.NewStyle().Padding(0, 3).Render(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString(errMsg)
	}

	s.WriteString("\n\n")
	return s.String()
}

func (m Model) renderMenu() string {
	var s strings.Builder

	s.WriteString(HeaderStyle.Render("Choose a folder to scan"))
	s.WriteString("\n\n\n")

	items := make([]string, 0, len(types.AllTargets())+1)
	for _, t := range types.AllTargets() {
		items = append(items, "📂 "+t.String())
	}
	items = append(items, "❌ Exit")

	for i, item := range items {
		cursor := "  "
		style := lipgloss.NewStyle()

		if m.menuChoice == i {
			cursor = "▸ "
			style = SelectedStyle
		}

		s.WriteString("  " + cursor + style.Render(item) + "\n\n")
	}

	s.WriteString("\n\n")
	s.WriteString(DimStyle.Render("Use ↑/↓ or j/k to navigate, Enter to select, q to quit"))

	return s.String()
}

func (m Model) renderScanning() string {
	var s strings.Builder

	s.WriteString(HeaderStyle.Render(fmt.Sprintf("Scanning %s...", m.target)))
	s.WriteString("\n\n")
	if m.session != nil && m.session.Root != "" {
		s.WriteString("  " + DimStyle.Render(m.session.Root))
		s.WriteString("\n\n")
	}

	if len(m.entries) > 0 {
		stats := fmt.Sprintf("🔍 Found %d folders | %s total",
			len(m.entries),
			utils.FormatFileSize(utils.TotalSize(m.entries)))
		s.WriteString("  " + SuccessStyle.Render(stats))
		s.WriteString("\n\n")
	}

	s.WriteString("  " + m.spinner.View() + " ")
	s.WriteString(m.progress.ViewAs(m.percent))
	s.WriteString("\n\n")

	if len(m.recent) > 0 {
		s.WriteString("  " + DimStyle.Render("📁 Recently found:"))
		s.WriteString("\n")
		for _, name := range m.recent {
			s.WriteString("     " + DimStyle.Render(utils.TruncatePath(name, 60)))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	s.WriteString(DimStyle.Render("r to restart • ESC to cancel"))

	return s.String()
}

func (m Model) renderResults() string {
	var s strings.Builder

	title := fmt.Sprintf("%s: %d folders", m.target, len(m.entries))
	if m.outcome != nil {
		title += fmt.Sprintf(" in %s", m.outcome.Elapsed.Round(time.Millisecond))
	}
	s.WriteString(HeaderStyle.Render(title))
	s.WriteString("\n\n")

	if m.status != "" {
		s.WriteString("  " + SuccessStyle.Render(m.status))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	if m.outcome != nil && !m.outcome.RootFound {
		s.WriteString("  " + WarningStyle.Render(fmt.Sprintf("%s folder not found on this system", m.target)))
		s.WriteString("\n\n")
		s.WriteString(DimStyle.Render("Press Enter or ESC to go back to menu"))
		return s.String()
	}
	if len(m.entries) == 0 {
		s.WriteString("  " + WarningStyle.Render("No folders found"))
		s.WriteString("\n\n")
		s.WriteString(DimStyle.Render("Press Enter or ESC to go back to menu"))
		return s.String()
	}

	total := utils.TotalSize(m.entries)
	viewportHeight := m.viewportHeight()
	startIdx := m.offset
	endIdx := min(startIdx+viewportHeight, len(m.entries))

	if len(m.entries) > viewportHeight {
		scrollInfo := fmt.Sprintf("[%d-%d of %d folders]", startIdx+1, endIdx, len(m.entries))
		s.WriteString("  " + DimStyle.Render(scrollInfo))
		if startIdx > 0 {
			s.WriteString(DimStyle.Render(" ↑"))
		}
		if endIdx < len(m.entries) {
			s.WriteString(DimStyle.Render(" ↓"))
		}
		s.WriteString("\n\n")
	}

	nameWidth := max(10, min(45, m.width-35))
	for i := startIdx; i < endIdx; i++ {
		entry := m.entries[i]
		share := utils.Percentage(entry.SizeBytes, total)
		cursor := "  "
		style := shareStyle(share)

		if m.choice == i {
			cursor = "▸ "
			style = SelectedStyle
		}

		line := fmt.Sprintf("📁 %-*s %10s %6.1f%%",
			nameWidth,
			utils.TruncatePath(entry.Name, nameWidth),
			utils.FormatFileSize(entry.SizeBytes),
			share,
		)
		s.WriteString("  " + cursor + style.Render(line) + "\n")
	}

	s.WriteString("\n")
	s.WriteString("  " + DimStyle.Render(fmt.Sprintf("Total: %s", utils.FormatFileSize(total))))
	s.WriteString("\n\n")

	s.WriteString(DimStyle.Render("↑/↓ Navigate • d: Delete • r: Rescan • ESC: Menu • q: Quit"))

	return s.String()
}

func (m Model) renderConfirm() string {
	var s strings.Builder

	s.WriteString(HeaderStyle.Render("Confirm deletion"))
	s.WriteString("\n\n\n")

	size := ""
	for _, e := range m.entries {
		if e.Name == m.pending {
			size = utils.FormatFileSize(e.SizeBytes)
			break
		}
	}
	s.WriteString("  " + WarningStyle.Render(fmt.Sprintf("Delete %q (%s)?", m.pending, size)))
	s.WriteString("\n")
	if m.session != nil {
		s.WriteString("  " + DimStyle.Render(utils.TruncatePath(m.session.Root, 70)))
		s.WriteString("\n")
	}
	s.WriteString("\n\n")
	s.WriteString(ConfirmStyle.Render("y: Delete") + "   " + DimStyle.Render("n / ESC: Cancel"))

	return s.String()
}

func (m Model) renderDeleting() string {
	var s strings.Builder

	s.WriteString(HeaderStyle.Render("Deleting..."))
	s.WriteString("\n\n\n")
	s.WriteString("  " + m.spinner.View() + " Removing " + m.pending)

	return s.String()
}
