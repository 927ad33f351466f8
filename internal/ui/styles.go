package ui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent    = lipgloss.Color("86")
	colorHeader    = lipgloss.Color("229")
	colorSelection = lipgloss.Color("57")
	colorMuted     = lipgloss.Color("241")
	colorError     = lipgloss.Color("196")
	colorOK        = lipgloss.Color("46")
	colorWarn      = lipgloss.Color("226")
	colorHeavy     = lipgloss.Color("208")
	colorDanger    = lipgloss.Color("160")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHeader)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(colorHeader).
			Background(colorSelection)

	DimStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorError)
	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(colorOK)
	WarningStyle = lipgloss.NewStyle().Foreground(colorWarn)

	ConfirmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(colorDanger).
			Padding(0, 1)
)

// shareStyle colours a result row by its share of the scanned total
func shareStyle(percent float64) lipgloss.Style {
	switch {
	case percent >= 25:
		return lipgloss.NewStyle().Foreground(colorHeavy)
	case percent >= 5:
		return lipgloss.NewStyle()
	default:
		return DimStyle
	}
}
