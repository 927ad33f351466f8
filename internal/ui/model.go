package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rahulvramesh/appdata-cleaner/internal/cleaner"
	"github.com/rahulvramesh/appdata-cleaner/internal/scanner"
	"github.com/rahulvramesh/appdata-cleaner/internal/types"
)

// Options wires the model to its collaborators
type Options struct {
	Scanner          *scanner.Scanner
	Cleaner          *cleaner.Cleaner
	Log              *slog.Logger
	PollInterval     time.Duration
	MaxEventsPerTick int
}

// Model represents the application state
type Model struct {
	ctx          context.Context
	scanner      *scanner.Scanner
	cleaner      *cleaner.Cleaner
	log          *slog.Logger
	pollInterval time.Duration
	maxPerTick   int

	state      string // "menu", "scanning", "results", "confirm", "deleting"
	menuChoice int
	spinner    spinner.Model
	progress   progress.Model
	width      int
	height     int
	err        error
	status     string

	// Scan session fields
	target   types.ScanTarget
	session  *scanner.Session
	scanning bool
	percent  float64
	entries  []types.FolderEntry
	recent   []string // Recently found folder names
	outcome  *types.ScanOutcome

	// Results view fields
	choice  int
	offset  int    // Scroll offset for results view
	pending string // folder awaiting delete confirmation
}

// Initialize the model
func InitialModel(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	maxPerTick := opts.MaxEventsPerTick
	if maxPerTick <= 0 {
		maxPerTick = 256
	}
	c := opts.Cleaner
	if c == nil {
		c = cleaner.New()
	}

	return Model{
		ctx:          context.Background(),
		scanner:      opts.Scanner,
		cleaner:      c,
		log:          log,
		pollInterval: interval,
		maxPerTick:   maxPerTick,
		state:        "menu",
		spinner:      s,
		progress:     progress.New(progress.WithDefaultGradient()),
	}
}

// Init starts the spinner
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Run starts the interactive program
func Run(opts Options) error {
	p := tea.NewProgram(InitialModel(opts), tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(Model); ok && m.session != nil {
		m.session.Cancel()
	}
	return err
}
