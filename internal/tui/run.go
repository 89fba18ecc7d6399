package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/colourscan/colourscan/internal/report"
	"github.com/colourscan/colourscan/internal/types"
)

// Options configures an interactive session.
type Options struct {
	Baseline     report.Baseline
	BaselinePath string
	Rescan       func() ([]types.FileResult, error)
	// CachedAt is set when results were loaded from a previous run.
	CachedAt time.Time
}

func Run(results []types.FileResult, opts Options) error {
	m := NewModel(results, opts.Rescan).WithBaseline(opts.Baseline, opts.BaselinePath)
	if !opts.CachedAt.IsZero() {
		m.viewingCached = true
		m.lastScanTime = opts.CachedAt
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
