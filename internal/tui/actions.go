package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/colourscan/colourscan/internal/files"
	"github.com/colourscan/colourscan/internal/report"
)

// copyText copies the selected match's text to the clipboard.
func (m Model) copyText() tea.Cmd {
	f := m.selected()
	if f == nil {
		return func() tea.Msg { return statusMsg("No match selected") }
	}
	if err := clipboard.WriteAll(f.Text); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Clipboard error: %v", err)) }
	}
	return func() tea.Msg { return statusMsg("Copied text to clipboard") }
}

// copyFinding copies the full record of the selected match.
func (m Model) copyFinding() tea.Cmd {
	f := m.selected()
	if f == nil {
		return func() tea.Msg { return statusMsg("No match selected") }
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Path: %s\n", f.Path)
	fmt.Fprintf(&sb, "Position: %d\n", f.Position)
	fmt.Fprintf(&sb, "Escapes: %d\n", f.Escapes)
	fmt.Fprintf(&sb, "Text: %q\n", f.Text)
	if err := clipboard.WriteAll(sb.String()); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Clipboard error: %v", err)) }
	}
	return func() tea.Msg { return statusMsg("Copied match details to clipboard") }
}

// addToBaseline marks the selected match as known and persists the baseline
// when a baseline path is configured.
func (m *Model) addToBaseline() tea.Cmd {
	f := m.selected()
	if f == nil {
		return func() tea.Msg { return statusMsg("No match selected") }
	}
	key := report.Key(f.Path, f.Match)
	if m.baselined[key] {
		return func() tea.Msg { return statusMsg("Already baselined") }
	}
	m.baselined[key] = true
	if m.baselinePath == "" {
		return func() tea.Msg { return statusMsg("Baselined for this session") }
	}
	base, err := report.LoadBaseline(m.baselinePath)
	if err != nil {
		base = report.Baseline{Items: map[string]bool{}}
	}
	base.Items[key] = true
	path := m.baselinePath
	if err := base.Save(path); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Baseline error: %v", err)) }
	}
	return func() tea.Msg { return statusMsg("Added to " + path) }
}

// ignoreFile adds the selected match's file to the ignore file next to it so
// directory scans skip it from the next rescan on.
func (m Model) ignoreFile() tea.Cmd {
	f := m.selected()
	if f == nil {
		return func() tea.Msg { return statusMsg("No match selected") }
	}
	dir, name := filepath.Split(f.Path)
	if err := files.AppendIgnore(dir, name); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Ignore error: %v", err)) }
	}
	return func() tea.Msg {
		return statusMsg(fmt.Sprintf("Added %s to %s", name, filepath.Join(dir, files.IgnoreFileName)))
	}
}
