package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/colourscan/colourscan/internal/report"
	"github.com/colourscan/colourscan/internal/types"
)

var (
	paneBorderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	emptyTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Align(lipgloss.Center)

	popupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(1, 4)
)

// Sort orders for the match table.
const (
	SortDefault  = ""
	SortEscapes  = "escapes"
	SortPath     = "path"
	SortPosition = "position"
)

type (
	statusMsg  string
	resultsMsg []types.FileResult
)

// Model is the state of the match viewer.
type Model struct {
	table       table.Model
	viewport    viewport.Model
	spinner     spinner.Model
	searchInput textinput.Model

	results   []types.FileResult
	findings  []types.Finding
	visible   []int // indices into findings after search and sort
	baselined map[string]bool

	prefs        Prefs
	baselinePath string
	rescanFunc   func() ([]types.FileResult, error)

	quitting        bool
	ready           bool
	scanning        bool
	showHelp        bool
	searchMode      bool
	searchQuery     string
	sortColumn      string
	viewingCached   bool
	lastScanTime    time.Time
	width           int
	height          int
	statusMessage   string
	statusExpiresAt time.Time
}

// NewModel builds a viewer over results. rescanFunc may be nil, in which
// case rescanning is disabled.
func NewModel(results []types.FileResult, rescanFunc func() ([]types.FileResult, error)) Model {
	t := table.New(
		table.WithColumns(columns(100)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	ti := textinput.New()
	ti.Placeholder = "Search path or text..."
	ti.CharLimit = 100
	ti.Width = 50
	ti.Prompt = "/ "

	m := Model{
		table:        t,
		viewport:     viewport.New(100, 8),
		spinner:      sp,
		searchInput:  ti,
		baselined:    map[string]bool{},
		prefs:        LoadPrefs(),
		rescanFunc:   rescanFunc,
		lastScanTime: time.Now(),
	}
	m.setResults(results)
	m.statusMessage = "q: quit | ?: help | /: search | c: copy | b: baseline"
	return m
}

// WithBaseline marks matches already present in base and makes `b` write
// new entries to path.
func (m Model) WithBaseline(base report.Baseline, path string) Model {
	for k := range base.Items {
		m.baselined[k] = true
	}
	m.baselinePath = path
	m.rebuildRows()
	return m
}

func (m *Model) setResults(results []types.FileResult) {
	m.results = results
	m.findings = types.Flatten(results)
	m.rebuildRows()
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func columns(width int) []table.Column {
	text := width - 40 - 12 - 9 - 10
	if text < 10 {
		text = 10
	}
	return []table.Column{
		{Title: "Path", Width: 40},
		{Title: "Position", Width: 12},
		{Title: "Escapes", Width: 9},
		{Title: "Text", Width: text},
	}
}

func (m *Model) rebuildRows() {
	m.visible = make([]int, 0, len(m.findings))
	q := strings.ToLower(m.searchQuery)
	for i, f := range m.findings {
		if q != "" && !strings.Contains(strings.ToLower(f.Path), q) && !strings.Contains(strings.ToLower(f.Text), q) {
			continue
		}
		m.visible = append(m.visible, i)
	}
	switch m.sortColumn {
	case SortEscapes:
		sort.SliceStable(m.visible, func(a, b int) bool {
			return m.findings[m.visible[a]].Escapes > m.findings[m.visible[b]].Escapes
		})
	case SortPath:
		sort.SliceStable(m.visible, func(a, b int) bool {
			return m.findings[m.visible[a]].Path < m.findings[m.visible[b]].Path
		})
	case SortPosition:
		sort.SliceStable(m.visible, func(a, b int) bool {
			return m.findings[m.visible[a]].Position < m.findings[m.visible[b]].Position
		})
	}

	rows := make([]table.Row, len(m.visible))
	for i, idx := range m.visible {
		f := m.findings[idx]
		path := f.Path
		if m.baselined[report.Key(f.Path, f.Match)] {
			path = "(b) " + path
		}
		rows[i] = table.Row{path, strconv.Itoa(f.Position), strconv.Itoa(f.Escapes), m.displayText(f.Text)}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
	m.updateViewportContent()
}

func (m Model) displayText(s string) string {
	if m.prefs.QuoteText {
		return strconv.Quote(s)
	}
	return s
}

func (m *Model) cycleSortColumn() {
	order := []string{SortDefault, SortEscapes, SortPath, SortPosition}
	for i, c := range order {
		if c == m.sortColumn {
			m.sortColumn = order[(i+1)%len(order)]
			break
		}
	}
	m.rebuildRows()
}

func (m Model) selected() *types.Finding {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.visible) {
		return nil
	}
	f := m.findings[m.visible[c]]
	return &f
}

func (m Model) fileFor(path string) *types.FileResult {
	for i := range m.results {
		if m.results[i].Path == path {
			return &m.results[i]
		}
	}
	return nil
}

func (m *Model) updateViewportContent() {
	f := m.selected()
	if f == nil {
		m.viewport.SetContent("")
		return
	}
	detail := struct {
		types.Finding
		Length    int          `json:"length"`
		Baselined bool         `json:"baselined"`
		File      *types.Stats `json:"file_stats,omitempty"`
	}{Finding: *f, Length: f.Escapes + len(f.Text), Baselined: m.baselined[report.Key(f.Path, f.Match)]}
	if fr := m.fileFor(f.Path); fr != nil {
		detail.File = &fr.Stats
	}
	b, _ := json.MarshalIndent(detail, "", "  ")
	m.viewport.SetContent(highlightJSON(string(b)))
	m.viewport.GotoTop()
}

func highlightJSON(code string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		return code
	}
	lexer = chroma.Coalesce(lexer)
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return code
	}
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

func (m *Model) setStatus(s string, d time.Duration) {
	m.statusMessage = s
	m.statusExpiresAt = time.Now().Add(d)
}

func (m *Model) rescan() tea.Cmd {
	fn := m.rescanFunc
	return func() tea.Msg {
		if fn == nil {
			return statusMsg("Rescan not available")
		}
		results, err := fn()
		if err != nil {
			return statusMsg(fmt.Sprintf("Scan error: %v", err))
		}
		return resultsMsg(results)
	}
}

func (m *Model) resize() {
	m.table.SetColumns(columns(m.width - 4))
	tableHeight := (m.height - 6) / 2
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table.SetHeight(tableHeight)
	m.viewport.Width = m.width - 2
	m.viewport.Height = max(m.height-tableHeight-8, 3)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resize()
		m.updateViewportContent()
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		if !m.statusExpiresAt.IsZero() && time.Now().After(m.statusExpiresAt) {
			m.statusMessage = ""
			m.statusExpiresAt = time.Time{}
		}
		return m, cmd

	case statusMsg:
		m.scanning = false
		m.setStatus(string(msg), 4*time.Second)
		return m, nil

	case resultsMsg:
		m.scanning = false
		m.viewingCached = false
		m.lastScanTime = time.Now()
		m.setResults(msg)
		m.setStatus(fmt.Sprintf("Rescan complete: %d matches", len(m.findings)), 4*time.Second)
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.searchMode {
			switch msg.String() {
			case "enter":
				m.searchMode = false
				m.searchInput.Blur()
				return m, nil
			case "esc":
				m.searchMode = false
				m.searchInput.Blur()
				m.searchInput.SetValue("")
				m.searchQuery = ""
				m.rebuildRows()
				return m, nil
			default:
				m.searchInput, cmd = m.searchInput.Update(msg)
				m.searchQuery = m.searchInput.Value()
				m.rebuildRows()
				return m, cmd
			}
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "/":
			m.searchMode = true
			m.searchInput.SetValue(m.searchQuery)
			m.searchInput.Focus()
			return m, textinput.Blink
		case "esc":
			if m.searchQuery != "" {
				m.searchQuery = ""
				m.searchInput.SetValue("")
				m.rebuildRows()
				m.setStatus("Search cleared", 3*time.Second)
			}
			return m, nil
		case "s":
			m.cycleSortColumn()
			if m.sortColumn == SortDefault {
				m.setStatus("Sort: default order", 3*time.Second)
			} else {
				m.setStatus("Sort by "+m.sortColumn, 3*time.Second)
			}
			return m, nil
		case "x":
			m.prefs.QuoteText = !m.prefs.QuoteText
			_ = SavePrefs(m.prefs)
			m.rebuildRows()
			return m, nil
		case "c":
			return m, m.copyText()
		case "i":
			return m, m.ignoreFile()
		case "y":
			return m, m.copyFinding()
		case "b":
			cmd := m.addToBaseline()
			m.rebuildRows()
			return m, cmd
		case "r":
			if m.rescanFunc != nil && !m.scanning {
				m.scanning = true
				return m, tea.Batch(m.spinner.Tick, m.rescan())
			}
			m.setStatus("Rescan not available", 3*time.Second)
			return m, nil
		case "pgdown", "pgup", "ctrl+d", "ctrl+u":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		m.table, cmd = m.table.Update(msg)
		m.updateViewportContent()
		return m, cmd
	}
	return m, nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if m.scanning {
		box := popupStyle.Width(40).Align(lipgloss.Center).
			Render(fmt.Sprintf("%s  Rescanning...\n\nPlease wait", m.spinner.View()))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popupStyle.Render(helpText()))
	}

	var bytesScanned int
	for _, r := range m.results {
		bytesScanned += r.Decompressed
	}
	stats := fmt.Sprintf("Matches: %d/%d  |  Files: %d  |  Bytes: %d",
		len(m.visible), len(m.findings), len(m.results), bytesScanned)
	if m.sortColumn != SortDefault {
		stats += "  [sort: " + m.sortColumn + "]"
	}
	if m.searchQuery != "" {
		stats += fmt.Sprintf("  [search: %q]", m.searchQuery)
	}
	header := lipgloss.NewStyle().Width(m.width).Padding(0, 2).
		Background(lipgloss.Color("237")).Render(titleStyle.Render("colourscan") + "  " + stats)

	tablePane := paneBorderStyle.Width(m.width - 2).Render(m.table.View())

	var detail string
	if len(m.visible) == 0 {
		msg := "No redundant escapes found."
		if len(m.findings) > 0 {
			msg = "No matches for search.\n\nPress Esc to clear"
		}
		detail = lipgloss.Place(m.width-2, m.viewport.Height, lipgloss.Center, lipgloss.Center, emptyTextStyle.Render(msg))
	} else {
		detail = m.viewport.View()
	}
	detailPane := paneBorderStyle.Width(m.width - 2).Render(detail)

	var bottom string
	if m.searchMode {
		bottom = lipgloss.NewStyle().Width(m.width).Background(lipgloss.Color("235")).
			Render(m.searchInput.View() + fmt.Sprintf(" (%d matches)", len(m.visible)))
	} else {
		when := "Scanned: " + formatDuration(time.Since(m.lastScanTime)) + " ago"
		if m.viewingCached {
			when = "Cached: " + m.lastScanTime.Format("Jan 2, 15:04")
		}
		gap := max(m.width-4-lipgloss.Width(m.statusMessage)-lipgloss.Width(when), 1)
		bottom = statusStyle.Width(m.width).Padding(0, 2).Render(m.statusMessage + strings.Repeat(" ", gap) + when)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, tablePane, detailPane, bottom)
}

func helpText() string {
	rows := [][2]string{
		{"j / k", "Move down / up"},
		{"/", "Search path or text"},
		{"Esc", "Clear search"},
		{"s", "Cycle sort column"},
		{"x", "Toggle quoted text"},
		{"c / y", "Copy text / full match"},
		{"b", "Add match to baseline"},
		{"i", "Ignore the match's file"},
		{"r", "Rescan"},
		{"PgUp/PgDn", "Scroll details"},
		{"q", "Quit"},
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard Shortcuts") + "\n\n")
	for _, r := range rows {
		b.WriteString(keyStyle.Render(fmt.Sprintf("%-12s", r[0])) + r[1] + "\n")
	}
	return b.String()
}
