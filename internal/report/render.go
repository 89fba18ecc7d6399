package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/colourscan/colourscan/internal/types"
	"github.com/olekukonko/tablewriter"
)

type PrintOptions struct {
	NoColor   bool
	Duration  time.Duration
	Threshold int
}

var (
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	offsetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	countStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// PrintDebug writes the input size of each file followed by its matches in
// a debug-style list:
//
//	File size: 1234 bytes
//	Redundant colour escapes: [{position: 0, escapes: 3, text: "HI"}]
//
// When more than one file is reported each block is preceded by its path.
func PrintDebug(w io.Writer, results []types.FileResult) {
	for _, r := range results {
		if len(results) > 1 {
			fmt.Fprintf(w, "%s:\n", r.Path)
		}
		fmt.Fprintf(w, "File size: %d bytes\n", r.Size)
		fmt.Fprintf(w, "Redundant colour escapes: %s\n", DebugList(r.Matches))
	}
}

// DebugList renders matches as a bracketed, comma-separated list.
func DebugList(ms []types.Match) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = fmt.Sprintf("{position: %d, escapes: %d, text: %s}", m.Position, m.Escapes, strconv.Quote(m.Text))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// PrintText writes one line per match, grouped by file, followed by a
// summary footer.
func PrintText(w io.Writer, results []types.FileResult, opts PrintOptions) {
	style := func(s lipgloss.Style, v string) string {
		if opts.NoColor {
			return v
		}
		return s.Render(v)
	}
	total := 0
	for _, r := range results {
		total += len(r.Matches)
	}
	if total == 0 {
		fmt.Fprintln(w, "No redundant escapes found ✅")
	} else {
		fmt.Fprintf(w, "Matches: %d\n", total)
		for _, r := range results {
			if len(r.Matches) == 0 {
				continue
			}
			fmt.Fprintln(w, style(pathStyle, r.Path))
			for _, m := range r.Matches {
				fmt.Fprintf(w, "  %s  %s  %s\n",
					style(offsetStyle, fmt.Sprintf("@%-10d", m.Position)),
					style(countStyle, fmt.Sprintf("x%-3d", m.Escapes)),
					style(textStyle, strconv.Quote(m.Text)))
			}
		}
	}
	printFooter(w, results, total, opts)
}

// PrintTable writes matches as a bordered table followed by a summary footer.
func PrintTable(w io.Writer, results []types.FileResult, opts PrintOptions) {
	findings := types.Flatten(results)
	if len(findings) == 0 {
		fmt.Fprintln(w, "No redundant escapes found ✅")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("File", "Position", "Escapes", "Text")
		for _, f := range findings {
			_ = table.Append([]string{
				f.Path,
				strconv.Itoa(f.Position),
				strconv.Itoa(f.Escapes),
				strconv.Quote(f.Text),
			})
		}
		_ = table.Render()
	}
	printFooter(w, results, len(findings), opts)
}

func printFooter(w io.Writer, results []types.FileResult, total int, opts PrintOptions) {
	if opts.Duration <= 0 && len(results) == 0 {
		return
	}
	var bytes int
	for _, r := range results {
		bytes += r.Decompressed
	}
	fmt.Fprintln(w)
	if opts.Threshold > 0 {
		fmt.Fprintf(w, "Matches: %d (threshold: %d escapes)\n", total, opts.Threshold)
	} else {
		fmt.Fprintf(w, "Matches: %d\n", total)
	}
	fmt.Fprintf(w, "Files scanned: %d (%d bytes decompressed)\n", len(results), bytes)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
}

// WriteJSON writes results as indented JSON. Files without matches carry an
// empty list rather than null.
func WriteJSON(w io.Writer, results []types.FileResult) error {
	out := make([]types.FileResult, len(results))
	for i, r := range results {
		if r.Matches == nil {
			r.Matches = []types.Match{}
		}
		out[i] = r
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
