package escape

import "github.com/colourscan/colourscan/internal/types"

// Marker is the byte that introduces a color/style escape sequence (ESC).
const Marker byte = 0x1b

// State is the position of a Scanner within the current run.
type State uint8

const (
	// Outside is the initial state: not inside any escape or text run.
	Outside State = iota
	// OpeningEscape is inside the escapes that precede a run's text.
	OpeningEscape
	// InText is accumulating the run's text body.
	InText
	// ClosingEscape is inside the escapes that follow the text body.
	ClosingEscape
)

func (s State) String() string {
	switch s {
	case Outside:
		return "outside"
	case OpeningEscape:
		return "opening-escape"
	case InText:
		return "in-text"
	case ClosingEscape:
		return "closing-escape"
	default:
		return "unknown"
	}
}

// IsPrintable reports whether b is printable ASCII (0x20 through 0x7e).
func IsPrintable(b byte) bool { return b >= 0x20 && b <= 0x7e }

// Scanner walks a byte stream once and records every run whose opening
// escape count reaches the threshold. The zero value is not usable; call New.
//
// A Scanner is not safe for concurrent use.
type Scanner struct {
	threshold int

	state   State
	offset  int
	start   int
	escapes int
	valid   bool
	text    []byte

	matches []types.Match
	stats   types.Stats
}

// New returns a Scanner that reports runs with at least threshold opening
// escape markers.
func New(threshold int) *Scanner {
	return &Scanner{threshold: threshold, valid: true}
}

// Scan runs a fresh Scanner over data and returns the matches found.
// It never fails; runs left unfinished at the end of data are dropped.
func Scan(data []byte, threshold int) []types.Match {
	m, _ := ScanWithStats(data, threshold)
	return m
}

// ScanWithStats is like Scan but also returns how every run was classified.
func ScanWithStats(data []byte, threshold int) ([]types.Match, types.Stats) {
	s := New(threshold)
	_, _ = s.Write(data)
	return s.Matches(), s.Stats()
}

// Write feeds p to the scanner. It always consumes all of p and never
// returns an error, so a Scanner can sit at the end of an io.Copy.
func (s *Scanner) Write(p []byte) (int, error) {
	for _, b := range p {
		s.step(b)
	}
	return len(p), nil
}

// WriteByte feeds a single byte to the scanner.
func (s *Scanner) WriteByte(b byte) error {
	s.step(b)
	return nil
}

// State returns the current automaton state.
func (s *Scanner) State() State { return s.state }

// Threshold returns the minimum opening escape count this scanner reports.
func (s *Scanner) Threshold() int { return s.threshold }

// Matches returns a copy of the runs finalized so far.
func (s *Scanner) Matches() []types.Match {
	if len(s.matches) == 0 {
		return nil
	}
	out := make([]types.Match, len(s.matches))
	copy(out, s.matches)
	return out
}

// Stats returns classification counters for the bytes seen so far.
// Unterminated is set while a run is still open.
func (s *Scanner) Stats() types.Stats {
	st := s.stats
	st.Bytes = s.offset
	st.Unterminated = s.state != Outside
	return st
}

// Reset discards all state so the scanner can be reused for a new stream.
func (s *Scanner) Reset() {
	*s = Scanner{threshold: s.threshold, valid: true, text: s.text[:0]}
}

func (s *Scanner) step(b byte) {
	switch s.state {
	case Outside:
		s.outside(b)
	case OpeningEscape:
		switch {
		case b == Marker:
			s.escapes++
			s.stats.Markers++
		case IsPrintable(b):
			s.text = append(s.text, b)
			s.state = InText
		default:
			s.valid = false
			s.state = InText
		}
	case InText:
		switch {
		case b == Marker:
			s.stats.Markers++
			s.state = ClosingEscape
		case IsPrintable(b):
			s.text = append(s.text, b)
		default:
			s.valid = false
		}
	case ClosingEscape:
		if b == Marker {
			s.stats.Markers++
			break
		}
		s.finalize()
		// the byte that ends a run may start the next one
		s.outside(b)
	}
	s.offset++
}

func (s *Scanner) outside(b byte) {
	switch {
	case b == Marker:
		s.escapes++
		s.stats.Markers++
		if s.escapes == 1 {
			s.start = s.offset
		}
		s.state = OpeningEscape
	case IsPrintable(b) && s.escapes >= 1:
		s.text = append(s.text, b)
		s.state = InText
	}
}

func (s *Scanner) finalize() {
	s.stats.Completed++
	switch {
	case !s.valid || len(s.text) == 0:
		s.stats.InvalidText++
	case s.escapes < s.threshold:
		s.stats.BelowThreshold++
	default:
		s.stats.Emitted++
		s.matches = append(s.matches, types.Match{
			Position: s.start,
			Escapes:  s.escapes,
			Text:     string(s.text),
		})
	}
	s.state = Outside
	s.escapes = 0
	s.start = 0
	s.valid = true
	s.text = s.text[:0]
}
