// Package escape finds text that is wrapped in redundant terminal escapes.
//
// The scanner is a four-state automaton (Outside, OpeningEscape, InText,
// ClosingEscape) that classifies each byte as an escape marker (ESC, 0x1b),
// printable ASCII (0x20-0x7e) or anything else. Opening and closing escapes
// are told apart purely by order: the escapes before a run's text open it and
// the escapes after close it. A run is finalized by the first non-escape byte
// after its closing escapes and is reported when its opening escape count is
// at least the threshold and every byte of its text was printable.
//
// Scanning is a single pass with no lookahead. Malformed or truncated input
// is never an error: runs still open at the end of the stream are dropped.
package escape
