// Package review implements cursor-free motion over a screen snapshot by
// character, word, and line, independent of the application's own cursor,
// porting view.rs's review_cursor_* methods and commands.rs's
// action_review_* boundary/phonetic/attribute behaviors.
package review

import (
	"fmt"
	"strings"

	"github.com/lectorhq/lector/internal/screen"
	"github.com/rivo/uniseg"
)

// Cursor is the review navigator's position into the latest Snapshot,
// independent of the screen's own cursor.
type Cursor struct {
	Row, Col int
}

// Navigator holds the review cursor and optional mark over the current
// Snapshot.
type Navigator struct {
	snap   screen.Snapshot
	cursor Cursor
	mark   *Cursor

	lastAppIndent    int
	lastReviewIndent int
}

// New creates a Navigator positioned at (0,0) of snap.
func New(snap screen.Snapshot) *Navigator {
	return &Navigator{snap: snap}
}

// SetSnapshot updates the snapshot the navigator reads from, clamping the
// cursor into the new bounds (e.g. after a resize).
func (n *Navigator) SetSnapshot(snap screen.Snapshot) {
	n.snap = snap
	if n.cursor.Row >= snap.Rows {
		n.cursor.Row = snap.Rows - 1
	}
	if n.cursor.Col >= snap.Cols {
		n.cursor.Col = snap.Cols - 1
	}
}

// Position returns the current review cursor.
func (n *Navigator) Position() Cursor { return n.cursor }

// SyncToScreenCursor places the review cursor at (row, col), typically the
// screen's own cursor position.
func (n *Navigator) SyncToScreenCursor(row, col int) {
	n.cursor = Cursor{Row: row, Col: col}
}

func firstNonBlankCol(snap screen.Snapshot, row int) int {
	text := snap.RowText(row)
	for i, r := range text {
		if r != ' ' && r != '\t' {
			return i
		}
	}
	return 0
}

func rowIsBlank(snap screen.Snapshot, row int) bool {
	return strings.TrimSpace(snap.RowText(row)) == ""
}

// LinePrev moves to the previous row's first non-whitespace column,
// returning the spoken line and whether a "top" boundary was hit.
func (n *Navigator) LinePrev() (text string, atBoundary bool) {
	if n.cursor.Row == 0 {
		return n.ReadLine(), true
	}
	n.cursor.Row--
	n.cursor.Col = firstNonBlankCol(n.snap, n.cursor.Row)
	return n.ReadLine(), false
}

// LineNext moves to the next row's first non-whitespace column.
func (n *Navigator) LineNext() (text string, atBoundary bool) {
	if n.cursor.Row >= n.snap.Rows-1 {
		return n.ReadLine(), true
	}
	n.cursor.Row++
	n.cursor.Col = firstNonBlankCol(n.snap, n.cursor.Row)
	return n.ReadLine(), false
}

// ReadLine speaks the row under the review cursor, or "blank" if empty.
func (n *Navigator) ReadLine() string {
	text := strings.TrimRight(n.snap.RowText(n.cursor.Row), " ")
	if text == "" {
		return "blank"
	}
	return text
}

// CharPrev moves the review cursor left by one grapheme, skipping
// continuation columns so it always lands on a grapheme start.
func (n *Navigator) CharPrev() (grapheme string, atBoundary bool) {
	if n.cursor.Col == 0 {
		return n.ReadChar(), true
	}
	n.cursor.Col = n.snap.PrevGraphemeStart(n.cursor.Row, n.cursor.Col-1)
	return n.ReadChar(), false
}

// CharNext moves the review cursor right by one grapheme.
func (n *Navigator) CharNext() (grapheme string, atBoundary bool) {
	cell := n.snap.At(n.cursor.Row, n.cursor.Col)
	next := n.cursor.Col + max(cell.Width, 1)
	if next >= n.snap.Cols {
		return n.ReadChar(), true
	}
	n.cursor.Col = next
	return n.ReadChar(), false
}

// ReadChar speaks the grapheme at the review cursor.
func (n *Navigator) ReadChar() string {
	cell := n.snap.At(n.cursor.Row, n.cursor.Col)
	if cell.Grapheme == "" {
		return "blank"
	}
	return cell.Grapheme
}

// ReadCharPhonetic speaks the NATO phonetic alphabet name of the current
// grapheme if it is a single alphabetic letter, else falls back to
// ReadChar — ported from action_review_char_read_phonetic.
func (n *Navigator) ReadCharPhonetic() string {
	g := n.ReadChar()
	if name, ok := phoneticName(g); ok {
		return name
	}
	return g
}

var natoPhonetic = map[rune]string{
	'a': "Alpha", 'b': "Bravo", 'c': "Charlie", 'd': "Delta", 'e': "Echo",
	'f': "Foxtrot", 'g': "Golf", 'h': "Hotel", 'i': "India", 'j': "Juliett",
	'k': "Kilo", 'l': "Lima", 'm': "Mike", 'n': "November", 'o': "Oscar",
	'p': "Papa", 'q': "Quebec", 'r': "Romeo", 's': "Sierra", 't': "Tango",
	'u': "Uniform", 'v': "Victor", 'w': "Whiskey", 'x': "X-ray", 'y': "Yankee",
	'z': "Zulu",
}

func phoneticName(g string) (string, bool) {
	rs := []rune(g)
	if len(rs) != 1 {
		return "", false
	}
	r := rs[0]
	lower := r
	if r >= 'A' && r <= 'Z' {
		lower = r + ('a' - 'A')
	}
	name, ok := natoPhonetic[lower]
	return name, ok
}

// isWordRune reports whether a rune counts as alphanumeric for the purpose
// of "a word must contain at least one alphanumeric grapheme" (spec 4.D).
func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r > 127
}

type wordSpan struct {
	start, end int // byte offsets into the row's rune-joined text
	text       string
	hasAlnum   bool
}

// wordSpans splits text into Unicode word-break segments (UAX #29), each
// tagged with whether it contains at least one alphanumeric grapheme — the
// spec's definition of a navigable "word" (pure-punctuation/whitespace runs
// are their own segments with hasAlnum == false).
func wordSpans(text string) []wordSpan {
	var spans []wordSpan
	state := -1
	remaining := text
	offset := 0
	for len(remaining) > 0 {
		seg, rest, newState := uniseg.FirstWordInString(remaining, state)
		hasAlnum := false
		for _, r := range seg {
			if isWordRune(r) {
				hasAlnum = true
				break
			}
		}
		spans = append(spans, wordSpan{start: offset, end: offset + len(seg), text: seg, hasAlnum: hasAlnum})
		offset += len(seg)
		remaining = rest
		state = newState
	}
	return spans
}

// WordPrev moves to the start of the previous word (a word-break span with
// at least one alphanumeric grapheme) in reading order, crossing row
// boundaries.
func (n *Navigator) WordPrev() (text string, atBoundary bool) {
	row := n.cursor.Row
	spans := wordSpans(n.snap.RowText(row))
	for i := len(spans) - 1; i >= 0; i-- {
		if spans[i].hasAlnum && spans[i].start < n.cursor.Col {
			n.cursor.Col = spans[i].start
			return spans[i].text, false
		}
	}
	if row == 0 {
		return n.ReadWord(), true
	}
	n.cursor.Row--
	prevSpans := wordSpans(n.snap.RowText(n.cursor.Row))
	for i := len(prevSpans) - 1; i >= 0; i-- {
		if prevSpans[i].hasAlnum {
			n.cursor.Col = prevSpans[i].start
			return prevSpans[i].text, false
		}
	}
	n.cursor.Col = 0
	return n.ReadWord(), false
}

// WordNext moves to the start of the next word, crossing row boundaries.
func (n *Navigator) WordNext() (text string, atBoundary bool) {
	row := n.cursor.Row
	spans := wordSpans(n.snap.RowText(row))
	for _, sp := range spans {
		if sp.hasAlnum && sp.start > n.cursor.Col {
			n.cursor.Col = sp.start
			return sp.text, false
		}
	}
	if row >= n.snap.Rows-1 {
		return n.ReadWord(), true
	}
	n.cursor.Row++
	nextSpans := wordSpans(n.snap.RowText(n.cursor.Row))
	for _, sp := range nextSpans {
		if sp.hasAlnum {
			n.cursor.Col = sp.start
			return sp.text, false
		}
	}
	n.cursor.Col = 0
	return n.ReadWord(), false
}

// ReadWord speaks the word span containing the review cursor.
func (n *Navigator) ReadWord() string {
	spans := wordSpans(n.snap.RowText(n.cursor.Row))
	for _, sp := range spans {
		if n.cursor.Col >= sp.start && n.cursor.Col < sp.end {
			return sp.text
		}
	}
	return n.ReadChar()
}

// Top moves to row 0, column 0 — or, if already there, to the nearest word
// (ported from action_review_top's "jump to nearest word if already at the
// boundary" behavior).
func (n *Navigator) Top() string {
	if n.cursor.Row == 0 && n.cursor.Col == 0 {
		_, _ = n.WordNext()
		return "top"
	}
	n.cursor = Cursor{}
	return "top"
}

// Bottom moves to the last row, column 0, or nearest word if already there.
func (n *Navigator) Bottom() string {
	last := n.snap.Rows - 1
	if n.cursor.Row == last && n.cursor.Col == 0 {
		_, _ = n.WordPrev()
		return "bottom"
	}
	n.cursor = Cursor{Row: last}
	return "bottom"
}

// First moves to column 0 of the current row, or nearest word if already
// there.
func (n *Navigator) First() string {
	if n.cursor.Col == 0 {
		_, _ = n.WordNext()
		return "first"
	}
	n.cursor.Col = 0
	return "first"
}

// Last moves to the last column of the current row, or nearest word if
// already there.
func (n *Navigator) Last() string {
	last := n.snap.Cols - 1
	if n.cursor.Col == last {
		_, _ = n.WordPrev()
		return "last"
	}
	n.cursor.Col = last
	return "last"
}

// SetMark records the current review cursor position as the copy anchor.
func (n *Navigator) SetMark() {
	m := n.cursor
	n.mark = &m
}

// Copy extracts text from the mark to the current cursor in row-major
// reading order, trims trailing whitespace per row, and joins rows with
// newlines. The span runs from whichever of mark and cursor comes first to
// the other. Returns false if there is no mark.
func (n *Navigator) Copy() (string, bool) {
	if n.mark == nil {
		return "", false
	}
	from, to := *n.mark, n.cursor
	if from.Row > to.Row || (from.Row == to.Row && from.Col > to.Col) {
		from, to = to, from
	}
	var lines []string
	for r := from.Row; r <= to.Row; r++ {
		text := n.snap.RowText(r)
		startCol, endCol := 0, len([]rune(text))
		if r == from.Row {
			startCol = from.Col
		}
		if r == to.Row {
			endCol = to.Col + 1
		}
		runes := []rune(text)
		if startCol > len(runes) {
			startCol = len(runes)
		}
		if endCol > len(runes) {
			endCol = len(runes)
		}
		if startCol > endCol {
			startCol = endCol
		}
		lines = append(lines, strings.TrimRight(string(runes[startCol:endCol]), " "))
	}
	return strings.Join(lines, "\n"), true
}

// ReadAttributes formats the cell under the review cursor per
// action_review_read_attributes: "Row R col C <fg> [on <bg>] [bold]
// [italic] [underline] [inverse] [wide]".
func (n *Navigator) ReadAttributes() string {
	cell := n.snap.At(n.cursor.Row, n.cursor.Col)
	var b strings.Builder
	fmt.Fprintf(&b, "Row %d col %d %s", n.cursor.Row+1, n.cursor.Col+1, colorName(cell.Attrs.Foreground))
	if !cell.Attrs.Background.IsDefault() {
		fmt.Fprintf(&b, " on %s", colorName(cell.Attrs.Background))
	}
	if cell.Attrs.Bold {
		b.WriteString(" bold")
	}
	if cell.Attrs.Italic {
		b.WriteString(" italic")
	}
	if cell.Attrs.Underline {
		b.WriteString(" underline")
	}
	if cell.Attrs.Reverse {
		b.WriteString(" inverse")
	}
	if cell.Width == 2 {
		b.WriteString(" wide")
	}
	return b.String()
}

func colorName(c screen.Color) string {
	switch c.Type {
	case screen.ColorStandard:
		names := []string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}
		if int(c.Index) < len(names) {
			return names[c.Index]
		}
		return "bright " + names[c.Index%8]
	case screen.ColorPalette:
		return fmt.Sprintf("color %d", c.Index)
	case screen.ColorTrueColor:
		return fmt.Sprintf("rgb %d %d %d", c.R, c.G, c.B)
	default:
		return "default"
	}
}

// IndentationChanged reports whether the row under the review cursor's
// first non-whitespace column has changed since the last call, for the
// "indent N" announcement supplement in SPEC_FULL.md 3.A.
func (n *Navigator) IndentationChanged() (level int, changed bool) {
	level = firstNonBlankCol(n.snap, n.cursor.Row)
	changed = level != n.lastReviewIndent
	n.lastReviewIndent = level
	return level, changed
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
