package screen

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Cursor is the application cursor position and visibility.
type Cursor struct {
	Row, Col int
	Visible  bool
}

// Screen is the (R x C) grid of Cells the VT parser writes into. It is owned
// exclusively by the event loop; no other component may mutate it, per the
// single-threaded ownership model. Consumers that need to hold onto a view
// across iterations take a Snapshot instead.
type Screen struct {
	rows, cols int
	grid       []Cell
	altGrid    []Cell // alternate screen buffer, swapped in on DECSET 1049
	inAlt      bool

	cursor       Cursor
	savedCursor  Cursor
	attrs        Attrs
	generation   uint64

	scrollTop, scrollBottom int // inclusive scroll region, 0-based
	autowrap                bool
	pendingWrap             bool // cursor sits "past" the last column, per xterm wrap semantics
}

// New creates a Screen sized rows x cols, cursor at home, autowrap on.
func New(rows, cols int) *Screen {
	s := &Screen{
		rows: rows,
		cols: cols,
	}
	s.grid = newGrid(rows, cols)
	s.altGrid = newGrid(rows, cols)
	s.scrollTop = 0
	s.scrollBottom = rows - 1
	s.autowrap = true
	s.cursor.Visible = true
	return s
}

func newGrid(rows, cols int) []Cell {
	g := make([]Cell, rows*cols)
	for i := range g {
		g[i] = Blank()
	}
	return g
}

func (s *Screen) idx(row, col int) int { return row*s.cols + col }

// Size returns the current grid dimensions.
func (s *Screen) Size() (rows, cols int) { return s.rows, s.cols }

// Generation is the monotonic counter incremented by every grid or cursor
// mutation. The live reader does not use it; it compares row text.
func (s *Screen) Generation() uint64 { return s.generation }

// Cursor returns the current application cursor.
func (s *Screen) Cursor() Cursor { return s.cursor }

// CellAt returns the cell at (row, col), or a blank cell if out of bounds.
func (s *Screen) CellAt(row, col int) Cell {
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		return Blank()
	}
	return s.grid[s.idx(row, col)]
}

// Resize grows or shrinks the grid to rows x cols, preserving the top-left
// overlap and clamping the cursor into bounds. Invoked when the PTY host
// reports a SIGWINCH-driven resize.
func (s *Screen) Resize(rows, cols int) {
	if rows == s.rows && cols == s.cols {
		return
	}
	newG := newGrid(rows, cols)
	newAlt := newGrid(rows, cols)
	for r := 0; r < min(rows, s.rows); r++ {
		for c := 0; c < min(cols, s.cols); c++ {
			newG[r*cols+c] = s.grid[s.idx(r, c)]
			newAlt[r*cols+c] = s.altGrid[s.idx(r, c)]
		}
	}
	s.rows, s.cols = rows, cols
	s.grid = newG
	s.altGrid = newAlt
	s.scrollTop = 0
	s.scrollBottom = rows - 1
	s.cursor.Row = clamp(s.cursor.Row, 0, rows-1)
	s.cursor.Col = clamp(s.cursor.Col, 0, cols-1)
	s.bumpGeneration()
}

func (s *Screen) bumpGeneration() { s.generation++ }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// GraphemeWidth reports the terminal column width (1 or 2) of a grapheme
// cluster, using go-runewidth on its first rune — the pairing the retrieval
// pack uses everywhere display width matters.
func GraphemeWidth(g string) int {
	if g == "" {
		return 0
	}
	r, _ := utf8DecodeFirst(g)
	w := runewidth.RuneWidth(r)
	if w <= 0 {
		return 1
	}
	return w
}

func utf8DecodeFirst(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return ' ', 1
}

// SetCell writes a grapheme cluster at the cursor, advancing the cursor and
// wrapping per DECAWM, maintaining width-2 atomicity: if a wide grapheme
// does not fit in the remaining columns it advances to the next row first.
func (s *Screen) SetCell(g string) {
	w := GraphemeWidth(g)
	if s.pendingWrap && s.autowrap {
		s.newlineAdvance()
		s.pendingWrap = false
	}
	if s.cursor.Col+w > s.cols {
		if s.autowrap {
			s.newlineAdvance()
		} else {
			s.cursor.Col = s.cols - w
		}
	}
	cell := Cell{Grapheme: g, Width: w, Attrs: s.attrs}
	s.grid[s.idx(s.cursor.Row, s.cursor.Col)] = cell
	if w == 2 && s.cursor.Col+1 < s.cols {
		s.grid[s.idx(s.cursor.Row, s.cursor.Col+1)] = continuationCell()
	}
	s.cursor.Col += w
	if s.cursor.Col >= s.cols {
		s.pendingWrap = true
		s.cursor.Col = s.cols - 1
	}
	s.bumpGeneration()
}

// WriteGraphemes feeds a plain run of printable text (already split from
// control bytes by the parser) through SetCell one grapheme at a time.
func (s *Screen) WriteGraphemes(text string) {
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		s.SetCell(gr.Str())
	}
}

func (s *Screen) newlineAdvance() {
	if s.cursor.Row == s.scrollBottom {
		s.ScrollUp(1)
	} else if s.cursor.Row < s.rows-1 {
		s.cursor.Row++
	}
	s.cursor.Col = 0
}

// CarriageReturn moves the cursor to column 0.
func (s *Screen) CarriageReturn() {
	s.cursor.Col = 0
	s.pendingWrap = false
	s.bumpGeneration()
}

// LineFeed moves the cursor down one row, scrolling the region if at its
// bottom edge.
func (s *Screen) LineFeed() {
	s.newlineAdvance()
	s.pendingWrap = false
	s.bumpGeneration()
}

// Backspace moves the cursor left one column, never past column 0.
func (s *Screen) Backspace() {
	if s.cursor.Col > 0 {
		s.cursor.Col--
	}
	s.pendingWrap = false
	s.bumpGeneration()
}

// MoveCursor sets the cursor to an absolute (row, col), clamped to bounds,
// used by CUP.
func (s *Screen) MoveCursor(row, col int) {
	s.cursor.Row = clamp(row, 0, s.rows-1)
	s.cursor.Col = clamp(col, 0, s.cols-1)
	s.pendingWrap = false
	s.bumpGeneration()
}

// MoveCursorRelative implements CUU/CUD/CUF/CUB: move by delta rows/cols,
// clamped to bounds, never crossing the scroll region on its own (that is
// IND/RI's job).
func (s *Screen) MoveCursorRelative(drow, dcol int) {
	s.cursor.Row = clamp(s.cursor.Row+drow, 0, s.rows-1)
	s.cursor.Col = clamp(s.cursor.Col+dcol, 0, s.cols-1)
	s.pendingWrap = false
	s.bumpGeneration()
}

// SetScrollRegion implements DECSTBM: top/bottom are 0-based inclusive rows.
func (s *Screen) SetScrollRegion(top, bottom int) {
	s.scrollTop = clamp(top, 0, s.rows-1)
	s.scrollBottom = clamp(bottom, s.scrollTop, s.rows-1)
	s.cursor.Row, s.cursor.Col = s.scrollTop, 0
	s.bumpGeneration()
}

// ScrollUp shifts the scroll region's rows up by n, discarding the top n
// rows of the region and filling the bottom n with blanks (IND at the
// bottom margin).
func (s *Screen) ScrollUp(n int) {
	for i := 0; i < n; i++ {
		for r := s.scrollTop; r < s.scrollBottom; r++ {
			copy(s.grid[s.idx(r, 0):s.idx(r, 0)+s.cols], s.grid[s.idx(r+1, 0):s.idx(r+1, 0)+s.cols])
		}
		s.clearRow(s.scrollBottom)
	}
	s.bumpGeneration()
}

// ScrollDown shifts the scroll region's rows down by n (RI at the top
// margin).
func (s *Screen) ScrollDown(n int) {
	for i := 0; i < n; i++ {
		for r := s.scrollBottom; r > s.scrollTop; r-- {
			copy(s.grid[s.idx(r, 0):s.idx(r, 0)+s.cols], s.grid[s.idx(r-1, 0):s.idx(r-1, 0)+s.cols])
		}
		s.clearRow(s.scrollTop)
	}
	s.bumpGeneration()
}

// Index implements IND: linefeed that honors the scroll region regardless
// of the cursor's row, used by the parser for ESC D.
func (s *Screen) Index() {
	if s.cursor.Row == s.scrollBottom {
		s.ScrollUp(1)
	} else {
		s.cursor.Row = clamp(s.cursor.Row+1, 0, s.rows-1)
	}
	s.bumpGeneration()
}

// ReverseIndex implements RI (ESC M): move up, scrolling down at the top
// margin.
func (s *Screen) ReverseIndex() {
	if s.cursor.Row == s.scrollTop {
		s.ScrollDown(1)
	} else {
		s.cursor.Row = clamp(s.cursor.Row-1, 0, s.rows-1)
	}
	s.bumpGeneration()
}

func (s *Screen) clearRow(row int) {
	for c := 0; c < s.cols; c++ {
		s.grid[s.idx(row, c)] = Blank()
	}
}

// EraseMode selects which part of the display/line ED and EL affect.
type EraseMode int

const (
	EraseToEnd   EraseMode = iota // cursor to end of display/line
	EraseToStart                  // start of display/line to cursor
	EraseAll                      // whole display/line
)

// EraseInLine implements EL.
func (s *Screen) EraseInLine(mode EraseMode) {
	row := s.cursor.Row
	switch mode {
	case EraseToEnd:
		for c := s.cursor.Col; c < s.cols; c++ {
			s.grid[s.idx(row, c)] = Blank()
		}
	case EraseToStart:
		for c := 0; c <= s.cursor.Col && c < s.cols; c++ {
			s.grid[s.idx(row, c)] = Blank()
		}
	case EraseAll:
		s.clearRow(row)
	}
	s.bumpGeneration()
}

// EraseInDisplay implements ED.
func (s *Screen) EraseInDisplay(mode EraseMode) {
	switch mode {
	case EraseToEnd:
		s.EraseInLine(EraseToEnd)
		for r := s.cursor.Row + 1; r < s.rows; r++ {
			s.clearRow(r)
		}
	case EraseToStart:
		for r := 0; r < s.cursor.Row; r++ {
			s.clearRow(r)
		}
		s.EraseInLine(EraseToStart)
	case EraseAll:
		for r := 0; r < s.rows; r++ {
			s.clearRow(r)
		}
	}
	s.bumpGeneration()
}

// SetAttrs replaces the pending SGR attribute state future SetCell calls
// will stamp onto cells.
func (s *Screen) SetAttrs(a Attrs) { s.attrs = a }

// Attrs returns the pending SGR attribute state.
func (s *Screen) Attrs() Attrs { return s.attrs }

// SetCursorVisible implements DECTCEM (cursor show/hide).
func (s *Screen) SetCursorVisible(v bool) {
	s.cursor.Visible = v
	if !v {
		// A hidden cursor keeps its position; only Visible changes.
	}
	s.bumpGeneration()
}

// SetAutowrap implements DECAWM.
func (s *Screen) SetAutowrap(v bool) { s.autowrap = v }

// EnterAlternateScreen implements DECSET 1049: swap to a blank alt buffer,
// saving the cursor.
func (s *Screen) EnterAlternateScreen() {
	if s.inAlt {
		return
	}
	s.inAlt = true
	s.savedCursor = s.cursor
	s.grid, s.altGrid = s.altGrid, s.grid
	for i := range s.grid {
		s.grid[i] = Blank()
	}
	s.cursor = Cursor{Visible: true}
	s.bumpGeneration()
}

// ExitAlternateScreen implements DECRST 1049: restore the primary buffer
// and saved cursor.
func (s *Screen) ExitAlternateScreen() {
	if !s.inAlt {
		return
	}
	s.inAlt = false
	s.grid, s.altGrid = s.altGrid, s.grid
	s.cursor = s.savedCursor
	s.bumpGeneration()
}

// InAlternateScreen reports whether the alternate screen buffer is active.
func (s *Screen) InAlternateScreen() bool { return s.inAlt }

// SaveCursor implements DECSC.
func (s *Screen) SaveCursor() { s.savedCursor = s.cursor }

// RestoreCursor implements DECRC.
func (s *Screen) RestoreCursor() {
	s.cursor = s.savedCursor
	s.bumpGeneration()
}
