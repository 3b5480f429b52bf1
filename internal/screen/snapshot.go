package screen

// Snapshot is an immutable copy of a Screen taken between event-loop
// iterations. The live reader keeps the previous Snapshot around to diff
// against the next one; review and table navigation index into whichever
// Snapshot is current. Snapshots are passed by value to any consumer, so no
// component ever touches the live Screen concurrently.
type Snapshot struct {
	Rows, Cols int
	Cells      []Cell // row-major, len == Rows*Cols
	Cursor     Cursor
	Generation uint64
}

// Snapshot copies the Screen's current grid and cursor into an immutable
// value.
func (s *Screen) Snapshot() Snapshot {
	cells := make([]Cell, len(s.grid))
	copy(cells, s.grid)
	return Snapshot{
		Rows:       s.rows,
		Cols:       s.cols,
		Cells:      cells,
		Cursor:     s.cursor,
		Generation: s.generation,
	}
}

// At returns the cell at (row, col), or a blank cell if out of bounds.
func (sn Snapshot) At(row, col int) Cell {
	if row < 0 || row >= sn.Rows || col < 0 || col >= sn.Cols {
		return Blank()
	}
	return sn.Cells[row*sn.Cols+col]
}

// Row returns the grapheme clusters of a row in column order, omitting
// continuation placeholders, so callers never see a half cell.
func (sn Snapshot) Row(row int) []Cell {
	if row < 0 || row >= sn.Rows {
		return nil
	}
	out := make([]Cell, 0, sn.Cols)
	for c := 0; c < sn.Cols; c++ {
		cell := sn.At(row, c)
		if cell.IsContinuation() {
			continue
		}
		out = append(out, cell)
	}
	return out
}

// RowText renders a row as plain text, one rune sequence per grapheme,
// suitable for diffing or speaking.
func (sn Snapshot) RowText(row int) string {
	var b []byte
	for _, cell := range sn.Row(row) {
		b = append(b, cell.Grapheme...)
	}
	return string(b)
}

// StartOfGrapheme reports whether (row, col) is the start of a grapheme
// (not a width-2 continuation column) — the invariant the review cursor
// must always satisfy.
func (sn Snapshot) StartOfGrapheme(row, col int) bool {
	return !sn.At(row, col).IsContinuation()
}

// PrevGraphemeStart walks left from (row, col) to the nearest column that
// starts a grapheme, never leaving the row.
func (sn Snapshot) PrevGraphemeStart(row, col int) int {
	for col > 0 && sn.At(row, col).IsContinuation() {
		col--
	}
	return col
}
