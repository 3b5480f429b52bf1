// Package table detects delimited and fixed-width tables in a Screen
// snapshot and navigates them in table mode, porting the reference
// implementation's table.rs.
package table

import (
	"strings"

	"github.com/lectorhq/lector/internal/screen"
)

// Column is one column's half-open-ish boundary within a row: [Start, End).
type Column struct {
	Start, End int
}

// Model describes a detected (or manually configured) table: its row
// extent, column boundaries, and optional header row.
type Model struct {
	Top, Bottom int
	Columns     []Column
	HeaderRow   int // -1 if none
	Delimiter   byte
}

const noHeader = -1

// Detect finds a table around row in snap, preferring a delimited table
// over a fixed-width one, per spec section 4.E.
func Detect(snap screen.Snapshot, row int) (Model, bool) {
	if m, ok := detectPipeTable(snap, row); ok {
		return m, true
	}
	return detectFixedWidthTable(snap, row)
}

// isSeparatorRow reports whether every character in the row is drawn from
// the table-drawing glyph set, per the reference implementation's
// is_separator_row.
func isSeparatorRow(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	for _, r := range text {
		if !strings.ContainsRune("-=+|_: ", r) {
			return false
		}
	}
	return true
}

func rowHasLetters(text string) bool {
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// isSkippableRow reports whether row is a separator row or a blank row,
// which table navigation glides over rather than lands on.
func isSkippableRow(snap screen.Snapshot, row int) bool {
	text := snap.RowText(row)
	if isSeparatorRow(text) {
		return true
	}
	return strings.TrimSpace(text) == ""
}

// --- delimited table detection -------------------------------------------------

func countDelimiter(text string, delim byte) int {
	return strings.Count(text, string(delim))
}

func pickDelimiter(text string) (byte, bool) {
	for _, d := range []byte{'|', '\t', ','} {
		if countDelimiter(text, d) >= 2 {
			return d, true
		}
	}
	return 0, false
}

func detectPipeTable(snap screen.Snapshot, row int) (Model, bool) {
	text := snap.RowText(row)
	delim, ok := pickDelimiter(text)
	if !ok {
		return Model{}, false
	}
	cols := countDelimiter(text, delim)

	top, bottom := row, row
	for r := row - 1; r >= 0; r-- {
		rt := snap.RowText(r)
		if isSeparatorRow(rt) {
			top = r
			continue
		}
		d, ok2 := pickDelimiter(rt)
		if !ok2 || d != delim || !withinTolerance(countDelimiter(rt, delim), cols) {
			break
		}
		top = r
	}
	for r := row + 1; r < snap.Rows; r++ {
		rt := snap.RowText(r)
		if isSeparatorRow(rt) {
			bottom = r
			continue
		}
		d, ok2 := pickDelimiter(rt)
		if !ok2 || d != delim || !withinTolerance(countDelimiter(rt, delim), cols) {
			break
		}
		bottom = r
	}

	columns := delimiterColumns(text, delim)
	header := detectHeaderRow(snap, top, bottom, func(r int) bool { return isSeparatorRow(snap.RowText(r)) })
	return Model{Top: top, Bottom: bottom, Columns: columns, HeaderRow: header, Delimiter: delim}, true
}

func withinTolerance(a, b int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= 1
}

func delimiterColumns(text string, delim byte) []Column {
	var positions []int
	for i := 0; i < len(text); i++ {
		if text[i] == delim {
			positions = append(positions, i)
		}
	}
	return columnsFromDelimiterPositions(positions, len(text))
}

func columnsFromDelimiterPositions(positions []int, lineLen int) []Column {
	var cols []Column
	start := 0
	for _, p := range positions {
		cols = append(cols, Column{Start: start, End: p})
		start = p + 1
	}
	cols = append(cols, Column{Start: start, End: lineLen})
	return cols
}

// --- fixed-width table detection -----------------------------------------------

func detectFixedWidthTable(snap screen.Snapshot, row int) (Model, bool) {
	if strings.TrimSpace(snap.RowText(row)) == "" {
		return Model{}, false
	}
	top, bottom := expandFixedWidthBlock(snap, row)
	if bottom <= top {
		return Model{}, false
	}
	header := detectHeaderRow(snap, top, bottom, func(r int) bool { return isSeparatorRow(snap.RowText(r)) })

	var cols []Column
	if header != noHeader {
		cols = columnsFromHeaderCuts(snap, header, top, bottom)
	}
	if cols == nil {
		cols = columnsFromBlankRuns(snap, top, bottom)
	}
	if len(cols) < 2 {
		return Model{}, false
	}
	return Model{Top: top, Bottom: bottom, Columns: cols, HeaderRow: header}, true
}

func expandFixedWidthBlock(snap screen.Snapshot, row int) (top, bottom int) {
	top, bottom = row, row
	for r := row - 1; r >= 0; r-- {
		if strings.TrimSpace(snap.RowText(r)) == "" {
			break
		}
		if isSkippableRow(snap, r) {
			top = r
			continue
		}
		top = r
	}
	for r := row + 1; r < snap.Rows; r++ {
		if strings.TrimSpace(snap.RowText(r)) == "" {
			break
		}
		if isSkippableRow(snap, r) {
			bottom = r
			continue
		}
		bottom = r
	}
	return top, bottom
}

// columnsFromHeaderCuts starts a column at each word start in the header
// row; the last column ends at the widest row of the block. The data rows
// are not checked for whitespace at the cut positions. Header-driven cuts
// are preferred over pure blank-run detection (DESIGN.md / SPEC_FULL.md
// 4.E supplement).
func columnsFromHeaderCuts(snap screen.Snapshot, header, top, bottom int) []Column {
	headerText := snap.RowText(header)
	var starts []int
	inGap := true
	for i, r := range headerText {
		if r == ' ' {
			inGap = true
			continue
		}
		if inGap {
			starts = append(starts, i)
			inGap = false
		}
	}
	if len(starts) < 2 {
		return nil
	}
	maxLen := len(headerText)
	for r := top; r <= bottom; r++ {
		if l := len(snap.RowText(r)); l > maxLen {
			maxLen = l
		}
	}
	var cols []Column
	for i, s := range starts {
		end := maxLen
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		cols = append(cols, Column{Start: s, End: end})
	}
	return cols
}

// columnsFromBlankRuns finds columns of whitespace at least 2 characters
// wide that persist at the same position across every row in [top,bottom],
// and cuts columns at the midpoint of each such gap.
func columnsFromBlankRuns(snap screen.Snapshot, top, bottom int) []Column {
	maxLen := 0
	rows := make([]string, 0, bottom-top+1)
	for r := top; r <= bottom; r++ {
		if isSkippableRow(snap, r) {
			continue
		}
		text := snap.RowText(r)
		rows = append(rows, text)
		if len(text) > maxLen {
			maxLen = len(text)
		}
	}
	if len(rows) == 0 || maxLen == 0 {
		return nil
	}
	blank := make([]bool, maxLen)
	for c := 0; c < maxLen; c++ {
		blank[c] = true
		for _, text := range rows {
			if c >= len(text) || text[c] != ' ' {
				blank[c] = false
				break
			}
		}
	}
	var cuts []int
	c := 0
	for c < maxLen {
		if !blank[c] {
			c++
			continue
		}
		start := c
		for c < maxLen && blank[c] {
			c++
		}
		if c-start >= 2 {
			cuts = append(cuts, (start+c)/2)
		}
	}
	if len(cuts) == 0 {
		return nil
	}
	var cols []Column
	prev := 0
	for _, cut := range cuts {
		cols = append(cols, Column{Start: prev, End: cut})
		prev = cut
	}
	cols = append(cols, Column{Start: prev, End: maxLen})
	return cols
}

// detectHeaderRow finds the topmost row of the block if it is immediately
// followed by a separator row, else falls back to the first row in the
// block containing letters.
func detectHeaderRow(snap screen.Snapshot, top, bottom int, isSeparator func(int) bool) int {
	if top+1 <= bottom && isSeparator(top+1) {
		return top
	}
	for r := top; r <= bottom; r++ {
		if rowHasLetters(snap.RowText(r)) {
			return r
		}
	}
	return noHeader
}

// ManualFromHeader builds a Model from user-marked tabstop column starts on
// a chosen header row, for the M-T manual setup flow (spec section 4.E).
func ManualFromHeader(snap screen.Snapshot, headerRow int, tabstops []int) Model {
	top, bottom := expandFixedWidthBlock(snap, headerRow)
	maxLen := 0
	for r := top; r <= bottom; r++ {
		if l := len(snap.RowText(r)); l > maxLen {
			maxLen = l
		}
	}
	var cols []Column
	for i, s := range tabstops {
		end := maxLen
		if i+1 < len(tabstops) {
			end = tabstops[i+1]
		}
		cols = append(cols, Column{Start: s, End: end})
	}
	return Model{Top: top, Bottom: bottom, Columns: cols, HeaderRow: headerRow}
}

// ColumnForCol returns the index of the column containing grid column col,
// or -1 if col falls outside every column.
func (m Model) ColumnForCol(col int) int {
	for i, c := range m.Columns {
		if col >= c.Start && col < c.End {
			return i
		}
	}
	return -1
}

// ClampRow clamps row into [Top, Bottom].
func (m Model) ClampRow(row int) int {
	if row < m.Top {
		return m.Top
	}
	if row > m.Bottom {
		return m.Bottom
	}
	return row
}

// CellText extracts the text of column col in row, trimmed.
func (m Model) CellText(snap screen.Snapshot, row, col int) string {
	if col < 0 || col >= len(m.Columns) {
		return ""
	}
	text := snap.RowText(row)
	c := m.Columns[col]
	if m.Delimiter != 0 {
		return strings.TrimSpace(sliceSafe(text, c.Start, c.End))
	}
	return strings.TrimSpace(sliceSafe(text, c.Start, c.End))
}

func sliceSafe(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end || start > len(s) {
		return ""
	}
	return s[start:end]
}

// HeaderText returns the header cell text for column col, or "" if there is
// no header row.
func (m Model) HeaderText(snap screen.Snapshot, col int) string {
	if m.HeaderRow == noHeader {
		return ""
	}
	return m.CellText(snap, m.HeaderRow, col)
}

// NearestDataRow returns the nearest row to row within [Top,Bottom] that is
// not a skippable separator or blank row.
func (m Model) NearestDataRow(snap screen.Snapshot, row int) int {
	row = m.ClampRow(row)
	if !isSkippableRow(snap, row) {
		return row
	}
	for d := 1; d <= m.Bottom-m.Top; d++ {
		if row+d <= m.Bottom && !isSkippableRow(snap, row+d) {
			return row + d
		}
		if row-d >= m.Top && !isSkippableRow(snap, row-d) {
			return row - d
		}
	}
	return row
}

// PrevDataRow / NextDataRow move to the nearest preceding/following
// non-skippable row, clamped at the table's bounds.
func (m Model) PrevDataRow(snap screen.Snapshot, row int) int {
	for r := row - 1; r >= m.Top; r-- {
		if !isSkippableRow(snap, r) {
			return r
		}
	}
	return row
}

func (m Model) NextDataRow(snap screen.Snapshot, row int) int {
	for r := row + 1; r <= m.Bottom; r++ {
		if !isSkippableRow(snap, r) {
			return r
		}
	}
	return row
}
