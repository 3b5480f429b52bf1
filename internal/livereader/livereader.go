// Package livereader implements the diff-and-announce policy that turns
// changes between two screen snapshots into spoken utterances, porting
// auto_read/DiffState from the reference implementation's screen_reader.rs,
// with the fast "new appended text" path from perform.rs's TextReporter.
package livereader

import (
	"strings"

	"github.com/lectorhq/lector/internal/screen"
	"github.com/lectorhq/lector/internal/symbols"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Utterance is one unit of text destined for the speech queue.
type Utterance struct {
	Text      string
	Interrupt bool
}

// diffState mirrors the reference implementation's DiffState classification
// of a row-level diff between two snapshots.
type diffState int

const (
	diffNoChanges diffState = iota
	diffOneDeletion
	diffSingle
	diffMulti
)

// FullRedrawRowThreshold and FullRedrawCursorJump implement this
// specification's decision for the open "overlay/full-screen-redraw
// silence heuristic" question (SPEC_FULL.md section 9): when more than
// this fraction of non-blank rows changed AND the cursor jumped more than
// one row in the same iteration, treat the update as a wholesale redraw
// and stay silent.
const (
	FullRedrawRowThreshold = 0.6
	FullRedrawCursorJump   = 1
)

// Reader computes utterances from successive snapshots.
type Reader struct {
	AutoRead     bool
	SymbolLevel  symbols.Level
	symbolTable  *symbols.Table
	prev         screen.Snapshot
	havePrev     bool
	lastKeyBytes []byte
}

// New creates a Reader using tbl for symbol expansion.
func New(tbl *symbols.Table) *Reader {
	return &Reader{AutoRead: true, SymbolLevel: symbols.LevelSome, symbolTable: tbl}
}

// NoteLastKey records the raw bytes of the most recently forwarded key.
// Observe does not read the recorded bytes, so character echo is spoken
// whether or not it repeats the last key.
func (r *Reader) NoteLastKey(b []byte) {
	r.lastKeyBytes = append(r.lastKeyBytes[:0], b...)
}

// Observe diffs snap against the previously observed snapshot and returns
// the utterances to speak, per spec section 4.C's numbered policy. The
// previous snapshot is always updated, even when auto-read is disabled or
// nothing is said.
func (r *Reader) Observe(snap screen.Snapshot) []Utterance {
	defer func() { r.prev, r.havePrev = snap, true }()

	if !r.AutoRead || !r.havePrev {
		return nil
	}
	prev := r.prev

	if prev.Cursor != snap.Cursor {
		if utters := r.characterEcho(prev, snap); utters != nil {
			return utters
		}
	}
	if sameText(prev, snap) {
		return nil
	}

	if fast, ok := r.tryFastAppendPath(prev, snap); ok {
		return r.emit(fast)
	}

	changed := changedRows(prev, snap)
	if len(changed) == 0 {
		return nil
	}
	if isWholesaleRedraw(prev, snap, changed) {
		return nil
	}

	state, single := classify(prev, snap, changed)
	switch state {
	case diffNoChanges:
		return nil
	case diffSingle:
		return r.emit([]string{graphemeDiffWithinRow(prev, snap, single)})
	default:
		// Scattered changes (a redraw, not a contiguous append): speak only
		// the row the cursor sits on, per spec 4.C step 4.
		text := strings.TrimRight(snap.RowText(snap.Cursor.Row), " ")
		if text == "" {
			return nil
		}
		return r.emit([]string{text})
	}
}

func sameText(a, b screen.Snapshot) bool {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		return false
	}
	for r := 0; r < a.Rows; r++ {
		if a.RowText(r) != b.RowText(r) {
			return false
		}
	}
	return true
}

// characterEcho implements spec 4.C step 2: when the cursor moves and the
// only cell that changed is the one it previously sat on — blank before,
// a single grapheme after — speak just that grapheme rather than falling
// through to a full row diff.
func (r *Reader) characterEcho(prev, snap screen.Snapshot) []Utterance {
	row, col := prev.Cursor.Row, prev.Cursor.Col
	if prev.At(row, col).IsContinuation() || prev.At(row, col).Grapheme != " " {
		return nil
	}
	cur := snap.At(row, col)
	if cur.Grapheme == "" || cur.Grapheme == " " {
		return nil
	}
	if !onlyCellDiffers(prev, snap, row, col) {
		return nil
	}
	return r.emit([]string{cur.Grapheme})
}

// onlyCellDiffers reports whether (row, col) is the sole cell that changed
// between prev and snap.
func onlyCellDiffers(prev, snap screen.Snapshot, row, col int) bool {
	if prev.Rows != snap.Rows || prev.Cols != snap.Cols {
		return false
	}
	for r := 0; r < prev.Rows; r++ {
		if r != row {
			if prev.RowText(r) != snap.RowText(r) {
				return false
			}
			continue
		}
		for c := 0; c < prev.Cols; c++ {
			if c == col {
				continue
			}
			if prev.At(r, c) != snap.At(r, c) {
				return false
			}
		}
	}
	return true
}

// tryFastAppendPath mirrors perform.rs's TextReporter: if the only
// difference between prev and snap is text appended at or below the old
// cursor with no other screen disturbance, return it directly without
// running the general row diff.
func (r *Reader) tryFastAppendPath(prev, snap screen.Snapshot) ([]string, bool) {
	if prev.Rows != snap.Rows || prev.Cols != snap.Cols {
		return nil, false
	}
	startRow := prev.Cursor.Row
	for row := 0; row < startRow; row++ {
		if prev.RowText(row) != snap.RowText(row) {
			return nil, false
		}
	}
	var lines []string
	for row := startRow; row < snap.Rows; row++ {
		oldText := prev.RowText(row)
		newText := snap.RowText(row)
		if oldText == newText {
			continue
		}
		if strings.TrimSpace(oldText) != "" && !strings.HasPrefix(newText, strings.TrimRight(oldText, " ")) {
			return nil, false
		}
		text := strings.TrimRight(newText, " ")
		if text != "" {
			lines = append(lines, text)
		}
	}
	if len(lines) == 0 {
		return nil, false
	}
	return lines, true
}

func changedRows(prev, snap screen.Snapshot) []int {
	var rows []int
	n := snap.Rows
	if prev.Rows < n {
		n = prev.Rows
	}
	for r := 0; r < n; r++ {
		if prev.RowText(r) != snap.RowText(r) {
			rows = append(rows, r)
		}
	}
	for r := n; r < snap.Rows; r++ {
		if strings.TrimSpace(snap.RowText(r)) != "" {
			rows = append(rows, r)
		}
	}
	return rows
}

func isWholesaleRedraw(prev, snap screen.Snapshot, changed []int) bool {
	nonBlank := 0
	for r := 0; r < snap.Rows; r++ {
		if strings.TrimSpace(snap.RowText(r)) != "" {
			nonBlank++
		}
	}
	if nonBlank == 0 {
		return false
	}
	frac := float64(len(changed)) / float64(nonBlank)
	cursorJump := absInt(snap.Cursor.Row - prev.Cursor.Row)
	return frac > FullRedrawRowThreshold && cursorJump > FullRedrawCursorJump
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// classify mirrors DiffState: if exactly one row changed, it's Single and
// the caller should grapheme-diff within that row; otherwise Multi. A
// contiguous deletion is not told apart and is classified as Multi.
func classify(prev, snap screen.Snapshot, changed []int) (diffState, int) {
	if len(changed) == 0 {
		return diffNoChanges, -1
	}
	if len(changed) == 1 {
		return diffSingle, changed[0]
	}
	return diffMulti, -1
}

// graphemeDiffWithinRow extracts only the changed span of one row via a
// grapheme-level diff, rather than re-speaking the whole row, using
// sergi/go-diff in place of the original's similar::TextDiff.
func graphemeDiffWithinRow(prev, snap screen.Snapshot, row int) string {
	oldText := prev.RowText(row)
	newText := snap.RowText(row)
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	var added strings.Builder
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffInsert {
			added.WriteString(d.Text)
		}
	}
	text := strings.TrimRight(added.String(), " ")
	if text == "" {
		text = strings.TrimRight(newText, " ")
	}
	return text
}

func (r *Reader) emit(lines []string) []Utterance {
	var out []Utterance
	for i, line := range lines {
		spoken := r.symbolTable.Process(line, r.SymbolLevel)
		if spoken == "" {
			continue
		}
		out = append(out, Utterance{Text: spoken, Interrupt: i == 0})
	}
	return out
}
