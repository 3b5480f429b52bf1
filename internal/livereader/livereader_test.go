package livereader

import (
	"testing"

	"github.com/lectorhq/lector/internal/screen"
	"github.com/lectorhq/lector/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScreen(rows, cols int) (*screen.Screen, *screen.Parser) {
	s := screen.New(rows, cols)
	return s, screen.NewParser(s)
}

func TestObserveWithNoPriorSnapshotSaysNothing(t *testing.T) {
	s, p := newScreen(5, 20)
	p.Parse([]byte("hello"))
	r := New(symbols.Default())

	got := r.Observe(s.Snapshot())
	assert.Nil(t, got)
}

func TestObserveSpeaksAppendedText(t *testing.T) {
	s, p := newScreen(5, 20)
	r := New(symbols.Default())
	r.Observe(s.Snapshot())

	p.Parse([]byte("hello"))
	got := r.Observe(s.Snapshot())

	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Text)
	assert.True(t, got[0].Interrupt)
}

func TestObserveSaysNothingWhenTextIsUnchanged(t *testing.T) {
	s, p := newScreen(5, 20)
	p.Parse([]byte("steady"))
	r := New(symbols.Default())
	r.Observe(s.Snapshot())

	s.MoveCursor(0, 2)
	got := r.Observe(s.Snapshot())
	assert.Nil(t, got)
}

func TestObserveSpeaksCharacterEchoOnPureCursorMove(t *testing.T) {
	s, p := newScreen(5, 20)
	r := New(symbols.Default())

	p.Parse([]byte("ab"))
	s.MoveCursor(0, 2)
	r.Observe(s.Snapshot())

	s.MoveCursor(0, 2)
	p.Parse([]byte("c"))
	got := r.Observe(s.Snapshot())

	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Text)
}

func TestObserveSpeaksOnlyChangedSpanWithinASingleRow(t *testing.T) {
	s, p := newScreen(5, 20)
	p.Parse([]byte("the quick fox"))
	r := New(symbols.Default())
	r.Observe(s.Snapshot())

	s.MoveCursor(0, 4)
	p.Parse([]byte("zesty")) // shares no letters with "quick", so the grapheme
	// diff is unambiguous: delete "quick", insert "zesty".
	got := r.Observe(s.Snapshot())

	require.Len(t, got, 1)
	assert.Equal(t, "zesty", got[0].Text)
}

func TestObserveSpeaksOnlyTheCursorRowOnScatteredChanges(t *testing.T) {
	s, p := newScreen(5, 20)
	p.Parse([]byte("row one\r\nrow two"))
	r := New(symbols.Default())
	r.Observe(s.Snapshot())

	s.MoveCursor(0, 0)
	p.Parse([]byte("ROW ONE"))
	s.MoveCursor(1, 0)
	p.Parse([]byte("ROW TWO"))
	got := r.Observe(s.Snapshot())

	// Both rows changed, but neither the fast-append path nor the
	// wholesale-redraw heuristic applies (the cursor ends on the row it
	// started on), so
	// only the row the cursor ends up on is spoken.
	require.Len(t, got, 1)
	assert.Equal(t, "ROW TWO", got[0].Text)
	assert.True(t, got[0].Interrupt)
}

func TestObserveStaysSilentOnWholesaleRedraw(t *testing.T) {
	s, p := newScreen(10, 30)
	for row := 0; row < 8; row++ {
		s.MoveCursor(row, 0)
		p.Parse([]byte("original content here"))
	}
	r := New(symbols.Default())
	r.Observe(s.Snapshot())

	for row := 0; row < 8; row++ {
		s.MoveCursor(row, 0)
		p.Parse([]byte("totally different screen"))
	}
	s.MoveCursor(9, 0)
	got := r.Observe(s.Snapshot())
	assert.Nil(t, got)
}

func TestObserveIgnoredWhenAutoReadDisabled(t *testing.T) {
	s, p := newScreen(5, 20)
	r := New(symbols.Default())
	r.AutoRead = false
	r.Observe(s.Snapshot())

	p.Parse([]byte("hello"))
	got := r.Observe(s.Snapshot())
	assert.Nil(t, got)
}
