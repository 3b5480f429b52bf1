package review

import (
	"testing"

	"github.com/lectorhq/lector/internal/screen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(lines []string) screen.Snapshot {
	cols := 0
	for _, l := range lines {
		if len(l) > cols {
			cols = len(l)
		}
	}
	s := screen.New(len(lines), cols+1)
	p := screen.NewParser(s)
	for i, l := range lines {
		p.Parse([]byte(l))
		if i < len(lines)-1 {
			p.Parse([]byte("\r\n"))
		}
	}
	return s.Snapshot()
}

func TestLinePrevNextReadsRows(t *testing.T) {
	snap := snapshotOf([]string{"one", "two"})
	n := New(snap)
	n.SyncToScreenCursor(1, 0)

	text, atBoundary := n.LinePrev()
	assert.False(t, atBoundary)
	assert.Equal(t, "one", text)

	_, atBoundary = n.LinePrev()
	assert.True(t, atBoundary)
}

func TestCharPrevNeverLandsOnContinuationColumn(t *testing.T) {
	snap := snapshotOf([]string{"你好"})
	n := New(snap)
	n.SyncToScreenCursor(0, 2) // start of second wide grapheme
	_, _ = n.CharPrev()
	pos := n.Position()
	require.True(t, snap.StartOfGrapheme(pos.Row, pos.Col))
}

func TestTopAtBoundaryJumpsToNearestWord(t *testing.T) {
	snap := snapshotOf([]string{"  hello world"})
	n := New(snap)
	got := n.Top()
	assert.Equal(t, "top", got)
	assert.Equal(t, 2, n.Position().Col) // jumped onto "hello"
}

func TestSetMarkAndCopyExtractsRegion(t *testing.T) {
	snap := snapshotOf([]string{"hello world"})
	n := New(snap)
	n.SetMark()
	n.SyncToScreenCursor(0, 4)
	text, ok := n.Copy()
	require.True(t, ok)
	assert.Equal(t, "hello", text)
}

func TestCopyOrdersMarkAfterCursor(t *testing.T) {
	snap := snapshotOf([]string{"hello"})
	n := New(snap)
	n.SyncToScreenCursor(0, 4)
	n.SetMark()
	n.SyncToScreenCursor(0, 0)
	text, ok := n.Copy()
	require.True(t, ok)
	assert.Equal(t, "hello", text)
}

func TestReadCharPhoneticSpeaksNATOName(t *testing.T) {
	snap := snapshotOf([]string{"abc"})
	n := New(snap)
	assert.Equal(t, "Alpha", n.ReadCharPhonetic())
}
