package actions

import (
	"testing"

	"github.com/lectorhq/lector/internal/clipboard"
	"github.com/lectorhq/lector/internal/review"
	"github.com/lectorhq/lector/internal/screen"
	"github.com/lectorhq/lector/internal/symbols"
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

func newDispatcher(lines []string) *Dispatcher {
	snap := snapshotOf(lines)
	nav := review.New(snap)
	clip := clipboard.New(0)
	d := New(nav, clip, symbols.Default())
	d.SetSnapshot(snap)
	return d
}

func TestHandleUnboundKeyForwardsToPTY(t *testing.T) {
	d := newDispatcher([]string{"hello"})
	consumed := d.Handle("z", []byte("z"))
	assert.False(t, consumed)
}

func TestHandleBoundKeyConsumesAndSpeaks(t *testing.T) {
	d := newDispatcher([]string{"one", "two"})
	d.Nav.SyncToScreenCursor(1, 0)
	var spoken []string
	d.OnSpeak = func(text string, interrupt bool) { spoken = append(spoken, text) }
	consumed := d.Handle("Up", nil)
	assert.True(t, consumed)
	require.NotEmpty(t, spoken)
	assert.Contains(t, spoken[len(spoken)-1], "one")
}

func TestHelpModeSpeaksHelpInsteadOfInvoking(t *testing.T) {
	d := newDispatcher([]string{"one"})
	var spoken []string
	d.OnSpeak = func(text string, interrupt bool) { spoken = append(spoken, text) }
	d.Handle("M-?", nil)
	require.Equal(t, ModeHelp, d.Mode())
	d.Handle("Up", nil)
	require.Equal(t, ModeNormal, d.Mode())
	require.NotEmpty(t, spoken)
	assert.Contains(t, spoken[len(spoken)-1], "review")
}

func TestEnterAndExitTableModeRoundTrips(t *testing.T) {
	d := newDispatcher([]string{"a|b|c", "1|2|3", "4|5|6"})
	d.Nav.SyncToScreenCursor(1, 0)
	d.Handle("M-t", nil)
	require.Equal(t, ModeTable, d.Mode())
	d.Handle("Esc", nil)
	assert.Equal(t, ModeNormal, d.Mode())
}

func TestTableNavigationReadsCells(t *testing.T) {
	d := newDispatcher([]string{"a|b|c", "1|2|3", "4|5|6"})
	d.Nav.SyncToScreenCursor(1, 0)
	d.Handle("M-t", nil)
	var spoken []string
	d.OnSpeak = func(text string, interrupt bool) { spoken = append(spoken, text) }
	d.Handle("l", nil)
	d.Handle("i", nil)
	require.NotEmpty(t, spoken)
	assert.Contains(t, spoken[len(spoken)-1], "2")
}

func TestPassNextKeyForwardsExactlyOneSubsequentKey(t *testing.T) {
	d := newDispatcher([]string{"one"})
	consumed := d.Handle("M-q", nil)
	assert.True(t, consumed)
	consumed = d.Handle("C-l", []byte{0x0c})
	assert.False(t, consumed)
	consumed = d.Handle("C-l", []byte{0x0c})
	assert.True(t, consumed)
}

func TestKeyStringDecodesControlAndMetaBytes(t *testing.T) {
	assert.Equal(t, "C-a", KeyString([]byte{0x01}))
	assert.Equal(t, "Esc", KeyString([]byte{0x1b}))
	assert.Equal(t, "a", KeyString([]byte("a")))
}

func TestStopSpeakingInvokesOnStopSpeakingHook(t *testing.T) {
	d := newDispatcher([]string{"one"})
	stopped := false
	d.OnStopSpeaking = func() { stopped = true }
	d.Handle("C-x", nil)
	assert.True(t, stopped)
}

func TestToggleAutoReadInvokesHookAndSpeaksNewState(t *testing.T) {
	d := newDispatcher([]string{"one"})
	state := true
	d.OnToggleAutoRead = func() bool {
		state = !state
		return state
	}
	var spoken []string
	d.OnSpeak = func(text string, interrupt bool) { spoken = append(spoken, text) }
	d.Handle("M-a", nil)
	require.NotEmpty(t, spoken)
	assert.Contains(t, spoken[len(spoken)-1], "off")
}

func TestClipboardPasteInvokesHookWithCurrentEntry(t *testing.T) {
	d := newDispatcher([]string{"one"})
	d.Clipboard.Push("pasted text")
	var got string
	d.OnClipboardPaste = func(text string) { got = text }
	d.Handle("M-v", nil)
	assert.Equal(t, "pasted text", got)
}

func TestClipboardPasteSpeaksEmptyWhenNoEntries(t *testing.T) {
	d := newDispatcher([]string{"one"})
	var spoken []string
	d.OnSpeak = func(text string, interrupt bool) { spoken = append(spoken, text) }
	d.Handle("M-v", nil)
	require.NotEmpty(t, spoken)
	assert.Contains(t, spoken[len(spoken)-1], "empty")
}

func TestTableWordReadSpeaksWordAtCellStart(t *testing.T) {
	d := newDispatcher([]string{"a|b|c", "fox|2|3", "4|5|6"})
	d.Nav.SyncToScreenCursor(1, 0)
	d.Handle("M-t", nil)
	require.Equal(t, ModeTable, d.Mode())
	var spoken []string
	d.OnSpeak = func(text string, interrupt bool) { spoken = append(spoken, text) }
	d.Handle("M-k", nil)
	require.NotEmpty(t, spoken)
	assert.Contains(t, spoken[len(spoken)-1], "fox")
}

func TestSetAndRemoveBindingRoundTrips(t *testing.T) {
	d := newDispatcher([]string{"x"})
	b := Binding{Action: ActionReviewTop, Help: "go top"}
	d.SetBinding(ModeNormal, "F9", b)
	got, ok := d.Binding(ModeNormal, "F9")
	require.True(t, ok)
	assert.Equal(t, b, got)
	d.RemoveBinding(ModeNormal, "F9")
	_, ok = d.Binding(ModeNormal, "F9")
	assert.False(t, ok)
}
