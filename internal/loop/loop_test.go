package loop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectorhq/lector/internal/actions"
	"github.com/lectorhq/lector/internal/clipboard"
	"github.com/lectorhq/lector/internal/livereader"
	"github.com/lectorhq/lector/internal/review"
	"github.com/lectorhq/lector/internal/screen"
	"github.com/lectorhq/lector/internal/speechqueue"
	"github.com/lectorhq/lector/internal/symbols"
)

func newTestLoop() (*Loop, *speechqueue.InProcessDriver) {
	s := screen.New(5, 20)
	p := screen.NewParser(s)
	nav := review.New(s.Snapshot())
	clip := clipboard.New(0)
	tbl := symbols.Default()
	disp := actions.New(nav, clip, tbl)
	driver := speechqueue.NewInProcessDriver()
	q := speechqueue.New(driver, nil)
	disp.OnSpeak = func(text string, interrupt bool) {
		q.Enqueue(speechqueue.Utterance{Text: text, Interrupt: interrupt})
	}
	lr := livereader.New(tbl)

	l := &Loop{
		Screen:     s,
		Parser:     p,
		Dispatcher: disp,
		LiveReader: lr,
		Speech:     q,
	}
	return l, driver
}

func TestRunDiffEnqueuesAppendedText(t *testing.T) {
	l, driver := newTestLoop()
	l.runDiff() // prime with the blank initial snapshot

	l.Parser.Parse([]byte("hello\r\n"))
	l.runDiff()
	l.flushSpeech()

	got := driver.Spoken()
	require.NotEmpty(t, got)
	assert.Contains(t, got[len(got)-1].Text, "hello")
}

func TestHandleKeyConsumedDoesNotTouchPTY(t *testing.T) {
	l, driver := newTestLoop()
	l.runDiff()
	l.handleKey([]byte{0x1b, '?'}) // M-? enters help mode, consumed by dispatcher
	l.flushSpeech()
	assert.Equal(t, actions.ModeHelp, l.Dispatcher.Mode())
	assert.NotEmpty(t, driver.Spoken())
}
