package script

import (
	"testing"

	"github.com/lectorhq/lector/internal/actions"
	"github.com/lectorhq/lector/internal/clipboard"
	"github.com/lectorhq/lector/internal/review"
	"github.com/lectorhq/lector/internal/screen"
	"github.com/lectorhq/lector/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsTableSetAndGetRoundTrips(t *testing.T) {
	o := &Options{SpeechRate: 1.0}
	tbl := NewOptionsTable(o)

	require.NoError(t, tbl.Set("speech_rate", 1.5))
	v, err := tbl.Get("speech_rate")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
}

func TestOptionsTableRejectsInvalidSymbolLevel(t *testing.T) {
	o := &Options{}
	tbl := NewOptionsTable(o)
	err := tbl.Set("symbol_level", "extreme")
	assert.Error(t, err)
}

func TestOptionsTableUnknownKeyErrors(t *testing.T) {
	o := &Options{}
	tbl := NewOptionsTable(o)
	_, err := tbl.Get("nonexistent")
	assert.Error(t, err)
}

func TestSymbolTableSetGetRemove(t *testing.T) {
	st := NewSymbolTable(symbols.NewTable())
	st.Set("!", symbols.Record{Replacement: "bang", Level: symbols.LevelAll})
	rec, ok := st.Get("!")
	require.True(t, ok)
	assert.Equal(t, "bang", rec.Replacement)
	st.Remove("!")
	_, ok = st.Get("!")
	assert.False(t, ok)
}

func TestBindingTableSetGetRemove(t *testing.T) {
	snap := screen.New(3, 10).Snapshot()
	nav := review.New(snap)
	disp := actions.New(nav, clipboard.New(0), symbols.Default())
	bt := NewBindingTable(disp, actions.ModeNormal)

	bt.Set("F9", actions.Binding{Action: actions.ActionReviewTop, Help: "top"})
	b, ok := bt.Get("F9")
	require.True(t, ok)
	assert.Equal(t, "top", b.Help)
	bt.Remove("F9")
	_, ok = bt.Get("F9")
	assert.False(t, ok)
}

func TestAPICallRejectsUnknownAction(t *testing.T) {
	snap := screen.New(3, 10).Snapshot()
	nav := review.New(snap)
	disp := actions.New(nav, clipboard.New(0), symbols.Default())
	api := NewAPI(disp)
	assert.Error(t, api.Call("not_a_real_action"))
	assert.NoError(t, api.Call(string(actions.ActionReviewTop)))
}
