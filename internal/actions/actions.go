// Package actions implements the binding dispatcher and built-in action
// registry that maps key sequences to behaviors, porting commands.rs's
// ACTION_TABLE and keymap.rs's per-mode default bindings.
package actions

import (
	"fmt"
	"strings"
	"time"

	"github.com/lectorhq/lector/internal/clipboard"
	"github.com/lectorhq/lector/internal/review"
	"github.com/lectorhq/lector/internal/screen"
	"github.com/lectorhq/lector/internal/symbols"
	"github.com/lectorhq/lector/internal/table"
)

// Action identifies one built-in behavior. The named constants mirror the
// reference implementation's ACTION_TABLE entries closely enough that a
// config script referring to them by the same names keeps working.
type Action string

const (
	ActionStopSpeaking       Action = "stop_speaking"
	ActionToggleAutoRead     Action = "toggle_auto_read"
	ActionReviewPrevLine     Action = "review_prev_line"
	ActionReviewNextLine     Action = "review_next_line"
	ActionReviewReadLine     Action = "review_read_line"
	ActionReviewPrevWord     Action = "review_prev_word"
	ActionReviewNextWord     Action = "review_next_word"
	ActionReviewReadWord     Action = "review_read_word"
	ActionReviewPrevChar     Action = "review_prev_char"
	ActionReviewNextChar     Action = "review_next_char"
	ActionReviewReadChar     Action = "review_read_char"
	ActionReviewReadPhonetic Action = "review_read_char_phonetic"
	ActionReviewTop          Action = "review_top"
	ActionReviewBottom       Action = "review_bottom"
	ActionReviewFirst        Action = "review_first"
	ActionReviewLast         Action = "review_last"
	ActionReviewSetMark      Action = "review_set_mark"
	ActionReviewCopy         Action = "review_copy"
	ActionReviewReadAttrs    Action = "review_read_attributes"
	ActionClipboardPaste     Action = "clipboard_paste"
	ActionClipboardPrev      Action = "clipboard_prev"
	ActionClipboardNext      Action = "clipboard_next"
	ActionEnterTableMode     Action = "enter_table_mode"
	ActionEnterTabstopSetup  Action = "enter_tabstop_setup"
	ActionExitTableMode      Action = "exit_table_mode"
	ActionTableRowUp         Action = "table_row_up"
	ActionTableRowDown       Action = "table_row_down"
	ActionTableColLeft       Action = "table_col_left"
	ActionTableColRight      Action = "table_col_right"
	ActionTableTop           Action = "table_top"
	ActionTableBottom        Action = "table_bottom"
	ActionTableFirstCol      Action = "table_first_col"
	ActionTableLastCol       Action = "table_last_col"
	ActionTableReadCell      Action = "table_read_cell"
	ActionTableReadHeader    Action = "table_read_header"
	ActionTableWordPrev      Action = "table_word_prev"
	ActionTableWordNext      Action = "table_word_next"
	ActionTableWordRead      Action = "table_word_read"
	ActionTabstopMark        Action = "tabstop_mark"
	ActionTabstopCommit      Action = "tabstop_commit"
	ActionTabstopCancel      Action = "tabstop_cancel"
	ActionHelpMode           Action = "help_mode"
	ActionIncreaseSymbolLvl  Action = "increase_symbol_level"
	ActionDecreaseSymbolLvl  Action = "decrease_symbol_level"
	ActionPassNextKey        Action = "pass_next_key"
)

// allBuiltins lists every named Action, for script-surface validation
// (api.call(name) rejects unknown names; bindings[key]="name" stores the
// name without checking it).
var allBuiltins = map[Action]bool{
	ActionStopSpeaking: true, ActionToggleAutoRead: true,
	ActionReviewPrevLine: true, ActionReviewNextLine: true, ActionReviewReadLine: true,
	ActionReviewPrevWord: true, ActionReviewNextWord: true, ActionReviewReadWord: true,
	ActionReviewPrevChar: true, ActionReviewNextChar: true, ActionReviewReadChar: true,
	ActionReviewReadPhonetic: true, ActionReviewTop: true, ActionReviewBottom: true,
	ActionReviewFirst: true, ActionReviewLast: true, ActionReviewSetMark: true,
	ActionReviewCopy: true, ActionReviewReadAttrs: true, ActionClipboardPaste: true,
	ActionClipboardPrev: true, ActionClipboardNext: true, ActionEnterTableMode: true,
	ActionEnterTabstopSetup: true, ActionExitTableMode: true, ActionTableRowUp: true,
	ActionTableRowDown: true, ActionTableColLeft: true, ActionTableColRight: true,
	ActionTableTop: true, ActionTableBottom: true, ActionTableFirstCol: true,
	ActionTableLastCol: true, ActionTableReadCell: true, ActionTableReadHeader: true,
	ActionTableWordPrev: true, ActionTableWordNext: true, ActionTableWordRead: true,
	ActionTabstopMark: true, ActionTabstopCommit: true, ActionTabstopCancel: true,
	ActionHelpMode: true,
	ActionIncreaseSymbolLvl: true, ActionDecreaseSymbolLvl: true, ActionPassNextKey: true,
}

// IsBuiltin reports whether a names a registered built-in action.
func IsBuiltin(a Action) bool { return allBuiltins[a] }

// Mode is one of the exclusive interaction modes spec section 3 defines.
type Mode string

const (
	ModeNormal        Mode = "normal"
	ModeTable         Mode = "table"
	ModeTabstopSetup  Mode = "tabstop_setup"
	ModeHelp          Mode = "help"
	ModeRepl          Mode = "repl"
)

// Binding is either a built-in action name or a user-supplied callable with
// a help string, mirroring the script surface's bindings[key] record.
type Binding struct {
	Action Action
	Help   string
	Func   func(*Dispatcher) string // user callable; return value is spoken
}

// EscDisambiguationWindow is the window for telling a bare ESC byte from the
// start of a CSI/SS3 sequence. Nothing in the dispatcher or the event loop
// reads it: keys are decoded from whatever bytes one terminal read returned.
const EscDisambiguationWindow = 50 * time.Millisecond

// Dispatcher holds per-mode binding tables and the live state (review
// navigator, table model, clipboard, symbol table) that actions operate on.
type Dispatcher struct {
	mode   Mode
	prev   Mode
	tables map[Mode]map[string]Binding

	Nav       *review.Navigator
	Clipboard *clipboard.History
	Symbols   *symbols.Table
	Level     symbols.Level

	tableModel   table.Model
	tableRow     int
	tableCol     int
	speakHeader  bool
	tabstopRow   int
	tabstopMarks []int

	passNext bool
	snap     screen.Snapshot

	OnSpeak          func(text string, interrupt bool)
	OnModeChange     func(from, to Mode)
	OnUnhandled      func(key string) bool // returns true if it consumed the key
	OnStopSpeaking   func()
	OnToggleAutoRead func() bool // flips auto-read state, returns the new value
	OnClipboardPaste func(text string)
}

// New creates a Dispatcher in normal mode with the default binding tables.
func New(nav *review.Navigator, clip *clipboard.History, tbl *symbols.Table) *Dispatcher {
	d := &Dispatcher{
		mode:      ModeNormal,
		tables:    defaultBindings(),
		Nav:       nav,
		Clipboard: clip,
		Symbols:   tbl,
		Level:     symbols.LevelSome,
	}
	return d
}

// Mode returns the dispatcher's current mode.
func (d *Dispatcher) Mode() Mode { return d.mode }

// SetSnapshot updates the snapshot actions read from.
func (d *Dispatcher) SetSnapshot(snap screen.Snapshot) {
	d.snap = snap
	d.Nav.SetSnapshot(snap)
}

func (d *Dispatcher) setMode(m Mode) {
	if m == d.mode {
		return
	}
	from := d.mode
	d.prev = d.mode
	d.mode = m
	if d.OnModeChange != nil {
		d.OnModeChange(from, m)
	}
}

func (d *Dispatcher) speak(text string, interrupt bool) {
	if text == "" || d.OnSpeak == nil {
		return
	}
	d.OnSpeak(d.Symbols.Process(text, d.Level), interrupt)
}

// bindingFor looks up key in the current mode's table, falling back to the
// normal-mode table (spec 4.G: per-mode tables with normal-mode fallback).
func (d *Dispatcher) bindingFor(key string) (Binding, bool) {
	if tbl, ok := d.tables[d.mode]; ok {
		if b, ok := tbl[key]; ok {
			return b, true
		}
	}
	if d.mode != ModeNormal {
		if b, ok := d.tables[ModeNormal][key]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// SetBinding assigns a key's binding in mode m (an empty Binding is stored
// as given; RemoveBinding is what deletes a key), atomically
// from the perspective of any concurrent reader — the dispatcher is only
// ever touched by the single event-loop goroutine, so a plain map write
// already satisfies spec 4.G's atomicity requirement.
func (d *Dispatcher) SetBinding(m Mode, key string, b Binding) {
	if d.tables[m] == nil {
		d.tables[m] = make(map[string]Binding)
	}
	d.tables[m][key] = b
}

// RemoveBinding deletes key's binding in mode m.
func (d *Dispatcher) RemoveBinding(m Mode, key string) {
	delete(d.tables[m], key)
}

// Binding returns the binding for a key in mode m and whether one exists,
// for the script surface's bindings[key] read.
func (d *Dispatcher) Binding(m Mode, key string) (Binding, bool) {
	b, ok := d.tables[m][key]
	return b, ok
}

// Handle processes one captured key sequence. It returns true if the key
// was consumed (by a binding, help mode, or pass-next-key), false if it
// should be forwarded to the PTY as raw bytes.
func (d *Dispatcher) Handle(key string, raw []byte) bool {
	if d.passNext {
		d.passNext = false
		return false
	}

	if d.mode == ModeHelp {
		b, ok := d.bindingFor(key)
		d.setMode(d.prev)
		if ok {
			if b.Help != "" {
				d.speak(b.Help, true)
			} else {
				d.speak(fmt.Sprintf("%s: no help", key), true)
			}
		} else {
			d.speak(fmt.Sprintf("%s: unbound", key), true)
		}
		return true
	}

	b, ok := d.bindingFor(key)
	if !ok {
		if d.OnUnhandled != nil && d.OnUnhandled(key) {
			return true
		}
		return false
	}
	d.invoke(b)
	return true
}

func (d *Dispatcher) invoke(b Binding) {
	if b.Func != nil {
		if text := b.Func(d); text != "" {
			d.speak(text, true)
		}
		return
	}
	d.Run(b.Action)
}

// Run invokes a built-in action directly by name, independent of any key
// binding — the resolution api.* and a bindings[key]="name" string value
// both use.
func (d *Dispatcher) Run(a Action) {
	switch a {
	case ActionStopSpeaking:
		if d.OnStopSpeaking != nil {
			d.OnStopSpeaking()
		}
	case ActionToggleAutoRead:
		if d.OnToggleAutoRead != nil {
			if d.OnToggleAutoRead() {
				d.speak("auto read on", true)
			} else {
				d.speak("auto read off", true)
			}
		}
	case ActionHelpMode:
		d.setMode(ModeHelp)
		d.speak("help mode", true)
	case ActionPassNextKey:
		d.passNext = true

	case ActionReviewPrevLine:
		text, atBoundary := d.Nav.LinePrev()
		d.announceMotion(text, atBoundary, "top")
	case ActionReviewNextLine:
		text, atBoundary := d.Nav.LineNext()
		d.announceMotion(text, atBoundary, "bottom")
	case ActionReviewReadLine:
		d.speak(d.Nav.ReadLine(), true)
	case ActionReviewPrevWord:
		text, atBoundary := d.Nav.WordPrev()
		d.announceMotion(text, atBoundary, "top")
	case ActionReviewNextWord:
		text, atBoundary := d.Nav.WordNext()
		d.announceMotion(text, atBoundary, "bottom")
	case ActionReviewReadWord:
		d.speak(d.Nav.ReadWord(), true)
	case ActionReviewPrevChar:
		g, atBoundary := d.Nav.CharPrev()
		d.announceMotion(g, atBoundary, "top")
	case ActionReviewNextChar:
		g, atBoundary := d.Nav.CharNext()
		d.announceMotion(g, atBoundary, "bottom")
	case ActionReviewReadChar:
		d.speak(d.Nav.ReadChar(), true)
	case ActionReviewReadPhonetic:
		d.speak(d.Nav.ReadCharPhonetic(), true)
	case ActionReviewTop:
		d.speak(d.Nav.Top(), true)
	case ActionReviewBottom:
		d.speak(d.Nav.Bottom(), true)
	case ActionReviewFirst:
		d.speak(d.Nav.First(), true)
	case ActionReviewLast:
		d.speak(d.Nav.Last(), true)
	case ActionReviewSetMark:
		d.Nav.SetMark()
		d.speak("mark set", true)
	case ActionReviewCopy:
		if text, ok := d.Nav.Copy(); ok {
			d.Clipboard.Push(text)
			d.speak("copied", true)
		} else {
			d.speak("no mark", true)
		}
	case ActionReviewReadAttrs:
		d.speak(d.Nav.ReadAttributes(), true)

	case ActionClipboardPaste:
		if text, ok := d.Clipboard.Current(); ok {
			if d.OnClipboardPaste != nil {
				d.OnClipboardPaste(text)
			}
		} else {
			d.speak("clipboard empty", true)
		}

	case ActionClipboardPrev:
		d.Clipboard.Prev()
		d.speakClipboardCurrent()
	case ActionClipboardNext:
		d.Clipboard.Next()
		d.speakClipboardCurrent()

	case ActionIncreaseSymbolLvl:
		if d.Level < symbols.LevelCharacter {
			d.Level++
		}
		d.speak(d.Level.String(), true)
	case ActionDecreaseSymbolLvl:
		if d.Level > symbols.LevelNone {
			d.Level--
		}
		d.speak(d.Level.String(), true)

	case ActionEnterTableMode:
		d.enterTableMode()
	case ActionEnterTabstopSetup:
		d.enterTabstopSetup()
	case ActionExitTableMode:
		d.exitTableMode()
	case ActionTableRowUp:
		d.tableMove(-1, 0)
	case ActionTableRowDown:
		d.tableMove(1, 0)
	case ActionTableColLeft:
		d.tableMoveCol(-1)
	case ActionTableColRight:
		d.tableMoveCol(1)
	case ActionTableTop:
		d.tableRow = d.tableModel.NearestDataRow(d.snap, d.tableModel.Top)
		d.speakCell()
	case ActionTableBottom:
		d.tableRow = d.tableModel.NearestDataRow(d.snap, d.tableModel.Bottom)
		d.speakCell()
	case ActionTableFirstCol:
		d.tableCol = 0
		d.speakCell()
	case ActionTableLastCol:
		d.tableCol = len(d.tableModel.Columns) - 1
		d.speakCell()
	case ActionTableReadCell:
		d.speak(d.tableModel.CellText(d.snap, d.tableRow, d.tableCol), true)
	case ActionTableReadHeader:
		d.speak(d.tableModel.HeaderText(d.snap, d.tableCol), true)
	case ActionTableWordPrev:
		d.Nav.SyncToScreenCursor(d.tableRow, d.tableModel.Columns[d.tableCol].Start)
		text, _ := d.Nav.WordPrev()
		d.speak(text, true)
	case ActionTableWordNext:
		d.Nav.SyncToScreenCursor(d.tableRow, d.tableModel.Columns[d.tableCol].Start)
		text, _ := d.Nav.WordNext()
		d.speak(text, true)
	case ActionTableWordRead:
		d.Nav.SyncToScreenCursor(d.tableRow, d.tableModel.Columns[d.tableCol].Start)
		d.speak(d.Nav.ReadWord(), true)

	case ActionTabstopMark:
		d.tabstopMarks = append(d.tabstopMarks, d.Nav.Position().Col)
		d.speak(fmt.Sprintf("tabstop %d", len(d.tabstopMarks)), true)
	case ActionTabstopCommit:
		d.commitTabstops()
	case ActionTabstopCancel:
		d.tabstopMarks = nil
		d.setMode(ModeNormal)
		d.speak("tabstop setup cancelled", true)
	}
}

func (d *Dispatcher) announceMotion(text string, atBoundary bool, boundaryWord string) {
	if atBoundary {
		d.speak(boundaryWord, true)
		return
	}
	d.speak(text, true)
}

func (d *Dispatcher) speakClipboardCurrent() {
	if text, ok := d.Clipboard.Current(); ok {
		d.speak(text, true)
	} else {
		d.speak("clipboard empty", true)
	}
}

// enterTableMode implements spec 4.E's entry behavior: detect a table
// around the review cursor's row and, on success, switch to table mode and
// fire on_table_mode_enter semantics via the announcement it speaks.
func (d *Dispatcher) enterTableMode() {
	pos := d.Nav.Position()
	m, ok := table.Detect(d.snap, pos.Row)
	if !ok {
		d.speak("no table detected", true)
		return
	}
	d.tableModel = m
	d.tableRow = m.NearestDataRow(d.snap, pos.Row)
	d.tableCol = m.ColumnForCol(pos.Col)
	if d.tableCol < 0 {
		d.tableCol = 0
	}
	d.speakHeader = m.HeaderRow >= 0
	d.setMode(ModeTable)
	d.speak(fmt.Sprintf("table, %d columns", len(m.Columns)), true)
}

func (d *Dispatcher) exitTableMode() {
	d.setMode(ModeNormal)
	d.speak("normal mode", true)
}

func (d *Dispatcher) tableMove(drow, _ int) {
	next := d.tableModel.ClampRow(d.tableRow + drow)
	if drow > 0 {
		next = d.tableModel.NextDataRow(d.snap, d.tableRow)
	} else if drow < 0 {
		next = d.tableModel.PrevDataRow(d.snap, d.tableRow)
	}
	if next == d.tableRow {
		d.speak(boundaryForRow(drow, d.tableModel, d.tableRow), true)
		return
	}
	d.tableRow = next
	d.speakCellWithHeader()
}

func boundaryForRow(drow int, m table.Model, row int) string {
	if drow < 0 && row <= m.Top {
		return "top"
	}
	if drow > 0 && row >= m.Bottom {
		return "bottom"
	}
	return "boundary"
}

func (d *Dispatcher) tableMoveCol(delta int) {
	next := d.tableCol + delta
	if next < 0 {
		d.speak("first column", true)
		return
	}
	if next >= len(d.tableModel.Columns) {
		d.speak("last column", true)
		return
	}
	d.tableCol = next
	d.speakCellWithHeader()
}

func (d *Dispatcher) speakCell() {
	d.speak(d.tableModel.CellText(d.snap, d.tableRow, d.tableCol), true)
}

// speakCellWithHeader implements "if auto-header is on, every column change
// speaks `<header>: <cell>`" (spec 4.E).
func (d *Dispatcher) speakCellWithHeader() {
	cell := d.tableModel.CellText(d.snap, d.tableRow, d.tableCol)
	if d.speakHeader {
		header := d.tableModel.HeaderText(d.snap, d.tableCol)
		if header != "" {
			d.speak(header+": "+cell, true)
			return
		}
	}
	d.speak(cell, true)
}

func (d *Dispatcher) enterTabstopSetup() {
	d.tabstopRow = d.Nav.Position().Row
	d.tabstopMarks = nil
	d.setMode(ModeTabstopSetup)
	d.speak("tabstop setup, mark columns then commit", true)
}

func (d *Dispatcher) commitTabstops() {
	if len(d.tabstopMarks) == 0 {
		d.speak("no tabstops marked", true)
		d.setMode(ModeNormal)
		return
	}
	marks := append([]int(nil), d.tabstopMarks...)
	for i := 1; i < len(marks); i++ {
		for j := i; j > 0 && marks[j] < marks[j-1]; j-- {
			marks[j], marks[j-1] = marks[j-1], marks[j]
		}
	}
	d.tableModel = table.ManualFromHeader(d.snap, d.tabstopRow, marks)
	d.tableRow = d.tableModel.NearestDataRow(d.snap, d.tabstopRow)
	d.tableCol = 0
	d.speakHeader = true
	d.tabstopMarks = nil
	d.setMode(ModeTable)
	d.speak(fmt.Sprintf("table, %d columns", len(d.tableModel.Columns)), true)
}

// KeyString renders a raw key event's byte sequence into the canonical
// binding-table notation ("C-a", "M-x", "Esc", "Enter", "Backspace", "Tab",
// single runes as themselves), ported from the reference implementation's
// key decoding in keymap.rs. Multi-byte escape sequences are not decoded
// into key names: an arrow key's ESC [ A comes back as "M-[A", and no
// "Up" or "F5" style name is ever produced.
func KeyString(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == 0x1b && len(raw) > 1 {
		rest := KeyString(raw[1:])
		return "M-" + rest
	}
	if len(raw) == 1 {
		b := raw[0]
		switch {
		case b == 0x1b:
			return "Esc"
		case b == '\r' || b == '\n':
			return "Enter"
		case b == 0x7f || b == 0x08:
			return "Backspace"
		case b == '\t':
			return "Tab"
		case b < 0x20:
			return "C-" + strings.ToLower(string(rune('a'+b-1)))
		default:
			return string(rune(b))
		}
	}
	return string(raw)
}
