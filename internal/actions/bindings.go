package actions

// defaultBindings builds the stock per-mode binding tables, ported from
// keymap.rs's default keymap. Table mode falls back to normal-mode
// bindings for anything it does not override (bindingFor), so only the
// table-specific keys are listed under ModeTable.
func defaultBindings() map[Mode]map[string]Binding {
	normal := map[string]Binding{
		"C-x":     {Action: ActionStopSpeaking, Help: "stop speaking"},
		"M-a":     {Action: ActionToggleAutoRead, Help: "toggle auto-read"},
		"Up":      {Action: ActionReviewPrevLine, Help: "review: previous line"},
		"Down":    {Action: ActionReviewNextLine, Help: "review: next line"},
		"C-l":     {Action: ActionReviewReadLine, Help: "review: read line"},
		"M-Left":  {Action: ActionReviewPrevWord, Help: "review: previous word"},
		"M-Right": {Action: ActionReviewNextWord, Help: "review: next word"},
		"M-w":     {Action: ActionReviewReadWord, Help: "review: read word"},
		"Left":    {Action: ActionReviewPrevChar, Help: "review: previous character"},
		"Right":   {Action: ActionReviewNextChar, Help: "review: next character"},
		"C-k":     {Action: ActionReviewReadChar, Help: "review: read character"},
		"M-k":     {Action: ActionReviewReadPhonetic, Help: "review: read character phonetically"},
		"C-Home":  {Action: ActionReviewTop, Help: "review: top"},
		"C-End":   {Action: ActionReviewBottom, Help: "review: bottom"},
		"Home":    {Action: ActionReviewFirst, Help: "review: first column"},
		"End":     {Action: ActionReviewLast, Help: "review: last column"},
		"M-m":     {Action: ActionReviewSetMark, Help: "review: set mark"},
		"M-c":     {Action: ActionReviewCopy, Help: "review: copy to clipboard"},
		"M-i":     {Action: ActionReviewReadAttrs, Help: "review: read attributes"},
		"M-v":     {Action: ActionClipboardPaste, Help: "clipboard: paste"},
		"M-,":     {Action: ActionClipboardPrev, Help: "clipboard: previous entry"},
		"M-.":     {Action: ActionClipboardNext, Help: "clipboard: next entry"},
		"M-t":     {Action: ActionEnterTableMode, Help: "enter table mode"},
		"M-T":     {Action: ActionEnterTabstopSetup, Help: "enter manual tabstop setup"},
		"M-]":     {Action: ActionIncreaseSymbolLvl, Help: "increase symbol level"},
		"M-[":     {Action: ActionDecreaseSymbolLvl, Help: "decrease symbol level"},
		"M-?":     {Action: ActionHelpMode, Help: "help mode"},
		"M-q":     {Action: ActionPassNextKey, Help: "pass next key through"},
	}

	tableMode := map[string]Binding{
		"j":     {Action: ActionTableRowDown, Help: "table: row down"},
		"k":     {Action: ActionTableRowUp, Help: "table: row up"},
		"h":     {Action: ActionTableColLeft, Help: "table: column left"},
		"l":     {Action: ActionTableColRight, Help: "table: column right"},
		"g":     {Action: ActionTableTop, Help: "table: top row"},
		"G":     {Action: ActionTableBottom, Help: "table: bottom row"},
		"^":     {Action: ActionTableFirstCol, Help: "table: first column"},
		"$":     {Action: ActionTableLastCol, Help: "table: last column"},
		"i":     {Action: ActionTableReadCell, Help: "table: read cell"},
		"H":     {Action: ActionTableReadHeader, Help: "table: read column header"},
		"M-j":   {Action: ActionTableWordPrev, Help: "table: previous word in cell"},
		"M-l":   {Action: ActionTableWordNext, Help: "table: next word in cell"},
		"M-k":   {Action: ActionTableWordRead, Help: "table: read word in cell"},
		"Esc":   {Action: ActionExitTableMode, Help: "exit table mode"},
		"M-t":   {Action: ActionExitTableMode, Help: "exit table mode"},
	}

	tabstopSetup := map[string]Binding{
		" ":     {Action: ActionTabstopMark, Help: "mark a tabstop at the review cursor"},
		"Enter": {Action: ActionTabstopCommit, Help: "commit tabstops"},
		"Esc":   {Action: ActionTabstopCancel, Help: "cancel tabstop setup"},
	}

	return map[Mode]map[string]Binding{
		ModeNormal:       normal,
		ModeTable:        tableMode,
		ModeTabstopSetup: tabstopSetup,
	}
}
