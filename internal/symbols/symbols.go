// Package symbols transforms raw screen text into speakable text per a
// verbosity level, porting the reference implementation's symbol table and
// repeated-grapheme collapsing (speech/symbols.rs, speech/mod.rs).
package symbols

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// Level is the symbol-processing verbosity, in ascending order of how much
// punctuation gets expanded.
type Level int

const (
	LevelNone Level = iota
	LevelSome
	LevelMost
	LevelAll
	LevelCharacter
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelSome:
		return "some"
	case LevelMost:
		return "most"
	case LevelAll:
		return "all"
	case LevelCharacter:
		return "character"
	default:
		return "none"
	}
}

// Record is a symbol-table entry: how to speak one grapheme at or below a
// given verbosity level.
type Record struct {
	Replacement     string
	Level           Level
	IncludeOriginal bool
	Repeat          bool
}

// Table maps a grapheme string to its Record.
type Table struct {
	entries map[string]Record
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]Record)}
}

// Default returns a table pre-populated with the common punctuation and
// currency symbols, ported from the reference implementation's
// default_map().
func Default() *Table {
	t := NewTable()
	put := func(g, replacement string, level Level, includeOriginal, repeat bool) {
		t.Put(g, Record{Replacement: replacement, Level: level, IncludeOriginal: includeOriginal, Repeat: repeat})
	}
	put(" ", "space", LevelCharacter, false, false)
	put("!", "bang", LevelAll, true, true)
	put("\"", "quote", LevelMost, false, false)
	put("#", "pound", LevelMost, false, false)
	put("$", "dollar", LevelSome, false, false)
	put("%", "percent", LevelSome, false, false)
	put("&", "ampersand", LevelMost, false, false)
	put("'", "apostrophe", LevelAll, false, false)
	put("(", "left paren", LevelMost, false, false)
	put(")", "right paren", LevelMost, false, false)
	put("*", "star", LevelSome, false, false)
	put("+", "plus", LevelSome, false, false)
	put(",", "comma", LevelAll, false, false)
	put("-", "dash", LevelAll, false, true)
	put(".", "dot", LevelAll, false, true)
	put("/", "slash", LevelSome, false, false)
	put(":", "colon", LevelSome, false, false)
	put(";", "semicolon", LevelAll, false, false)
	put("<", "less than", LevelMost, false, false)
	put("=", "equals", LevelSome, false, false)
	put(">", "greater than", LevelMost, false, false)
	put("?", "question", LevelSome, false, true)
	put("@", "at", LevelSome, false, false)
	put("[", "left bracket", LevelMost, false, false)
	put("]", "right bracket", LevelMost, false, false)
	put("\\", "backslash", LevelMost, false, false)
	put("^", "caret", LevelMost, false, false)
	put("_", "underscore", LevelMost, false, true)
	put("`", "backtick", LevelMost, false, false)
	put("{", "left brace", LevelMost, false, false)
	put("}", "right brace", LevelMost, false, false)
	put("|", "pipe", LevelMost, false, true)
	put("~", "tilde", LevelMost, false, false)
	return t
}

// Put inserts or replaces the record for grapheme g.
func (t *Table) Put(g string, r Record) { t.entries[g] = r }

// Remove deletes the record for g, the symbol-table analogue of assigning
// nil from the script surface.
func (t *Table) Remove(g string) { delete(t.entries, g) }

// Get returns the record for g and whether one exists, the symbol-table
// analogue of a script read.
func (t *Table) Get(g string) (Record, bool) {
	r, ok := t.entries[g]
	return r, ok
}

// applicable reports whether g has a record that applies at level L, i.e.
// the record's own level is <= L.
func (t *Table) applicable(g string, level Level) (Record, bool) {
	r, ok := t.entries[g]
	if !ok || r.Level > level {
		return Record{}, false
	}
	return r, true
}

// Process renders text as speakable text at the given level: collapses
// long runs of an identical non-alphanumeric, non-whitespace grapheme,
// applies symbol substitution grapheme-by-grapheme, and forces
// LevelCharacter when the whole text is a single grapheme other than an
// ASCII letter, digit, space or tab, so a lone symbol is never
// under-described — porting describe_repeated_graphemes and the
// single-character override from speech/mod.rs.
func (t *Table) Process(text string, level Level) string {
	text = collapseRepeatedGraphemes(text)

	graphemes := splitGraphemes(text)
	if len(graphemes) == 1 && isCollapsible(graphemes[0]) {
		level = LevelCharacter
	}

	var out strings.Builder
	i := 0
	for i < len(graphemes) {
		g := graphemes[i]
		rec, ok := t.applicable(g, level)
		if !ok {
			if level == LevelCharacter {
				separate(&out)
				out.WriteString(characterName(g))
				out.WriteString(" ")
			} else {
				out.WriteString(g)
			}
			i++
			continue
		}
		run := 1
		if rec.Repeat {
			for i+run < len(graphemes) && graphemes[i+run] == g {
				run++
			}
		}
		separate(&out)
		if rec.Repeat && run >= 3 {
			fmt.Fprintf(&out, "%s %d times ", rec.Replacement, run)
		} else {
			for j := 0; j < run; j++ {
				out.WriteString(rec.Replacement)
				if rec.IncludeOriginal {
					out.WriteString(" ")
					out.WriteString(g)
				}
				out.WriteString(" ")
			}
		}
		i += run
	}
	return strings.TrimSpace(collapseWhitespace(out.String()))
}

// collapseRepeatedGraphemes coalesces any run of >= 4 identical
// non-alphanumeric, non-whitespace graphemes into "N <grapheme>", ported
// from describe_repeated_graphemes. This runs unconditionally, ahead of
// and independent of a symbol record's own Repeat flag.
func collapseRepeatedGraphemes(text string) string {
	graphemes := splitGraphemes(text)
	var out strings.Builder
	i := 0
	for i < len(graphemes) {
		g := graphemes[i]
		run := 1
		for i+run < len(graphemes) && graphemes[i+run] == g {
			run++
		}
		if run >= 4 && isCollapsible(g) {
			fmt.Fprintf(&out, " %d %s ", run, g)
		} else {
			for j := 0; j < run; j++ {
				out.WriteString(g)
			}
		}
		i += run
	}
	return out.String()
}

func isCollapsible(g string) bool {
	if g == "" {
		return false
	}
	r := []rune(g)[0]
	if r == ' ' || r == '\t' {
		return false
	}
	if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
		return false
	}
	return true
}

func splitGraphemes(text string) []string {
	var out []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		out = append(out, gr.Str())
	}
	return out
}

// separate ensures a space boundary before appending a replacement token,
// so a substitution never fuses onto the literal text that preceded it
// (e.g. "foo" + "colon" must read "foo colon", not "foocolon").
func separate(out *strings.Builder) {
	s := out.String()
	if s != "" && !strings.HasSuffix(s, " ") {
		out.WriteString(" ")
	}
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// characterName returns the emojiNames entry for a grapheme's first rune,
// or its hex codepoint otherwise, for level=character expansion of symbols
// absent from the table. Unicode character names are not looked up.
func characterName(g string) string {
	if g == "" {
		return ""
	}
	r := []rune(g)[0]
	if name, ok := emojiNames[r]; ok {
		return name
	}
	return fmt.Sprintf("U+%04X", r)
}

// emojiNames is a small hand-rolled table of the emoji most likely to
// appear echoed by shell tooling (status icons, CI output, etc.). No
// emoji-name package appears anywhere in the retrieval pack (see
// DESIGN.md), so this stands in for the original's `emojis` crate lookup.
var emojiNames = map[rune]string{
	0x2705: "check mark",
	0x274C: "cross mark",
	0x26A0: "warning",
	0x1F680: "rocket",
	0x1F389: "party popper",
	0x1F525: "fire",
	0x2728: "sparkles",
	0x1F440: "eyes",
	0x1F44D: "thumbs up",
	0x1F44E: "thumbs down",
}
