package screen

import (
	"strconv"
	"strings"
)

// parserState is the VT byte-stream state machine's current mode, the same
// shape the teacher's parser uses: a small explicit enum rather than a
// table-driven grammar, since the set of sequences this screen reader needs
// is deliberately narrow (spec section 4.B names exactly the bytes below).
type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateCSI
	stateOSC
	stateOSCString
	stateCharset
)

// Parser is an incremental VT/ANSI byte-stream parser that applies bytes
// directly to a Screen. Bytes may arrive split across arbitrary boundaries;
// Parse can be called repeatedly with successive chunks.
type Parser struct {
	screen *Screen
	state  parserState

	csiPrivate byte
	csiParams  []string
	csiParam   strings.Builder

	oscBuf strings.Builder

	textRun strings.Builder // printable UTF-8 accumulated since the last flush
}

// NewParser creates a parser that writes into screen.
func NewParser(s *Screen) *Parser {
	return &Parser{screen: s}
}

// Parse applies a chunk of PTY output bytes to the underlying Screen.
func (p *Parser) Parse(data []byte) {
	for _, b := range data {
		p.processByte(b)
	}
	p.flushText()
}

func (p *Parser) processByte(b byte) {
	if p.state == stateGround && b >= 0x20 && b != 0x7f {
		p.textRun.WriteByte(b)
		return
	}
	// Any control/escape byte ends the current run of printable text.
	p.flushText()

	switch p.state {
	case stateGround:
		p.handleGround(b)
	case stateEscape:
		p.handleEscape(b)
	case stateCSI:
		p.handleCSI(b)
	case stateOSC:
		p.handleOSC(b)
	case stateOSCString:
		p.handleOSCString(b)
	case stateCharset:
		p.state = stateGround
	}
}

func (p *Parser) flushText() {
	if p.textRun.Len() == 0 {
		return
	}
	p.screen.WriteGraphemes(p.textRun.String())
	p.textRun.Reset()
}

func (p *Parser) handleGround(b byte) {
	switch b {
	case 0x07: // BEL — consumed, ignored; the live reader has no bell policy
	case 0x08:
		p.screen.Backspace()
	case 0x09:
		p.tab()
	case 0x0a:
		p.screen.LineFeed()
	case 0x0d:
		p.screen.CarriageReturn()
	case 0x1b:
		p.state = stateEscape
	}
}

func (p *Parser) tab() {
	cur := p.screen.Cursor()
	next := ((cur.Col / 8) + 1) * 8
	_, cols := p.screen.Size()
	if next >= cols {
		next = cols - 1
	}
	p.screen.MoveCursor(cur.Row, next)
}

func (p *Parser) handleEscape(b byte) {
	switch b {
	case '[':
		p.state = stateCSI
		p.csiPrivate = 0
		p.csiParams = p.csiParams[:0]
		p.csiParam.Reset()
	case ']':
		p.state = stateOSC
		p.oscBuf.Reset()
	case 'D': // IND
		p.screen.Index()
		p.state = stateGround
	case 'M': // RI
		p.screen.ReverseIndex()
		p.state = stateGround
	case 'E': // NEL
		p.screen.CarriageReturn()
		p.screen.LineFeed()
		p.state = stateGround
	case '7': // DECSC
		p.screen.SaveCursor()
		p.state = stateGround
	case '8': // DECRC
		p.screen.RestoreCursor()
		p.state = stateGround
	case '(', ')': // charset designation — consume the following byte, ignored
		p.state = stateCharset
	default:
		p.state = stateGround
	}
}

func (p *Parser) handleCSI(b byte) {
	switch {
	case b == '?' && len(p.csiParams) == 0 && p.csiParam.Len() == 0:
		p.csiPrivate = '?'
	case b >= '0' && b <= '9':
		p.csiParam.WriteByte(b)
	case b == ';':
		p.csiParams = append(p.csiParams, p.csiParam.String())
		p.csiParam.Reset()
	case b >= 0x40 && b <= 0x7e:
		p.csiParams = append(p.csiParams, p.csiParam.String())
		p.csiParam.Reset()
		p.executeCSI(b)
		p.state = stateGround
	default:
		// Intermediate bytes (space, etc.) are accepted and ignored.
	}
}

func (p *Parser) param(idx, def int) int {
	if idx >= len(p.csiParams) || p.csiParams[idx] == "" {
		return def
	}
	v, err := strconv.Atoi(p.csiParams[idx])
	if err != nil {
		return def
	}
	return v
}

func (p *Parser) executeCSI(final byte) {
	if p.csiPrivate == '?' {
		p.executePrivateMode(final)
		return
	}
	s := p.screen
	switch final {
	case 'A': // CUU
		s.MoveCursorRelative(-p.param(0, 1), 0)
	case 'B': // CUD
		s.MoveCursorRelative(p.param(0, 1), 0)
	case 'C': // CUF
		s.MoveCursorRelative(0, p.param(0, 1))
	case 'D': // CUB
		s.MoveCursorRelative(0, -p.param(0, 1))
	case 'E': // CNL
		s.MoveCursorRelative(p.param(0, 1), 0)
		s.CarriageReturn()
	case 'F': // CPL
		s.MoveCursorRelative(-p.param(0, 1), 0)
		s.CarriageReturn()
	case 'G': // CHA
		cur := s.Cursor()
		s.MoveCursor(cur.Row, p.param(0, 1)-1)
	case 'H', 'f': // CUP
		s.MoveCursor(p.param(0, 1)-1, p.param(1, 1)-1)
	case 'J': // ED
		s.EraseInDisplay(eraseMode(p.param(0, 0)))
	case 'K': // EL
		s.EraseInLine(eraseMode(p.param(0, 0)))
	case 'S': // SU — scroll whole region up
		s.ScrollUp(p.param(0, 1))
	case 'T': // SD
		s.ScrollDown(p.param(0, 1))
	case 'd': // VPA
		cur := s.Cursor()
		s.MoveCursor(p.param(0, 1)-1, cur.Col)
	case 'm': // SGR
		p.executeSGR()
	case 'r': // DECSTBM
		top := p.param(0, 1) - 1
		rows, _ := s.Size()
		bottom := p.param(1, rows) - 1
		s.SetScrollRegion(top, bottom)
	case 't': // window manipulation — consumed, ignored
	}
}

func eraseMode(n int) EraseMode {
	switch n {
	case 1:
		return EraseToStart
	case 2:
		return EraseAll
	default:
		return EraseToEnd
	}
}

func (p *Parser) executePrivateMode(final byte) {
	set := final == 'h'
	if final != 'h' && final != 'l' {
		return
	}
	for _, raw := range p.csiParams {
		mode, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		switch mode {
		case 25: // DECTCEM
			p.screen.SetCursorVisible(set)
		case 7: // DECAWM
			p.screen.SetAutowrap(set)
		case 1049, 47, 1047: // alternate screen buffer
			if set {
				p.screen.EnterAlternateScreen()
			} else {
				p.screen.ExitAlternateScreen()
			}
		}
	}
}

func (p *Parser) executeSGR() {
	s := p.screen
	a := s.Attrs()
	if len(p.csiParams) == 0 {
		a = Attrs{}
		s.SetAttrs(a)
		return
	}
	i := 0
	for i < len(p.csiParams) {
		code := atoiDefault(p.csiParams[i], 0)
		switch {
		case code == 0:
			a = Attrs{}
		case code == 1:
			a.Bold = true
		case code == 3:
			a.Italic = true
		case code == 4:
			a.Underline = true
		case code == 7:
			a.Reverse = true
		case code == 9:
			a.Strikethrough = true
		case code == 22:
			a.Bold = false
		case code == 23:
			a.Italic = false
		case code == 24:
			a.Underline = false
		case code == 27:
			a.Reverse = false
		case code == 29:
			a.Strikethrough = false
		case code == 39:
			a.Foreground = DefaultForeground
		case code == 49:
			a.Background = DefaultBackground
		case code >= 30 && code <= 37:
			a.Foreground = Color{Type: ColorStandard, Index: uint8(code - 30)}
		case code >= 40 && code <= 47:
			a.Background = Color{Type: ColorStandard, Index: uint8(code - 40)}
		case code >= 90 && code <= 97:
			a.Foreground = Color{Type: ColorStandard, Index: uint8(code - 90 + 8)}
		case code >= 100 && code <= 107:
			a.Background = Color{Type: ColorStandard, Index: uint8(code - 100 + 8)}
		case code == 38 || code == 48:
			var consumed int
			col, ok := p.extendedColor(p.csiParams[i:], &consumed)
			if ok {
				if code == 38 {
					a.Foreground = col
				} else {
					a.Background = col
				}
			}
			i += consumed
		}
		i++
	}
	s.SetAttrs(a)
}

func (p *Parser) extendedColor(params []string, consumed *int) (Color, bool) {
	if len(params) < 2 {
		*consumed = len(params)
		return Color{}, false
	}
	switch params[1] {
	case "5":
		if len(params) < 3 {
			*consumed = 2
			return Color{}, false
		}
		*consumed = 3
		return Color{Type: ColorPalette, Index: uint8(atoiDefault(params[2], 0))}, true
	case "2":
		if len(params) < 5 {
			*consumed = len(params) - 1
			return Color{}, false
		}
		*consumed = 5
		return Color{
			Type: ColorTrueColor,
			R:    uint8(atoiDefault(params[2], 0)),
			G:    uint8(atoiDefault(params[3], 0)),
			B:    uint8(atoiDefault(params[4], 0)),
		}, true
	}
	*consumed = 1
	return Color{}, false
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func (p *Parser) handleOSC(b byte) {
	if b == 0x1b || b == 0x07 {
		p.executeOSC()
		p.state = stateGround
		if b == 0x1b {
			// ST is ESC '\': the escape state swallows the backslash.
			p.state = stateEscape
		}
		return
	}
	p.oscBuf.WriteByte(b)
}

func (p *Parser) handleOSCString(b byte) {
	p.handleOSC(b)
}

// executeOSC handles window-title-set (OSC 0/1/2) by consuming and
// discarding the title text, per spec section 4.B ("window-title set:
// consumed, ignored"). Purfecterm's glyph/sprite/palette OSC extensions
// have no analogue in this specification's VT requirements and are not
// ported — see DESIGN.md.
func (p *Parser) executeOSC() {
	p.oscBuf.Reset()
}
