package screen

// Color identifies how a cell's foreground or background was specified,
// mirroring the three tiers a real terminal distinguishes.
type Color struct {
	Type  ColorType
	Index uint8 // Standard (0-15) or Palette (0-255)
	R, G, B uint8 // TrueColor
}

// ColorType indicates how a Color was specified.
type ColorType uint8

const (
	ColorDefault ColorType = iota
	ColorStandard
	ColorPalette
	ColorTrueColor
)

// IsDefault reports whether c is the unset "use terminal default" color.
func (c Color) IsDefault() bool { return c.Type == ColorDefault }

// DefaultForeground and DefaultBackground are the colors a cell carries
// before any SGR sequence has touched it.
var (
	DefaultForeground = Color{Type: ColorDefault}
	DefaultBackground = Color{Type: ColorDefault}
)

// Attrs are the SGR presentation attributes of a Cell.
type Attrs struct {
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Reverse       bool
	Foreground    Color
	Background    Color
}

// continuation is the Width value reserved for the placeholder cell that
// follows a width-2 grapheme. A continuation cell carries no grapheme of
// its own; it exists only so the grid's column count is self-consistent.
const continuation = 0

// Cell is one character cell of the screen grid: a grapheme cluster, its
// display width (1 or 2 columns), and its presentation attributes.
//
// Invariant: a cell of Width 2 is immediately followed, in the same row, by
// a continuation cell (Width == 0, Grapheme == "") occupying the next
// column. Code that walks a row must skip continuation cells rather than
// treat them as independent characters.
type Cell struct {
	Grapheme string
	Width    int
	Attrs    Attrs
}

// IsContinuation reports whether this cell is the placeholder following a
// width-2 grapheme in the previous column.
func (c Cell) IsContinuation() bool {
	return c.Width == 0 && c.Grapheme == ""
}

// Blank returns the cell a freshly-cleared column holds: a single space,
// width 1, default attributes.
func Blank() Cell {
	return Cell{Grapheme: " ", Width: 1}
}

func continuationCell() Cell {
	return Cell{}
}
