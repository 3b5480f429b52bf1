package screen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSetCellWidth2Atomicity(t *testing.T) {
	s := New(5, 10)
	p := NewParser(s)
	p.Parse([]byte("你好"))

	require.Equal(t, 2, s.CellAt(0, 0).Width)
	assert.True(t, s.CellAt(0, 1).IsContinuation())
	require.Equal(t, 2, s.CellAt(0, 2).Width)
	assert.True(t, s.CellAt(0, 3).IsContinuation())
}

func TestWideGraphemeWrapsWhenItDoesNotFit(t *testing.T) {
	s := New(5, 5)
	p := NewParser(s)
	p.Parse([]byte("abcd你")) // cursor at col 4 with 1 column left; 你 needs 2
	require.Equal(t, 1, s.Cursor().Row)
}

func TestCursorMovementCUP(t *testing.T) {
	s := New(24, 80)
	p := NewParser(s)
	p.Parse([]byte("\x1b[5;10H"))
	cur := s.Cursor()
	assert.Equal(t, 4, cur.Row)
	assert.Equal(t, 9, cur.Col)
}

func TestSGRSetsAttributes(t *testing.T) {
	s := New(24, 80)
	p := NewParser(s)
	p.Parse([]byte("\x1b[1;31mhi\x1b[0m"))
	cell := s.CellAt(0, 0)
	assert.True(t, cell.Attrs.Bold)
	assert.Equal(t, ColorStandard, cell.Attrs.Foreground.Type)
	assert.Equal(t, uint8(1), cell.Attrs.Foreground.Index)
}

func TestScrollRegionScrollsOnlyWithinBounds(t *testing.T) {
	s := New(5, 10)
	p := NewParser(s)
	p.Parse([]byte("untouched")) // row 0, outside the region set below
	p.Parse([]byte("\x1b[2;4r"))  // rows 2-4 (0-based 1-3) scroll region
	s.MoveCursor(3, 0)
	p.Parse([]byte("bottom\n")) // forces a scroll-up within the region
	// row 0 (outside the region) must be untouched by the scroll
	assert.Equal(t, "u", s.CellAt(0, 0).Grapheme)
}

func TestGenerationIncrementsOnWrite(t *testing.T) {
	s := New(5, 5)
	g0 := s.Generation()
	p := NewParser(s)
	p.Parse([]byte("x"))
	assert.Greater(t, s.Generation(), g0)
}

// TestCursorStaysInBoundsForAnyByteStream is a property test of the
// fundamental invariant in spec section 8: for all byte sequences, the
// cursor stays within [0,R) x [0,C).
func TestCursorStaysInBoundsForAnyByteStream(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.IntRange(1, 20).Draw(t, "rows")
		cols := rapid.IntRange(1, 40).Draw(t, "cols")
		data := rapid.SliceOfN(rapid.Byte(), 0, 200).Draw(t, "data")

		s := New(rows, cols)
		p := NewParser(s)
		p.Parse(data)

		cur := s.Cursor()
		if cur.Row < 0 || cur.Row >= rows || cur.Col < 0 || cur.Col >= cols {
			t.Fatalf("cursor out of bounds: %+v for %dx%d, input %q", cur, rows, cols, data)
		}
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				cell := s.CellAt(r, c)
				if cell.Width == 2 {
					if c+1 >= cols || !s.CellAt(r, c+1).IsContinuation() {
						t.Fatalf("width-2 cell at (%d,%d) missing continuation", r, c)
					}
				}
			}
		}
	})
}

func ExampleSnapshot_RowText() {
	s := New(3, 10)
	p := NewParser(s)
	p.Parse([]byte("hello"))
	sn := s.Snapshot()
	fmt.Println(strings.TrimRight(sn.RowText(0), " "))
	// Output: hello
}
