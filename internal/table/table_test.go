package table

import (
	"strings"
	"testing"

	"github.com/lectorhq/lector/internal/screen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewWithLines(lines []string) screen.Snapshot {
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

func TestDetectPipeTableNavigatesCells(t *testing.T) {
	snap := viewWithLines([]string{"a|b|c", "1|2|3", "4|5|6"})
	m, ok := Detect(snap, 1)
	require.True(t, ok)
	assert.Equal(t, 0, m.Top)
	assert.Equal(t, 2, m.Bottom)
	assert.Equal(t, "2", m.CellText(snap, 1, 1))
	assert.Equal(t, "b", m.CellText(snap, 0, 1))
}

func columnIndexByHeader(t *testing.T, m Model, snap screen.Snapshot, label string) int {
	t.Helper()
	for i := range m.Columns {
		if strings.Contains(m.HeaderText(snap, i), label) {
			return i
		}
	}
	return -1
}

func TestDfCapacityColumnDoesNotAbsorbNextColumnDigits(t *testing.T) {
	snap := viewWithLines([]string{
		"Filesystem     Size  Used Avail Use% Mounted on",
		"/dev/sda1       50G   12G   38G  24% /",
	})
	m, ok := detectFixedWidthTable(snap, 1)
	require.True(t, ok)
	sizeCol := columnIndexByHeader(t, m, snap, "Size")
	require.GreaterOrEqual(t, sizeCol, 0)
	text := m.CellText(snap, 1, sizeCol)
	assert.Equal(t, "50G", text)
}

func TestDockerCreatedColumnKeepsAgoOutOfStatusColumn(t *testing.T) {
	snap := viewWithLines([]string{
		"CONTAINER ID   IMAGE     CREATED         STATUS",
		"abc123         nginx     2 hours ago     Up 2 hours",
	})
	m, ok := detectFixedWidthTable(snap, 1)
	require.True(t, ok)
	createdCol := columnIndexByHeader(t, m, snap, "CREATED")
	statusCol := columnIndexByHeader(t, m, snap, "STATUS")
	require.GreaterOrEqual(t, createdCol, 0)
	require.GreaterOrEqual(t, statusCol, 0)
	assert.NotContains(t, m.CellText(snap, 1, createdCol), "Up")
	assert.NotContains(t, m.CellText(snap, 1, statusCol), "ago")
}

func TestIsSeparatorRowRecognizesDrawingGlyphs(t *testing.T) {
	assert.True(t, isSeparatorRow("---+---+---"))
	assert.False(t, isSeparatorRow("1 | 2 | 3"))
}

func TestTableModeEnterExitPreservesState(t *testing.T) {
	snap := viewWithLines([]string{"a|b|c", "1|2|3"})
	m, ok := Detect(snap, 1)
	require.True(t, ok)
	// Entering table mode repeatedly resolves the same row and column.
	row, col := m.Top, 0
	for i := 0; i < 3; i++ {
		row = m.NearestDataRow(snap, row)
		col = m.ColumnForCol(0)
	}
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, m.Top)
}
