package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPushSetsHeadAndIndexZero(t *testing.T) {
	h := New(0)
	assert.Equal(t, DefaultCapacity, h.Capacity())
	h.Push("hello")
	cur, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, "hello", cur)
}

func TestPushDedupsAgainstHead(t *testing.T) {
	h := New(10)
	h.Push("a")
	h.Push("a")
	assert.Equal(t, 1, h.Size())
}

func TestPrevNextMoveIndex(t *testing.T) {
	h := New(10)
	h.Push("first")
	h.Push("second")
	cur, _ := h.Current()
	assert.Equal(t, "second", cur)
	h.Prev()
	cur, _ = h.Current()
	assert.Equal(t, "first", cur)
	h.Next()
	cur, _ = h.Current()
	assert.Equal(t, "second", cur)
}

func TestHistoryNeverExceedsCapacity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 20).Draw(t, "capacity")
		pushes := rapid.SliceOfN(rapid.String(), 0, 50).Draw(t, "pushes")

		h := New(capacity)
		for _, s := range pushes {
			h.Push(s)
			if h.Size() > h.Capacity() {
				t.Fatalf("size %d exceeds capacity %d", h.Size(), h.Capacity())
			}
			cur, ok := h.Current()
			if !ok || cur != s {
				t.Fatalf("after push(%q), current = %q, ok=%v", s, cur, ok)
			}
		}
	})
}
