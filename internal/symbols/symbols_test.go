package symbols

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestProcessIdempotentAtLevelNone(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tbl := Default()
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,40}`).Draw(t, "text")

		got := tbl.Process(text, LevelNone)
		want := strings.Join(strings.Fields(text), " ")
		if got != want {
			t.Fatalf("Process(%q, none) = %q, want %q", text, got, want)
		}
	})
}

func TestPercentAtMostLevel(t *testing.T) {
	tbl := Default()
	out := tbl.Process("foo: 100%", LevelMost)
	assert.Equal(t, "foo colon 100 percent", out)
}

func TestRepeatedDotsCollapse(t *testing.T) {
	tbl := Default()
	out := tbl.Process("wait....", LevelNone)
	assert.Contains(t, out, "4")
}

func TestSingleCharacterForcesCharacterLevel(t *testing.T) {
	tbl := Default()
	out := tbl.Process("!", LevelNone)
	assert.Equal(t, "bang !", out)
}
