package keymap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChord(t *testing.T) {
	for _, s := range []string{"alt-d", "Alt+D", "ALT-d", "d", " D "} {
		c, err := ParseChord(s)
		require.NoError(t, err, s)
		assert.Equal(t, Alt('d'), c, s)
	}
	_, err := ParseChord("alt-")
	assert.Error(t, err)
	_, err = ParseChord("ctrl-d")
	assert.Error(t, err)
}

func TestChordPlaceholder(t *testing.T) {
	assert.Equal(t, "alt-E to focus...", Alt('e').Placeholder())
}

func TestRouterRegisterResolve(t *testing.T) {
	r := NewRouter()
	require.NoError(t, r.Register(Alt('d'), Target{Panel: "p1", Field: FieldInput}))
	require.NoError(t, r.Register(Alt('j'), Target{Panel: "p2", Field: FieldInput}))

	got, ok := r.Resolve(Alt('D'))
	require.True(t, ok)
	assert.Equal(t, Target{Panel: "p1", Field: FieldInput}, got)

	err := r.Register(Alt('d'), Target{Panel: "p2", Field: FieldMin})
	assert.True(t, errors.Is(err, ErrChordTaken))

	_, ok = r.Resolve(Alt('z'))
	assert.False(t, ok)
}

func TestRouterUnregister(t *testing.T) {
	r := NewRouter()
	require.NoError(t, r.Register(Alt('d'), Target{Panel: "p1", Field: FieldInput}))
	require.NoError(t, r.Register(Alt('f'), Target{Panel: "p1", Field: FieldOutput}))
	require.NoError(t, r.Register(Alt('j'), Target{Panel: "p2", Field: FieldInput}))
	r.Unregister("p1")

	b := r.Bindings()
	require.Len(t, b, 1)
	assert.Equal(t, "alt-J", b[0].Keys)
	require.NoError(t, r.Register(Alt('d'), Target{Panel: "p3", Field: FieldInput}))
}

func TestDefaultLayoutsDoNotOverlap(t *testing.T) {
	seen := map[Chord]string{}
	for _, pos := range []Position{Left, Right} {
		for _, f := range []Field{FieldKind, FieldInput, FieldOutput, FieldMin, FieldMax, FieldBins} {
			c, ok := ChordFor(pos, f)
			require.True(t, ok)
			if prev, dup := seen[c]; dup {
				t.Fatalf("%s used by %s and %s.%s", c, prev, pos, f)
			}
			seen[c] = pos.String() + "." + string(f)
		}
	}
	c, _ := ChordFor(Left, FieldKind)
	assert.Equal(t, "alt-E", c.String())
	c, _ = ChordFor(Right, FieldKind)
	assert.Equal(t, "alt-I", c.String())
}

func TestParsePosition(t *testing.T) {
	p, err := ParsePosition("Right")
	require.NoError(t, err)
	assert.Equal(t, Right, p)
	p, err = ParsePosition("")
	require.NoError(t, err)
	assert.Equal(t, Left, p)
	_, err = ParsePosition("middle")
	assert.Error(t, err)
}
