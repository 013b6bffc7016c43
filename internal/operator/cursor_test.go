package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursor_Presets(t *testing.T) {
	assert.False(t, All.HasLimit())
	assert.Equal(t, Unlimited, All.Limit())
	assert.Equal(t, 0, All.Offset())

	assert.Equal(t, 10, Default.Limit())
	assert.Equal(t, 1, First.Limit())

	assert.True(t, None.HasLimit())
	assert.Equal(t, 0, None.Limit())
}

func TestCursor_ZeroLimitHasLimit(t *testing.T) {
	c := CursorAt(0, 0)
	assert.True(t, c.HasLimit())
	assert.Equal(t, None, c)
}

func TestCursor_Setters(t *testing.T) {
	c := NewCursor(5).SetOffset(2)
	assert.Equal(t, 2, c.Offset())
	assert.Equal(t, 5, c.Limit())

	assert.Equal(t, CursorAt(2, 7), c.SetLimit(7))
	assert.Equal(t, CursorAt(2, Unlimited), c.Unlimit())
	assert.Equal(t, NewCursor(5), c.Unskip())
	assert.Equal(t, CursorAt(7, 5), c.Next())
	assert.Equal(t, All, All.Next())
}

func TestCursor_RejectsNegative(t *testing.T) {
	assert.Panics(t, func() { CursorAt(-1, 3) })
	assert.Panics(t, func() { NewCursor(-2) })
	assert.Panics(t, func() { First.SetOffset(-1) })
	assert.NotPanics(t, func() { CursorAt(0, Unlimited) })
}

func TestCursor_String(t *testing.T) {
	assert.Equal(t, "cursor(offset=0)", All.String())
	assert.Equal(t, "cursor(offset=3, limit=2)", CursorAt(3, 2).String())
}

func TestCursor_Apply(t *testing.T) {
	input := newJournal(CanCursor)
	out := CursorAt(4, 2).Apply(input)
	assert.Equal(t, CursorAt(4, 2), out.(Cursorable).Cursor())
}
