package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()
	a, b, c := New(42), New(42), New(43)

	same, differ := true, false
	for i := 0; i < 100; i++ {
		x, y, z := a.IntN(1000), b.IntN(1000), c.IntN(1000)
		same = same && x == y
		differ = differ || x != z
	}
	assert.True(t, same, "same seed gives the same draws")
	assert.True(t, differ, "neighbouring seeds diverge")
}

func TestSequence(t *testing.T) {
	t.Parallel()
	s := NewSequence(3, 10, -1)
	assert.Equal(t, 3, s.Remaining())

	assert.Equal(t, 3, s.IntN(8))
	assert.Equal(t, 2, s.IntN(8), "values wrap into range")
	assert.Equal(t, 7, s.IntN(8), "negative values wrap from the top")
	assert.Zero(t, s.Remaining())
	assert.Zero(t, s.IntN(8), "exhausted sequences draw zero")

	assert.Panics(t, func() { s.IntN(0) })
}
