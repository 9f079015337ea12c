package core

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierPoolReusesFreedSlots(t *testing.T) {
	p := NewIdentifierPool(4)

	a := p.Acquire("a")
	b := p.Acquire("b")
	assert.Equal(t, uint32(1), a)
	assert.Equal(t, uint32(2), b)
	assert.Equal(t, 2, p.Live())

	require.NoError(t, p.Release(a))
	assert.Nil(t, p.Owner(a))

	c := p.Acquire("c")
	assert.Equal(t, a, c)
	assert.Equal(t, "c", p.Owner(c))
}

func TestIdentifierPoolReleaseErrors(t *testing.T) {
	p := NewIdentifierPool(1)
	assert.Error(t, p.Release(0))
	assert.Error(t, p.Release(3))

	id := p.Acquire(struct{}{})
	require.NoError(t, p.Release(id))
	assert.True(t, errors.Is(p.Release(id), ErrReleased))
}

func TestIdentifierPoolEach(t *testing.T) {
	p := NewIdentifierPool(0)
	p.Acquire("x")
	y := p.Acquire("y")
	p.Acquire("z")
	require.NoError(t, p.Release(y))

	var seen []interface{}
	p.Each(func(_ uint32, owner interface{}) { seen = append(seen, owner) })
	assert.Equal(t, []interface{}{"x", "z"}, seen)
}
