package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushAndExtend(t *testing.T) {
	b := New(4)
	require.NoError(t, b.Push(1))
	require.NoError(t, b.Extend([]byte{2, 3}))
	assert.Equal(t, []byte{1, 2, 3}, b.Bytes())
	assert.Equal(t, 1, b.Available())
}

func TestPushOverflowLeavesBufferUnchanged(t *testing.T) {
	b := New(2)
	require.NoError(t, b.Push(1))
	require.NoError(t, b.Push(2))
	err := b.Push(3)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, []byte{1, 2}, b.Bytes())
}

func TestExtendOverflowIsAllOrNothing(t *testing.T) {
	b := New(4)
	require.NoError(t, b.Extend([]byte{1, 2}))
	err := b.Extend([]byte{3, 4, 5})
	assert.ErrorIs(t, err, ErrOverflow)
	// partial write must not have happened
	assert.Equal(t, []byte{1, 2}, b.Bytes())
}

func TestReset(t *testing.T) {
	b := New(4)
	require.NoError(t, b.Extend([]byte{1, 2, 3}))
	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 4, b.Available())
}
