package chaining

import (
	"testing"

	apdudispatch "github.com/mlemaux/apdudispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedThenTerminate(t *testing.T) {
	r := New(64)

	err := r.Feed(apdudispatch.Contact, apdudispatch.Command{Cla: 0x10, Ins: 0x20, Data: []byte{1, 2, 3}})
	require.NoError(t, err)
	assert.True(t, r.Active())
	assert.Equal(t, apdudispatch.Contact, r.Interface())

	out, err := r.Terminate(apdudispatch.Command{Cla: 0x00, Ins: 0x10, P1: 0x01, P2: 0x02, Data: []byte{4, 5}})
	require.NoError(t, err)
	assert.False(t, r.Active())
	// Header comes from the terminating segment, not the first one.
	assert.Equal(t, byte(0x00), out.Cla)
	assert.Equal(t, byte(0x10), out.Ins)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, out.Data)
}

func TestFeedEmptySegmentArmsWhenIdle(t *testing.T) {
	r := New(64)
	err := r.Feed(apdudispatch.Contact, apdudispatch.Command{Cla: 0x90, Ins: 0x60})
	require.NoError(t, err)
	assert.True(t, r.Active())
}

func TestInterfaceMismatchAborts(t *testing.T) {
	r := New(64)
	require.NoError(t, r.Feed(apdudispatch.Contact, apdudispatch.Command{Cla: 0x10, Data: []byte{1}}))

	err := r.Feed(apdudispatch.Contactless, apdudispatch.Command{Cla: 0x10, Data: []byte{2}})
	assert.ErrorIs(t, err, apdudispatch.StatusUnknown)
	assert.False(t, r.Active())
}

func TestOverflowAborts(t *testing.T) {
	r := New(4)
	require.NoError(t, r.Feed(apdudispatch.Contact, apdudispatch.Command{Cla: 0x10, Data: []byte{1, 2, 3}}))

	err := r.Feed(apdudispatch.Contact, apdudispatch.Command{Cla: 0x10, Data: []byte{4, 5}})
	assert.ErrorIs(t, err, apdudispatch.StatusUnknown)
	assert.False(t, r.Active())
}
