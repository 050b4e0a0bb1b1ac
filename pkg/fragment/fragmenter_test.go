package fragment

import (
	"testing"

	apdudispatch "github.com/mlemaux/apdudispatch"
	"github.com/stretchr/testify/assert"
)

func TestArmShortReplyNoPending(t *testing.T) {
	f := New(1024)
	reply := []byte{1, 2, 3}
	window, trailer, pending, err := f.Arm(apdudispatch.Contact, 0, reply, apdudispatch.StatusSuccess)
	assert.NoError(t, err)
	assert.False(t, pending)
	assert.False(t, f.Pending())
	assert.Equal(t, reply, window)
	assert.Equal(t, apdudispatch.StatusSuccess.Bytes(), trailer)
}

func TestArmLongReplyFragmentsInto256ByteWindows(t *testing.T) {
	f := New(2048)
	reply := make([]byte, 547)
	for i := range reply {
		reply[i] = byte(i)
	}

	window, trailer, pending, err := f.Arm(apdudispatch.Contact, 2, reply, apdudispatch.StatusSuccess)
	assert.NoError(t, err)
	assert.True(t, pending)
	assert.Len(t, window, 256)
	assert.Equal(t, [2]byte{0x61, 0x00}, trailer)

	window, trailer, pending = f.Next(0)
	assert.True(t, pending)
	assert.Len(t, window, 256)
	assert.Equal(t, [2]byte{0x61, 0x23}, trailer)

	window, trailer, pending = f.Next(0)
	assert.False(t, pending)
	assert.False(t, f.Pending())
	assert.Len(t, window, 35)
	assert.Equal(t, apdudispatch.StatusSuccess.Bytes(), trailer)

	// Concatenation of all windows equals the original reply.
	var all []byte
	f2 := New(2048)
	w, _, _, _ := f2.Arm(apdudispatch.Contact, 0, reply, apdudispatch.StatusSuccess)
	all = append(all, w...)
	for f2.Pending() {
		w, _, _ = f2.Next(0)
		all = append(all, w...)
	}
	assert.Equal(t, reply, all)
}

func TestCancelClearsPendingState(t *testing.T) {
	f := New(2048)
	reply := make([]byte, 300)
	_, _, pending, _ := f.Arm(apdudispatch.Contact, 0, reply, apdudispatch.StatusSuccess)
	assert.True(t, pending)
	f.Cancel()
	assert.False(t, f.Pending())
}
