// Package fragment implements response-chaining fragmentation: serving an
// application reply longer than 256 bytes through a GET RESPONSE (00 C0 ...)
// chain with ISO 7816 `61xx` remaining-byte status words.
//
// The shape mirrors a segmented block upload (serve a long value a window
// at a time, track how much is left, encode it in the reply), with a
// continuation toggle bit replaced by ISO 7816's `61xx` remaining-byte
// count.
package fragment

import (
	apdudispatch "github.com/mlemaux/apdudispatch"
	"github.com/mlemaux/apdudispatch/internal/buffer"
)

// WindowSize is the fixed GET RESPONSE window.
const WindowSize = 256

// Fragmenter holds a possibly-oversized response and serves it in
// WindowSize-byte windows.
type Fragmenter struct {
	buf        *buffer.Buffer
	cursor     int
	pending    bool
	iface      apdudispatch.Interface
	ownerIndex int
}

// New allocates a Fragmenter with the given capacity (default 7609).
func New(capacity int) *Fragmenter {
	return &Fragmenter{buf: buffer.New(capacity)}
}

// Pending reports whether a fragmented response is awaiting further GET
// RESPONSE calls.
func (f *Fragmenter) Pending() bool {
	return f.pending
}

// Interface returns the interface the pending response is locked to. Only
// meaningful while Pending.
func (f *Fragmenter) Interface() apdudispatch.Interface {
	return f.iface
}

// OwnerIndex returns the registry index of the application that produced
// the pending response. Only meaningful while Pending.
func (f *Fragmenter) OwnerIndex() int {
	return f.ownerIndex
}

// Cancel discards any pending response. Used when a non-GET-RESPONSE
// command interrupts a fragmented reply in progress.
func (f *Fragmenter) Cancel() {
	f.buf.Reset()
	f.pending = false
	f.cursor = 0
}

// Arm loads a freshly produced application reply. If it fits in one
// WindowSize-byte window, the full reply plus trailer is returned and no
// pending state is armed (trailer is sw). Otherwise the first window is
// returned with a `61xx` trailer and Pending becomes true; the final
// status word of a fragmented reply is always StatusSuccess regardless of
// sw: an application cannot report a multi-window error.
func (f *Fragmenter) Arm(iface apdudispatch.Interface, ownerIndex int, reply []byte, sw apdudispatch.StatusWord) (window []byte, trailer [2]byte, pending bool, err error) {
	f.Cancel()

	if len(reply) <= WindowSize {
		return reply, sw.Bytes(), false, nil
	}

	if err := f.buf.Extend(reply); err != nil {
		return nil, apdudispatch.StatusUnknown.Bytes(), false, apdudispatch.StatusUnknown
	}
	f.iface = iface
	f.ownerIndex = ownerIndex
	f.pending = true
	f.cursor = WindowSize

	window = f.buf.Bytes()[:WindowSize]
	trailer = apdudispatch.MoreData(f.buf.Len() - f.cursor).Bytes()
	return window, trailer, true, nil
}

// Next serves the next window in response to a GET RESPONSE command. le is
// the requested window length (0 meaning WindowSize); Next never returns
// more than WindowSize bytes regardless of le. Next must only be called
// while Pending.
func (f *Fragmenter) Next(le int) (window []byte, trailer [2]byte, pending bool) {
	n := le
	if n <= 0 || n > WindowSize {
		n = WindowSize
	}
	remainingTotal := f.buf.Len() - f.cursor
	if n > remainingTotal {
		n = remainingTotal
	}

	window = f.buf.Bytes()[f.cursor : f.cursor+n]
	f.cursor += n
	remaining := f.buf.Len() - f.cursor

	if remaining > 0 {
		return window, apdudispatch.MoreData(remaining).Bytes(), true
	}
	f.Cancel()
	return window, apdudispatch.StatusSuccess.Bytes(), false
}
