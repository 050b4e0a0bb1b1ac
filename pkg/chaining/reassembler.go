// Package chaining implements command-chaining reassembly: concatenating a
// sequence of CLA-bit-0x10-tagged command segments into one logical
// command.
//
// The shape mirrors a segmented block download (accumulate into a buffer
// across RX events, track a continuation flag, detect the terminating
// segment), with an alternating toggle bit replaced by ISO 7816's chaining
// bit, and interface affinity locked on the first segment rather than
// being implicit in a single transport.
package chaining

import (
	apdudispatch "github.com/mlemaux/apdudispatch"
	"github.com/mlemaux/apdudispatch/internal/buffer"
)

// Reassembler accumulates command-chained segments. Only one chain can be
// in progress at a time, across both interfaces — arrival on the
// non-locked interface aborts the chain.
type Reassembler struct {
	buf    *buffer.Buffer
	active bool
	iface  apdudispatch.Interface
}

// New allocates a Reassembler with the given capacity (default 7609; must
// be able to hold the worst-case extended APDU).
func New(capacity int) *Reassembler {
	return &Reassembler{buf: buffer.New(capacity)}
}

// Active reports whether a chain is in progress.
func (r *Reassembler) Active() bool {
	return r.active
}

// Interface returns the interface the in-progress chain is locked to. Only
// meaningful while Active.
func (r *Reassembler) Interface() apdudispatch.Interface {
	return r.iface
}

// Reset discards any in-progress chain.
func (r *Reassembler) Reset() {
	r.buf.Reset()
	r.active = false
}

// Feed absorbs a non-terminating chained segment (CLA bit 0x10 set). On the
// first segment of a new chain it locks the interface and resets the
// buffer. A segment arriving on a different interface than the locked one,
// or one that would overflow the buffer, aborts the chain and returns an
// error the caller should translate to StatusUnknown.
func (r *Reassembler) Feed(iface apdudispatch.Interface, cmd apdudispatch.Command) error {
	if !r.active {
		r.buf.Reset()
		r.iface = iface
		r.active = true
	} else if iface != r.iface {
		r.Reset()
		return apdudispatch.StatusUnknown
	}

	if err := r.buf.Extend(cmd.Data); err != nil {
		r.Reset()
		return apdudispatch.StatusUnknown
	}
	return nil
}

// Terminate absorbs the terminating segment (CLA bit 0x10 clear) of an
// in-progress chain and returns the synthetic reassembled command. The
// synthetic command's header (CLA/INS/P1/P2/Le) is the *terminating*
// segment's, not the first segment's — only its Data is the concatenation
// of every segment. Terminate must only be called while Active.
func (r *Reassembler) Terminate(cmd apdudispatch.Command) (apdudispatch.Command, error) {
	if err := r.buf.Extend(cmd.Data); err != nil {
		r.Reset()
		return apdudispatch.Command{}, apdudispatch.StatusUnknown
	}

	data := make([]byte, r.buf.Len())
	copy(data, r.buf.Bytes())
	out := apdudispatch.Command{Cla: cmd.Cla, Ins: cmd.Ins, P1: cmd.P1, P2: cmd.P2, Le: cmd.Le, Data: data}
	r.active = false
	return out, nil
}
