// Package interchange implements the single-slot rendezvous mailbox used
// between a transport (Requester) and the dispatcher (Responder).
//
// The hand-off is non-blocking on both sides (a bounded slot fed the way a
// channel would be with `select { case ch <- x: default: }`, never
// blocking the caller), with explicit mutex-guarded state transitions
// rather than an implicit channel state.
package interchange

import (
	"sync"

	apdudispatch "github.com/mlemaux/apdudispatch"
	"github.com/mlemaux/apdudispatch/internal/buffer"
)

type state uint8

const (
	stateIdle state = iota
	stateRequested
	stateProcessing
	stateResponded
)

// Interchange is the shared slot behind a Requester/Responder pair.
type Interchange struct {
	mu    sync.Mutex
	state state

	request  *buffer.Buffer
	response *buffer.Buffer
	iface    apdudispatch.Interface
}

// New allocates an Interchange whose request and response payloads are each
// bounded by capacity (default 3072).
func New(capacity int) *Interchange {
	return &Interchange{
		request:  buffer.New(capacity),
		response: buffer.New(capacity),
	}
}

// Split returns the two single-owner handles over ic.
func (ic *Interchange) Split() (Requester, Responder) {
	return Requester{ic: ic}, Responder{ic: ic}
}

// Requester is the transport-side handle: it deposits requests and
// retrieves responses.
type Requester struct {
	ic *Interchange
}

// Request deposits a new command, moving Idle -> Requested. Fails with
// ErrBusy if a request is already in flight.
func (r Requester) Request(iface apdudispatch.Interface, data []byte) error {
	ic := r.ic
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if ic.state != stateIdle {
		return apdudispatch.ErrBusy
	}
	ic.request.Reset()
	if err := ic.request.Extend(data); err != nil {
		return err
	}
	ic.iface = iface
	ic.state = stateRequested
	return nil
}

// TakeResponse retrieves a response previously posted by the dispatcher,
// moving Responded -> Idle. Fails with ErrNotReady if none is ready.
func (r Requester) TakeResponse() ([]byte, error) {
	ic := r.ic
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if ic.state != stateResponded {
		return nil, apdudispatch.ErrNotReady
	}
	out := make([]byte, ic.response.Len())
	copy(out, ic.response.Bytes())
	ic.state = stateIdle
	return out, nil
}

// Responder is the dispatcher-side handle: it drains requests and posts
// responses.
type Responder struct {
	ic *Interchange
}

// HasRequest reports whether a request is waiting to be taken, without
// consuming it.
func (r Responder) HasRequest() bool {
	ic := r.ic
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.state == stateRequested
}

// TakeRequest retrieves the pending request, moving Requested ->
// Processing. Fails with ErrNotReady if none is pending.
func (r Responder) TakeRequest() (apdudispatch.Interface, []byte, error) {
	ic := r.ic
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if ic.state != stateRequested {
		return 0, nil, apdudispatch.ErrNotReady
	}
	out := make([]byte, ic.request.Len())
	copy(out, ic.request.Bytes())
	ic.state = stateProcessing
	return ic.iface, out, nil
}

// Respond posts the dispatcher's reply, moving Processing -> Responded.
// Fails with ErrBusy if no request is currently being processed.
func (r Responder) Respond(data []byte) error {
	ic := r.ic
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if ic.state != stateProcessing {
		return apdudispatch.ErrBusy
	}
	ic.response.Reset()
	if err := ic.response.Extend(data); err != nil {
		return err
	}
	ic.state = stateResponded
	return nil
}
