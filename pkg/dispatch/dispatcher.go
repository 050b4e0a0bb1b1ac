// Package dispatch implements the dispatcher core: the top-level state
// machine that orchestrates the interchange pair, chaining reassembler,
// response fragmenter and application registry into a single-step poll
// loop.
//
// The loop shape (check for ready input, dispatch by internal state, emit
// exactly one reply or abort, never block) and the mutex-free-at-the-top,
// flags-mutated-only-from-one-place discipline mirror a typical protocol
// server's process loop — here there genuinely is no mutex, because Poll
// is this core's only entry point and owns all dispatcher state outright.
package dispatch

import (
	"log/slog"

	apdudispatch "github.com/mlemaux/apdudispatch"
	"github.com/mlemaux/apdudispatch/internal/buffer"
	"github.com/mlemaux/apdudispatch/pkg/chaining"
	"github.com/mlemaux/apdudispatch/pkg/fragment"
	"github.com/mlemaux/apdudispatch/pkg/interchange"
	"github.com/mlemaux/apdudispatch/pkg/registry"
)

// Config bounds the dispatcher's static buffers. New rejects a zero or
// negative CommandCapacity or ResponseCapacity; InterchangeCapacity is not
// checked or used by the dispatcher itself.
type Config struct {
	CommandCapacity     int
	ResponseCapacity    int
	InterchangeCapacity int
}

// Dispatcher multiplexes APDU traffic from a contact and a contactless
// Interchange onto a registry of applications. It is not safe for
// concurrent use; Poll is its only entry point and must be called from a
// single goroutine.
type Dispatcher struct {
	logger *slog.Logger

	contact      interchange.Responder
	contactless  interchange.Responder
	lastServiced int // 0 = contact, 1 = contactless; fairness when both ready

	reassembler *chaining.Reassembler
	fragmenter  *fragment.Fragmenter
	workBuf     *buffer.Buffer

	selected      bool
	selectedIndex int
}

// New constructs a Dispatcher bound to the given interchange Responders.
func New(logger *slog.Logger, cfg Config, contact, contactless interchange.Responder) (*Dispatcher, error) {
	if cfg.CommandCapacity <= 0 || cfg.ResponseCapacity <= 0 {
		return nil, apdudispatch.ErrIllegalArgument
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger:      logger.With("component", "dispatch"),
		contact:     contact,
		contactless: contactless,
		reassembler: chaining.New(cfg.CommandCapacity),
		fragmenter:  fragment.New(cfg.ResponseCapacity),
		workBuf:     buffer.New(cfg.ResponseCapacity),
	}, nil
}

// Poll performs exactly one step: it drains at most one ready request from
// either interchange, processes it against apps, and deposits a response.
// It returns false if neither interchange had a pending request. apps is
// the caller-owned, ordered application list; its identity and order must
// stay stable across calls for this dispatcher's lifetime so that a
// selected index still refers to the same application next poll.
func (d *Dispatcher) Poll(apps []apdudispatch.AppHandle) (bool, error) {
	responder, iface, raw, ok := d.nextRequest()
	if !ok {
		return false, nil
	}

	reg := registry.New(apps)
	resp := d.process(reg, iface, raw)

	if err := responder.Respond(resp); err != nil {
		// The requester abandoned the slot or took it out of turn; this is
		// surfaced to the transport, never synthesized into a card status
		// word.
		d.logger.Warn("failed to post response", "err", err)
		return true, err
	}
	return true, nil
}

// nextRequest implements step 1-2: prefer whichever interchange has a
// pending request; never hold both at once.
func (d *Dispatcher) nextRequest() (interchange.Responder, apdudispatch.Interface, []byte, bool) {
	first, second := d.contact, d.contactless
	if d.lastServiced == 0 {
		first, second = d.contactless, d.contact
	}

	if first.HasRequest() {
		d.lastServiced = toggle(d.lastServiced)
		iface, raw, err := first.TakeRequest()
		if err != nil {
			return first, 0, nil, false
		}
		return first, iface, raw, true
	}
	if second.HasRequest() {
		// second is the interchange lastServiced already names.
		iface, raw, err := second.TakeRequest()
		if err != nil {
			return second, 0, nil, false
		}
		return second, iface, raw, true
	}
	return interchange.Responder{}, 0, nil, false
}

func toggle(v int) int {
	if v == 0 {
		return 1
	}
	return 0
}

// process implements steps 3-11 and returns the full reply (data plus
// trailing 2-byte status word) to deposit via the interchange.
func (d *Dispatcher) process(reg registry.Registry, iface apdudispatch.Interface, raw []byte) []byte {
	// Step 3: reassembly interface affinity.
	if d.reassembler.Active() && iface != d.reassembler.Interface() {
		d.reassembler.Reset()
		return d.emit(iface, -1, nil, apdudispatch.StatusUnknown)
	}

	// Step 4: parse.
	cmd, err := apdudispatch.Parse(raw)
	if err != nil {
		return d.emit(iface, -1, nil, apdudispatch.StatusUnknown)
	}

	// Step 5-6: GET RESPONSE.
	if cmd.IsGetResponse() {
		if d.fragmenter.Pending() && d.fragmenter.Interface() == iface {
			window, trailer, _ := d.fragmenter.Next(int(cmd.Le))
			return appendTrailer(window, trailer)
		}
		d.reassembler.Reset()
		return d.emit(iface, -1, nil, apdudispatch.StatusUnknown)
	}

	// Step 7: chaining segment.
	if cmd.Chaining() {
		if err := d.reassembler.Feed(iface, cmd); err != nil {
			return d.emit(iface, -1, nil, apdudispatch.StatusUnknown)
		}
		return d.emit(iface, -1, nil, apdudispatch.StatusSuccess)
	}

	// Step 8: absorb terminating segment of an in-progress chain.
	if d.reassembler.Active() {
		terminated, err := d.reassembler.Terminate(cmd)
		if err != nil {
			return d.emit(iface, -1, nil, apdudispatch.StatusUnknown)
		}
		cmd = terminated
	}

	// Step 9: SELECT.
	if cmd.IsSelect() {
		return d.handleSelect(reg, iface, cmd)
	}

	// Steps 10-11: non-SELECT.
	if !d.selected {
		return d.emit(iface, -1, nil, apdudispatch.StatusFileOrAppNotFound)
	}
	return d.handleCall(reg, iface, cmd)
}

func (d *Dispatcher) handleSelect(reg registry.Registry, iface apdudispatch.Interface, cmd apdudispatch.Command) []byte {
	idx, found := reg.Select(cmd.Data)
	if !found {
		d.deselectCurrent(reg)
		return d.emit(iface, -1, nil, apdudispatch.StatusFileOrAppNotFound)
	}

	d.deselectCurrent(reg)

	d.workBuf.Reset()
	writer := apdudispatch.NewReplyWriter(d.workBuf)
	app := reg.At(idx)
	err := app.Select(iface, cmd, writer)
	d.selected = true
	d.selectedIndex = idx

	sw := apdudispatch.AsStatusWord(err)
	return d.emit(iface, idx, d.workBuf.Bytes(), sw)
}

func (d *Dispatcher) handleCall(reg registry.Registry, iface apdudispatch.Interface, cmd apdudispatch.Command) []byte {
	app := reg.At(d.selectedIndex)
	if app == nil {
		// The caller's apps slice shrank or reordered out from under a
		// live selection; there is nothing safe to route to.
		d.selected = false
		return d.emit(iface, -1, nil, apdudispatch.StatusFileOrAppNotFound)
	}

	d.workBuf.Reset()
	writer := apdudispatch.NewReplyWriter(d.workBuf)
	err := app.Call(iface, cmd, writer)
	sw := apdudispatch.AsStatusWord(err)
	return d.emit(iface, d.selectedIndex, d.workBuf.Bytes(), sw)
}

func (d *Dispatcher) deselectCurrent(reg registry.Registry) {
	if !d.selected {
		return
	}
	if app := reg.At(d.selectedIndex); app != nil {
		app.Deselect()
	}
	d.selected = false
}

// emit arms the fragmenter with a freshly produced reply and returns the
// full response to deposit: first window plus trailer. Routing every
// response-producing path through here (rather than only the long-reply
// path) gives the GET RESPONSE interruption rule for free, since Arm always
// cancels any stale pending fragmentation first.
func (d *Dispatcher) emit(iface apdudispatch.Interface, ownerIndex int, reply []byte, sw apdudispatch.StatusWord) []byte {
	window, trailer, _, err := d.fragmenter.Arm(iface, ownerIndex, reply, sw)
	if err != nil {
		sw := apdudispatch.StatusUnknown.Bytes()
		return sw[:]
	}
	return appendTrailer(window, trailer)
}

func appendTrailer(window []byte, trailer [2]byte) []byte {
	out := make([]byte, 0, len(window)+2)
	out = append(out, window...)
	out = append(out, trailer[0], trailer[1])
	return out
}
