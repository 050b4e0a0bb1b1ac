// Package registry holds the ordered set of applications a Dispatcher can
// route SELECT commands to.
//
// It is an ordered, indexed collection with a single lookup entry point;
// the keyspace is a variable-length AID, and the match rule is the
// ISO/IEC 7816-4 §8.2.2.2 bidirectional-prefix rule rather than exact
// equality.
package registry

import apdudispatch "github.com/mlemaux/apdudispatch"

// Registry is constructed fresh from the caller-supplied ordered application
// list on every Dispatcher.Poll call — it holds no state of its own beyond
// that slice.
type Registry struct {
	apps []apdudispatch.AppHandle
}

// New wraps apps in registration order. Order matters: Select returns the
// first match.
func New(apps []apdudispatch.AppHandle) Registry {
	return Registry{apps: apps}
}

// Select resolves a candidate AID (from a SELECT command's data field) to
// an application index. The match is bidirectional-prefix: the candidate
// may be a prefix of the applet's AID (truncated SELECT) or vice versa.
func (r Registry) Select(candidate []byte) (index int, ok bool) {
	for i, app := range r.apps {
		if aidsMatch(candidate, app.AID()) {
			return i, true
		}
	}
	return 0, false
}

// At returns the application at index, or nil if out of range.
func (r Registry) At(index int) apdudispatch.AppHandle {
	if index < 0 || index >= len(r.apps) {
		return nil
	}
	return r.apps[index]
}

func aidsMatch(candidate, aid []byte) bool {
	n := len(candidate)
	if len(aid) < n {
		n = len(aid)
	}
	if n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		if candidate[i] != aid[i] {
			return false
		}
	}
	return true
}
