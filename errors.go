package apdudispatch

import "errors"

var (
	// ErrIllegalArgument is returned by the dispatcher constructor when its
	// command or response capacity is zero or negative.
	ErrIllegalArgument = errors.New("apdudispatch: illegal argument")

	// ErrBusy is returned by an Interchange transition attempted while the
	// slot is not in the state that permits it.
	ErrBusy = errors.New("apdudispatch: interchange busy")

	// ErrNotReady is returned by a take_response/take_request style call
	// when there is nothing waiting to be taken.
	ErrNotReady = errors.New("apdudispatch: interchange not ready")
)
