// Package demoapp provides a minimal AppHandle used by the command-line
// driver and by tests that need a stand-in card application.
//
// Echo is an applet identified by a fixed AID that answers exactly one
// instruction byte with a fixed 5-byte header followed by an echo of
// whatever data it was given, and rejects every other instruction with
// "instruction not supported".
package demoapp

import (
	"log/slog"

	apdudispatch "github.com/mlemaux/apdudispatch"
)

// Echo is an AppHandle whose Call answers a single configured instruction
// byte with a 5-byte zero header followed by the command's data, verbatim.
// It exists to give the command-line driver and tests something concrete
// to SELECT and call without depending on real card applet logic.
type Echo struct {
	logger *slog.Logger
	aid    []byte
	ins    byte
}

// NewEcho constructs an Echo application identified by aid and answering
// instruction ins. aid is held by reference, not copied; callers must not
// mutate it afterwards.
func NewEcho(logger *slog.Logger, aid []byte, ins byte) *Echo {
	if logger == nil {
		logger = slog.Default()
	}
	return &Echo{logger: logger.With("app", "echo"), aid: aid, ins: ins}
}

// AID implements apdudispatch.AppHandle.
func (e *Echo) AID() []byte {
	return e.aid
}

// Select implements apdudispatch.AppHandle. It produces no select response
// data; a SELECT simply succeeds with 9000.
func (e *Echo) Select(iface apdudispatch.Interface, cmd apdudispatch.Command, reply *apdudispatch.ReplyWriter) error {
	e.logger.Debug("selected", "interface", iface)
	return nil
}

// Call implements apdudispatch.AppHandle.
func (e *Echo) Call(iface apdudispatch.Interface, cmd apdudispatch.Command, reply *apdudispatch.ReplyWriter) error {
	if cmd.Ins != e.ins {
		e.logger.Warn("unsupported instruction", "ins", cmd.Ins)
		return apdudispatch.StatusInstructionNotSupported
	}
	if _, err := reply.Write([]byte{0, 0, 0, 0, 0}); err != nil {
		return err
	}
	if len(cmd.Data) > 0 {
		if _, err := reply.Write(cmd.Data); err != nil {
			return err
		}
	}
	return nil
}

// Deselect implements apdudispatch.AppHandle.
func (e *Echo) Deselect() {
	e.logger.Debug("deselected")
}
