package apdudispatch

// AppHandle is the capability set a card application exposes to the
// dispatcher. Applications are externally owned; the dispatcher borrows
// one only for the duration of a single Select or Call invocation.
type AppHandle interface {
	// AID returns the application's 1..16 byte identifier.
	AID() []byte

	// Select is invoked when this application is chosen by SELECT. It may
	// populate reply and must return nil on success; any non-nil error is
	// converted to a StatusWord (StatusUnknown if it isn't already one) and
	// relayed to the host verbatim.
	Select(iface Interface, cmd Command, reply *ReplyWriter) error

	// Call is invoked for every non-SELECT command while this application
	// holds the session.
	Call(iface Interface, cmd Command, reply *ReplyWriter) error

	// Deselect is invoked exactly once when the application loses
	// selection. It must clear sensitive state and never fails.
	Deselect()
}
