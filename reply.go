package apdudispatch

import "github.com/mlemaux/apdudispatch/internal/buffer"

// ReplyWriter is the fixed-capacity sink an AppHandle writes its response
// bytes into during Select/Call. It never grows past its construction
// capacity.
type ReplyWriter struct {
	buf *buffer.Buffer
}

// NewReplyWriter wraps buf for use by an application invocation.
func NewReplyWriter(buf *buffer.Buffer) *ReplyWriter {
	return &ReplyWriter{buf: buf}
}

// Write implements io.Writer; it fails with ErrOverflow rather than
// truncating or partially writing.
func (w *ReplyWriter) Write(p []byte) (int, error) {
	if err := w.buf.Extend(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Len returns the number of bytes written so far.
func (w *ReplyWriter) Len() int {
	return w.buf.Len()
}
