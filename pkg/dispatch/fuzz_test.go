package dispatch

import (
	"testing"

	apdudispatch "github.com/mlemaux/apdudispatch"
)

// FuzzPollNeverPanicsOrHangs feeds arbitrary bytes through one Poll step
// and checks what must hold regardless of input: Poll always terminates,
// and whenever it reports work done it leaves behind a response of at
// least two bytes ending in some status word.
func FuzzPollNeverPanicsOrHangs(f *testing.F) {
	seeds := [][]byte{
		{0x00, 0xA4, 0x04, 0x00, 0x05, 0x0A, 0x01, 0x00, 0x00, 0x01},
		{0x00, 0x10, 0x00, 0x00, 0x05, 0x01, 0x02, 0x03, 0x04, 0x05},
		{0x00, 0xC0, 0x00, 0x00},
		{0x10, 0x20, 0x00, 0x00, 0xFF},
		{0xFF, 0x00, 0x00, 0x00},
		{0x00},
		{},
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, raw []byte) {
		d, req, _ := newTestDispatcher(t)
		app := &echoApp{aid: hb("0A01000001"), ins: 0x10}
		apps := []apdudispatch.AppHandle{app}

		if err := req.Request(apdudispatch.Contact, raw); err != nil {
			// Oversized input rejected at the mailbox; nothing further to
			// check.
			return
		}

		worked, err := d.Poll(apps)
		if err != nil {
			return
		}
		if !worked {
			t.Fatalf("Poll reported no work after a successful Request")
		}

		resp, err := req.TakeResponse()
		if err != nil {
			t.Fatalf("TakeResponse after a worked Poll: %v", err)
		}
		if len(resp) < 2 {
			t.Fatalf("response shorter than a status word: %x", resp)
		}
	})
}
