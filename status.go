package apdudispatch

import "fmt"

// StatusWord is an ISO 7816-4 2-byte SW1/SW2 status word. It implements
// error so an application's Select/Call can return one directly.
type StatusWord uint16

// Status words actively produced by the dispatcher and the APDU applications
// it drives. An application may return any other StatusWord value; it is
// relayed to the host verbatim.
const (
	StatusSuccess                 StatusWord = 0x9000
	StatusFileOrAppNotFound       StatusWord = 0x6A82
	StatusInstructionNotSupported StatusWord = 0x6D00
	StatusUnknown                 StatusWord = 0x6F00
)

// MoreData builds a `61xx` status word: xx is the number of additional
// response bytes available, capped at 255 (0x00 meaning "256 or more").
func MoreData(remaining int) StatusWord {
	if remaining >= 256 {
		return 0x6100
	}
	return StatusWord(0x6100 | remaining)
}

func (sw StatusWord) Error() string {
	return fmt.Sprintf("status word %04X", uint16(sw))
}

// Bytes returns the big-endian SW1 SW2 encoding.
func (sw StatusWord) Bytes() [2]byte {
	return [2]byte{byte(sw >> 8), byte(sw)}
}

// AsStatusWord extracts a StatusWord from an application error, defaulting
// to StatusUnknown (6F00) when err does not carry one.
func AsStatusWord(err error) StatusWord {
	if err == nil {
		return StatusSuccess
	}
	if sw, ok := err.(StatusWord); ok {
		return sw
	}
	return StatusUnknown
}
