// Package apdudispatch implements a single-threaded, no-heap APDU dispatch
// core: it multiplexes ISO/IEC 7816-4 command/response traffic arriving on
// a contact and a contactless channel onto a registry of card applications.
package apdudispatch

import "fmt"

// Interface identifies which physical channel carries an in-flight command.
type Interface uint8

const (
	// Contact identifies the CCID/contact channel.
	Contact Interface = iota
	// Contactless identifies the ISO 14443 channel.
	Contactless
)

func (i Interface) String() string {
	switch i {
	case Contact:
		return "contact"
	case Contactless:
		return "contactless"
	default:
		return fmt.Sprintf("interface(%d)", uint8(i))
	}
}
