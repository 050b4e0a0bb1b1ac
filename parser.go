package apdudispatch

// Parse decodes a raw command APDU buffer per ISO/IEC 7816-4, handling the
// short-form cases 1/2S/3S/4S and the extended-length cases 3E/4E. It
// returns StatusUnknown (6F00) on any structural malformation; a well-formed
// APDU with an unrecognised CLA is still parsed — only structural
// malformation yields 6F00 from the parser itself.
func Parse(raw []byte) (Command, error) {
	l := len(raw)
	if l < 4 {
		return Command{}, StatusUnknown
	}
	// CLA 0xFF is reserved by ISO/IEC 7816-4 and never denotes a usable
	// command; treat it as structural malformation rather than letting it
	// fall through to normal CLA-agnostic parsing.
	if raw[0] == 0xFF {
		return Command{}, StatusUnknown
	}

	cmd := Command{Cla: raw[0], Ins: raw[1], P1: raw[2], P2: raw[3]}

	switch {
	case l == 4:
		// Case 1: header only.
		return cmd, nil

	case l == 5:
		// Case 2S: header + Le.
		cmd.Le = uint16(raw[4])
		return cmd, nil

	case raw[4] == 0x00 && l >= 7:
		// Extended length: 00 + 2-byte Lc, optional 2-byte Le.
		lc := int(raw[5])<<8 | int(raw[6])
		remaining := l - 7
		switch {
		case remaining == lc:
			// Case 3E: no Le.
			cmd.Data = raw[7 : 7+lc]
			return cmd, nil
		case remaining == lc+2:
			// Case 4E: trailing 2-byte Le.
			cmd.Data = raw[7 : 7+lc]
			leOff := 7 + lc
			cmd.Le = uint16(raw[leOff])<<8 | uint16(raw[leOff+1])
			return cmd, nil
		default:
			return Command{}, StatusUnknown
		}

	default:
		// Short form with data: byte 4 is Lc.
		lc := int(raw[4])
		remaining := l - 5
		switch {
		case remaining == lc:
			// Case 3S: no Le.
			cmd.Data = raw[5 : 5+lc]
			return cmd, nil
		case remaining == lc+1:
			// Case 4S: trailing 1-byte Le.
			cmd.Data = raw[5 : 5+lc]
			le := raw[5+lc]
			cmd.Le = uint16(le)
			return cmd, nil
		default:
			return Command{}, StatusUnknown
		}
	}
}
