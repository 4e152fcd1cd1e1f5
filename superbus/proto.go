// Package superbus implements the SuperBus 2000 automation protocol spoken
// by Concord 4 panels: line-feed delimited ASCII-hex frames with an additive
// checksum, plus raw single-byte ACK/NAK control flow.
package superbus

import (
	"encoding/hex"
	"strings"
)

const (
	// Ctrl bytes are sent raw on the wire, outside any frame.
	CtrlAck byte = 0x06
	CtrlNak byte = 0x15

	startMarker byte = '\n'
)

// checksum is the byte sum of the length byte and payload, mod 256.
func checksum(msg []byte) byte {
	var sum byte
	for _, b := range msg {
		sum += b
	}
	return sum
}

// Encode frames a message payload for the wire: start marker, then the
// length byte, payload, and checksum, all hex-encoded.
//
// The length byte counts everything that follows it (payload + checksum).
func Encode(payload []byte) []byte {
	msg := make([]byte, 0, len(payload)+2)
	msg = append(msg, byte(len(payload)+1))
	msg = append(msg, payload...)
	msg = append(msg, checksum(msg))
	return append([]byte{startMarker}, []byte(strings.ToUpper(hex.EncodeToString(msg)))...)
}

func hexByte(src []byte) (byte, bool) {
	var dst [1]byte
	if _, err := hex.Decode(dst[:], src); err != nil {
		return 0, false
	}
	return dst[0], true
}

func hexBytes(src []byte) ([]byte, bool) {
	dst := make([]byte, len(src)/2)
	if _, err := hex.Decode(dst, src); err != nil {
		return nil, false
	}
	return dst, true
}
