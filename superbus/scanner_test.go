package superbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScannerSingleFrame(t *testing.T) {
	var s Scanner
	tokens := s.Feed(Encode([]byte{0x02}))
	require.Len(t, tokens, 1)
	require.Equal(t, Frame{Payload: []byte{0x02}}, tokens[0])
}

func TestScannerChunkingIndependence(t *testing.T) {
	var wire []byte
	wire = append(wire, Encode([]byte{0x02})...)
	wire = append(wire, CtrlAck)
	wire = append(wire, Encode([]byte{0x21, 0x01, 0x01, 0x00, 0x02, 0x01})...)
	wire = append(wire, CtrlNak)
	wire = append(wire, Encode([]byte{0x20})...)

	var whole Scanner
	want := whole.Feed(wire)
	require.Len(t, want, 5)

	for _, size := range []int{1, 2, 3, 7} {
		var s Scanner
		var got []Token
		for i := 0; i < len(wire); i += size {
			end := i + size
			if end > len(wire) {
				end = len(wire)
			}
			got = append(got, s.Feed(wire[i:end])...)
		}
		require.Equal(t, want, got, "chunk size %d", size)
	}
}

func TestScannerCtrlBytes(t *testing.T) {
	var s Scanner
	tokens := s.Feed([]byte{CtrlAck, CtrlNak, CtrlAck})
	require.Equal(t, []Token{Ack{}, Nak{}, Ack{}}, tokens)
}

func TestScannerResync(t *testing.T) {
	good := Encode([]byte{0x21, 0x01, 0x01, 0x00, 0x02, 0x01})

	corrupt := append([]byte{}, Encode([]byte{0x02})...)
	corrupt[len(corrupt)-1] ^= 0x01 // break the checksum

	var wire []byte
	wire = append(wire, corrupt...)
	wire = append(wire, good...)

	var s Scanner
	tokens := s.Feed(wire)
	require.Len(t, tokens, 2)
	require.Equal(t, BadFrame{}, tokens[0])
	require.Equal(t, Frame{Payload: []byte{0x21, 0x01, 0x01, 0x00, 0x02, 0x01}}, tokens[1])
}

func TestScannerNoiseBeforeFrame(t *testing.T) {
	var s Scanner
	wire := append([]byte("garbage"), Encode([]byte{0x20})...)
	tokens := s.Feed(wire)
	require.Equal(t, []Token{Frame{Payload: []byte{0x20}}}, tokens)
}

func TestScannerBadLengthResync(t *testing.T) {
	var s Scanner
	// zero length is malformed; the scanner must skip it and recover the
	// frame that follows.
	wire := append([]byte("\n00"), Encode([]byte{0x20})...)
	tokens := s.Feed(wire)
	require.Equal(t, []Token{Frame{Payload: []byte{0x20}}}, tokens)
}

func TestScannerPartialFrame(t *testing.T) {
	var s Scanner
	wire := Encode([]byte{0x02, 0x03})
	require.Empty(t, s.Feed(wire[:3]))
	tokens := s.Feed(wire[3:])
	require.Equal(t, []Token{Frame{Payload: []byte{0x02, 0x03}}}, tokens)
}
