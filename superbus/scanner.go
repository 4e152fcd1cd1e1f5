package superbus

import (
	"bytes"
	"os"
	"time"

	logp "github.com/charmbracelet/log"
)

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "superbus",
})

// Token is one unit recovered from the byte stream: a validated Frame, an
// Ack or Nak control byte, or a BadFrame whose checksum did not match.
type Token interface{ isToken() }

// Frame is a checksum-validated message payload, ready for Decode.
type Frame struct{ Payload []byte }

// Ack is the raw 0x06 control byte, acknowledging our last transmission.
type Ack struct{}

// Nak is the raw 0x15 control byte, rejecting our last transmission.
type Nak struct{}

// BadFrame marks a frame-shaped span that failed checksum validation. The
// caller should reply with a NAK so the panel retransmits.
type BadFrame struct{}

func (Frame) isToken()    {}
func (Ack) isToken()      {}
func (Nak) isToken()      {}
func (BadFrame) isToken() {}

// Scanner incrementally reassembles frames from arbitrarily-chunked input.
// It never blocks: Feed consumes whatever is available and keeps partial
// frames buffered until the rest arrives. Corrupt spans are discarded and
// the scanner resynchronizes on the next start marker.
type Scanner struct {
	buf []byte
}

// Feed appends p to the internal buffer and returns every token that is now
// complete. A short read simply yields no tokens.
func (s *Scanner) Feed(p []byte) []Token {
	s.buf = append(s.buf, p...)

	var tokens []Token
	for {
		tok, ok := s.next()
		if !ok {
			return tokens
		}
		if tok != nil {
			tokens = append(tokens, tok)
		}
	}
}

// next extracts at most one token from the head of the buffer. It returns
// (nil, true) when progress was made without producing a token (noise
// discarded), and (nil, false) when more input is needed. Consuming strictly
// in order keeps the token stream independent of how input was chunked.
func (s *Scanner) next() (Token, bool) {
	if len(s.buf) == 0 {
		return nil, false
	}

	// Ctrl bytes arrive raw, outside frames, and cannot collide with the
	// hex alphabet or the start marker.
	switch s.buf[0] {
	case CtrlAck:
		s.buf = s.buf[1:]
		return Ack{}, true
	case CtrlNak:
		s.buf = s.buf[1:]
		log.Warn("recv: NAK")
		return Nak{}, true
	}

	if s.buf[0] != startMarker {
		start := bytes.IndexAny(s.buf, string([]byte{startMarker, CtrlAck, CtrlNak}))
		if start < 0 {
			log.Debug("discarding noise", "len", len(s.buf))
			s.buf = nil
			return nil, false
		}
		log.Debug("discarding noise", "len", start)
		s.buf = s.buf[start:]
		return nil, true
	}

	// start marker, then two hex chars for the length byte.
	if len(s.buf) < 3 {
		return nil, false
	}
	length, ok := hexByte(s.buf[1:3])
	if !ok || length == 0 {
		log.Error("malformed length, resyncing", "raw", string(s.buf[1:3]))
		s.buf = s.buf[1:]
		return nil, true
	}

	body := int(length) * 2
	if len(s.buf) < 3+body {
		return nil, false
	}

	data, ok := hexBytes(s.buf[3 : 3+body])
	if !ok {
		log.Error("malformed frame body, resyncing")
		s.buf = s.buf[1:]
		return nil, true
	}
	s.buf = s.buf[3+body:]

	payload, sum := data[:len(data)-1], data[len(data)-1]
	if got := checksum(append([]byte{length}, payload...)); got != sum {
		log.Error("invalid checksum", "want", sum, "got", got)
		return BadFrame{}, true
	}
	return Frame{Payload: payload}, true
}
