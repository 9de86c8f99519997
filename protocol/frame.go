// Package protocol frames the LX200 byte stream.
//
// A frame is ":<body>#". The scanner is purely sequential: it consumes
// whatever bytes are currently available and never waits for a missing
// delimiter, so a partial frame simply persists as scanner state until more
// bytes arrive.
package protocol

const (
	// FrameOpen starts a frame. Inside a frame it is an ordinary body byte:
	// sexagesimal arguments carry ':' as the minute/second separator.
	FrameOpen = ':'

	// FrameClose ends a frame and terminates every response.
	FrameClose = '#'

	// MaxFrameLen bounds the frame body. A body that grows past it is
	// dropped and the scanner resynchronizes at the next FrameOpen.
	MaxFrameLen = 64

	// DefaultFailure is the reply for anything the dispatcher cannot
	// accept, and for frames dropped on overflow.
	DefaultFailure = "0"
)

// FrameHandler consumes one complete frame body and returns the reply
// without its terminator. An empty reply suppresses output.
type FrameHandler func(body string) string

// Scanner extracts delimited frames from a raw byte stream and queues the
// handler replies. Replies are collected in an output buffer so the caller
// controls when bytes go back onto the wire.
type Scanner struct {
	handler FrameHandler

	buf     []byte
	inFrame bool
	out     []byte
}

// NewScanner creates a scanner delivering frame bodies to handler.
func NewScanner(handler FrameHandler) *Scanner {
	return &Scanner{
		handler: handler,
		buf:     make([]byte, 0, MaxFrameLen),
	}
}

// Receive processes incoming bytes. Complete frames are dispatched
// synchronously, one at a time, in arrival order. Bytes outside a frame are
// discarded.
func (s *Scanner) Receive(data []byte) {
	for _, b := range data {
		if !s.inFrame {
			if b == FrameOpen {
				s.inFrame = true
				s.buf = s.buf[:0]
			}
			continue
		}

		switch b {
		case FrameClose:
			s.inFrame = false
			s.respond(s.handler(string(s.buf)))
		default:
			if len(s.buf) >= MaxFrameLen {
				// Overflow drops the frame. The failure reply keeps
				// the peer's command/response pairing intact.
				s.inFrame = false
				s.respond(DefaultFailure)
				continue
			}
			s.buf = append(s.buf, b)
		}
	}
}

func (s *Scanner) respond(reply string) {
	if reply == "" {
		return
	}
	s.out = append(s.out, reply...)
	s.out = append(s.out, FrameClose)
}

// Output returns pending response bytes and clears the buffer.
func (s *Scanner) Output() []byte {
	if len(s.out) == 0 {
		return nil
	}
	out := make([]byte, len(s.out))
	copy(out, s.out)
	s.out = s.out[:0]
	return out
}
