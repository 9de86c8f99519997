package serial

import (
	"bytes"
	"io"
)

// MockPort is an in-memory Port for tests: reads are served from a scripted
// input buffer, writes are captured for inspection.
type MockPort struct {
	Input  bytes.Buffer
	Output bytes.Buffer
	closed bool
}

// Read serves scripted input; like a timed-out real port it returns io.EOF
// when nothing is pending.
func (m *MockPort) Read(b []byte) (int, error) {
	if m.closed {
		return 0, io.ErrClosedPipe
	}
	return m.Input.Read(b)
}

func (m *MockPort) Write(b []byte) (int, error) {
	if m.closed {
		return 0, io.ErrClosedPipe
	}
	return m.Output.Write(b)
}

func (m *MockPort) Close() error {
	m.closed = true
	return nil
}

func (m *MockPort) Flush() error { return nil }
