package stream

import (
	"fmt"
	"io"
)

// MemoryBuffer is a growable, randomly-writable in-memory sink. Serialize
// always routes its walk through one of these, then flushes the finished
// bytes to the caller's io.Writer: a binding source field is frequently
// declared before the field it bounds (§8 S1), so its wire bytes are only
// known after the fact and must be patched via WriteAt. That only works on
// a seekable sink, and most real destinations (bytes.Buffer, network
// conns) are not seekable, so the walk never writes directly to them.
type MemoryBuffer struct {
	buf []byte
	pos int64
}

func (m *MemoryBuffer) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *MemoryBuffer) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.pos + offset
	case io.SeekEnd:
		target = int64(len(m.buf)) + offset
	default:
		return 0, fmt.Errorf("stream: invalid whence %d", whence)
	}
	if target < 0 {
		return 0, fmt.Errorf("stream: negative seek position %d", target)
	}
	m.pos = target
	return m.pos, nil
}

// Bytes returns the buffer's contents. The slice is owned by the buffer and
// must be copied before any further Write call invalidates it.
func (m *MemoryBuffer) Bytes() []byte { return m.buf }
