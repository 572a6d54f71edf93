package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/Davipb/BinarySerializer/internal/octerr"
)

// seekableBuffer is a minimal io.ReadWriteSeeker backed by a growable byte
// slice, used to exercise Mark/Rewind/WriteAt paths that require seekability.
type seekableBuffer struct {
	buf []byte
	pos int64
}

func (s *seekableBuffer) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.buf)) {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *seekableBuffer) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	case io.SeekEnd:
		s.pos = int64(len(s.buf)) + offset
	}
	return s.pos, nil
}

func TestReadFramerReadExactHonorsBound(t *testing.T) {
	rf := NewReadFramer(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
	rf.PushBounded(3)
	b, err := rf.ReadExact(3)
	if err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	if !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Fatalf("got %v", b)
	}
	if _, err := rf.ReadExact(1); !errors.Is(err, octerr.ErrOverflow) {
		t.Fatalf("err = %v, want ErrOverflow", err)
	}
}

func TestReadFramerReadExactUnderflow(t *testing.T) {
	rf := NewReadFramer(bytes.NewReader([]byte{1, 2}))
	if _, err := rf.ReadExact(5); !errors.Is(err, octerr.ErrUnderflow) {
		t.Fatalf("err = %v, want ErrUnderflow", err)
	}
}

func TestReadFramerPopBoundedSkipsUnconsumed(t *testing.T) {
	rf := NewReadFramer(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
	rf.PushBounded(4)
	if _, err := rf.ReadExact(1); err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	if err := rf.PopBounded(); err != nil {
		t.Fatalf("PopBounded: %v", err)
	}
	if rf.Position() != 4 {
		t.Fatalf("Position = %d, want 4 (overlay fully skipped)", rf.Position())
	}
	rest, err := rf.ReadExact(1)
	if err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	if rest[0] != 5 {
		t.Fatalf("got %v, want [5]", rest)
	}
}

func TestReadFramerAlignLeft(t *testing.T) {
	rf := NewReadFramer(bytes.NewReader([]byte{9, 0, 0, 0}))
	if _, err := rf.ReadExact(1); err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	if err := rf.AlignLeft(4); err != nil {
		t.Fatalf("AlignLeft: %v", err)
	}
	if rf.Position() != 4 {
		t.Fatalf("Position = %d, want 4", rf.Position())
	}
}

func TestReadFramerNotSeekableRejectsMark(t *testing.T) {
	rf := NewReadFramer(bytes.NewBuffer([]byte{1, 2, 3}))
	if rf.Seekable() {
		t.Fatalf("bytes.Buffer should not report seekable")
	}
	if _, err := rf.Mark(); !errors.Is(err, octerr.ErrNotSeekable) {
		t.Fatalf("err = %v, want ErrNotSeekable", err)
	}
	if _, err := rf.PeekByte(); !errors.Is(err, octerr.ErrNotSeekable) {
		t.Fatalf("err = %v, want ErrNotSeekable", err)
	}
}

func TestReadFramerPeekByteDoesNotConsume(t *testing.T) {
	rf := NewReadFramer(&seekableBuffer{buf: []byte{0xAA, 0xBB}})
	b, err := rf.PeekByte()
	if err != nil {
		t.Fatalf("PeekByte: %v", err)
	}
	if b != 0xAA {
		t.Fatalf("got %#x, want 0xAA", b)
	}
	if rf.Position() != 0 {
		t.Fatalf("Position = %d, want 0 after peek", rf.Position())
	}
	real, err := rf.ReadExact(1)
	if err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	if real[0] != 0xAA {
		t.Fatalf("got %#x, want 0xAA", real[0])
	}
}

func TestReadFramerReadAtDoesNotDisturbPosition(t *testing.T) {
	rf := NewReadFramer(&seekableBuffer{buf: []byte{1, 2, 3, 4, 5}})
	if _, err := rf.ReadExact(2); err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	b, err := rf.ReadAt(0, 2)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(b, []byte{1, 2}) {
		t.Fatalf("got %v", b)
	}
	if rf.Position() != 2 {
		t.Fatalf("Position = %d, want 2 (unchanged by ReadAt)", rf.Position())
	}
}

func TestWriteFramerPopBoundedZeroPads(t *testing.T) {
	var buf bytes.Buffer
	wf := NewWriteFramer(&buf)
	wf.PushBounded(4)
	if err := wf.WriteAll([]byte{9}); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if err := wf.PopBounded(); err != nil {
		t.Fatalf("PopBounded: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{9, 0, 0, 0}) {
		t.Fatalf("got %v, want [9 0 0 0]", buf.Bytes())
	}
}

func TestWriteFramerAlignLeft(t *testing.T) {
	var buf bytes.Buffer
	wf := NewWriteFramer(&buf)
	if err := wf.WriteAll([]byte{1}); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if err := wf.AlignLeft(4); err != nil {
		t.Fatalf("AlignLeft: %v", err)
	}
	if buf.Len() != 4 {
		t.Fatalf("buf.Len() = %d, want 4", buf.Len())
	}
}

func TestWriteFramerWriteAtRestoresPosition(t *testing.T) {
	sb := &seekableBuffer{}
	wf := NewWriteFramer(sb)
	if err := wf.WriteAll([]byte{0, 0, 0, 0}); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if err := wf.WriteAt(0, []byte{0xFF}); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if wf.Position() != 4 {
		t.Fatalf("Position = %d, want 4 (restored)", wf.Position())
	}
	if sb.buf[0] != 0xFF {
		t.Fatalf("byte 0 = %#x, want 0xFF", sb.buf[0])
	}
}

func TestWriteFramerOverflowOnBoundedOverlay(t *testing.T) {
	var buf bytes.Buffer
	wf := NewWriteFramer(&buf)
	wf.PushBounded(2)
	if err := wf.WriteAll([]byte{1, 2, 3}); !errors.Is(err, octerr.ErrOverflow) {
		t.Fatalf("err = %v, want ErrOverflow", err)
	}
}

func TestFramerRemainingReportsMinusOneWithoutOverlay(t *testing.T) {
	rf := NewReadFramer(bytes.NewReader(nil))
	if rf.Remaining() != -1 {
		t.Fatalf("Remaining() = %d, want -1", rf.Remaining())
	}
}
