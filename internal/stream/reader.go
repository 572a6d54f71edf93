package stream

import (
	"io"

	"github.com/Davipb/BinarySerializer/internal/octerr"
)

// ReadFramer frames a deserialize-direction stream.
type ReadFramer struct {
	Framer
	r io.Reader
}

// NewReadFramer wraps r. If r also implements io.Seeker, Mark/Rewind, peek,
// and FieldOffset/SerializeUntil become available.
func NewReadFramer(r io.Reader) *ReadFramer {
	seeker, _ := r.(io.Seeker)
	return &ReadFramer{Framer: newFramer(seeker), r: r}
}

// ReadExact reads exactly n octets, honoring the innermost bounded overlay.
func (f *ReadFramer) ReadExact(n int) ([]byte, error) {
	if _, err := f.clampRequest(n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(f.r, buf)
	f.recordTransfer(read)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, octerr.ErrUnderflow
		}
		return nil, err
	}
	return buf, nil
}

// PeekByte reads one octet then rewinds to the position before the read.
// Requires a seekable stream (§4.2).
func (f *ReadFramer) PeekByte() (byte, error) {
	if !f.Seekable() {
		return 0, octerr.ErrNotSeekable
	}
	mark, err := f.Mark()
	if err != nil {
		return 0, err
	}
	b, err := f.ReadExact(1)
	if err != nil {
		return 0, err
	}
	if err := f.Rewind(mark); err != nil {
		return 0, err
	}
	// Rewind resets Framer.pos but not the bound stack's consumed counters;
	// undo the speculative consumption so the real read sees it again.
	f.unrecordTransfer(1)
	return b[0], nil
}

func (f *ReadFramer) unrecordTransfer(n int) {
	for i := range f.stack {
		f.stack[i].consumed -= int64(n)
	}
}

// PopBounded closes the innermost bounded overlay, skipping any octets the
// walk left unconsumed so the outer context resumes exactly at the limit.
func (f *ReadFramer) PopBounded() error {
	if len(f.stack) == 0 {
		return nil
	}
	top := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	skip := top.limit - top.consumed
	if skip < 0 {
		return octerr.ErrOverflow
	}
	if skip == 0 {
		return nil
	}
	_, err := f.ReadExact(int(skip))
	return err
}

// AlignLeft discards zero-padding octets until Position() is a multiple of n.
func (f *ReadFramer) AlignLeft(n int64) error {
	if n <= 1 {
		return nil
	}
	pad := (n - f.pos%n) % n
	if pad == 0 {
		return nil
	}
	_, err := f.ReadExact(int(pad))
	return err
}

// AlignRight mirrors WriteFramer.AlignRight: same mechanics, called by the
// walker after rather than before a field.
func (f *ReadFramer) AlignRight(n int64) error { return f.AlignLeft(n) }

// SeekTo moves the read cursor to an absolute offset for a FieldOffset
// binding.
func (f *ReadFramer) SeekTo(offset int64) error {
	return f.Rewind(Marker{pos: offset})
}

// ReadAt reads n octets from an absolute offset on a seekable stream without
// disturbing the current position. Used to retro-interpret a deferred field
// once its governing binding resolves (§4.3).
func (f *ReadFramer) ReadAt(offset int64, n int) ([]byte, error) {
	if !f.Seekable() {
		return nil, octerr.ErrNotSeekable
	}
	cur := f.pos
	if err := f.Rewind(Marker{pos: offset}); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(f.r, buf); err != nil {
		return nil, octerr.ErrUnderflow
	}
	if err := f.Rewind(Marker{pos: cur}); err != nil {
		return nil, err
	}
	return buf, nil
}
