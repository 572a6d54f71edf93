package stream

import (
	"io"

	"github.com/Davipb/BinarySerializer/internal/octerr"
)

// WriteFramer frames a serialize-direction stream.
type WriteFramer struct {
	Framer
	w io.Writer
}

// NewWriteFramer wraps w. If w also implements io.Seeker, Mark/Rewind and
// offset/computed-value write-back become available.
func NewWriteFramer(w io.Writer) *WriteFramer {
	seeker, _ := w.(io.Seeker)
	return &WriteFramer{Framer: newFramer(seeker), w: w}
}

// WriteAll writes every octet of b, honoring the innermost bounded overlay.
func (f *WriteFramer) WriteAll(b []byte) error {
	if _, err := f.clampRequest(len(b)); err != nil {
		return err
	}
	n, err := f.w.Write(b)
	f.recordTransfer(n)
	if err != nil {
		return err
	}
	if n != len(b) {
		return io.ErrShortWrite
	}
	return nil
}

// PopBounded closes the innermost bounded overlay, padding with zero octets
// up to its declared limit if the walk did not already fill it exactly.
func (f *WriteFramer) PopBounded() error {
	if len(f.stack) == 0 {
		return nil
	}
	top := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	pad := top.limit - top.consumed
	if pad < 0 {
		return octerr.ErrOverflow
	}
	if pad == 0 {
		return nil
	}
	return f.WriteAll(make([]byte, pad))
}

// AlignLeft emits zero octets until Position() is a multiple of n.
func (f *WriteFramer) AlignLeft(n int64) error {
	if n <= 1 {
		return nil
	}
	pad := (n - f.pos%n) % n
	if pad == 0 {
		return nil
	}
	return f.WriteAll(make([]byte, pad))
}

// AlignRight is identical to AlignLeft: alignment is a function of the
// current position regardless of which side of a field it sits on. The
// distinct name exists because FieldAlignment's Left/Right mode controls
// *when* the walker calls it (before vs after the field), not how it pads.
func (f *WriteFramer) AlignRight(n int64) error { return f.AlignLeft(n) }

// WriteAt writes b at an absolute offset on a seekable stream, then restores
// the stream to its current position. Used for computed-value write-back and
// bound-source write-back when the target already lies behind the cursor.
func (f *WriteFramer) WriteAt(offset int64, b []byte) error {
	if !f.Seekable() {
		return octerr.ErrNotSeekable
	}
	cur := f.pos
	if err := f.Rewind(Marker{pos: offset}); err != nil {
		return err
	}
	if _, err := f.w.Write(b); err != nil {
		return err
	}
	return f.Rewind(Marker{pos: cur})
}

// SeekTo moves the write cursor to an absolute offset for a FieldOffset
// binding. Subsequent writes continue from there; the caller is responsible
// for the fact that the origin is not restored afterwards (§4.4).
func (f *WriteFramer) SeekTo(offset int64) error {
	return f.Rewind(Marker{pos: offset})
}
