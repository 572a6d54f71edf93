// Package stream implements the bounded-overlay stream framer (C2): a
// uniform view over an underlying octet stream that tracks logical position,
// enforces length limits on nested subtrees, and provides alignment padding
// and mark/rewind for seekable streams. It is deliberately separate from
// io.Reader/io.Writer semantics so the value graph walker (internal/valuegraph)
// never has to special-case a non-seekable source.
package stream

import (
	"io"

	"github.com/Davipb/BinarySerializer/internal/octerr"
)

// Marker is an opaque rewind point produced by Mark. It is only valid on
// seekable streams and only valid until the underlying stream is closed.
type Marker struct {
	pos int64
}

// bound is one entry of the overlay stack pushed by PushBounded.
type bound struct {
	limit     int64 // total octets this overlay may carry
	consumed  int64 // octets read/written through this overlay so far
}

// Seekable reports whether this framer's underlying stream supports Mark
// and Rewind.
func (f *Framer) Seekable() bool { return f.seeker != nil }

// Framer is the shared bookkeeping between a read and a write framer:
// logical position and the bounded-overlay stack. Embedders add the actual
// I/O methods (ReadFramer.ReadExact / WriteFramer.WriteAll).
type Framer struct {
	seeker io.Seeker // non-nil when the underlying stream is seekable
	pos    int64
	stack  []bound
}

func newFramer(seeker io.Seeker) Framer {
	return Framer{seeker: seeker}
}

// Position returns the logical absolute offset from the start of the stream.
func (f *Framer) Position() int64 { return f.pos }

// remaining returns how many more octets the innermost bound overlay will
// allow, or -1 if there is no active overlay.
func (f *Framer) remaining() int64 {
	if len(f.stack) == 0 {
		return -1
	}
	top := &f.stack[len(f.stack)-1]
	return top.limit - top.consumed
}

// Remaining exposes remaining to other packages: how many more octets the
// innermost bounded overlay will allow, or -1 if none is active. Used by
// internal/valuegraph to size FieldLength-terminated collections and
// unbounded byte/string reads.
func (f *Framer) Remaining() int64 { return f.remaining() }

// clampRequest checks n against what the innermost overlay still allows:
// it returns n unchanged when it fits, and ErrOverflow when it does not
// (invariant 4). Outer overlays are not consulted.
func (f *Framer) clampRequest(n int) (int, error) {
	rem := f.remaining()
	if rem < 0 {
		return n, nil
	}
	if int64(n) > rem {
		return 0, octerr.ErrOverflow
	}
	return n, nil
}

// recordTransfer advances the logical position and every active overlay's
// consumed counter by n octets.
func (f *Framer) recordTransfer(n int) {
	f.pos += int64(n)
	for i := range f.stack {
		f.stack[i].consumed += int64(n)
	}
}

// PushBounded opens a nested region that may carry at most limit octets.
// Subsequent reads/writes see at most limit octets remaining until the
// matching Pop*.
func (f *Framer) PushBounded(limit int64) {
	f.stack = append(f.stack, bound{limit: limit})
}

// Mark captures the current position for a later Rewind. Only valid on
// seekable streams.
func (f *Framer) Mark() (Marker, error) {
	if !f.Seekable() {
		return Marker{}, octerr.ErrNotSeekable
	}
	return Marker{pos: f.pos}, nil
}

// Rewind restores the stream to a previously captured Marker. Only valid on
// seekable streams; does not touch the bounded-overlay stack.
func (f *Framer) Rewind(m Marker) error {
	if !f.Seekable() {
		return octerr.ErrNotSeekable
	}
	if _, err := f.seeker.Seek(m.pos, io.SeekStart); err != nil {
		return err
	}
	f.pos = m.pos
	return nil
}
