package stream

import (
	"io"
	"testing"
)

func TestMemoryBufferWriteAppends(t *testing.T) {
	var m MemoryBuffer
	if _, err := m.Write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := m.Write([]byte{4, 5}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := m.Bytes(); string(got) != string([]byte{1, 2, 3, 4, 5}) {
		t.Fatalf("Bytes() = %v, want [1 2 3 4 5]", got)
	}
}

func TestMemoryBufferSeekStartOverwritesInPlace(t *testing.T) {
	var m MemoryBuffer
	m.Write([]byte{0, 0, 0, 0, 'g', 'o'})
	if _, err := m.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := m.Write([]byte{9}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := []byte{9, 0, 0, 0, 'g', 'o'}
	if got := m.Bytes(); string(got) != string(want) {
		t.Fatalf("Bytes() = %v, want %v", got, want)
	}
}

func TestMemoryBufferSeekRestoresPositionForFollowingWrite(t *testing.T) {
	var m MemoryBuffer
	m.Write([]byte{1, 2, 3, 4})
	if _, err := m.Seek(1, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	m.Write([]byte{9})
	if _, err := m.Seek(0, io.SeekEnd); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	m.Write([]byte{5})
	want := []byte{1, 9, 3, 4, 5}
	if got := m.Bytes(); string(got) != string(want) {
		t.Fatalf("Bytes() = %v, want %v", got, want)
	}
}

func TestMemoryBufferSeekNegativeFails(t *testing.T) {
	var m MemoryBuffer
	if _, err := m.Seek(-1, io.SeekStart); err == nil {
		t.Fatalf("expected error for negative seek position")
	}
}

func TestMemoryBufferWriteFramerPatchesEarlierField(t *testing.T) {
	var m MemoryBuffer
	wf := NewWriteFramer(&m)
	if !wf.Seekable() {
		t.Fatalf("WriteFramer over *MemoryBuffer should report Seekable")
	}
	if err := wf.WriteAll([]byte{0}); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if err := wf.WriteAll([]byte("gopher")); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if err := wf.WriteAt(0, []byte{6}); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	want := append([]byte{6}, "gopher"...)
	if got := m.Bytes(); string(got) != string(want) {
		t.Fatalf("Bytes() = %q, want %q", got, want)
	}
	if wf.Position() != int64(len(want)) {
		t.Fatalf("Position() = %d after patch, want %d (cursor must be restored)", wf.Position(), len(want))
	}
}
