package codec

import "testing"

func TestEncodeDecodeStringASCII(t *testing.T) {
	b, err := EncodeString("hello", ASCII)
	if err != nil {
		t.Fatalf("EncodeString: %v", err)
	}
	s, err := DecodeString(b, ASCII)
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	if s != "hello" {
		t.Fatalf("got %q, want %q", s, "hello")
	}
}

func TestEncodeDecodeStringUTF16LE(t *testing.T) {
	b, err := EncodeString("héllo", UTF16LE)
	if err != nil {
		t.Fatalf("EncodeString: %v", err)
	}
	if len(b)%2 != 0 {
		t.Fatalf("utf16le encoding must be even length, got %d", len(b))
	}
	s, err := DecodeString(b, UTF16LE)
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	if s != "héllo" {
		t.Fatalf("got %q, want %q", s, "héllo")
	}
}

func TestEncodeDecodeStringWindows1252(t *testing.T) {
	b, err := EncodeString("café", Windows1252)
	if err != nil {
		t.Fatalf("EncodeString: %v", err)
	}
	s, err := DecodeString(b, Windows1252)
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	if s != "café" {
		t.Fatalf("got %q, want %q", s, "café")
	}
}

func TestDecodeStringUTF16OddLengthErrors(t *testing.T) {
	if _, err := DecodeString([]byte{0x01, 0x02, 0x03}, UTF16LE); err == nil {
		t.Fatalf("expected error for odd-length utf-16le input")
	}
}

func TestTerminatorWidth(t *testing.T) {
	if ASCII.TerminatorWidth() != 1 {
		t.Fatalf("ASCII terminator width = %d, want 1", ASCII.TerminatorWidth())
	}
	if UTF16LE.TerminatorWidth() != 2 {
		t.Fatalf("UTF16LE terminator width = %d, want 2", UTF16LE.TerminatorWidth())
	}
}

func TestDecodeStringASCIIFallsBackOnHighBytes(t *testing.T) {
	// 0xE9 is 'é' in Windows-1252; not valid 7-bit ASCII.
	s, err := DecodeString([]byte{0x68, 0xE9}, ASCII)
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	if s != "hé" {
		t.Fatalf("got %q", s)
	}
}
