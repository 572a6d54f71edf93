package octtag

import (
	"testing"

	"github.com/Davipb/BinarySerializer/internal/binding"
	"github.com/Davipb/BinarySerializer/internal/codec"
	"github.com/Davipb/BinarySerializer/internal/collection"
)

func TestParseTagEmpty(t *testing.T) {
	attrs, err := parseTag("")
	if err != nil || attrs != nil {
		t.Fatalf("parseTag(\"\") = %v, %v; want nil, nil", attrs, err)
	}
}

func TestParseTagLengthLiteral(t *testing.T) {
	attrs, err := parseTag("length=32")
	if err != nil {
		t.Fatalf("parseTag: %v", err)
	}
	if len(attrs) != 1 || attrs[0].Kind != KindFieldLength {
		t.Fatalf("got %+v, want one KindFieldLength attribute", attrs)
	}
	b := attrs[0].Payload.(binding.Binding)
	if b.Literal != int64(32) {
		t.Fatalf("literal = %v, want int64(32)", b.Literal)
	}
}

func TestParseTagLengthBinding(t *testing.T) {
	attrs, err := parseTag("length=@NameLength")
	if err != nil {
		t.Fatalf("parseTag: %v", err)
	}
	b := attrs[0].Payload.(binding.Binding)
	if b.Path.Mode != binding.NearestWithChild || len(b.Path.Segments) != 1 || b.Path.Segments[0] != "NameLength" {
		t.Fatalf("path = %+v", b.Path)
	}
}

func TestParseTagMultipleAttributes(t *testing.T) {
	attrs, err := parseTag("length=@Length, endian=big")
	if err != nil {
		t.Fatalf("parseTag: %v", err)
	}
	if len(attrs) != 2 {
		t.Fatalf("got %d attributes, want 2", len(attrs))
	}
	if attrs[1].Kind != KindFieldEndianness {
		t.Fatalf("attrs[1].Kind = %v", attrs[1].Kind)
	}
	b := attrs[1].Payload.(binding.Binding)
	if b.Literal != codec.BigEndian {
		t.Fatalf("endian literal = %v, want BigEndian", b.Literal)
	}
}

func TestParseTagUnrecognizedKey(t *testing.T) {
	if _, err := parseTag("bogus=1"); err == nil {
		t.Fatalf("expected error for unrecognized attribute key")
	}
}

func TestParseTagCrc16(t *testing.T) {
	attrs, err := parseTag("crc16=@Crc")
	if err != nil {
		t.Fatalf("parseTag: %v", err)
	}
	if attrs[0].Kind != KindFieldValue {
		t.Fatalf("Kind = %v, want KindFieldValue", attrs[0].Kind)
	}
	payload := attrs[0].Payload.(ComputedPayload)
	if payload.Target.Path.Segments[0] != "Crc" {
		t.Fatalf("target path = %+v", payload.Target.Path)
	}
}

func TestParseTagItemUntilDefaultsToInclude(t *testing.T) {
	attrs, err := parseTag("itemuntil=@Kind==0")
	if err != nil {
		t.Fatalf("parseTag: %v", err)
	}
	spec := attrs[0].Payload.(ItemUntilPayload)
	if spec.Mode != collection.Include {
		t.Fatalf("mode = %v, want Include", spec.Mode)
	}
	if spec.Value != int64(0) {
		t.Fatalf("value = %v, want int64(0)", spec.Value)
	}
}

func TestParseTagItemUntilExplicitMode(t *testing.T) {
	attrs, err := parseTag("itemuntil=@Kind==1:exclude")
	if err != nil {
		t.Fatalf("parseTag: %v", err)
	}
	spec := attrs[0].Payload.(ItemUntilPayload)
	if spec.Mode != collection.Exclude {
		t.Fatalf("mode = %v, want Exclude", spec.Mode)
	}
}

func TestParseTagAlignWithMode(t *testing.T) {
	attrs, err := parseTag("align=4:right")
	if err != nil {
		t.Fatalf("parseTag: %v", err)
	}
	p := attrs[0].Payload.(AlignPayload)
	if p.Multiple != 4 || p.Mode != "right" {
		t.Fatalf("got %+v", p)
	}
}

func TestParseTagScale(t *testing.T) {
	attrs, err := parseTag("scale=1/1000")
	if err != nil {
		t.Fatalf("parseTag: %v", err)
	}
	p := attrs[0].Payload.(ScalePayload)
	if p.Num != 1 || p.Den != 1000 {
		t.Fatalf("got %+v", p)
	}
}

func TestParseTagAncestorPath(t *testing.T) {
	attrs, err := parseTag("length=@^1.Count")
	if err != nil {
		t.Fatalf("parseTag: %v", err)
	}
	b := attrs[0].Payload.(binding.Binding)
	if b.Path.Mode != binding.ByLevel || b.Path.Level != 1 || b.Path.Segments[0] != "Count" {
		t.Fatalf("path = %+v", b.Path)
	}
}

func TestParseTagTypedAncestorPath(t *testing.T) {
	attrs, err := parseTag("length=@!Header.Length")
	if err != nil {
		t.Fatalf("parseTag: %v", err)
	}
	b := attrs[0].Payload.(binding.Binding)
	if b.Path.Mode != binding.ByType || b.Path.AncestorType != "Header" || b.Path.Segments[0] != "Length" {
		t.Fatalf("path = %+v", b.Path)
	}
}

func TestParseTagDirectionSuffix(t *testing.T) {
	attrs, err := parseTag("length=@Length#ro")
	if err != nil {
		t.Fatalf("parseTag: %v", err)
	}
	b := attrs[0].Payload.(binding.Binding)
	if b.Direction != binding.ReadOnly {
		t.Fatalf("direction = %v, want ReadOnly", b.Direction)
	}
}
