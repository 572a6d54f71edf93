package typegraph

import (
	"reflect"
	"testing"
)

type builderLeaf struct {
	A uint8  `oct:"order=0"`
	B uint32 `oct:"order=1,endian=big"`
	C string `oct:"order=2,length=@A"`
}

func TestBuildClassifiesScalarMembers(t *testing.T) {
	Reset()
	n, err := Build(reflect.TypeOf(builderLeaf{}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n.Kind != KindObject {
		t.Fatalf("root Kind = %v, want KindObject", n.Kind)
	}
	if len(n.Children) != 3 {
		t.Fatalf("got %d children, want 3", len(n.Children))
	}
	a := n.Children[0]
	if a.Kind != KindValue || a.Repr != ReprUint {
		t.Fatalf("A: kind=%v repr=%v", a.Kind, a.Repr)
	}
	c := n.Children[2]
	if c.Kind != KindValue || c.Repr != ReprString || c.Length == nil {
		t.Fatalf("C: kind=%v repr=%v length=%v", c.Kind, c.Repr, c.Length)
	}
}

type builderBytesField struct {
	Raw []byte
}

func TestBuildTreatsByteSliceAsBytesValue(t *testing.T) {
	Reset()
	n, err := Build(reflect.TypeOf(builderBytesField{}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	raw := n.Children[0]
	if raw.Kind != KindValue || raw.Repr != ReprBytes {
		t.Fatalf("Raw: kind=%v repr=%v", raw.Kind, raw.Repr)
	}
}

type builderPrimitiveArray struct {
	Count uint8    `oct:"order=0"`
	Items []uint32 `oct:"order=1,count=@Count"`
}

func TestBuildTreatsUintSliceAsPrimitiveArray(t *testing.T) {
	Reset()
	n, err := Build(reflect.TypeOf(builderPrimitiveArray{}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	items := n.Children[1]
	if items.Kind != KindPrimitiveArray {
		t.Fatalf("Items.Kind = %v, want KindPrimitiveArray", items.Kind)
	}
	if items.Item == nil || items.Item.Repr != ReprUint {
		t.Fatalf("Items.Item = %+v", items.Item)
	}
	if items.Count == nil {
		t.Fatalf("Items.Count should be bound to Count")
	}
}

type builderCollectionElem struct {
	Value uint16
}

type builderCollection struct {
	Count uint8                   `oct:"order=0"`
	Items []builderCollectionElem `oct:"order=1,count=@Count"`
}

func TestBuildTreatsStructSliceAsCollection(t *testing.T) {
	Reset()
	n, err := Build(reflect.TypeOf(builderCollection{}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	items := n.Children[1]
	if items.Kind != KindCollection {
		t.Fatalf("Items.Kind = %v, want KindCollection", items.Kind)
	}
	if items.Item == nil || items.Item.Kind != KindObject {
		t.Fatalf("Items.Item = %+v", items.Item)
	}
}

func TestBuildCachesSubsequentCalls(t *testing.T) {
	Reset()
	first, err := Build(reflect.TypeOf(builderLeaf{}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := Build(reflect.TypeOf(builderLeaf{}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same cached *Node pointer across calls")
	}
}

type builderUnsupported struct {
	Bad chan int
}

func TestBuildRejectsUnsupportedFieldType(t *testing.T) {
	Reset()
	if _, err := Build(reflect.TypeOf(builderUnsupported{})); err == nil {
		t.Fatalf("expected error for unsupported field type")
	}
}
