package typegraph

import (
	"fmt"
	"reflect"

	"github.com/Davipb/BinarySerializer/internal/binding"
	"github.com/Davipb/BinarySerializer/internal/codec"
	"github.com/Davipb/BinarySerializer/internal/collection"
	"github.com/Davipb/BinarySerializer/internal/octerr"
	"github.com/Davipb/BinarySerializer/octcustom"
	"github.com/Davipb/BinarySerializer/octtag"
)

var codecType = reflect.TypeOf((*octcustom.Codec)(nil)).Elem()

// Build compiles (or returns the cached) Node tree for t, per §4.1. t may be
// a struct type or a pointer to one.
func Build(t reflect.Type) (*Node, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return getOrBuild(t, func() (*Node, error) {
		return build(t, map[reflect.Type]bool{})
	})
}

func build(t reflect.Type, inProgress map[reflect.Type]bool) (*Node, error) {
	if inProgress[t] {
		return nil, fmt.Errorf("%w: %s", octerr.ErrCyclicType, t)
	}
	inProgress[t] = true
	defer delete(inProgress, t)

	desc, err := octtag.Discover(t)
	if err != nil {
		return nil, err
	}
	root := &Node{Name: t.Name(), GoType: t, Kind: KindObject}
	for _, m := range desc.Members {
		child, err := buildMember(m, inProgress)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t, m.Name, err)
		}
		root.Children = append(root.Children, child)
	}
	root.Constructor = defaultConstructor(t)
	if err := wireSubtypes(t, root); err != nil {
		return nil, err
	}
	return root, nil
}

func buildMember(m octtag.Member, inProgress map[reflect.Type]bool) (*Node, error) {
	n := &Node{Name: m.Name, GoType: m.DeclaredType, FieldIndex: m.Index}
	if err := classify(n, m.DeclaredType, inProgress); err != nil {
		return nil, err
	}
	for _, a := range m.Attributes {
		if err := applyAttribute(n, a); err != nil {
			return nil, err
		}
	}
	n.finalizeCollectionDefaults()
	return n, nil
}

func classify(n *Node, t reflect.Type, inProgress map[reflect.Type]bool) error {
	ptrT := reflect.PtrTo(t)
	switch {
	case t.Implements(codecType) || ptrT.Implements(codecType):
		n.Kind = KindCustomSerialized
		n.Custom = true
		return nil
	case isStreamHandle(t):
		n.Kind = KindStreamPassthrough
		return nil
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		n.Kind = KindValue
		n.Repr = ReprBytes
		return nil
	case isScalarKind(t.Kind()):
		n.Kind = KindValue
		setScalarRepr(n, t)
		return nil
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		elem := t.Elem()
		if isScalarKind(elem.Kind()) && elem.Kind() != reflect.String {
			n.Kind = KindPrimitiveArray
			item := &Node{Name: n.Name + "[]", GoType: elem, Kind: KindValue}
			setScalarRepr(item, elem)
			n.Item = item
			return nil
		}
		n.Kind = KindCollection
		item, err := buildElement(elem, inProgress)
		if err != nil {
			return err
		}
		n.Item = item
		return nil
	case t.Kind() == reflect.Struct:
		n.Kind = KindObject
		child, err := build(t, inProgress)
		if err != nil {
			return err
		}
		n.Children = child.Children
		n.Constructor = child.Constructor
		n.Subtypes = child.Subtypes
		return nil
	case t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct:
		return classify(n, t.Elem(), inProgress)
	case t.Kind() == reflect.Interface:
		// Polymorphic member: real shape supplied by a registered subtype
		// table (octtag.RegisterSubtypeTable), wired in wireSubtypes.
		n.Kind = KindObject
		return nil
	default:
		return fmt.Errorf("octstruct: unsupported field type %s", t)
	}
}

func buildElement(elem reflect.Type, inProgress map[reflect.Type]bool) (*Node, error) {
	n := &Node{Name: "item", GoType: elem}
	if err := classify(n, elem, inProgress); err != nil {
		return nil, err
	}
	return n, nil
}

func isStreamHandle(t reflect.Type) bool {
	readerT := reflect.TypeOf((*interface{ Read([]byte) (int, error) })(nil)).Elem()
	writerT := reflect.TypeOf((*interface{ Write([]byte) (int, error) })(nil)).Elem()
	return t.Implements(readerT) || t.Implements(writerT)
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint,
		reflect.Float32, reflect.Float64, reflect.String:
		return true
	}
	return false
}

func setScalarRepr(n *Node, t reflect.Type) {
	switch t.Kind() {
	case reflect.Bool:
		n.Repr, n.IntWidth = ReprBool, codec.Width1
	case reflect.Int8, reflect.Uint8:
		n.Repr, n.IntWidth = reprFor(t), codec.Width1
	case reflect.Int16, reflect.Uint16:
		n.Repr, n.IntWidth = reprFor(t), codec.Width2
	case reflect.Int32, reflect.Uint32:
		n.Repr, n.IntWidth = reprFor(t), codec.Width4
	case reflect.Int64, reflect.Uint64, reflect.Int, reflect.Uint:
		n.Repr, n.IntWidth = reprFor(t), codec.Width8
	case reflect.Float32:
		n.Repr, n.IntWidth = ReprFloat, codec.Width4
	case reflect.Float64:
		n.Repr, n.IntWidth = ReprFloat, codec.Width8
	case reflect.String:
		n.Repr = ReprString
	}
}

func reprFor(t reflect.Type) ValueRepr {
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return ReprInt
	default:
		return ReprUint
	}
}

func applyAttribute(n *Node, a octtag.Attribute) error {
	switch a.Kind {
	case octtag.KindFieldLength:
		b := a.Payload.(binding.Binding)
		n.Length = &b
	case octtag.KindFieldCount:
		b := a.Payload.(binding.Binding)
		n.Count = &b
	case octtag.KindFieldOffset:
		b := a.Payload.(binding.Binding)
		n.Offset = &b
	case octtag.KindFieldEndianness:
		n.Endianness = a.Payload.(binding.Binding)
	case octtag.KindFieldEncoding:
		n.Encoding = a.Payload.(binding.Binding)
	case octtag.KindFieldAlignment:
		p := a.Payload.(octtag.AlignPayload)
		mode := AlignLeft
		switch p.Mode {
		case "right":
			mode = AlignRight
		case "both":
			mode = AlignBoth
		}
		n.Align = &AlignSpec{Multiple: p.Multiple, Mode: mode}
	case octtag.KindFieldScale:
		p := a.Payload.(octtag.ScalePayload)
		n.Scale = &ScaleSpec{Num: p.Num, Den: p.Den}
	case octtag.KindFieldValue:
		p := a.Payload.(octtag.ComputedPayload)
		n.Computed = append(n.Computed, ComputedSpec{Method: p.Method, Target: p.Target})
	case octtag.KindSerializeWhen, octtag.KindSerializeWhenNot:
		p := a.Payload.(octtag.ConditionPayload)
		n.Condition = &ConditionSpec{Source: p.Source, Literal: p.Literal, Negate: a.Kind == octtag.KindSerializeWhenNot}
	case octtag.KindSubtypeKey:
		b := a.Payload.(binding.Binding)
		if n.Subtypes == nil {
			n.Subtypes = &SubtypeTable{}
		}
		n.Subtypes.KeySource = b
	case octtag.KindSerializeUntil:
		ensureCollection(n).Mode = collection.ModeSerializeUntil
		ensureCollection(n).SerializeUntilValue = a.Payload
	case octtag.KindItemSerializeUntil:
		p := a.Payload.(octtag.ItemUntilPayload)
		spec := ensureCollection(n)
		spec.Mode = collection.ModeItemSerializeUntil
		spec.ItemUntilPath = p.Path
		spec.ItemUntilValue = p.Value
		spec.ItemUntilMode = p.Mode
	case octtag.KindItemLength:
		b := a.Payload.(binding.Binding)
		spec := ensureCollection(n)
		spec.ItemLengthKind = collection.ItemLengthUniform
		spec.ItemLength = b
	case octtag.KindSerializeAs:
		applySerializeAs(n, a.Payload.(string))
	}
	return nil
}

func ensureCollection(n *Node) *collection.Spec {
	if n.Collection == nil {
		n.Collection = &collection.Spec{Mode: collection.ModeNone}
	}
	return n.Collection
}

func applySerializeAs(n *Node, spec string) {
	switch spec {
	case "u8":
		n.Repr, n.IntWidth = ReprUint, codec.Width1
	case "u16":
		n.Repr, n.IntWidth = ReprUint, codec.Width2
	case "u32":
		n.Repr, n.IntWidth = ReprUint, codec.Width4
	case "u64":
		n.Repr, n.IntWidth = ReprUint, codec.Width8
	case "i8":
		n.Repr, n.IntWidth = ReprInt, codec.Width1
	case "i16":
		n.Repr, n.IntWidth = ReprInt, codec.Width2
	case "i32":
		n.Repr, n.IntWidth = ReprInt, codec.Width4
	case "i64":
		n.Repr, n.IntWidth = ReprInt, codec.Width8
	case "f32":
		n.Repr, n.IntWidth = ReprFloat, codec.Width4
	case "f64":
		n.Repr, n.IntWidth = ReprFloat, codec.Width8
	}
}

// finalizeCollectionDefaults applies the Length/Count attributes captured on
// an Object-targeted attribute set onto a Collection node's termination
// spec, since "length"/"count" on a collection member mean FieldLength /
// FieldCount (§4.7) rather than the Value-node meaning of a fixed byte size.
func (n *Node) finalizeCollectionDefaults() {
	if n.Kind != KindCollection && n.Kind != KindPrimitiveArray {
		return
	}
	spec := ensureCollection(n)
	switch {
	case n.Count != nil:
		spec.Mode = collection.ModeFieldCount
		spec.FieldCount = *n.Count
	case n.Length != nil:
		spec.Mode = collection.ModeFieldLength
		spec.FieldLength = *n.Length
	default:
		// Neither FieldCount nor FieldLength was declared; whatever
		// ItemSerializeUntil/SerializeUntil attribute already set on spec
		// (if any) stands, else the collection is unbounded (ModeNone).
	}
}
