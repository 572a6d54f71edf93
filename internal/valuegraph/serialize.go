package valuegraph

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/Davipb/BinarySerializer/internal/binding"
	"github.com/Davipb/BinarySerializer/internal/codec"
	"github.com/Davipb/BinarySerializer/internal/collection"
	"github.com/Davipb/BinarySerializer/internal/computed"
	"github.com/Davipb/BinarySerializer/internal/octerr"
	"github.com/Davipb/BinarySerializer/internal/stream"
	"github.com/Davipb/BinarySerializer/internal/subtype"
	"github.com/Davipb/BinarySerializer/internal/typegraph"
	"github.com/Davipb/BinarySerializer/octcustom"
)

// Events lets a caller observe member boundaries during a walk (§6.4).
type Events struct {
	MemberSerializing func(member string, depth int)
	MemberSerialized  func(member string, depth int, offset int64)
}

// Serialize walks root's type graph and writes its wire representation to w.
func Serialize(root any, w io.Writer, ev *Events) error {
	rv := reflect.ValueOf(root)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return fmt.Errorf("octstruct: cannot serialize a nil %s", rv.Type())
		}
		rv = rv.Elem()
	}
	t, err := typegraph.Build(rv.Type())
	if err != nil {
		return err
	}
	// The walk always targets an in-memory seekable buffer, never w directly,
	// so a binding source declared before its dependent (the canonical S1
	// shape) can be patched via WriteAt once the dependent's size is known,
	// regardless of whether w itself supports seeking.
	mem := &stream.MemoryBuffer{}
	wf := stream.NewWriteFramer(mem)
	vn := &ValueNode{Type: t, value: rv, known: true}
	populateObjectChildren(vn, t)
	if err := writeChildren(t, vn, wf, ev, 0); err != nil {
		return err
	}
	_, err = w.Write(mem.Bytes())
	return err
}

// populateObjectChildren eagerly materializes one ValueNode per declared
// member so binding paths can reach any sibling regardless of visit order.
func populateObjectChildren(vn *ValueNode, t *typegraph.Node) {
	for _, childType := range t.Children {
		child := newChild(vn, childType)
		field := vn.value
		if field.IsValid() && field.Kind() == reflect.Struct {
			field = field.FieldByIndex(childType.FieldIndex)
		}
		child.value = field
		child.known = field.IsValid()
		vn.setChild(childType.Name, child)
	}
}

func writeChildren(t *typegraph.Node, vn *ValueNode, wf *stream.WriteFramer, ev *Events, depth int) error {
	for _, childType := range t.Children {
		childVN := vn.childrenByName[childType.Name]
		if ev != nil && ev.MemberSerializing != nil {
			ev.MemberSerializing(childType.Name, depth)
		}
		if err := writeChild(childVN, wf, ev, depth+1); err != nil {
			return octerr.Wrap(err, childType.Name, wf.Position(), "serialize")
		}
		if ev != nil && ev.MemberSerialized != nil {
			ev.MemberSerialized(childType.Name, depth, childVN.offset)
		}
	}
	return nil
}

func writeChild(vn *ValueNode, wf *stream.WriteFramer, ev *Events, depth int) error {
	t := vn.Type

	if t.Condition != nil {
		ok, err := evalCondition(t.Condition, vn, true)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	if t.Offset != nil {
		val, err := binding.Resolve(*t.Offset, vn, true)
		if err != nil {
			return err
		}
		off, _ := asInt64(val)
		if err := wf.SeekTo(off); err != nil {
			return err
		}
	}

	if t.Align != nil && (t.Align.Mode == typegraph.AlignLeft || t.Align.Mode == typegraph.AlignBoth) {
		if err := wf.AlignLeft(t.Align.Multiple); err != nil {
			return err
		}
	}

	vn.offset = wf.Position()
	startPos := vn.offset
	vn.wf = wf

	// A non-constant, writable FieldLength is the S1 "length prefix"
	// pattern: the bound is the *output* of this write (measured below and
	// written back to its source), not an input to it. Resolving it now
	// would read the source's stale pre-write-back value and wrongly cap
	// this write. Only a constant bound, or one whose source is genuinely
	// pre-existing (ReadOnly, so write-back never touches it), is trusted
	// as an input bound here.
	var pushedBound bool
	if t.Length != nil && (t.Length.IsConstant() || t.Length.Direction == binding.ReadOnly) {
		val, err := binding.Resolve(*t.Length, vn, true)
		if err != nil {
			return err
		}
		limit, _ := asInt64(val)
		wf.PushBounded(limit)
		pushedBound = true
	}

	var err error
	if len(t.Computed) > 0 {
		err = writeWithComputed(t, vn, wf, ev, depth)
	} else {
		err = dispatchWrite(t, vn, wf, ev, depth)
	}
	if err != nil {
		return err
	}

	measured := wf.Position() - startPos
	if pushedBound {
		if err := wf.PopBounded(); err != nil {
			return err
		}
	}
	if t.Align != nil && (t.Align.Mode == typegraph.AlignRight || t.Align.Mode == typegraph.AlignBoth) {
		if err := wf.AlignRight(t.Align.Multiple); err != nil {
			return err
		}
	}

	if t.Length != nil && !t.Length.IsConstant() {
		if err := binding.WriteBack(*t.Length, vn, measured); err != nil {
			return err
		}
	}
	if t.Count != nil && !t.Count.IsConstant() && (t.Kind == typegraph.KindCollection || t.Kind == typegraph.KindPrimitiveArray) {
		if err := binding.WriteBack(*t.Count, vn, int64(len(vn.items))); err != nil {
			return err
		}
	}
	vn.length = measured
	return nil
}

// writeWithComputed buffers a field's own subtree so every emitted octet can
// be routed through its FieldValue accumulators before the result is
// written back to the bound target (§4.6).
func writeWithComputed(t *typegraph.Node, vn *ValueNode, outer *stream.WriteFramer, ev *Events, depth int) error {
	var buf bytes.Buffer
	sub := stream.NewWriteFramer(&buf)
	if err := dispatchWrite(t, vn, sub, ev, depth); err != nil {
		return err
	}
	covered := buf.Bytes()
	if err := outer.WriteAll(covered); err != nil {
		return err
	}
	for _, spec := range t.Computed {
		acc := computed.New(spec.Method)
		acc.Reset()
		acc.Update(covered)
		final := acc.Finalize()
		if err := binding.WriteBack(spec.Target, vn, final); err != nil {
			return err
		}
	}
	return nil
}

func dispatchWrite(t *typegraph.Node, vn *ValueNode, wf *stream.WriteFramer, ev *Events, depth int) error {
	switch t.Kind {
	case typegraph.KindValue:
		return writeValue(t, vn, wf)
	case typegraph.KindCustomSerialized:
		return writeCustom(t, vn, wf)
	case typegraph.KindStreamPassthrough:
		return writeStreamPassthrough(vn, wf)
	case typegraph.KindPrimitiveArray:
		return writePrimitiveArray(t, vn, wf)
	case typegraph.KindCollection:
		return writeCollection(t, vn, wf, ev, depth)
	case typegraph.KindObject:
		return writeObject(t, vn, wf, ev, depth)
	default:
		return fmt.Errorf("octstruct: unhandled node kind %d", t.Kind)
	}
}

func writeObject(t *typegraph.Node, vn *ValueNode, wf *stream.WriteFramer, ev *Events, depth int) error {
	bodyType := t
	if t.Subtypes != nil {
		concrete := vn.value
		for concrete.IsValid() && (concrete.Kind() == reflect.Interface || concrete.Kind() == reflect.Ptr) {
			if concrete.IsNil() {
				return fmt.Errorf("octstruct: polymorphic field %s is nil", t.Name)
			}
			concrete = concrete.Elem()
		}
		key, writeKey, child, err := subtype.ForSerialize(t.Subtypes, concrete.Type())
		if err != nil {
			return err
		}
		if writeKey {
			if err := binding.WriteBack(t.Subtypes.KeySource, vn, key); err != nil {
				return err
			}
		}
		bodyType = child
		vn.value = concrete
	}
	populateObjectChildren(vn, bodyType)
	return writeChildren(bodyType, vn, wf, ev, depth)
}

func writeCustom(t *typegraph.Node, vn *ValueNode, wf *stream.WriteFramer) error {
	end, err := effectiveEndianness(vn, true)
	if err != nil {
		return err
	}
	c, ok := vn.value.Interface().(octcustom.Codec)
	if !ok && vn.value.CanAddr() {
		c, ok = vn.value.Addr().Interface().(octcustom.Codec)
	}
	if !ok {
		return fmt.Errorf("octstruct: %s does not implement octcustom.Codec", t.GoType)
	}
	return c.SerializeCustom(wf, end)
}

func writeStreamPassthrough(vn *ValueNode, wf *stream.WriteFramer) error {
	r, ok := vn.value.Interface().(io.Reader)
	if !ok {
		return fmt.Errorf("octstruct: stream passthrough field is not an io.Reader")
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return wf.WriteAll(buf)
}

func writeValue(t *typegraph.Node, vn *ValueNode, wf *stream.WriteFramer) error {
	end, err := effectiveEndianness(vn, true)
	if err != nil {
		return err
	}
	switch t.Repr {
	case typegraph.ReprInt:
		return wf.WriteAll(codec.PutUint(uint64(vn.value.Int()), t.IntWidth, end))
	case typegraph.ReprUint:
		return wf.WriteAll(codec.PutUint(vn.value.Uint(), t.IntWidth, end))
	case typegraph.ReprFloat:
		if t.IntWidth == codec.Width4 {
			return wf.WriteAll(codec.PutFloat32(float32(vn.value.Float()), end))
		}
		return wf.WriteAll(codec.PutFloat64(vn.value.Float(), end))
	case typegraph.ReprBool:
		v := byte(0)
		if vn.value.Bool() {
			v = 1
		}
		return wf.WriteAll([]byte{v})
	case typegraph.ReprBytes:
		return wf.WriteAll(vn.value.Bytes())
	case typegraph.ReprString:
		enc, err := effectiveEncoding(vn, true)
		if err != nil {
			return err
		}
		raw, err := codec.EncodeString(vn.value.String(), enc)
		if err != nil {
			return err
		}
		if err := wf.WriteAll(raw); err != nil {
			return err
		}
		if t.Length == nil {
			return wf.WriteAll(make([]byte, enc.TerminatorWidth()))
		}
		return nil
	default:
		return fmt.Errorf("octstruct: unhandled value representation %d", t.Repr)
	}
}

func writePrimitiveArray(t *typegraph.Node, vn *ValueNode, wf *stream.WriteFramer) error {
	end, err := effectiveEndianness(vn, true)
	if err != nil {
		return err
	}
	n := vn.value.Len()
	vn.items = make([]*ValueNode, n)
	vals := make([]uint64, n)
	for i := 0; i < n; i++ {
		el := vn.value.Index(i)
		item := newChild(vn, t.Item)
		item.value = el
		item.known = true
		vn.items[i] = item
		switch t.Item.Repr {
		case typegraph.ReprInt:
			vals[i] = uint64(el.Int())
		default:
			vals[i] = el.Uint()
		}
	}
	return wf.WriteAll(codec.PutUintArray(vals, t.Item.IntWidth, end))
}

func writeCollection(t *typegraph.Node, vn *ValueNode, wf *stream.WriteFramer, ev *Events, depth int) error {
	n := vn.value.Len()
	vn.items = make([]*ValueNode, n)
	for i := 0; i < n; i++ {
		item := newChild(vn, t.Item)
		item.value = vn.value.Index(i)
		item.known = true
		vn.items[i] = item

		var pushedItemBound bool
		if t.Collection != nil && t.Collection.ItemLengthKind == collection.ItemLengthUniform {
			val, err := binding.Resolve(t.Collection.ItemLength, item, true)
			if err != nil {
				return err
			}
			lim, _ := asInt64(val)
			wf.PushBounded(lim)
			pushedItemBound = true
		}
		if err := dispatchWrite(t.Item, item, wf, ev, depth+1); err != nil {
			return octerr.Wrap(err, fmt.Sprintf("%s[%d]", t.Name, i), wf.Position(), "serialize")
		}
		if pushedItemBound {
			if err := wf.PopBounded(); err != nil {
				return err
			}
		}
	}
	return nil
}

func evalCondition(c *typegraph.ConditionSpec, vn *ValueNode, forSerialize bool) (bool, error) {
	val, err := binding.Resolve(c.Source, vn, forSerialize)
	if err != nil {
		return false, err
	}
	eq := reflect.DeepEqual(val, c.Literal)
	if iv, ok := asInt64(val); ok {
		if lv, ok := asInt64(c.Literal); ok {
			eq = iv == lv
		}
	}
	if c.Negate {
		return !eq, nil
	}
	return eq, nil
}
