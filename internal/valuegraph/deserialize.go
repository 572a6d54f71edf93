package valuegraph

import (
	"errors"
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

// Deserialize reads t's wire representation from r and returns a freshly
// constructed instance of t. Pointer types are dereferenced first, so for a
// *T the returned value is a T, not a *T.
func Deserialize(r io.Reader, t reflect.Type, ev *Events) (any, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	typ, err := typegraph.Build(t)
	if err != nil {
		return nil, err
	}
	rf := stream.NewReadFramer(r)
	vn := &ValueNode{Type: typ}
	inst, err := readObject(typ, vn, rf, ev, 0)
	if err != nil {
		return nil, err
	}
	return inst.Interface(), nil
}

// readObject allocates each declared child up front (so bindings can see
// siblings regardless of read order), reads every member, then asks the
// node's Constructor to assemble the final instance from the collected
// field map (§4.1 step 4, §9's builder-intermediate note).
func readObject(t *typegraph.Node, vn *ValueNode, rf *stream.ReadFramer, ev *Events, depth int) (reflect.Value, error) {
	for _, childType := range t.Children {
		vn.setChild(childType.Name, newChild(vn, childType))
	}
	fields := map[string]any{}
	for _, childType := range t.Children {
		childVN := vn.childrenByName[childType.Name]
		if ev != nil && ev.MemberSerializing != nil {
			ev.MemberSerializing(childType.Name, depth)
		}
		if err := readChild(childVN, rf, ev, depth+1); err != nil {
			return reflect.Value{}, octerr.Wrap(err, childType.Name, rf.Position(), "deserialize")
		}
		if val, ok := childVN.Resolved(); ok {
			fields[childType.Name] = val
		}
		if ev != nil && ev.MemberSerialized != nil {
			ev.MemberSerialized(childType.Name, depth, childVN.offset)
		}

		// Retry every still-deferred sibling after each new field becomes
		// known (§9): a later field's FieldLength/FieldCount/etc. may itself
		// be bound to an earlier field whose endianness was only just
		// resolved, so resolution must happen before, not after, the rest of
		// the object is read.
		for _, priorType := range t.Children {
			priorVN := vn.childrenByName[priorType.Name]
			if !priorVN.deferredEndian {
				continue
			}
			if err := resolveDeferredEndian(priorVN); err != nil {
				if errors.Is(err, binding.ErrDeferred) {
					continue
				}
				return reflect.Value{}, octerr.Wrap(err, priorType.Name, priorVN.offset, "deserialize")
			}
			priorVN.deferredEndian = false
			fields[priorType.Name], _ = priorVN.Resolved()
		}
	}

	for _, childType := range t.Children {
		childVN := vn.childrenByName[childType.Name]
		if childVN.deferredEndian {
			return reflect.Value{}, octerr.Wrap(octerr.ErrNonDeferrableForwardRef, childType.Name, childVN.offset, "deserialize")
		}
	}

	if t.Constructor == nil {
		return reflect.Value{}, fmt.Errorf("octstruct: %s has no constructor", t.GoType)
	}
	inst, err := t.Constructor.Build(t, fields)
	if err != nil {
		return reflect.Value{}, err
	}
	vn.value = inst
	vn.known = true
	return inst, nil
}

func readChild(vn *ValueNode, rf *stream.ReadFramer, ev *Events, depth int) error {
	t := vn.Type

	if t.Condition != nil {
		ok, err := evalCondition(t.Condition, vn, false)
		if err != nil {
			return err
		}
		if !ok {
			vn.known = false
			return nil
		}
	}

	if t.Offset != nil {
		val, err := binding.Resolve(*t.Offset, vn, false)
		if err != nil {
			return err
		}
		off, _ := asInt64(val)
		if err := rf.SeekTo(off); err != nil {
			return err
		}
	}

	if t.Align != nil && (t.Align.Mode == typegraph.AlignLeft || t.Align.Mode == typegraph.AlignBoth) {
		if err := rf.AlignLeft(t.Align.Multiple); err != nil {
			return err
		}
	}

	vn.offset = rf.Position()

	var pushedBound bool
	if t.Length != nil {
		val, err := binding.Resolve(*t.Length, vn, false)
		if err != nil {
			return err
		}
		limit, _ := asInt64(val)
		rf.PushBounded(limit)
		pushedBound = true
	}

	var err error
	if len(t.Computed) > 0 {
		err = readWithComputed(t, vn, rf, ev, depth)
	} else {
		err = dispatchRead(t, vn, rf, ev, depth)
	}
	if err != nil {
		return err
	}

	if pushedBound {
		if err := rf.PopBounded(); err != nil {
			return err
		}
	}
	if t.Align != nil && (t.Align.Mode == typegraph.AlignRight || t.Align.Mode == typegraph.AlignBoth) {
		if err := rf.AlignRight(t.Align.Multiple); err != nil {
			return err
		}
	}
	vn.length = rf.Position() - vn.offset
	return nil
}

// readWithComputed reads a field's own subtree, then, on a seekable stream,
// re-reads the covered span with ReadAt and feeds it through the field's
// accumulators. The computed value is discarded: it is not compared with
// the transmitted checksum and is not returned to any caller.
func readWithComputed(t *typegraph.Node, vn *ValueNode, rf *stream.ReadFramer, ev *Events, depth int) error {
	start := rf.Position()
	if err := dispatchRead(t, vn, rf, ev, depth); err != nil {
		return err
	}
	if !rf.Seekable() {
		// Retro-reading the covered span to feed the accumulator needs
		// Mark/Rewind; on a non-seekable source the transmitted checksum is
		// still parsed into its field, just never cross-checked.
		return nil
	}
	n := int(rf.Position() - start)
	covered, err := rf.ReadAt(start, n)
	if err != nil {
		return err
	}
	for _, spec := range t.Computed {
		acc := computed.New(spec.Method)
		acc.Reset()
		acc.Update(covered)
		_ = acc.Finalize() // available for future validate-on-read support
	}
	return nil
}

func dispatchRead(t *typegraph.Node, vn *ValueNode, rf *stream.ReadFramer, ev *Events, depth int) error {
	switch t.Kind {
	case typegraph.KindValue:
		return readValue(t, vn, rf)
	case typegraph.KindCustomSerialized:
		return readCustom(t, vn, rf)
	case typegraph.KindStreamPassthrough:
		return readStreamPassthrough(t, vn, rf)
	case typegraph.KindPrimitiveArray:
		return readPrimitiveArray(t, vn, rf)
	case typegraph.KindCollection:
		return readCollection(t, vn, rf, ev, depth)
	case typegraph.KindObject:
		bodyType := t
		if t.Subtypes != nil {
			keyVal, err := binding.Resolve(t.Subtypes.KeySource, vn, false)
			if err != nil {
				return err
			}
			child, _, err := subtype.ForDeserialize(t.Subtypes, keyVal)
			if err != nil {
				return err
			}
			bodyType = child
		}
		_, err := readObject(bodyType, vn, rf, ev, depth)
		return err
	default:
		return fmt.Errorf("octstruct: unhandled node kind %d", t.Kind)
	}
}

func readCustom(t *typegraph.Node, vn *ValueNode, rf *stream.ReadFramer) error {
	end, err := effectiveEndianness(vn, false)
	if err != nil {
		return err
	}
	inst := reflect.New(t.GoType)
	c, ok := inst.Interface().(octcustom.Codec)
	if !ok {
		return fmt.Errorf("octstruct: %s does not implement octcustom.Codec", t.GoType)
	}
	if err := c.DeserializeCustom(rf, end); err != nil {
		return err
	}
	return vn.Set(inst.Elem().Interface())
}

func readStreamPassthrough(t *typegraph.Node, vn *ValueNode, rf *stream.ReadFramer) error {
	n := rf.Remaining()
	if n < 0 {
		return fmt.Errorf("octstruct: stream passthrough field %s requires FieldLength", t.Name)
	}
	buf, err := rf.ReadExact(int(n))
	if err != nil {
		return err
	}
	inst := reflect.New(t.GoType)
	w, ok := inst.Interface().(io.Writer)
	if !ok {
		return fmt.Errorf("octstruct: %s is not an io.Writer", t.GoType)
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}
	return vn.Set(inst.Elem().Interface())
}

func readValue(t *typegraph.Node, vn *ValueNode, rf *stream.ReadFramer) error {
	end, err := effectiveEndianness(vn, false)
	if err != nil {
		if errors.Is(err, binding.ErrDeferred) {
			return readValueDeferred(t, vn, rf)
		}
		return err
	}
	switch t.Repr {
	case typegraph.ReprInt:
		b, err := rf.ReadExact(int(t.IntWidth))
		if err != nil {
			return err
		}
		iv, err := codec.Int(b, t.IntWidth, end)
		if err != nil {
			return err
		}
		return vn.Set(reflect.ValueOf(iv).Convert(t.GoType).Interface())
	case typegraph.ReprUint:
		b, err := rf.ReadExact(int(t.IntWidth))
		if err != nil {
			return err
		}
		uv, err := codec.Uint(b, t.IntWidth, end)
		if err != nil {
			return err
		}
		return vn.Set(reflect.ValueOf(uv).Convert(t.GoType).Interface())
	case typegraph.ReprFloat:
		if t.IntWidth == codec.Width4 {
			b, err := rf.ReadExact(4)
			if err != nil {
				return err
			}
			f, err := codec.Float32(b, end)
			if err != nil {
				return err
			}
			return vn.Set(reflect.ValueOf(f).Convert(t.GoType).Interface())
		}
		b, err := rf.ReadExact(8)
		if err != nil {
			return err
		}
		f, err := codec.Float64(b, end)
		if err != nil {
			return err
		}
		return vn.Set(reflect.ValueOf(f).Convert(t.GoType).Interface())
	case typegraph.ReprBool:
		b, err := rf.ReadExact(1)
		if err != nil {
			return err
		}
		return vn.Set(b[0] != 0)
	case typegraph.ReprBytes:
		n := rf.Remaining()
		if n < 0 {
			return fmt.Errorf("octstruct: bytes field %s requires FieldLength", t.Name)
		}
		b, err := rf.ReadExact(int(n))
		if err != nil {
			return err
		}
		return vn.Set(b)
	case typegraph.ReprString:
		enc, err := effectiveEncoding(vn, false)
		if err != nil {
			return err
		}
		var raw []byte
		if n := rf.Remaining(); n >= 0 {
			raw, err = rf.ReadExact(int(n))
			// A bounded string ends at its first terminator; the zero
			// padding PopBounded emitted on write is not part of the value.
			w := enc.TerminatorWidth()
			for i := 0; i+w <= len(raw); i += w {
				if raw[i] == 0 && raw[i+w-1] == 0 {
					raw = raw[:i]
					break
				}
			}
		} else {
			raw, err = readNullTerminated(rf, enc.TerminatorWidth())
		}
		if err != nil {
			return err
		}
		s, err := codec.DecodeString(raw, enc)
		if err != nil {
			return err
		}
		return vn.Set(s)
	default:
		return fmt.Errorf("octstruct: unhandled value representation %d", t.Repr)
	}
}

// readValueDeferred buffers a fixed-width Value node's raw octets without
// interpreting them, because its own FieldEndianness binding named a sibling
// that has not been read yet (§9 "forward-referenced endianness"). Only the
// numeric reprs have a statically known width, so only they are deferrable;
// anything else (a representation whose byte count itself depends on
// interpreting the value, like a string) cannot be buffered blind.
func readValueDeferred(t *typegraph.Node, vn *ValueNode, rf *stream.ReadFramer) error {
	var width int
	switch t.Repr {
	case typegraph.ReprInt, typegraph.ReprUint:
		width = int(t.IntWidth)
	case typegraph.ReprFloat:
		width = 4
		if t.IntWidth == codec.Width8 {
			width = 8
		}
	default:
		return octerr.ErrNonDeferrableForwardRef
	}
	b, err := rf.ReadExact(width)
	if err != nil {
		return err
	}
	vn.deferredEndian = true
	vn.rawBytes = b
	return nil
}

// resolveDeferredEndian retro-interprets a buffered Value node once its
// endianness's forward-referenced source has been read.
func resolveDeferredEndian(vn *ValueNode) error {
	t := vn.Type
	end, err := effectiveEndianness(vn, false)
	if err != nil {
		return err
	}
	switch t.Repr {
	case typegraph.ReprInt:
		iv, err := codec.Int(vn.rawBytes, t.IntWidth, end)
		if err != nil {
			return err
		}
		return vn.Set(reflect.ValueOf(iv).Convert(t.GoType).Interface())
	case typegraph.ReprUint:
		uv, err := codec.Uint(vn.rawBytes, t.IntWidth, end)
		if err != nil {
			return err
		}
		return vn.Set(reflect.ValueOf(uv).Convert(t.GoType).Interface())
	case typegraph.ReprFloat:
		if t.IntWidth == codec.Width4 {
			f, err := codec.Float32(vn.rawBytes, end)
			if err != nil {
				return err
			}
			return vn.Set(reflect.ValueOf(f).Convert(t.GoType).Interface())
		}
		f, err := codec.Float64(vn.rawBytes, end)
		if err != nil {
			return err
		}
		return vn.Set(reflect.ValueOf(f).Convert(t.GoType).Interface())
	default:
		return octerr.ErrNonDeferrableForwardRef
	}
}

func readNullTerminated(rf *stream.ReadFramer, termWidth int) ([]byte, error) {
	var out []byte
	for {
		chunk, err := rf.ReadExact(termWidth)
		if err != nil {
			return nil, err
		}
		allZero := true
		for _, b := range chunk {
			if b != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			return out, nil
		}
		out = append(out, chunk...)
	}
}

func readPrimitiveArray(t *typegraph.Node, vn *ValueNode, rf *stream.ReadFramer) error {
	end, err := effectiveEndianness(vn, false)
	if err != nil {
		return err
	}
	width := int(t.Item.IntWidth)
	n, err := itemCount(t, vn, rf, width)
	if err != nil {
		return err
	}
	raw, err := rf.ReadExact(n * width)
	if err != nil {
		return err
	}
	vals, err := codec.UintArray(raw, n, t.Item.IntWidth, end)
	if err != nil {
		return err
	}
	out := reflect.MakeSlice(reflect.SliceOf(t.Item.GoType), n, n)
	vn.items = make([]*ValueNode, n)
	for i := 0; i < n; i++ {
		item := newChild(vn, t.Item)
		v := vals[i]
		var rv reflect.Value
		if t.Item.Repr == typegraph.ReprInt {
			rv = reflect.ValueOf(int64(v)).Convert(t.Item.GoType)
		} else {
			rv = reflect.ValueOf(v).Convert(t.Item.GoType)
		}
		out.Index(i).Set(rv)
		item.value = out.Index(i)
		item.known = true
		vn.items[i] = item
	}
	return vn.Set(out.Interface())
}

// itemCount determines how many primitive-array elements to read, following
// the FieldCount / FieldLength priority of §4.7. A FieldLength-governed
// array divides the already-bounded remaining octets by the item width.
func itemCount(t *typegraph.Node, vn *ValueNode, rf *stream.ReadFramer, itemWidth int) (int, error) {
	spec := t.Collection
	if spec == nil {
		spec = &collection.Spec{Mode: collection.ModeNone}
	}
	switch spec.Mode {
	case collection.ModeFieldCount:
		val, err := binding.Resolve(spec.FieldCount, vn, false)
		if err != nil {
			return 0, err
		}
		n, _ := asInt64(val)
		return int(n), nil
	default:
		rem := rf.Remaining()
		if rem < 0 {
			return 0, fmt.Errorf("octstruct: array %s needs FieldCount or FieldLength", t.Name)
		}
		if itemWidth == 0 {
			return 0, nil
		}
		return int(rem) / itemWidth, nil
	}
}

func readCollection(t *typegraph.Node, vn *ValueNode, rf *stream.ReadFramer, ev *Events, depth int) error {
	spec := t.Collection
	if spec == nil {
		spec = &collection.Spec{Mode: collection.ModeNone}
	}

	switch spec.Mode {
	case collection.ModeFieldCount:
		val, err := binding.Resolve(spec.FieldCount, vn, false)
		if err != nil {
			return err
		}
		n, _ := asInt64(val)
		for i := int64(0); i < n; i++ {
			if _, err := readCollectionItem(t, vn, rf, ev, depth, int(i)); err != nil {
				return err
			}
		}
		return vn.setSliceFromItems(t)

	case collection.ModeFieldLength, collection.ModeNone:
		for rf.Remaining() > 0 {
			if _, err := readCollectionItem(t, vn, rf, ev, depth, len(vn.items)); err != nil {
				return err
			}
		}
		return vn.setSliceFromItems(t)

	case collection.ModeSerializeUntil:
		sentinel, _ := asInt64(spec.SerializeUntilValue)
		for {
			b, err := rf.PeekByte()
			if err != nil {
				return err
			}
			if int64(b) == sentinel {
				break
			}
			if _, err := readCollectionItem(t, vn, rf, ev, depth, len(vn.items)); err != nil {
				return err
			}
		}
		return vn.setSliceFromItems(t)

	case collection.ModeItemSerializeUntil:
		for {
			mark, err := rf.Mark()
			markErr := err // nil unless unseekable; Defer requires seekability
			item, err := readCollectionItem(t, vn, rf, ev, depth, len(vn.items))
			if err != nil {
				return err
			}
			matched, err := itemMatches(spec, item)
			if err != nil {
				return err
			}
			if !matched {
				continue
			}
			switch spec.ItemUntilMode {
			case collection.Include:
				return vn.setSliceFromItems(t)
			case collection.Exclude:
				vn.items = vn.items[:len(vn.items)-1]
				return vn.setSliceFromItems(t)
			case collection.Defer:
				vn.items = vn.items[:len(vn.items)-1]
				if markErr != nil {
					return markErr
				}
				if err := rf.Rewind(mark); err != nil {
					return err
				}
				return vn.setSliceFromItems(t)
			}
			return vn.setSliceFromItems(t)
		}

	default:
		return fmt.Errorf("octstruct: unhandled collection mode %d", spec.Mode)
	}
}

// itemMatches evaluates ItemSerializeUntil's path directly against item
// itself (not a sibling-search from its parent): the path names a field
// inside the item, e.g. "@Type" means "this item's Type member".
func itemMatches(spec *collection.Spec, item *ValueNode) (bool, error) {
	var cur binding.ValueAccessor = item
	for _, seg := range spec.ItemUntilPath.Segments {
		next, ok := cur.ChildByName(seg)
		if !ok {
			return false, fmt.Errorf("%w: no child %q", octerr.ErrBindingNotFound, seg)
		}
		cur = next
	}
	target, ok := cur.Resolved()
	if !ok {
		return false, nil
	}
	if iv, ok := asInt64(target); ok {
		if lv, ok := asInt64(spec.ItemUntilValue); ok {
			return iv == lv, nil
		}
	}
	return reflect.DeepEqual(target, spec.ItemUntilValue), nil
}

func readCollectionItem(t *typegraph.Node, vn *ValueNode, rf *stream.ReadFramer, ev *Events, depth int, idx int) (*ValueNode, error) {
	item := newChild(vn, t.Item)

	var pushedItemBound bool
	if t.Collection != nil && t.Collection.ItemLengthKind == collection.ItemLengthUniform {
		val, err := binding.Resolve(t.Collection.ItemLength, item, false)
		if err != nil {
			return nil, err
		}
		lim, _ := asInt64(val)
		rf.PushBounded(lim)
		pushedItemBound = true
	}
	if err := dispatchRead(t.Item, item, rf, ev, depth+1); err != nil {
		return nil, octerr.Wrap(err, fmt.Sprintf("%s[%d]", t.Name, idx), rf.Position(), "deserialize")
	}
	if pushedItemBound {
		if err := rf.PopBounded(); err != nil {
			return nil, err
		}
	}
	vn.items = append(vn.items, item)
	return item, nil
}
