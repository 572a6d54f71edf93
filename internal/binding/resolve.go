package binding

import (
	"errors"
	"fmt"

	"github.com/Davipb/BinarySerializer/internal/octerr"
)

// ErrDeferred signals that Resolve's target exists but has not been assigned
// a value yet (a forward reference). The caller — internal/valuegraph's
// walker — decides whether the node can be revisited later.
var ErrDeferred = errors.New("binding: target not yet resolved")

// locate walks the path's ancestor hop then descends by name, without
// touching the resolved value. It is also used by write-back to find the
// target node to Set.
func locate(b Binding, at ValueAccessor) (ValueAccessor, error) {
	var cur ValueAccessor
	var ok bool
	switch b.Path.Mode {
	case ByLevel:
		cur, ok = ancestorByLevel(at, b.Path.Level)
	case ByType:
		cur, ok = ancestorByType(at, b.Path.AncestorType)
	default:
		if len(b.Path.Segments) == 0 {
			return nil, fmt.Errorf("%w: empty path", octerr.ErrBindingPathInvalid)
		}
		cur, ok = nearestWithChild(at, b.Path.Segments[0])
	}
	if !ok {
		return nil, octerr.ErrBindingNotFound
	}
	for _, seg := range b.Path.Segments {
		next, ok := cur.ChildByName(seg)
		if !ok {
			return nil, fmt.Errorf("%w: no child %q", octerr.ErrBindingNotFound, seg)
		}
		cur = next
	}
	return cur, nil
}

// Resolve evaluates b against the current position at, returning the
// effective value. If a Converter is attached, its Convert method is
// applied when forSerialize is true and its ConvertBack method otherwise.
// Resolve never writes to the source; see WriteBack for that side.
func Resolve(b Binding, at ValueAccessor, forSerialize bool) (any, error) {
	if b.IsConstant() {
		return b.Literal, nil
	}
	target, err := locate(b, at)
	if err != nil {
		return nil, err
	}
	val, ok := target.Resolved()
	if !ok {
		return nil, ErrDeferred
	}
	if b.Converter == nil {
		return val, nil
	}
	ctx := &accessorContext{at: at}
	if forSerialize {
		out, ok := b.Converter.Convert(val, ctx)
		if !ok {
			return nil, octerr.ErrConverterRejected
		}
		return out, nil
	}
	out, ok := b.Converter.ConvertBack(val, ctx)
	if !ok {
		return nil, octerr.ErrConverterRejected
	}
	return out, nil
}

// WriteBack updates b's source node with observed, per invariant 4: it is a
// no-op for constant sources or ReadOnly bindings.
func WriteBack(b Binding, at ValueAccessor, observed any) error {
	if b.IsConstant() || b.Direction == ReadOnly {
		return nil
	}
	target, err := locate(b, at)
	if err != nil {
		return err
	}
	val := observed
	if b.Converter != nil {
		ctx := &accessorContext{at: at}
		out, ok := b.Converter.ConvertBack(observed, ctx)
		if !ok {
			return octerr.ErrConverterRejected
		}
		val = out
	}
	return target.Set(val)
}

type accessorContext struct{ at ValueAccessor }

func (c *accessorContext) AncestorByType(typeName string) (ValueAccessor, bool) {
	return ancestorByType(c.at, typeName)
}
