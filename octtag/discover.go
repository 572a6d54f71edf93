package octtag

import (
	"fmt"
	"reflect"

	"github.com/Davipb/BinarySerializer/internal/octerr"
)

type rawField struct {
	field reflect.StructField
	index []int
	order *int
	attrs []Attribute
}

// Discover reflects over t (which must be a struct type) and produces its
// normalized Descriptor: members ordered per invariant 1 (embedded "base"
// fields before the type's own "derived" fields, each group internally
// ordered by its explicit FieldOrder).
func Discover(t reflect.Type) (Descriptor, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Descriptor{}, fmt.Errorf("octtag: %s is not a struct", t)
	}
	groups, err := levels(t, nil)
	if err != nil {
		return Descriptor{}, err
	}
	var members []Member
	for depth, group := range groups {
		for _, rf := range group {
			members = append(members, Member{
				Name:         rf.field.Name,
				DeclaredType: rf.field.Type,
				Index:        rf.index,
				Order:        rf.order,
				BaseDepth:    len(groups) - 1 - depth,
				Attributes:   rf.attrs,
			})
		}
	}
	return Descriptor{TypeID: t, Members: members}, nil
}

// levels returns one []rawField per struct "generation", outermost-embedded
// first, t's own declared fields last — i.e. already in base-before-derived
// order; groups must still be individually sorted by explicit order.
func levels(t reflect.Type, prefix []int) ([][]rawField, error) {
	var out [][]rawField
	var own []rawField
	sawOrder := false
	missingOrder := 0

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() && !f.Anonymous {
			continue
		}
		idx := append(append([]int{}, prefix...), i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			sub, err := levels(f.Type, idx)
			if err != nil {
				return nil, err
			}
			out = append(sub, out...)
			continue
		}
		tag := f.Tag.Get(tagKey)
		attrs, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		ignored := false
		var order *int
		for _, a := range attrs {
			switch a.Kind {
			case KindIgnore:
				ignored = true
			case KindFieldOrder:
				n := a.Payload.(int)
				order = &n
			}
		}
		if ignored {
			continue
		}
		if order == nil {
			missingOrder++
		} else {
			sawOrder = true
		}
		own = append(own, rawField{field: f, index: idx, order: order, attrs: attrs})
	}
	if len(own) > 1 && missingOrder > 1 {
		return nil, fmt.Errorf("%w: %s", octerr.ErrMissingOrder, t)
	}
	if err := checkDuplicateOrder(t, own); err != nil {
		return nil, err
	}
	if sawOrder {
		sortByOrder(own)
	}
	out = append(out, own)
	return out, nil
}

func sortByOrder(fields []rawField) {
	// Stable insertion sort: field counts per struct are small, and this
	// keeps declaration order as the tiebreak for fields sharing no order
	// (only one such field is allowed per invariant 2, but an unordered
	// field among ordered siblings should sort last).
	for i := 1; i < len(fields); i++ {
		j := i
		for j > 0 && less(fields[j], fields[j-1]) {
			fields[j], fields[j-1] = fields[j-1], fields[j]
			j--
		}
	}
}

func checkDuplicateOrder(t reflect.Type, fields []rawField) error {
	seen := map[int]string{}
	for _, f := range fields {
		if f.order == nil {
			continue
		}
		if prev, ok := seen[*f.order]; ok {
			return fmt.Errorf("%w: %s: fields %s and %s both declare order %d", octerr.ErrDuplicateOrder, t, prev, f.field.Name, *f.order)
		}
		seen[*f.order] = f.field.Name
	}
	return nil
}

func less(a, b rawField) bool {
	if a.order == nil {
		return false
	}
	if b.order == nil {
		return true
	}
	return *a.order < *b.order
}
