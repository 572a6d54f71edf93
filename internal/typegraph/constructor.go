package typegraph

import "reflect"

// FieldConstructor lets a record type take over construction from a
// collected field map instead of having the engine set exported fields
// directly. This is the Go-idiomatic analogue of spec §4.1 step 4's
// "constructor whose parameter names match record fields": Go structs are
// already addressable and settable by reflection, so the generic case needs
// no parameter-matching search at all; ConstructFromFields exists only for
// types that want validation or derived state at construction time.
type FieldConstructor interface {
	ConstructFromFields(fields map[string]any) error
}

// Constructor is the compiled "(field name → value) → instance" thunk
// referenced by §4.1 step 4 and §9's builder-intermediate note.
type Constructor struct {
	GoType reflect.Type
	byName func(reflect.Value, map[string]any, *Node) error
}

// Build allocates a new, addressable instance of the node's Go type and
// populates it from fields, a map of member name to its resolved value, as
// collected by internal/valuegraph's readObject during a deserialize walk.
func (c *Constructor) Build(n *Node, fields map[string]any) (reflect.Value, error) {
	inst := reflect.New(c.GoType) // *T
	if fc, ok := inst.Interface().(FieldConstructor); ok {
		if err := fc.ConstructFromFields(fields); err != nil {
			return reflect.Value{}, err
		}
		// ConstructFromFields may populate inst's fields directly (it has
		// the concrete pointer). byName then still assigns every member
		// present in fields, overwriting whatever ConstructFromFields set
		// for those members.
	}
	if err := c.byName(inst.Elem(), fields, n); err != nil {
		return reflect.Value{}, err
	}
	return inst.Elem(), nil
}

func defaultConstructor(t reflect.Type) *Constructor {
	return &Constructor{
		GoType: t,
		byName: func(v reflect.Value, fields map[string]any, n *Node) error {
			for _, child := range n.Children {
				val, ok := fields[child.Name]
				if !ok {
					continue
				}
				target := v.FieldByIndex(child.FieldIndex)
				if val == nil {
					continue
				}
				rv := reflect.ValueOf(val)
				if rv.Type().AssignableTo(target.Type()) {
					target.Set(rv)
				} else if rv.Type().ConvertibleTo(target.Type()) {
					target.Set(rv.Convert(target.Type()))
				}
			}
			return nil
		},
	}
}
