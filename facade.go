package octstruct

import (
	"io"
	"reflect"

	"github.com/Davipb/BinarySerializer/internal/valuegraph"
)

// Serialize writes value's wire representation to w, per its `oct` struct
// tags. value must be a struct or a pointer to one.
func Serialize(value any, w io.Writer, opts ...Option) error {
	o := resolveOptions(opts)
	return valuegraph.Serialize(value, w, o.Events)
}

// Deserialize reads a wire representation from r into a freshly constructed
// value of out's type (out must be a pointer to a struct, or a struct
// reflect.Type obtained separately — see DeserializeType) and assigns it
// through out.
func Deserialize(r io.Reader, out any, opts ...Option) error {
	o := resolveOptions(opts)
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &typeError{"Deserialize requires a non-nil pointer destination"}
	}
	result, err := valuegraph.Deserialize(r, rv.Elem().Type(), o.Events)
	if err != nil {
		return err
	}
	rv.Elem().Set(reflect.ValueOf(result))
	return nil
}

// DeserializeType reads a wire representation of t (a struct type) from r
// and returns the new instance directly, for callers that don't have an
// addressable destination in hand (e.g. a freshly resolved subtype.Node).
func DeserializeType(r io.Reader, t reflect.Type, opts ...Option) (any, error) {
	o := resolveOptions(opts)
	return valuegraph.Deserialize(r, t, o.Events)
}

type typeError struct{ msg string }

func (e *typeError) Error() string { return "octstruct: " + e.msg }
