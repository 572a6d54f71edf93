// Package octerr defines the sentinel error kinds shared across the engine
// and the breadcrumb wrapper used to annotate them with a walk position.
package octerr

import (
	"errors"
	"fmt"
)

// Build-time errors, raised while internal/typegraph compiles a type.
var (
	ErrDuplicateOrder      = errors.New("octstruct: two sibling fields share the same order")
	ErrMissingOrder        = errors.New("octstruct: more than one sibling field lacks an explicit order")
	ErrUnresolvedConstructor = errors.New("octstruct: no constructor accepts the readable fields")
	ErrCyclicType          = errors.New("octstruct: type is its own ancestor via composition")
	ErrSubtypeKeyAmbiguous = errors.New("octstruct: subtype key is claimed by two entries that are not write-only")
	ErrBindingPathInvalid  = errors.New("octstruct: binding path spec is malformed")
)

// Bind-time errors, raised while internal/binding resolves a path.
var (
	ErrBindingNotFound            = errors.New("octstruct: binding source path did not resolve")
	ErrNonDeferrableForwardRef    = errors.New("octstruct: forward reference cannot be deferred on this stream")
	ErrConverterRejected          = errors.New("octstruct: converter declined the value")
)

// Walk-time errors, raised while internal/valuegraph walks a value graph.
var (
	ErrOverflow           = errors.New("octstruct: value wider than its bound length")
	ErrUnderflow          = errors.New("octstruct: stream ran out of bytes")
	ErrUnknownSubtype     = errors.New("octstruct: no table entry, factory, or default matched the subtype key")
	ErrUnmappedSubtype    = errors.New("octstruct: no table entry or factory matched the runtime type")
	ErrItemLengthMismatch = errors.New("octstruct: item-length sequence does not match collection length")
	ErrNotSeekable        = errors.New("octstruct: operation requires a seekable stream")
	ErrStreamClosed       = errors.New("octstruct: stream was closed mid-walk")
)

// Breadcrumb annotates an error with the value-graph path and byte offset at
// which it occurred. Breadcrumbs accumulate as the walk unwinds, each ancestor
// prepending its own frame.
type Breadcrumb struct {
	Path      string
	Offset    int64
	Direction string
	Cause     error
}

func (b *Breadcrumb) Error() string {
	return fmt.Sprintf("%s: at %s (offset %d): %v", b.Direction, b.Path, b.Offset, b.Cause)
}

func (b *Breadcrumb) Unwrap() error { return b.Cause }

// Wrap attaches a breadcrumb frame to err, or prepends a path segment to an
// existing breadcrumb chain so the outermost caller sees the full trail.
func Wrap(err error, path string, offset int64, direction string) error {
	if err == nil {
		return nil
	}
	var bc *Breadcrumb
	if errors.As(err, &bc) {
		return &Breadcrumb{Path: path + "/" + bc.Path, Offset: bc.Offset, Direction: bc.Direction, Cause: bc.Cause}
	}
	return &Breadcrumb{Path: path, Offset: offset, Direction: direction, Cause: err}
}
