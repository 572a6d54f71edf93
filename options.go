package octstruct

// Options controls one Serialize or Deserialize call. The zero value runs
// with no event hooks, matching the teacher repo's plain-struct option
// types (pkg/hive's MergeOptions/OperationOptions) rather than a chained
// functional-options builder.
type Options struct {
	// Events, if non-nil, is notified as the walk enters and leaves each
	// struct member.
	Events *Events
}

// Option mutates an Options value being assembled from variadic arguments,
// so callers who only care about one field can write
// Serialize(v, w, WithEvents(ev)) instead of building an Options literal.
type Option func(*Options)

// WithEvents attaches member-boundary event hooks to a call.
func WithEvents(ev *Events) Option {
	return func(o *Options) { o.Events = ev }
}

func resolveOptions(opts []Option) Options {
	var o Options
	for _, apply := range opts {
		apply(&o)
	}
	return o
}
