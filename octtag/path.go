package octtag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Davipb/BinarySerializer/internal/binding"
)

// parsePath parses the source half of an attribute value, e.g. "@Length",
// "@^2.Field", "@!Header.Field". The leading '@' must already have been
// stripped by the caller.
func parsePath(s string) (binding.PathSpec, error) {
	if s == "" {
		return binding.PathSpec{}, fmt.Errorf("octtag: empty path")
	}
	switch s[0] {
	case '^':
		rest := s[1:]
		dot := strings.IndexByte(rest, '.')
		levelStr := rest
		var segs []string
		if dot >= 0 {
			levelStr = rest[:dot]
			segs = strings.Split(rest[dot+1:], ".")
		}
		level, err := strconv.Atoi(levelStr)
		if err != nil {
			return binding.PathSpec{}, fmt.Errorf("octtag: bad ancestor level %q: %w", levelStr, err)
		}
		return binding.PathSpec{Mode: binding.ByLevel, Level: level, Segments: segs}, nil
	case '!':
		rest := s[1:]
		dot := strings.IndexByte(rest, '.')
		typeName := rest
		var segs []string
		if dot >= 0 {
			typeName = rest[:dot]
			segs = strings.Split(rest[dot+1:], ".")
		}
		return binding.PathSpec{Mode: binding.ByType, AncestorType: typeName, Segments: segs}, nil
	default:
		segs := strings.Split(s, ".")
		return binding.PathSpec{Mode: binding.NearestWithChild, Segments: segs}, nil
	}
}

// parseSource parses a generic attribute value that is either a literal or a
// "@path[|converter]" binding expression, producing a binding.Binding. lit
// converts the literal string form into the attribute's native type.
func parseSource(raw string, lit func(string) (any, error)) (binding.Binding, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "@") {
		v, err := lit(raw)
		if err != nil {
			return binding.Binding{}, err
		}
		return binding.Binding{Literal: v}, nil
	}
	body := raw[1:]
	direction := binding.Both
	if idx := strings.IndexByte(body, '#'); idx >= 0 {
		switch body[idx+1:] {
		case "ro":
			direction = binding.ReadOnly
		case "wo":
			direction = binding.WriteOnly
		}
		body = body[:idx]
	}
	var convName string
	if idx := strings.IndexByte(body, '|'); idx >= 0 {
		convName = body[idx+1:]
		body = body[:idx]
	}
	path, err := parsePath(body)
	if err != nil {
		return binding.Binding{}, err
	}
	b := binding.Binding{Path: path, Direction: direction}
	if convName != "" {
		conv, ok := lookupConverter(convName)
		if !ok {
			return binding.Binding{}, fmt.Errorf("octtag: unknown converter %q", convName)
		}
		b.Converter = conv
	}
	return b, nil
}
