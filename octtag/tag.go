package octtag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Davipb/BinarySerializer/internal/binding"
	"github.com/Davipb/BinarySerializer/internal/codec"
	"github.com/Davipb/BinarySerializer/internal/collection"
	"github.com/Davipb/BinarySerializer/internal/computed"
)

const tagKey = "oct"

// parseTag splits an `oct:"..."` struct tag value into its Attributes. An
// empty or absent tag yields no attributes: the member still participates
// with defaults, but it has no explicit order, and Discover rejects a struct
// in which more than one member lacks one (invariant 2).
func parseTag(raw string) ([]Attribute, error) {
	if raw == "" {
		return nil, nil
	}
	var attrs []Attribute
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		attr, err := parseAttribute(key, val)
		if err != nil {
			return nil, fmt.Errorf("octtag: %q: %w", part, err)
		}
		attrs = append(attrs, attr...)
	}
	return attrs, nil
}

func parseAttribute(key, val string) ([]Attribute, error) {
	switch key {
	case "ignore":
		return []Attribute{{Kind: KindIgnore}}, nil
	case "order":
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil, err
		}
		return []Attribute{{Kind: KindFieldOrder, Payload: n}}, nil
	case "length":
		b, err := parseSource(val, litInt)
		if err != nil {
			return nil, err
		}
		return []Attribute{{Kind: KindFieldLength, Payload: b}}, nil
	case "count":
		b, err := parseSource(val, litInt)
		if err != nil {
			return nil, err
		}
		return []Attribute{{Kind: KindFieldCount, Payload: b}}, nil
	case "offset":
		b, err := parseSource(val, litInt)
		if err != nil {
			return nil, err
		}
		return []Attribute{{Kind: KindFieldOffset, Payload: b}}, nil
	case "align":
		return parseAlign(val)
	case "scale":
		return parseScale(val)
	case "endian":
		b, err := parseSource(val, litEndian)
		if err != nil {
			return nil, err
		}
		return []Attribute{{Kind: KindFieldEndianness, Payload: b}}, nil
	case "encoding":
		b, err := parseSource(val, litEncoding)
		if err != nil {
			return nil, err
		}
		return []Attribute{{Kind: KindFieldEncoding, Payload: b}}, nil
	case "subtypekey":
		b, err := parseSource(val, litString)
		if err != nil {
			return nil, err
		}
		return []Attribute{{Kind: KindSubtypeKey, Payload: b}}, nil
	case "crc16", "crc32", "hash":
		b, err := parseSource(val, litString)
		if err != nil {
			return nil, err
		}
		method := map[string]computed.Method{"crc16": computed.CRC16, "crc32": computed.CRC32, "hash": computed.XXHash64}[key]
		return []Attribute{{Kind: KindFieldValue, Payload: ComputedPayload{Method: method, Target: b}}}, nil
	case "when", "whennot":
		cond, err := parseCondition(val)
		if err != nil {
			return nil, err
		}
		kind := KindSerializeWhen
		if key == "whennot" {
			kind = KindSerializeWhenNot
		}
		return []Attribute{{Kind: kind, Payload: cond}}, nil
	case "until":
		v, err := litAuto(val)
		if err != nil {
			return nil, err
		}
		return []Attribute{{Kind: KindSerializeUntil, Payload: v}}, nil
	case "itemuntil":
		spec, err := parseItemUntil(val)
		if err != nil {
			return nil, err
		}
		return []Attribute{{Kind: KindItemSerializeUntil, Payload: spec}}, nil
	case "itemlength":
		b, err := parseSource(val, litInt)
		if err != nil {
			return nil, err
		}
		return []Attribute{{Kind: KindItemLength, Payload: b}}, nil
	case "serializeas":
		return []Attribute{{Kind: KindSerializeAs, Payload: val}}, nil
	default:
		return nil, fmt.Errorf("unrecognized attribute %q", key)
	}
}

// ComputedPayload is the KindFieldValue attribute's normalized form.
type ComputedPayload struct {
	Method computed.Method
	Target binding.Binding
}

// ConditionPayload is the KindSerializeWhen(Not) attribute's normalized form.
type ConditionPayload struct {
	Source  binding.Binding
	Literal any
}

// ItemUntilPayload is the KindItemSerializeUntil attribute's normalized form.
type ItemUntilPayload struct {
	Path  binding.PathSpec
	Value any
	Mode  collection.LastItemMode
}

func parseCondition(val string) (ConditionPayload, error) {
	eq := strings.Index(val, "==")
	if eq < 0 {
		return ConditionPayload{}, fmt.Errorf("condition needs ==value: %q", val)
	}
	pathExpr, litExpr := val[:eq], val[eq+2:]
	if !strings.HasPrefix(pathExpr, "@") {
		return ConditionPayload{}, fmt.Errorf("condition source must be a @path: %q", pathExpr)
	}
	path, err := parsePath(pathExpr[1:])
	if err != nil {
		return ConditionPayload{}, err
	}
	lit, err := litAuto(litExpr)
	if err != nil {
		return ConditionPayload{}, err
	}
	return ConditionPayload{Source: binding.Binding{Path: path}, Literal: lit}, nil
}

func parseItemUntil(val string) (ItemUntilPayload, error) {
	// syntax: @path==value:mode   mode in {include,exclude,defer}, default include
	mode := collection.Include
	if idx := strings.LastIndex(val, ":"); idx >= 0 {
		switch val[idx+1:] {
		case "exclude":
			mode = collection.Exclude
		case "defer":
			mode = collection.Defer
		case "include":
			mode = collection.Include
		default:
			idx = -1
		}
		if idx >= 0 {
			val = val[:idx]
		}
	}
	eq := strings.Index(val, "==")
	if eq < 0 {
		return ItemUntilPayload{}, fmt.Errorf("itemuntil needs ==value: %q", val)
	}
	pathExpr, litExpr := val[:eq], val[eq+2:]
	if !strings.HasPrefix(pathExpr, "@") {
		return ItemUntilPayload{}, fmt.Errorf("itemuntil source must be a @path: %q", pathExpr)
	}
	path, err := parsePath(pathExpr[1:])
	if err != nil {
		return ItemUntilPayload{}, err
	}
	lit, err := litAuto(litExpr)
	if err != nil {
		return ItemUntilPayload{}, err
	}
	return ItemUntilPayload{Path: path, Value: lit, Mode: mode}, nil
}

func parseAlign(val string) ([]Attribute, error) {
	mode := "left"
	numPart := val
	if idx := strings.LastIndex(val, ":"); idx >= 0 {
		numPart, mode = val[:idx], val[idx+1:]
	}
	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return nil, err
	}
	return []Attribute{{Kind: KindFieldAlignment, Payload: AlignPayload{Multiple: n, Mode: mode}}}, nil
}

// AlignPayload is the KindFieldAlignment attribute's normalized form.
type AlignPayload struct {
	Multiple int64
	Mode     string // "left", "right", "both"
}

func parseScale(val string) ([]Attribute, error) {
	parts := strings.SplitN(val, "/", 2)
	num, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, err
	}
	den := int64(1)
	if len(parts) == 2 {
		den, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, err
		}
	}
	return []Attribute{{Kind: KindFieldScale, Payload: ScalePayload{Num: num, Den: den}}}, nil
}

// ScalePayload is the KindFieldScale attribute's normalized form.
type ScalePayload struct{ Num, Den int64 }

func litInt(s string) (any, error) {
	n, err := strconv.ParseInt(s, 0, 64)
	return int64(n), err
}

func litString(s string) (any, error) { return s, nil }

func litAuto(s string) (any, error) {
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return n, nil
	}
	return s, nil
}

func litEndian(s string) (any, error) {
	switch s {
	case "little":
		return codec.LittleEndian, nil
	case "big":
		return codec.BigEndian, nil
	default:
		return nil, fmt.Errorf("unknown endianness %q", s)
	}
}

func litEncoding(s string) (any, error) {
	switch s {
	case "ascii":
		return codec.ASCII, nil
	case "win1252", "windows1252":
		return codec.Windows1252, nil
	case "utf8":
		return codec.UTF8, nil
	case "utf16le":
		return codec.UTF16LE, nil
	case "utf16be":
		return codec.UTF16BE, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", s)
	}
}
