package protobind

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/reoring/protobind/codec"
)

// unmarshaler applies decoded JSON values to message instances through the
// contract's field bindings. It holds no per-message state; a single decode
// call is synchronous and touches one instance at a time.
type unmarshaler struct {
	opt UnmarshalOptions
	reg *Registry
}

func (u *unmarshaler) unmarshalMessage(m protoreflect.Message, decoded any, path string) error {
	c, err := u.reg.ContractFor(m.Descriptor())
	if err != nil {
		return err
	}
	if c.wkt != wktNone {
		return u.unmarshalWellKnown(c, m, decoded, path)
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return issueAt(path, CodeInvalidType,
			fmt.Sprintf("expected object for message %s", c.desc.FullName()))
	}

	// Bindings run in field-number order, so "whichever member was processed
	// first" is deterministic regardless of input key order.
	for _, b := range c.field {
		declared := string(b.fd.Name())
		v, present := obj[b.jsonName]
		if declared != b.jsonName {
			if dv, dok := obj[declared]; dok {
				if present {
					return issueAt(childPath(path, declared), CodeDuplicateKey,
						fmt.Sprintf("field %q appears under both %q and %q", declared, b.jsonName, declared))
				}
				v, present = dv, true
			}
		}
		if !present {
			continue
		}
		if err := u.writeField(b, m, v, childPath(path, b.jsonName)); err != nil {
			return err
		}
	}

	if !u.opt.DiscardUnknown {
		var unknown []string
		for k := range obj {
			if _, known := c.byKey[k]; !known {
				unknown = append(unknown, k)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return issueAt(childPath(path, unknown[0]), CodeUnknownKey,
				fmt.Sprintf("unknown field %q in message %s", unknown[0], c.desc.FullName()))
		}
	}
	return nil
}

// writeField dispatches on the binding kind. Repeated and map fields merge
// into the existing container; only scalar fields replace.
func (u *unmarshaler) writeField(b *FieldBinding, m protoreflect.Message, decoded any, path string) error {
	switch b.kind {
	case bindingRepeated:
		if decoded == nil {
			return nil
		}
		arr, ok := decoded.([]any)
		if !ok {
			return issueAt(path, CodeInvalidType, "expected array")
		}
		list := m.Mutable(b.fd).List()
		for i, el := range arr {
			p := childPath(path, strconv.Itoa(i))
			v, err := u.elementValue(b.fd, list.NewElement, el, p)
			if err != nil {
				return err
			}
			list.Append(v)
		}
		return nil

	case bindingMap:
		if decoded == nil {
			return nil
		}
		obj, ok := decoded.(map[string]any)
		if !ok {
			return issueAt(path, CodeInvalidType, "expected object")
		}
		keyFd, valFd := mapEntry(b.fd)
		mp := m.Mutable(b.fd).Map()
		// Sorted keys keep the per-key last-write-wins application
		// deterministic for error reporting.
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p := childPath(path, k)
			mk, err := parseMapKey(keyFd, k, p)
			if err != nil {
				return err
			}
			v, err := u.elementValue(valFd, mp.NewValue, obj[k], p)
			if err != nil {
				return err
			}
			mp.Set(mk, v)
		}
		return nil

	default: // bindingScalar, message fields included
		if decoded == nil && !acceptsNull(b.fd) {
			// Explicit null assigns nothing; the field keeps its prior state.
			return nil
		}
		if err := checkOneof(b.fd, m, path); err != nil {
			return err
		}
		if isMessageKind(b.fd.Kind()) {
			// Assign semantics: a fresh instance replaces any prior value.
			nv := m.NewField(b.fd)
			if err := u.unmarshalMessage(nv.Message(), decoded, path); err != nil {
				return err
			}
			m.Set(b.fd, nv)
			return nil
		}
		v, err := u.coerceScalar(b.fd, decoded, path)
		if err != nil {
			return err
		}
		m.Set(b.fd, v)
		return nil
	}
}

// elementValue produces a single list element or map value. Message-typed
// elements are always instantiated via newFn before merge, so a mapping's
// value type is never missing.
func (u *unmarshaler) elementValue(fd protoreflect.FieldDescriptor, newFn func() protoreflect.Value, decoded any, path string) (protoreflect.Value, error) {
	if isMessageKind(fd.Kind()) {
		nv := newFn()
		if err := u.unmarshalMessage(nv.Message(), decoded, path); err != nil {
			return protoreflect.Value{}, err
		}
		return nv, nil
	}
	return u.coerceScalar(fd, decoded, path)
}

func isMessageKind(k protoreflect.Kind) bool {
	return k == protoreflect.MessageKind || k == protoreflect.GroupKind
}

// acceptsNull reports whether an explicit JSON null is a value for fd rather
// than "leave unset". Only google.protobuf.Value and NullValue qualify.
func acceptsNull(fd protoreflect.FieldDescriptor) bool {
	switch fd.Kind() {
	case protoreflect.MessageKind:
		return fd.Message().FullName() == "google.protobuf.Value"
	case protoreflect.EnumKind:
		return fd.Enum().FullName() == "google.protobuf.NullValue"
	}
	return false
}

// coerceScalar converts a decoded JSON value into a protoreflect value for
// fd's kind. The switch is exhaustive over the closed set of non-message
// kinds; message kinds are handled by the callers.
func (u *unmarshaler) coerceScalar(fd protoreflect.FieldDescriptor, v any, path string) (protoreflect.Value, error) {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		b, ok := v.(bool)
		if !ok {
			return protoreflect.Value{}, issueAt(path, CodeInvalidType, "expected boolean")
		}
		return protoreflect.ValueOfBool(b), nil

	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		n, err := parseIntText(v, 32, path)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfInt32(int32(n)), nil

	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		n, err := parseIntText(v, 64, path)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfInt64(n), nil

	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		n, err := parseUintText(v, 32, path)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfUint32(uint32(n)), nil

	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		n, err := parseUintText(v, 64, path)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfUint64(n), nil

	case protoreflect.FloatKind:
		f, err := parseFloatText(v, 32, path)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfFloat32(float32(f)), nil

	case protoreflect.DoubleKind:
		f, err := parseFloatText(v, 64, path)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfFloat64(f), nil

	case protoreflect.StringKind:
		s, ok := v.(string)
		if !ok {
			return protoreflect.Value{}, issueAt(path, CodeInvalidType, "expected string")
		}
		return protoreflect.ValueOfString(s), nil

	case protoreflect.BytesKind:
		s, ok := v.(string)
		if !ok {
			return protoreflect.Value{}, issueAt(path, CodeInvalidType, "expected base64 string")
		}
		b, err := codec.DecodeBase64(s)
		if err != nil {
			return protoreflect.Value{}, AppendIssues(nil, Issue{
				Path: path, Code: CodeInvalidFormat, Message: "malformed base64", Cause: err, Offset: -1,
			})
		}
		return protoreflect.ValueOfBytes(b), nil

	case protoreflect.EnumKind:
		return enumValue(fd, v, path)
	}
	panic(fmt.Sprintf("protobind: unclassified field kind %v for %q", fd.Kind(), fd.FullName()))
}

func enumValue(fd protoreflect.FieldDescriptor, v any, path string) (protoreflect.Value, error) {
	ed := fd.Enum()
	switch t := v.(type) {
	case nil:
		if ed.FullName() == "google.protobuf.NullValue" {
			return protoreflect.ValueOfEnum(0), nil
		}
	case string:
		if vd := ed.Values().ByName(protoreflect.Name(t)); vd != nil {
			return protoreflect.ValueOfEnum(vd.Number()), nil
		}
		return protoreflect.Value{}, issueAt(path, CodeInvalidValue,
			fmt.Sprintf("unknown value %q for enum %s", t, ed.FullName()))
	case json.Number:
		n, err := strconv.ParseInt(t.String(), 10, 32)
		if err != nil {
			return protoreflect.Value{}, issueAt(path, CodeInvalidFormat, "malformed enum number")
		}
		return protoreflect.ValueOfEnum(protoreflect.EnumNumber(n)), nil
	}
	return protoreflect.Value{}, issueAt(path, CodeInvalidType,
		fmt.Sprintf("expected name or number for enum %s", ed.FullName()))
}

func parseMapKey(fd protoreflect.FieldDescriptor, key, path string) (protoreflect.MapKey, error) {
	switch fd.Kind() {
	case protoreflect.StringKind:
		return protoreflect.ValueOfString(key).MapKey(), nil
	case protoreflect.BoolKind:
		switch key {
		case "true":
			return protoreflect.ValueOfBool(true).MapKey(), nil
		case "false":
			return protoreflect.ValueOfBool(false).MapKey(), nil
		}
		return protoreflect.MapKey{}, issueAt(path, CodeInvalidFormat, "expected \"true\" or \"false\" map key")
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		n, err := strconv.ParseInt(key, 10, 32)
		if err != nil {
			return protoreflect.MapKey{}, issueAt(path, CodeInvalidFormat, "malformed int32 map key")
		}
		return protoreflect.ValueOfInt32(int32(n)).MapKey(), nil
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		n, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return protoreflect.MapKey{}, issueAt(path, CodeInvalidFormat, "malformed int64 map key")
		}
		return protoreflect.ValueOfInt64(n).MapKey(), nil
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		n, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return protoreflect.MapKey{}, issueAt(path, CodeInvalidFormat, "malformed uint32 map key")
		}
		return protoreflect.ValueOfUint32(uint32(n)).MapKey(), nil
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		n, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return protoreflect.MapKey{}, issueAt(path, CodeInvalidFormat, "malformed uint64 map key")
		}
		return protoreflect.ValueOfUint64(n).MapKey(), nil
	}
	panic(fmt.Sprintf("protobind: unclassified map key kind %v for %q", fd.Kind(), fd.FullName()))
}

// ---- numeric text parsing ----

func numberText(v any) (string, bool) {
	switch t := v.(type) {
	case json.Number:
		return t.String(), true
	case string:
		return t, true
	}
	return "", false
}

func parseIntText(v any, bits int, path string) (int64, error) {
	s, ok := numberText(v)
	if !ok {
		return 0, issueAt(path, CodeInvalidType, "expected number or decimal string")
	}
	if n, err := strconv.ParseInt(s, 10, bits); err == nil {
		return n, nil
	}
	// Exponent and fractional forms are accepted when they denote an integer.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, issueAt(path, CodeInvalidFormat, fmt.Sprintf("malformed integer %q", s))
	}
	// float64 cannot represent MaxInt64; inputs just past the range round to
	// exactly 2^63, so the upper bound must be exclusive against that power
	// of two. MinInt64 and the 32-bit bounds are exact.
	if bits == 64 {
		if f < -(1 << 63) || f >= 1<<63 {
			return 0, issueAt(path, CodeOverflow, fmt.Sprintf("integer %q out of range", s))
		}
	} else if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, issueAt(path, CodeOverflow, fmt.Sprintf("integer %q out of range", s))
	}
	return int64(f), nil
}

func parseUintText(v any, bits int, path string) (uint64, error) {
	s, ok := numberText(v)
	if !ok {
		return 0, issueAt(path, CodeInvalidType, "expected number or decimal string")
	}
	if n, err := strconv.ParseUint(s, 10, bits); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, issueAt(path, CodeInvalidFormat, fmt.Sprintf("malformed unsigned integer %q", s))
	}
	// Same exclusive power-of-two bound as the signed path: MaxUint64 rounds
	// up to 2^64 in float64.
	if bits == 64 {
		if f < 0 || f >= 1<<64 {
			return 0, issueAt(path, CodeOverflow, fmt.Sprintf("unsigned integer %q out of range", s))
		}
	} else if f < 0 || f > math.MaxUint32 {
		return 0, issueAt(path, CodeOverflow, fmt.Sprintf("unsigned integer %q out of range", s))
	}
	return uint64(f), nil
}

func parseFloatText(v any, bits int, path string) (float64, error) {
	if s, ok := v.(string); ok {
		switch s {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
	}
	s, ok := numberText(v)
	if !ok {
		return 0, issueAt(path, CodeInvalidType, "expected number or numeric string")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, issueAt(path, CodeInvalidFormat, fmt.Sprintf("malformed number %q", s))
	}
	if bits == 32 && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
		return 0, issueAt(path, CodeOverflow, fmt.Sprintf("number %q out of float range", s))
	}
	return f, nil
}
