package protobind

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/reoring/protobind/codec"
)

// wktKind marks messages whose JSON form is not the plain object encoding.
type wktKind int

const (
	wktNone wktKind = iota
	wktTimestamp
	wktDuration
	wktWrapper
	wktFieldMask
	wktEmpty
	wktStruct
	wktValue
	wktListValue
	wktAny
)

func classifyWellKnown(md protoreflect.MessageDescriptor) wktKind {
	if md.ParentFile() == nil || md.ParentFile().Package() != "google.protobuf" {
		return wktNone
	}
	switch md.Name() {
	case "Timestamp":
		return wktTimestamp
	case "Duration":
		return wktDuration
	case "BoolValue", "Int32Value", "Int64Value", "UInt32Value", "UInt64Value",
		"FloatValue", "DoubleValue", "StringValue", "BytesValue":
		return wktWrapper
	case "FieldMask":
		return wktFieldMask
	case "Empty":
		return wktEmpty
	case "Struct":
		return wktStruct
	case "Value":
		return wktValue
	case "ListValue":
		return wktListValue
	case "Any":
		return wktAny
	}
	return wktNone
}

// Field numbers fixed by the well-known schemas.
const (
	wktFieldSeconds   = 1 // Timestamp.seconds, Duration.seconds
	wktFieldNanos     = 2 // Timestamp.nanos, Duration.nanos
	wktFieldSingle    = 1 // wrapper value, Struct.fields, ListValue.values, FieldMask.paths
	wktValueNull      = 1
	wktValueNumber    = 2
	wktValueString    = 3
	wktValueBool      = 4
	wktValueStruct    = 5
	wktValueListValue = 6
)

func (u *unmarshaler) unmarshalWellKnown(c *Contract, m protoreflect.Message, decoded any, path string) error {
	fields := c.desc.Fields()
	switch c.wkt {
	case wktTimestamp:
		s, ok := decoded.(string)
		if !ok {
			return issueAt(path, CodeInvalidType, "expected RFC3339 string")
		}
		secs, nanos, err := codec.ParseTimestamp(s)
		if err != nil {
			return AppendIssues(nil, Issue{Path: path, Code: CodeInvalidFormat, Message: "malformed timestamp", Cause: err, Offset: -1})
		}
		m.Set(fields.ByNumber(wktFieldSeconds), protoreflect.ValueOfInt64(secs))
		m.Set(fields.ByNumber(wktFieldNanos), protoreflect.ValueOfInt32(nanos))
		return nil

	case wktDuration:
		s, ok := decoded.(string)
		if !ok {
			return issueAt(path, CodeInvalidType, "expected duration string")
		}
		secs, nanos, err := codec.ParseDuration(s)
		if err != nil {
			return AppendIssues(nil, Issue{Path: path, Code: CodeInvalidFormat, Message: "malformed duration", Cause: err, Offset: -1})
		}
		m.Set(fields.ByNumber(wktFieldSeconds), protoreflect.ValueOfInt64(secs))
		m.Set(fields.ByNumber(wktFieldNanos), protoreflect.ValueOfInt32(nanos))
		return nil

	case wktWrapper:
		// Wrappers use the wrapped primitive's representation directly.
		fd := fields.ByNumber(wktFieldSingle)
		v, err := u.coerceScalar(fd, decoded, path)
		if err != nil {
			return err
		}
		m.Set(fd, v)
		return nil

	case wktFieldMask:
		s, ok := decoded.(string)
		if !ok {
			return issueAt(path, CodeInvalidType, "expected field mask string")
		}
		paths, err := codec.ParseFieldMask(s)
		if err != nil {
			return AppendIssues(nil, Issue{Path: path, Code: CodeInvalidFormat, Message: "malformed field mask", Cause: err, Offset: -1})
		}
		list := m.Mutable(fields.ByNumber(wktFieldSingle)).List()
		for _, p := range paths {
			list.Append(protoreflect.ValueOfString(p))
		}
		return nil

	case wktEmpty:
		obj, ok := decoded.(map[string]any)
		if !ok {
			return issueAt(path, CodeInvalidType, "expected object")
		}
		if len(obj) > 0 && !u.opt.DiscardUnknown {
			return issueAt(path, CodeUnknownKey, "google.protobuf.Empty has no fields")
		}
		return nil

	case wktStruct:
		obj, ok := decoded.(map[string]any)
		if !ok {
			return issueAt(path, CodeInvalidType, "expected object")
		}
		mp := m.Mutable(fields.ByNumber(wktFieldSingle)).Map()
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			nv := mp.NewValue()
			if err := u.unmarshalMessage(nv.Message(), obj[k], childPath(path, k)); err != nil {
				return err
			}
			mp.Set(protoreflect.ValueOfString(k).MapKey(), nv)
		}
		return nil

	case wktListValue:
		arr, ok := decoded.([]any)
		if !ok {
			return issueAt(path, CodeInvalidType, "expected array")
		}
		list := m.Mutable(fields.ByNumber(wktFieldSingle)).List()
		for i, el := range arr {
			nv := list.NewElement()
			if err := u.unmarshalMessage(nv.Message(), el, childPath(path, strconv.Itoa(i))); err != nil {
				return err
			}
			list.Append(nv)
		}
		return nil

	case wktValue:
		return u.unmarshalJSONValue(fields, m, decoded, path)

	case wktAny:
		return issueAt(path, CodeUnsupported, "google.protobuf.Any requires a type resolver")
	}
	panic(fmt.Sprintf("protobind: unclassified well-known type %s", c.desc.FullName()))
}

func (u *unmarshaler) unmarshalJSONValue(fields protoreflect.FieldDescriptors, m protoreflect.Message, decoded any, path string) error {
	switch t := decoded.(type) {
	case nil:
		m.Set(fields.ByNumber(wktValueNull), protoreflect.ValueOfEnum(0))
	case bool:
		m.Set(fields.ByNumber(wktValueBool), protoreflect.ValueOfBool(t))
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return issueAt(path, CodeInvalidFormat, "malformed number")
		}
		m.Set(fields.ByNumber(wktValueNumber), protoreflect.ValueOfFloat64(f))
	case string:
		m.Set(fields.ByNumber(wktValueString), protoreflect.ValueOfString(t))
	case map[string]any:
		fd := fields.ByNumber(wktValueStruct)
		nv := m.NewField(fd)
		if err := u.unmarshalMessage(nv.Message(), t, path); err != nil {
			return err
		}
		m.Set(fd, nv)
	case []any:
		fd := fields.ByNumber(wktValueListValue)
		nv := m.NewField(fd)
		if err := u.unmarshalMessage(nv.Message(), t, path); err != nil {
			return err
		}
		m.Set(fd, nv)
	default:
		return issueAt(path, CodeInvalidType, "unrepresentable JSON value")
	}
	return nil
}

func (e *marshaler) marshalWellKnown(c *Contract, m protoreflect.Message, path string) error {
	fields := c.desc.Fields()
	switch c.wkt {
	case wktTimestamp:
		secs := m.Get(fields.ByNumber(wktFieldSeconds)).Int()
		nanos := int32(m.Get(fields.ByNumber(wktFieldNanos)).Int())
		s, err := codec.FormatTimestamp(secs, nanos)
		if err != nil {
			return AppendIssues(nil, Issue{Path: path, Code: CodeInvalidValue, Message: "unrepresentable timestamp", Cause: err, Offset: -1})
		}
		e.w.String(s)
		return nil

	case wktDuration:
		secs := m.Get(fields.ByNumber(wktFieldSeconds)).Int()
		nanos := int32(m.Get(fields.ByNumber(wktFieldNanos)).Int())
		s, err := codec.FormatDuration(secs, nanos)
		if err != nil {
			return AppendIssues(nil, Issue{Path: path, Code: CodeInvalidValue, Message: "unrepresentable duration", Cause: err, Offset: -1})
		}
		e.w.String(s)
		return nil

	case wktWrapper:
		fd := fields.ByNumber(wktFieldSingle)
		return e.marshalSingular(fd, m.Get(fd), path)

	case wktFieldMask:
		list := m.Get(fields.ByNumber(wktFieldSingle)).List()
		paths := make([]string, 0, list.Len())
		for i := 0; i < list.Len(); i++ {
			paths = append(paths, list.Get(i).String())
		}
		s, err := codec.FormatFieldMask(paths)
		if err != nil {
			return AppendIssues(nil, Issue{Path: path, Code: CodeInvalidValue, Message: "unrepresentable field mask", Cause: err, Offset: -1})
		}
		e.w.String(s)
		return nil

	case wktEmpty:
		e.w.BeginObject()
		e.w.EndObject()
		return nil

	case wktStruct:
		mp := m.Get(fields.ByNumber(wktFieldSingle)).Map()
		e.w.BeginObject()
		keys := make([]string, 0, mp.Len())
		vals := make(map[string]protoreflect.Value, mp.Len())
		mp.Range(func(mk protoreflect.MapKey, v protoreflect.Value) bool {
			keys = append(keys, mk.String())
			vals[mk.String()] = v
			return true
		})
		sort.Strings(keys)
		for _, k := range keys {
			e.w.Key(k)
			if err := e.marshalMessage(vals[k].Message(), childPath(path, k)); err != nil {
				return err
			}
		}
		e.w.EndObject()
		return nil

	case wktListValue:
		list := m.Get(fields.ByNumber(wktFieldSingle)).List()
		e.w.BeginArray()
		for i := 0; i < list.Len(); i++ {
			if err := e.marshalMessage(list.Get(i).Message(), childPath(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
		e.w.EndArray()
		return nil

	case wktValue:
		od := c.desc.Oneofs().Get(0)
		active := m.WhichOneof(od)
		if active == nil {
			// A Value with no variant set has no JSON form.
			return issueAt(path, CodeInvalidValue, "google.protobuf.Value has no kind set")
		}
		switch active.Number() {
		case wktValueNull:
			e.w.Null()
		case wktValueNumber:
			f := m.Get(active).Float()
			text, err := finiteFloatText(f, 64)
			if err != nil {
				return issueAt(path, CodeInvalidValue, "non-finite number in google.protobuf.Value")
			}
			e.w.RawNumber(text)
		case wktValueString:
			e.w.String(m.Get(active).String())
		case wktValueBool:
			e.w.Bool(m.Get(active).Bool())
		case wktValueStruct, wktValueListValue:
			return e.marshalMessage(m.Get(active).Message(), path)
		}
		return nil

	case wktAny:
		return issueAt(path, CodeUnsupported, "google.protobuf.Any requires a type resolver")
	}
	panic(fmt.Sprintf("protobind: unclassified well-known type %s", c.desc.FullName()))
}
