package protobind

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/reoring/protobind/codec"
	eng "github.com/reoring/protobind/internal/engine"
)

// marshaler walks contracts in field-number order and feeds the token writer.
type marshaler struct {
	opt MarshalOptions
	reg *Registry
	w   *eng.Writer
}

func (e *marshaler) marshalMessage(m protoreflect.Message, path string) error {
	c, err := e.reg.ContractFor(m.Descriptor())
	if err != nil {
		return err
	}
	if c.wkt != wktNone {
		return e.marshalWellKnown(c, m, path)
	}
	e.w.BeginObject()
	for _, b := range c.field {
		if !b.ShouldEmit(m, e.opt.EmitDefaults) {
			continue
		}
		e.w.Key(b.jsonName)
		if err := e.marshalField(b, m.Get(b.fd), childPath(path, b.jsonName)); err != nil {
			return err
		}
	}
	e.w.EndObject()
	return nil
}

func (e *marshaler) marshalField(b *FieldBinding, v protoreflect.Value, path string) error {
	switch b.kind {
	case bindingRepeated:
		list := v.List()
		e.w.BeginArray()
		for i := 0; i < list.Len(); i++ {
			if err := e.marshalSingular(b.fd, list.Get(i), childPath(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
		e.w.EndArray()
		return nil

	case bindingMap:
		keyFd, valFd := mapEntry(b.fd)
		mp := v.Map()
		e.w.BeginObject()
		for _, mk := range sortedMapKeys(keyFd, mp) {
			key := formatMapKey(keyFd, mk)
			e.w.Key(key)
			if err := e.marshalSingular(valFd, mp.Get(mk), childPath(path, key)); err != nil {
				return err
			}
		}
		e.w.EndObject()
		return nil

	default:
		return e.marshalSingular(b.fd, v, path)
	}
}

// marshalSingular renders one scalar (or nested message) value. The switch is
// exhaustive over the closed kind set; an unclassified kind panics rather
// than guessing a representation.
func (e *marshaler) marshalSingular(fd protoreflect.FieldDescriptor, v protoreflect.Value, path string) error {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		e.w.Bool(v.Bool())

	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		e.w.RawNumber(strconv.FormatInt(v.Int(), 10))

	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		e.w.RawNumber(strconv.FormatUint(v.Uint(), 10))

	// 64-bit integers are quoted so they survive IEEE-754 JSON consumers.
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		e.w.String(strconv.FormatInt(v.Int(), 10))

	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		e.w.String(strconv.FormatUint(v.Uint(), 10))

	case protoreflect.FloatKind:
		e.writeFloat(v.Float(), 32)

	case protoreflect.DoubleKind:
		e.writeFloat(v.Float(), 64)

	case protoreflect.StringKind:
		e.w.String(v.String())

	case protoreflect.BytesKind:
		e.w.String(codec.EncodeBase64(v.Bytes()))

	case protoreflect.EnumKind:
		ed := fd.Enum()
		if ed.FullName() == "google.protobuf.NullValue" {
			e.w.Null()
			return nil
		}
		if !e.opt.EnumsAsInts {
			if vd := ed.Values().ByNumber(v.Enum()); vd != nil {
				e.w.String(string(vd.Name()))
				return nil
			}
		}
		// Unknown numbers always render numerically.
		e.w.RawNumber(strconv.FormatInt(int64(v.Enum()), 10))

	case protoreflect.MessageKind, protoreflect.GroupKind:
		return e.marshalMessage(v.Message(), path)

	default:
		panic(fmt.Sprintf("protobind: unclassified field kind %v for %q", fd.Kind(), fd.FullName()))
	}
	return nil
}

func (e *marshaler) writeFloat(f float64, bits int) {
	switch {
	case math.IsNaN(f):
		e.w.String("NaN")
	case math.IsInf(f, 1):
		e.w.String("Infinity")
	case math.IsInf(f, -1):
		e.w.String("-Infinity")
	default:
		text, _ := finiteFloatText(f, bits)
		e.w.RawNumber(text)
	}
}

// finiteFloatText renders a finite float as JSON number text.
func finiteFloatText(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite float %v", f)
	}
	return strconv.FormatFloat(f, 'g', -1, bits), nil
}

// sortedMapKeys returns the map's keys in deterministic order: numeric for
// integral keys, false-before-true for bool, lexicographic for strings.
func sortedMapKeys(keyFd protoreflect.FieldDescriptor, mp protoreflect.Map) []protoreflect.MapKey {
	keys := make([]protoreflect.MapKey, 0, mp.Len())
	mp.Range(func(mk protoreflect.MapKey, _ protoreflect.Value) bool {
		keys = append(keys, mk)
		return true
	})
	switch keyFd.Kind() {
	case protoreflect.StringKind:
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	case protoreflect.BoolKind:
		sort.Slice(keys, func(i, j int) bool { return !keys[i].Bool() && keys[j].Bool() })
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Uint() < keys[j].Uint() })
	default:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Int() < keys[j].Int() })
	}
	return keys
}

func formatMapKey(keyFd protoreflect.FieldDescriptor, mk protoreflect.MapKey) string {
	switch keyFd.Kind() {
	case protoreflect.StringKind:
		return mk.String()
	case protoreflect.BoolKind:
		return strconv.FormatBool(mk.Bool())
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return strconv.FormatUint(mk.Uint(), 10)
	default:
		return strconv.FormatInt(mk.Int(), 10)
	}
}
