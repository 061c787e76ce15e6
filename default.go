package protobind

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// isDefaultValue reports whether v equals the zero/empty value for fd's kind.
//
// The switch is exhaustive over the closed set of field kinds a message
// schema can produce. A kind falling through means the binding layer and the
// schema disagree about the world; guessing either way could silently corrupt
// wire output, so this panics instead.
func isDefaultValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
	if fd.IsList() {
		return v.List().Len() == 0
	}
	if fd.IsMap() {
		return v.Map().Len() == 0
	}

	switch fd.Kind() {
	case protoreflect.BoolKind:
		return !v.Bool()
	case protoreflect.StringKind:
		return v.String() == ""
	case protoreflect.BytesKind:
		return len(v.Bytes()) == 0
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return v.Int() == 0
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return v.Uint() == 0
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return v.Float() == 0
	case protoreflect.EnumKind:
		return v.Enum() == 0
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return !v.Message().IsValid()
	}
	panic(fmt.Sprintf("protobind: unclassified field kind %v for %q", fd.Kind(), fd.FullName()))
}
