package protobind

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

// shouldEmitField decides whether fd appears in encoded output.
//
// Fields with explicit presence (message-typed fields, oneof members,
// proto3 optional scalars) emit iff they were assigned, independent of their
// current value; only these fields can distinguish "unset" from "set to
// zero". Every other field emits when emitDefaults is on or when its value
// differs from the kind's default.
func shouldEmitField(fd protoreflect.FieldDescriptor, m protoreflect.Message, emitDefaults bool) bool {
	if fd.HasPresence() {
		return m.Has(fd)
	}
	if emitDefaults {
		return true
	}
	return !isDefaultValue(fd, m.Get(fd))
}
