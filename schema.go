package protobind

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// schemaView is a read-only accessor over an externally owned message schema.
// It never creates, caches or mutates descriptor data; it only reorders the
// field list so that every consumer observes fields in field-number order,
// independent of declaration order.
type schemaView struct {
	desc protoreflect.MessageDescriptor
}

func newSchemaView(md protoreflect.MessageDescriptor) (schemaView, error) {
	if md == nil {
		return schemaView{}, singleIssue(CodeSchemaUnavailable, "nil message descriptor")
	}
	if md.IsPlaceholder() {
		return schemaView{}, singleIssue(CodeSchemaUnavailable,
			fmt.Sprintf("placeholder descriptor for %q: type not resolvable", md.FullName()))
	}
	return schemaView{desc: md}, nil
}

// orderedFields returns the message's fields sorted by field number.
func (s schemaView) orderedFields() []protoreflect.FieldDescriptor {
	fields := s.desc.Fields()
	out := make([]protoreflect.FieldDescriptor, fields.Len())
	for i := 0; i < fields.Len(); i++ {
		out[i] = fields.Get(i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number() < out[j].Number() })
	return out
}

// jsonName returns the canonical lower-camel-case JSON name for fd.
func jsonName(fd protoreflect.FieldDescriptor) string { return fd.JSONName() }

// mapEntry returns the key and value descriptors of a map field's synthetic
// entry message.
func mapEntry(fd protoreflect.FieldDescriptor) (key, value protoreflect.FieldDescriptor) {
	return fd.MapKey(), fd.MapValue()
}

// realOneof returns the oneof group containing fd, or nil. Synthetic oneofs
// generated for proto3 optional scalars only model presence; they carry no
// exclusivity to enforce.
func realOneof(fd protoreflect.FieldDescriptor) protoreflect.OneofDescriptor {
	od := fd.ContainingOneof()
	if od == nil || od.IsSynthetic() {
		return nil
	}
	return od
}
