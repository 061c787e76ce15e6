package protobind

import (
	"fmt"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// The test schema is assembled at runtime so the suite needs no generated
// code. It is built exactly once: contracts are cached by full name, and a
// second descriptor universe with the same names must not leak into the
// package-level registry.
var testFile = mustBuildTestFile()

func scalarField(name string, num int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func repeatedField(name string, num int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	f := scalarField(name, num, typ)
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func messageField(name string, num int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := scalarField(name, num, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	f.TypeName = proto.String(typeName)
	return f
}

func mapField(name string, num int32, entryTypeName string) *descriptorpb.FieldDescriptorProto {
	f := messageField(name, num, entryTypeName)
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func mapEntryType(name string, keyType descriptorpb.FieldDescriptorProto_Type, valueField *descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name: proto.String(name),
		Options: &descriptorpb.MessageOptions{
			MapEntry: proto.Bool(true),
		},
		Field: []*descriptorpb.FieldDescriptorProto{
			scalarField("key", 1, keyType),
			valueField,
		},
	}
}

func mustBuildTestFile() protoreflect.FileDescriptor {
	countsValue := scalarField("value", 2, descriptorpb.FieldDescriptorProto_TYPE_INT32)
	childrenValue := messageField("value", 2, ".bindtest.Nested")
	indexValue := scalarField("value", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING)

	oneofName := scalarField("name", 14, descriptorpb.FieldDescriptorProto_TYPE_STRING)
	oneofName.OneofIndex = proto.Int32(0)
	oneofID := scalarField("id", 15, descriptorpb.FieldDescriptorProto_TYPE_INT32)
	oneofID.OneofIndex = proto.Int32(0)

	note := scalarField("note", 16, descriptorpb.FieldDescriptorProto_TYPE_STRING)
	note.OneofIndex = proto.Int32(1)
	note.Proto3Optional = proto.Bool(true)

	colorField := scalarField("color", 10, descriptorpb.FieldDescriptorProto_TYPE_ENUM)
	colorField.TypeName = proto.String(".bindtest.Color")

	items := messageField("items", 18, ".bindtest.Nested")
	items.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()

	sample := &descriptorpb.DescriptorProto{
		Name: proto.String("Sample"),
		Field: []*descriptorpb.FieldDescriptorProto{
			scalarField("weight", 1, descriptorpb.FieldDescriptorProto_TYPE_INT32),
			scalarField("label", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			scalarField("active", 3, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
			scalarField("blob", 4, descriptorpb.FieldDescriptorProto_TYPE_BYTES),
			scalarField("ratio", 5, descriptorpb.FieldDescriptorProto_TYPE_FLOAT),
			scalarField("precise", 6, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
			scalarField("big", 7, descriptorpb.FieldDescriptorProto_TYPE_INT64),
			scalarField("count32", 8, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
			scalarField("count64", 9, descriptorpb.FieldDescriptorProto_TYPE_UINT64),
			colorField,
			messageField("nested", 11, ".bindtest.Nested"),
			repeatedField("values", 12, descriptorpb.FieldDescriptorProto_TYPE_INT32),
			mapField("counts", 13, ".bindtest.Sample.CountsEntry"),
			oneofName,
			oneofID,
			note,
			mapField("children", 17, ".bindtest.Sample.ChildrenEntry"),
			items,
			mapField("index", 19, ".bindtest.Sample.IndexEntry"),
			scalarField("os_version", 20, descriptorpb.FieldDescriptorProto_TYPE_STRING),
		},
		OneofDecl: []*descriptorpb.OneofDescriptorProto{
			{Name: proto.String("kind")},
			{Name: proto.String("_note")},
		},
		NestedType: []*descriptorpb.DescriptorProto{
			mapEntryType("CountsEntry", descriptorpb.FieldDescriptorProto_TYPE_STRING, countsValue),
			mapEntryType("ChildrenEntry", descriptorpb.FieldDescriptorProto_TYPE_STRING, childrenValue),
			mapEntryType("IndexEntry", descriptorpb.FieldDescriptorProto_TYPE_INT64, indexValue),
		},
	}

	nested := &descriptorpb.DescriptorProto{
		Name: proto.String("Nested"),
		Field: []*descriptorpb.FieldDescriptorProto{
			scalarField("title", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			scalarField("size", 2, descriptorpb.FieldDescriptorProto_TYPE_INT32),
		},
	}

	// Declared out of field-number order on purpose.
	ordering := &descriptorpb.DescriptorProto{
		Name: proto.String("Ordering"),
		Field: []*descriptorpb.FieldDescriptorProto{
			scalarField("c", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			scalarField("a", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			scalarField("b", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
		},
	}

	mergeable := &descriptorpb.DescriptorProto{
		Name: proto.String("Mergeable"),
		Field: []*descriptorpb.FieldDescriptorProto{
			repeatedField("values", 1, descriptorpb.FieldDescriptorProto_TYPE_INT32),
			mapField("counts", 2, ".bindtest.Mergeable.CountsEntry"),
		},
		NestedType: []*descriptorpb.DescriptorProto{
			mapEntryType("CountsEntry", descriptorpb.FieldDescriptorProto_TYPE_STRING,
				scalarField("value", 2, descriptorpb.FieldDescriptorProto_TYPE_INT32)),
		},
	}

	color := &descriptorpb.EnumDescriptorProto{
		Name: proto.String("Color"),
		Value: []*descriptorpb.EnumValueDescriptorProto{
			{Name: proto.String("COLOR_UNSPECIFIED"), Number: proto.Int32(0)},
			{Name: proto.String("COLOR_RED"), Number: proto.Int32(1)},
			{Name: proto.String("COLOR_BLUE"), Number: proto.Int32(2)},
		},
	}

	fdp := &descriptorpb.FileDescriptorProto{
		Name:        proto.String("bindtest.proto"),
		Package:     proto.String("bindtest"),
		Syntax:      proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{sample, nested, ordering, mergeable},
		EnumType:    []*descriptorpb.EnumDescriptorProto{color},
	}
	fd, err := protodesc.NewFile(fdp, nil)
	if err != nil {
		panic(fmt.Sprintf("building test schema: %v", err))
	}
	return fd
}

func messageDesc(t *testing.T, name string) protoreflect.MessageDescriptor {
	t.Helper()
	md := testFile.Messages().ByName(protoreflect.Name(name))
	if md == nil {
		t.Fatalf("message %q not in test schema", name)
	}
	return md
}

func newSample(t *testing.T) *dynamicpb.Message {
	return dynamicpb.NewMessage(messageDesc(t, "Sample"))
}

func newMergeable(t *testing.T) *dynamicpb.Message {
	return dynamicpb.NewMessage(messageDesc(t, "Mergeable"))
}

func fieldByName(t *testing.T, md protoreflect.MessageDescriptor, name string) protoreflect.FieldDescriptor {
	t.Helper()
	fd := md.Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		t.Fatalf("field %q not in %s", name, md.FullName())
	}
	return fd
}
