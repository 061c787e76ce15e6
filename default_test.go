package protobind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/reflect/protoreflect"
)

func TestIsDefaultValueScalars(t *testing.T) {
	md := messageDesc(t, "Sample")

	cases := []struct {
		field  string
		def    protoreflect.Value
		nondef protoreflect.Value
	}{
		{"weight", protoreflect.ValueOfInt32(0), protoreflect.ValueOfInt32(-1)},
		{"label", protoreflect.ValueOfString(""), protoreflect.ValueOfString("x")},
		{"active", protoreflect.ValueOfBool(false), protoreflect.ValueOfBool(true)},
		{"blob", protoreflect.ValueOfBytes(nil), protoreflect.ValueOfBytes([]byte{0})},
		{"ratio", protoreflect.ValueOfFloat32(0), protoreflect.ValueOfFloat32(0.5)},
		{"precise", protoreflect.ValueOfFloat64(0), protoreflect.ValueOfFloat64(-0.5)},
		{"big", protoreflect.ValueOfInt64(0), protoreflect.ValueOfInt64(1 << 40)},
		{"count32", protoreflect.ValueOfUint32(0), protoreflect.ValueOfUint32(1)},
		{"count64", protoreflect.ValueOfUint64(0), protoreflect.ValueOfUint64(1)},
		{"color", protoreflect.ValueOfEnum(0), protoreflect.ValueOfEnum(2)},
	}
	for _, tc := range cases {
		fd := fieldByName(t, md, tc.field)
		assert.True(t, isDefaultValue(fd, tc.def), tc.field)
		assert.False(t, isDefaultValue(fd, tc.nondef), tc.field)
	}
}

func TestIsDefaultValueContainers(t *testing.T) {
	m := newSample(t)
	md := m.Descriptor()

	values := fieldByName(t, md, "values")
	assert.True(t, isDefaultValue(values, m.Get(values)))
	m.Mutable(values).List().Append(protoreflect.ValueOfInt32(1))
	assert.False(t, isDefaultValue(values, m.Get(values)))

	counts := fieldByName(t, md, "counts")
	assert.True(t, isDefaultValue(counts, m.Get(counts)))
	m.Mutable(counts).Map().Set(protoreflect.ValueOfString("a").MapKey(), protoreflect.ValueOfInt32(1))
	assert.False(t, isDefaultValue(counts, m.Get(counts)))
}

func TestIsDefaultValueMessage(t *testing.T) {
	m := newSample(t)
	fd := fieldByName(t, m.Descriptor(), "nested")

	assert.True(t, isDefaultValue(fd, m.Get(fd)), "unset message reads as invalid")
	assert.False(t, isDefaultValue(fd, protoreflect.ValueOfMessage(m.NewField(fd).Message())))
}
