package protobind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractFieldsOrderedByNumber(t *testing.T) {
	c, err := defaultRegistry.ContractFor(messageDesc(t, "Ordering"))
	require.NoError(t, err)

	var got []string
	for _, b := range c.Fields() {
		got = append(got, b.JSONName())
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestContractByName(t *testing.T) {
	c, err := defaultRegistry.ContractFor(messageDesc(t, "Sample"))
	require.NoError(t, err)

	b, ok := c.ByName("osVersion")
	require.True(t, ok, "JSON name lookup")
	assert.Equal(t, "osVersion", b.JSONName())

	declared, ok := c.ByName("os_version")
	require.True(t, ok, "declared name lookup")
	assert.Same(t, b, declared)

	_, ok = c.ByName("nope")
	assert.False(t, ok)
}

func TestContractClassification(t *testing.T) {
	c, err := defaultRegistry.ContractFor(messageDesc(t, "Sample"))
	require.NoError(t, err)

	cases := map[string]bindingKind{
		"weight":   bindingScalar,
		"nested":   bindingScalar,
		"values":   bindingRepeated,
		"items":    bindingRepeated,
		"counts":   bindingMap,
		"children": bindingMap,
	}
	for name, want := range cases {
		b, ok := c.ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, want, b.kind, name)
	}
}

func TestContractForNilDescriptor(t *testing.T) {
	_, err := defaultRegistry.ContractFor(nil)
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
}
