package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/protobind"
)

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
emitDefaults: true
enumsAsInts: true
discardUnknown: true
onDuplicateKey: error
maxDepth: 8
maxBytes: 1024
`), 0o644))

	p, err := loadProfile(path)
	require.NoError(t, err)

	mo := p.marshalOptions()
	assert.True(t, mo.EmitDefaults)
	assert.True(t, mo.EnumsAsInts)

	uo, err := p.unmarshalOptions()
	require.NoError(t, err)
	assert.True(t, uo.DiscardUnknown)
	assert.Equal(t, protobind.Error, uo.Strictness.OnDuplicateKey)
	assert.Equal(t, 8, uo.MaxDepth)
	assert.Equal(t, int64(1024), uo.MaxBytes)
}

func TestLoadProfileEmptyPath(t *testing.T) {
	p, err := loadProfile("")
	require.NoError(t, err)

	uo, err := p.unmarshalOptions()
	require.NoError(t, err)
	assert.Equal(t, protobind.Ignore, uo.Strictness.OnDuplicateKey)
}

func TestUnmarshalOptionsRejectsUnknownSeverity(t *testing.T) {
	_, err := profile{OnDuplicateKey: "maybe"}.unmarshalOptions()
	assert.Error(t, err)
}
