package protobind

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainTokens(t *testing.T, src Source) []Token {
	t.Helper()
	var toks []Token
	for {
		tok, err := src.NextToken()
		if err == io.EOF {
			return toks
		}
		require.NoError(t, err)
		tok.Offset = 0 // offsets differ between drivers
		toks = append(toks, tok)
	}
}

func TestDriversEmitSameTokens(t *testing.T) {
	data := []byte(`{"a":[1,"two",true,null],"b":{"c":-2.5}}`)

	goccy := drainTokens(t, GoJSONDriver().NewBytes(data))
	std := drainTokens(t, StdJSONDriver().NewBytes(data))
	assert.Equal(t, std, goccy)

	want := []Token{
		{Kind: TokenBeginObject},
		{Kind: TokenKey, String: "a"},
		{Kind: TokenBeginArray},
		{Kind: TokenNumber, Number: "1"},
		{Kind: TokenString, String: "two"},
		{Kind: TokenBool, Bool: true},
		{Kind: TokenNull},
		{Kind: TokenEndArray},
		{Kind: TokenKey, String: "b"},
		{Kind: TokenBeginObject},
		{Kind: TokenKey, String: "c"},
		{Kind: TokenNumber, Number: "-2.5"},
		{Kind: TokenEndObject},
		{Kind: TokenEndObject},
	}
	assert.Equal(t, want, std)
}

func TestDriverNames(t *testing.T) {
	assert.Equal(t, "go-json", GoJSONDriver().Name())
	assert.Equal(t, "encoding/json", StdJSONDriver().Name())
}

func TestSetJSONDriver(t *testing.T) {
	defer SetJSONDriver(GoJSONDriver())

	SetJSONDriver(StdJSONDriver())
	assert.Equal(t, "encoding/json", getJSONDriver().Name())

	SetJSONDriver(nil)
	assert.Equal(t, "encoding/json", getJSONDriver().Name(), "nil driver is ignored")
}
