package engine

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource replays a fixed token stream.
type sliceSource struct {
	toks []Token
	pos  int
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.pos) }

func key(k string) Token   { return Token{Kind: KindKey, String: k} }
func str(v string) Token   { return Token{Kind: KindString, String: v} }
func num(v string) Token   { return Token{Kind: KindNumber, Number: v} }
func boolTok(v bool) Token { return Token{Kind: KindBool, Bool: v} }

func TestDecodeAnyObject(t *testing.T) {
	src := &sliceSource{toks: []Token{
		{Kind: KindBeginObject},
		key("n"), num("9007199254740993"),
		key("s"), str("x"),
		key("b"), boolTok(true),
		key("z"), {Kind: KindNull},
		key("xs"), {Kind: KindBeginArray}, num("1"), num("2"), {Kind: KindEndArray},
		{Kind: KindEndObject},
	}}
	v, err := DecodeAnyFromSource(src)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"n":  json.Number("9007199254740993"),
		"s":  "x",
		"b":  true,
		"z":  nil,
		"xs": []any{json.Number("1"), json.Number("2")},
	}, v)
}

func TestDecodeAnyTruncated(t *testing.T) {
	src := &sliceSource{toks: []Token{{Kind: KindBeginObject}, key("a")}}
	_, err := DecodeAnyFromSource(src)
	assert.Error(t, err)
}

func TestEnforceDuplicateError(t *testing.T) {
	src := &sliceSource{toks: []Token{
		{Kind: KindBeginObject},
		key("a"), num("1"),
		key("a"), num("2"),
		{Kind: KindEndObject},
	}}
	enforced := WrapWithEnforcement(src, EnforceOptions{OnDuplicate: DupError})
	_, err := DecodeAnyFromSource(enforced)
	require.Error(t, err)
	var ie IssueError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "duplicate_key", ie.Code)
	assert.Equal(t, "/a", ie.Path)
}

func TestEnforceDuplicateWarnSink(t *testing.T) {
	src := &sliceSource{toks: []Token{
		{Kind: KindBeginObject},
		key("o"), {Kind: KindBeginObject},
		key("k"), num("1"),
		key("k"), num("2"),
		{Kind: KindEndObject},
		{Kind: KindEndObject},
	}}
	var got []SimpleIssue
	enforced := WrapWithEnforcement(src, EnforceOptions{
		OnDuplicate: DupWarn,
		IssueSink:   func(si SimpleIssue) { got = append(got, si) },
	})
	_, err := DecodeAnyFromSource(enforced)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "/o/k", got[0].Path)
}

func TestEnforceArrayPaths(t *testing.T) {
	src := &sliceSource{toks: []Token{
		{Kind: KindBeginArray},
		{Kind: KindBeginObject}, key("k"), num("1"), {Kind: KindEndObject},
		{Kind: KindBeginObject}, key("k"), num("1"), key("k"), num("2"), {Kind: KindEndObject},
		{Kind: KindEndArray},
	}}
	enforced := WrapWithEnforcement(src, EnforceOptions{OnDuplicate: DupError})
	_, err := DecodeAnyFromSource(enforced)
	require.Error(t, err)
	var ie IssueError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "/1/k", ie.Path)
}

func TestEnforceMaxDepth(t *testing.T) {
	src := &sliceSource{toks: []Token{
		{Kind: KindBeginArray},
		{Kind: KindBeginArray},
		{Kind: KindBeginArray},
		{Kind: KindEndArray},
		{Kind: KindEndArray},
		{Kind: KindEndArray},
	}}
	enforced := WrapWithEnforcement(src, EnforceOptions{OnDuplicate: DupError, MaxDepth: 2})
	_, err := DecodeAnyFromSource(enforced)
	require.Error(t, err)
	var ie IssueError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "parse_error", ie.Code)
}

func TestWrapWithEnforcementPassthrough(t *testing.T) {
	src := &sliceSource{}
	assert.Same(t, TokenSource(src), WrapWithEnforcement(src, EnforceOptions{}))
}
