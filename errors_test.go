package protobind

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuesError(t *testing.T) {
	iss := AppendIssues(nil,
		Issue{Path: "/a", Code: CodeInvalidType},
		Issue{Path: "/b", Code: CodeOverflow},
	)
	assert.Equal(t, "invalid_type at /a; overflow at /b", iss.Error())
}

func TestIssuesErrorTruncatesLongLists(t *testing.T) {
	var iss Issues
	for i := 0; i < 5; i++ {
		iss = AppendIssues(iss, Issue{Path: fmt.Sprintf("/f%d", i), Code: CodeInvalidValue})
	}
	assert.Equal(t,
		"invalid_value at /f0; invalid_value at /f1; invalid_value at /f2; ... (total 5)",
		iss.Error())
}

func TestAsIssues(t *testing.T) {
	iss, ok := AsIssues(issueAt("/x", CodeUnknownKey, "no such field"))
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "/x", iss[0].Path)

	_, ok = AsIssues(errors.New("plain"))
	assert.False(t, ok)
	_, ok = AsIssues(nil)
	assert.False(t, ok)
}

func TestAsIssuesWrapped(t *testing.T) {
	err := fmt.Errorf("decoding request: %w", singleIssue(CodeParseError, "bad input"))
	iss, ok := AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, CodeParseError, iss[0].Code)
}

func TestHasCode(t *testing.T) {
	err := error(AppendIssues(nil,
		Issue{Code: CodeInvalidType},
		Issue{Code: CodeOneofConflict},
	))
	assert.True(t, HasCode(err, CodeOneofConflict))
	assert.False(t, HasCode(err, CodeOverflow))
	assert.False(t, HasCode(nil, CodeOverflow))
}
