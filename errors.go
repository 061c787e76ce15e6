package protobind

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeInvalidValue  = "invalid_value"
	CodeInvalidFormat = "invalid_format"
	CodeUnknownKey    = "unknown_key"
	CodeDuplicateKey  = "duplicate_key"
	CodeOverflow      = "overflow"
	CodeParseError    = "parse_error"
	CodeTruncated     = "truncated"
	// Schema/contract construction failures.
	CodeSchemaUnavailable = "schema_unavailable"
	// A second member of an already-active oneof group was written.
	CodeOneofConflict = "oneof_conflict"
	// A feature of the wire format this package does not implement
	// (currently google.protobuf.Any, which needs a type resolver).
	CodeUnsupported = "unsupported"
)

// Issue represents a single binding error.
type Issue struct {
	Path    string // JSON Pointer (for example: /counts/a).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	Offset  int64 // Byte offset in the input source (-1 when unknown).
	// Params carries structured parameters (e.g., {"oneof":"kind"}) for
	// observability.
	Params map[string]any
}

// Issues is a collection of binding errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. oneof_conflict at /kind
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries at least one Issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// IsSchemaError reports whether err means a message type could not produce
// a usable schema. Such a failure aborts contract construction for that type
// only; contracts already cached for other types remain valid.
func IsSchemaError(err error) bool { return HasCode(err, CodeSchemaUnavailable) }

// IsOneofConflict reports whether err was produced by writing a second member
// of an already-active oneof group.
func IsOneofConflict(err error) bool { return HasCode(err, CodeOneofConflict) }

func singleIssue(code, msg string) Issues {
	return AppendIssues(nil, Issue{Path: "/", Code: code, Message: msg, Offset: -1})
}

func issueAt(path, code, msg string) Issues {
	return AppendIssues(nil, Issue{Path: path, Code: code, Message: msg, Offset: -1})
}
