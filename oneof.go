package protobind

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// checkOneof enforces the single-active-member invariant before a scalar
// write into fd. Writing is allowed when the group has no active member or
// when the active member is fd itself (re-decoding the same key overwrites).
// A different active member fails the write; fields set earlier in the same
// decode are not rolled back.
func checkOneof(fd protoreflect.FieldDescriptor, m protoreflect.Message, path string) error {
	od := realOneof(fd)
	if od == nil {
		return nil
	}
	active := m.WhichOneof(od)
	if active == nil || active == fd {
		return nil
	}
	return AppendIssues(nil, Issue{
		Path:    path,
		Code:    CodeOneofConflict,
		Message: fmt.Sprintf("oneof %q already has member %q set", od.Name(), active.Name()),
		Offset:  -1,
		Params:  map[string]any{"oneof": string(od.Name()), "active": string(active.Name()), "attempted": string(fd.Name())},
	})
}
