package protobind

import (
	"errors"
	"io"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	eng "github.com/reoring/protobind/internal/engine"
)

// Marshal encodes msg as canonical JSON. Object keys appear in field-number
// order, never alphabetical or in-memory declaration order.
func Marshal(msg proto.Message, opts ...MarshalOptions) ([]byte, error) {
	if msg == nil {
		return nil, singleIssue(CodeSchemaUnavailable, "nil message")
	}
	var opt MarshalOptions
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	e := &marshaler{opt: opt, reg: registryOf(opt.Registry), w: eng.NewWriter()}
	if err := e.marshalMessage(msg.ProtoReflect(), "/"); err != nil {
		return nil, err
	}
	return e.w.Bytes(), nil
}

// Unmarshal decodes JSON into msg. The message is not reset first: repeated
// fields append, map fields merge per key, scalars overwrite. Callers wanting
// replace semantics must pass a fresh instance.
//
// Decoding a single instance is single-threaded by contract; concurrent
// Unmarshal calls targeting the same instance must be prevented by the
// caller.
func Unmarshal(data []byte, msg proto.Message, opts ...UnmarshalOptions) error {
	return UnmarshalFrom(JSONBytes(data), msg, opts...)
}

// UnmarshalFrom decodes from an arbitrary token Source, applying the
// configured duplicate-key, depth and size enforcement to the stream.
func UnmarshalFrom(src Source, msg proto.Message, opts ...UnmarshalOptions) error {
	if msg == nil {
		return singleIssue(CodeSchemaUnavailable, "nil message")
	}
	var opt UnmarshalOptions
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	enforced := eng.WrapWithEnforcement(engineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
	})
	v, err := eng.DecodeAnyFromSource(enforced)
	if err != nil {
		return toIssues(err)
	}
	// Exactly one top-level value per input.
	if _, err := enforced.NextToken(); err != io.EOF {
		if err != nil {
			return toIssues(err)
		}
		return issueAt("/", CodeParseError, "unexpected data after top-level value")
	}
	u := &unmarshaler{opt: opt, reg: registryOf(opt.Registry)}
	return u.unmarshalMessage(msg.ProtoReflect(), v, "/")
}

// ContractFor returns the encoding contract for msg's type from the
// package-level registry, building it on first use. The message instance is
// consulted only for its schema; it is neither retained nor mutated.
func ContractFor(msg proto.Message) (*Contract, error) {
	if msg == nil {
		return nil, singleIssue(CodeSchemaUnavailable, "nil message")
	}
	return defaultRegistry.ContractFor(msg.ProtoReflect().Descriptor())
}

func registryOf(r *Registry) *Registry {
	if r != nil {
		return r
	}
	return defaultRegistry
}

func childPath(parent, key string) string {
	if parent == "/" || parent == "" {
		return "/" + key
	}
	return parent + "/" + key
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

func toIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return AppendIssues(nil, Issue{Code: ie.Code, Path: ie.Path, Message: ie.Message, Offset: -1})
	}
	return AppendIssues(nil, Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err, Offset: -1})
}

// MessageDescriptorOf is a small convenience for callers driving contracts
// from raw descriptors.
func MessageDescriptorOf(msg proto.Message) protoreflect.MessageDescriptor {
	if msg == nil {
		return nil
	}
	return msg.ProtoReflect().Descriptor()
}
