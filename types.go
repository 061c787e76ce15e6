package protobind

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement for duplicate JSON object keys.
//
// The default (Ignore) keeps merge semantics: a key repeated inside one
// object collapses to its last value before field bindings run. Conformant
// proto3 JSON parsers reject duplicate field names; set OnDuplicateKey to
// Error to get that behavior.
type Strictness struct {
	OnDuplicateKey Severity
}

// MarshalOptions configures encoding.
type MarshalOptions struct {
	// EmitDefaults emits scalar, repeated and map fields even when they hold
	// their default value. Fields with explicit presence (message-typed
	// fields, oneof members, proto3 optional scalars) are governed purely by
	// presence and ignore this flag.
	EmitDefaults bool

	// EnumsAsInts renders enum values as their numbers instead of their
	// declared names.
	EnumsAsInts bool

	// Registry overrides the contract cache. Nil uses the package-level
	// registry.
	Registry *Registry
}

// UnmarshalOptions configures decoding.
type UnmarshalOptions struct {
	// DiscardUnknown skips object keys that match no field of the target
	// message instead of failing with an unknown_key issue.
	DiscardUnknown bool

	// Strictness configures duplicate-key enforcement on the token stream.
	Strictness Strictness

	// MaxDepth limits container nesting; 0 disables the check.
	MaxDepth int

	// MaxBytes limits consumed input bytes; 0 disables the check.
	MaxBytes int64

	// Registry overrides the contract cache. Nil uses the package-level
	// registry.
	Registry *Registry
}
