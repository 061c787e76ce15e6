package protobind

import (
	"sync"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Registry caches one Contract per message type, keyed by full message name.
//
// First use of a type from concurrent callers may race to build its contract;
// every racer builds an identical contract and LoadOrStore publishes exactly
// one, discarding the rest. A published contract is read-only and lives until
// the registry is dropped.
//
// Distinct descriptor universes that reuse a full name (possible with
// dynamically assembled schemas) must not share a Registry; give each
// universe its own.
type Registry struct {
	contracts sync.Map // protoreflect.FullName -> *Contract
}

// NewRegistry returns an empty contract cache.
func NewRegistry() *Registry { return &Registry{} }

// defaultRegistry backs the package-level Marshal/Unmarshal/ContractFor
// entry points.
var defaultRegistry = NewRegistry()

// ContractFor returns the cached contract for md, building and publishing it
// on first use. A schema_unavailable failure is returned for nil or
// placeholder descriptors; it poisons nothing, and other cached contracts
// remain valid.
func (r *Registry) ContractFor(md protoreflect.MessageDescriptor) (*Contract, error) {
	if md == nil {
		return nil, singleIssue(CodeSchemaUnavailable, "nil message descriptor")
	}
	if v, ok := r.contracts.Load(md.FullName()); ok {
		return v.(*Contract), nil
	}
	c, err := buildContract(r, md)
	if err != nil {
		return nil, err
	}
	actual, _ := r.contracts.LoadOrStore(md.FullName(), c)
	return actual.(*Contract), nil
}
