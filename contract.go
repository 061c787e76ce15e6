package protobind

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

// bindingKind selects the write/merge behavior of a FieldBinding. The set is
// closed: every field a message schema can produce is exactly one of these.
type bindingKind int

const (
	bindingScalar   bindingKind = iota // includes message-typed fields (reference scalars)
	bindingRepeated                    // append-merge
	bindingMap                         // per-key insert, last write wins
)

// Contract is the cached, ordered set of field bindings used to encode and
// decode one message type. It is built exactly once per type per Registry and
// is immutable after publication; all subsequent encode/decode operations on
// the type share it.
type Contract struct {
	reg   *Registry
	desc  protoreflect.MessageDescriptor
	wkt   wktKind
	field []*FieldBinding          // field-number order, always
	byKey map[string]*FieldBinding // canonical JSON name and declared name
}

// FieldBinding carries the per-field read/write/emit behavior registered with
// the encode/decode engine. Bindings are owned by their Contract and never
// mutate schema data.
type FieldBinding struct {
	contract *Contract
	fd       protoreflect.FieldDescriptor
	jsonName string
	kind     bindingKind
}

// buildContract assembles the ordered binding list for md. Racing builds of
// the same type produce behaviorally indistinguishable contracts (same order,
// same bindings), so the Registry may discard all but one.
func buildContract(reg *Registry, md protoreflect.MessageDescriptor) (*Contract, error) {
	view, err := newSchemaView(md)
	if err != nil {
		return nil, err
	}
	ordered := view.orderedFields()
	c := &Contract{
		reg:   reg,
		desc:  md,
		wkt:   classifyWellKnown(md),
		field: make([]*FieldBinding, 0, len(ordered)),
		byKey: make(map[string]*FieldBinding, 2*len(ordered)),
	}
	for _, fd := range ordered {
		b := &FieldBinding{
			contract: c,
			fd:       fd,
			jsonName: jsonName(fd),
			kind:     classifyField(fd),
		}
		c.field = append(c.field, b)
		c.byKey[b.jsonName] = b
		if name := string(fd.Name()); name != b.jsonName {
			c.byKey[name] = b
		}
	}
	return c, nil
}

func classifyField(fd protoreflect.FieldDescriptor) bindingKind {
	switch {
	case fd.IsMap():
		return bindingMap
	case fd.IsList():
		return bindingRepeated
	default:
		return bindingScalar
	}
}

// Descriptor returns the message descriptor the contract was built from.
func (c *Contract) Descriptor() protoreflect.MessageDescriptor { return c.desc }

// Fields returns the bindings in field-number order. Callers must not modify
// the returned slice.
func (c *Contract) Fields() []*FieldBinding { return c.field }

// ByName resolves a JSON object key to its binding. Both the canonical JSON
// name and the declared schema name are accepted.
func (c *Contract) ByName(key string) (*FieldBinding, bool) {
	b, ok := c.byKey[key]
	return b, ok
}

// JSONName returns the canonical lower-camel-case name used in JSON output.
func (b *FieldBinding) JSONName() string { return b.jsonName }

// Number returns the schema field number.
func (b *FieldBinding) Number() protoreflect.FieldNumber { return b.fd.Number() }

// Descriptor returns the underlying field descriptor.
func (b *FieldBinding) Descriptor() protoreflect.FieldDescriptor { return b.fd }

// Get returns the field's current value on m.
func (b *FieldBinding) Get(m protoreflect.Message) protoreflect.Value { return m.Get(b.fd) }

// ShouldEmit reports whether the field appears in encoded output for m.
func (b *FieldBinding) ShouldEmit(m protoreflect.Message, emitDefaults bool) bool {
	return shouldEmitField(b.fd, m, emitDefaults)
}

// Write applies a decoded JSON value to the field on m:
//
//   - scalar fields assign, replacing any prior value, after the oneof
//     single-active-member check;
//   - repeated fields append each element in order and never clear the
//     existing sequence first, so writing the same array twice duplicates
//     elements;
//   - map fields insert each key/value pair with last-write-wins per key,
//     leaving absent keys untouched.
//
// The decoded value uses the engine's representation: map[string]any for
// objects, []any for arrays, json.Number for numbers, string, bool, nil.
func (b *FieldBinding) Write(m protoreflect.Message, decoded any) error {
	u := &unmarshaler{reg: b.contract.reg}
	return u.writeField(b, m, decoded, "/"+b.jsonName)
}
