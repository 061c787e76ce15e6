// Package protobind converts between the canonical proto3 JSON wire form and
// protobuf message instances through cached per-type encoding contracts.
//
// It provides:
//
//   - A Contract per message type: the ordered (field-number order) list of
//     field bindings used for every encode/decode of that type, built once
//     and published atomically via a Registry
//   - The proto3 JSON field rules: presence-gated emission, default
//     suppression, oneof single-active-member enforcement, append-merge for
//     repeated fields and last-write-wins merge for map fields
//   - A stable error model via Issues (JSON Pointer, code, message)
//   - Streaming token Sources with duplicate-key/depth/size enforcement and
//     a pluggable JSON driver (goccy/go-json by default)
//
// The schema is externally owned: contracts read protoreflect descriptors
// and never create, cache or mutate descriptor data. Unmarshal merges into
// the target instance rather than resetting it; decoding the same input
// twice duplicates repeated elements.
//
// Typical usage:
//
//	msg := &pb.Order{}
//	err := protobind.Unmarshal(data, msg)
//
//	out, err := protobind.Marshal(msg, protobind.MarshalOptions{EmitDefaults: true})
//
//	c, err := protobind.ContractFor(msg) // bindings for an external engine
package protobind
