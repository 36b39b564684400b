// Package core defines the canonical document model for legacy
// base-pair analysis reports: base-pair records, multiplet records,
// summary statistics, and the canonical ordering that makes two
// independently produced documents comparable.
//
// Documents are value types. They are built once (by the report parser
// or by decoding a pairs JSON artifact) and never mutated afterwards.
package core
