// Package schema defines the AXM shard data model: the four table row
// types, the manifest shape, and the error vocabulary shared by the
// compiler and the verifier.
package schema

import (
	"encoding/hex"
	"fmt"
)

// Column names and ordinal positions for the four shard tables. TableWriter
// and TableReader treat these as the normative, exact-match schema.
const (
	ColEntityID   = "entity_id"
	ColNamespace  = "namespace"
	ColLabel      = "label"
	ColEntityType = "entity_type"

	ColClaimID    = "claim_id"
	ColSubject    = "subject"
	ColPredicate  = "predicate"
	ColObject     = "object"
	ColObjectType = "object_type"
	ColTier       = "tier"

	ColProvenanceID = "provenance_id"
	// ColClaimID, ColSourceHash, ColByteStart, ColByteEnd shared below
	ColSourceHash = "source_hash"
	ColByteStart  = "byte_start"
	ColByteEnd    = "byte_end"

	ColSpanID = "span_id"
	ColText   = "text"
)

// ColumnType enumerates the scalar column types TableWriter/TableReader
// support. There is no null variant: §4.3 forbids nulls in any column.
type ColumnType int

const (
	ColString ColumnType = iota
	ColInt64
	ColInt8
)

// Column describes one column of a table schema: name, declared order, type.
type Column struct {
	Name string
	Type ColumnType
}

// TableSchema is the exact, ordered column list a table file must match on
// read. Order, names, count, and types must all match exactly.
type TableSchema struct {
	Name    string
	Columns []Column
}

// EntitiesSchema, ClaimsSchema, ProvenanceSchema, SpansSchema are the four
// normative column schemas a shard's tables must match exactly, in column
// name, type, and order.
var (
	EntitiesSchema = TableSchema{
		Name: "entities",
		Columns: []Column{
			{ColEntityID, ColString},
			{ColNamespace, ColString},
			{ColLabel, ColString},
			{ColEntityType, ColString},
		},
	}

	ClaimsSchema = TableSchema{
		Name: "claims",
		Columns: []Column{
			{ColClaimID, ColString},
			{ColSubject, ColString},
			{ColPredicate, ColString},
			{ColObject, ColString},
			{ColObjectType, ColString},
			{ColTier, ColInt8},
		},
	}

	ProvenanceSchema = TableSchema{
		Name: "provenance",
		Columns: []Column{
			{ColProvenanceID, ColString},
			{ColClaimID, ColString},
			{ColSourceHash, ColString},
			{ColByteStart, ColInt64},
			{ColByteEnd, ColInt64},
		},
	}

	SpansSchema = TableSchema{
		Name: "spans",
		Columns: []Column{
			{ColSpanID, ColString},
			{ColSourceHash, ColString},
			{ColByteStart, ColInt64},
			{ColByteEnd, ColInt64},
			{ColText, ColString},
		},
	}
)

// ObjectType enumerates the allowed claim object_type values.
type ObjectType string

const (
	ObjectTypeEntity         ObjectType = "entity"
	ObjectTypeLiteralString  ObjectType = "literal:string"
	ObjectTypeLiteralInteger ObjectType = "literal:integer"
	ObjectTypeLiteralDecimal ObjectType = "literal:decimal"
	ObjectTypeLiteralBoolean ObjectType = "literal:boolean"
)

// ValidObjectTypes is the enum set claim rows must belong to.
var ValidObjectTypes = map[ObjectType]bool{
	ObjectTypeEntity:         true,
	ObjectTypeLiteralString:  true,
	ObjectTypeLiteralInteger: true,
	ObjectTypeLiteralDecimal: true,
	ObjectTypeLiteralBoolean: true,
}

// ValidTiers is the enum set claim tier values must belong to.
var ValidTiers = map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true}

// Entity is a row of graph/entities.parquet.
type Entity struct {
	EntityID   string `json:"entity_id"`
	Namespace  string `json:"namespace"`
	Label      string `json:"label"`
	EntityType string `json:"entity_type"`
}

// Claim is a row of graph/claims.parquet.
type Claim struct {
	ClaimID    string `json:"claim_id"`
	Subject    string `json:"subject"`
	Predicate  string `json:"predicate"`
	Object     string `json:"object"`
	ObjectType string `json:"object_type"`
	Tier       int8   `json:"tier"`
}

// Provenance is a row of graph/provenance.parquet.
type Provenance struct {
	ProvenanceID string `json:"provenance_id"`
	ClaimID      string `json:"claim_id"`
	SourceHash   string `json:"source_hash"`
	ByteStart    int64  `json:"byte_start"`
	ByteEnd      int64  `json:"byte_end"`
}

// Span is a row of evidence/spans.parquet.
type Span struct {
	SpanID     string `json:"span_id"`
	SourceHash string `json:"source_hash"`
	ByteStart  int64  `json:"byte_start"`
	ByteEnd    int64  `json:"byte_end"`
	Text       string `json:"text"`
}

// Required shard layout entries: the exact set a shard root must contain,
// no more and no fewer.
var (
	RequiredRootItems = map[string]bool{
		"manifest.json": true,
		"sig":           true,
		"content":       true,
		"graph":         true,
		"evidence":      true,
	}
	RequiredSigFiles     = map[string]bool{"manifest.sig": true, "publisher.pub": true}
	RequiredGraphFiles   = map[string]bool{"entities.parquet": true, "claims.parquet": true, "provenance.parquet": true}
	RequiredEvidenceFile = "spans.parquet"
)

const (
	PubKeyLen = 32
	SigLen    = 64
)

// IsHex64 reports whether s is exactly 64 lowercase-or-uppercase hex chars,
// the shape required of source_hash and other internally-computed content
// hashes.
func IsHex64(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// IsLowerHex64 reports whether s is exactly 64 lowercase hex chars, the
// stricter shape required of a manifest's merkle_root.
func IsLowerHex64(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ValidateMerkleRoot returns an error unless root is a 64-char lowercase hex
// digest.
func ValidateMerkleRoot(root string) error {
	if !IsLowerHex64(root) {
		return fmt.Errorf("merkle_root must be 64 lowercase hex chars, got %q", root)
	}
	return nil
}
