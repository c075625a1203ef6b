package table

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
)

func TestWriteReadEntitiesRoundTrip(t *testing.T) {
	entities := []schema.Entity{
		{EntityID: "e_aaa", Namespace: "ns", Label: "alpha", EntityType: "entity"},
		{EntityID: "e_bbb", Namespace: "ns", Label: "beta", EntityType: "entity"},
	}

	path := filepath.Join(t.TempDir(), "entities.parquet")
	if err := Write(path, schema.EntitiesSchema, EntityRows(entities)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	res, err := Read(path, schema.EntitiesSchema)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	got, err := DecodeEntities(res.Rows)
	if err != nil {
		t.Fatalf("DecodeEntities() error = %v", err)
	}
	if diff := cmp.Diff(entities, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteReadClaimsRoundTrip(t *testing.T) {
	claims := []schema.Claim{
		{ClaimID: "c_1", Subject: "e_a", Predicate: "treats", Object: "e_b", ObjectType: "entity", Tier: 2},
	}
	path := filepath.Join(t.TempDir(), "claims.parquet")
	if err := Write(path, schema.ClaimsSchema, ClaimRows(claims)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	res, err := Read(path, schema.ClaimsSchema)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	got, err := DecodeClaims(res.Rows)
	if err != nil {
		t.Fatalf("DecodeClaims() error = %v", err)
	}
	if diff := cmp.Diff(claims, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRejectsColumnMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.parquet")
	if err := Write(path, schema.EntitiesSchema, EntityRows(nil)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := Read(path, schema.ClaimsSchema); err == nil {
		t.Fatalf("Read() expected schema mismatch error")
	}
}

func TestReadEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.parquet")
	if err := Write(path, schema.EntitiesSchema, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	res, err := Read(path, schema.EntitiesSchema)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(res.Rows) != 0 {
		t.Fatalf("Read() rows = %d, want 0", len(res.Rows))
	}
}
