// Package compiler builds a signed, content-addressed shard from a source
// document and a stream of candidate claims.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/BigBirdReturns/axm-genesis/pkg/canonicaljson"
	axmcrypto "github.com/BigBirdReturns/axm-genesis/pkg/crypto"
	"github.com/BigBirdReturns/axm-genesis/pkg/identity"
	"github.com/BigBirdReturns/axm-genesis/pkg/merkle"
	"github.com/BigBirdReturns/axm-genesis/pkg/normalize"
	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
	"github.com/BigBirdReturns/axm-genesis/pkg/table"
	"github.com/BigBirdReturns/axm-genesis/pkg/verifier"
)

// Config holds everything needed to build one shard.
type Config struct {
	SourcePath     string
	CandidatesPath string
	OutDir         string
	PrivateKey     []byte // 32-byte Ed25519 seed
	Namespace      string
	PublisherID    string
	PublisherName  string
	CreatedAt      string
	Title          string
}

// Result reports what a successful compile produced.
type Result struct {
	ShardID    string
	MerkleRoot string
	Entities   int
	Claims     int
}

// entry pairs a resolved claim row with its evidence span location, kept
// together until both the claims table and the provenance/spans tables are
// emitted.
type claimEntry struct {
	claim      schema.Claim
	sourceHash string
	byteStart  int64
	byteEnd    int64
	evidence   string
}

// Compile builds a shard at cfg.OutDir from cfg.SourcePath and
// cfg.CandidatesPath, signs it, and self-verifies the result. It returns an
// error if the build produces zero claims or if self-verification fails.
func Compile(cfg Config) (*Result, error) {
	rawSource, err := os.ReadFile(cfg.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("compiler: read source: %w", err)
	}
	if !utf8.Valid(rawSource) {
		return nil, fmt.Errorf("compiler: source is not valid UTF-8")
	}

	content := []byte(normalize.Text(string(rawSource)))
	sourceHash := sha256Hex(content)

	candFile, err := os.Open(cfg.CandidatesPath)
	if err != nil {
		return nil, fmt.Errorf("compiler: open candidates: %w", err)
	}
	candidates, err := ReadCandidates(candFile)
	candFile.Close()
	if err != nil {
		return nil, err
	}

	if err := os.RemoveAll(cfg.OutDir); err != nil {
		return nil, fmt.Errorf("compiler: clear out dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(cfg.OutDir, "content"), 0o755); err != nil {
		return nil, fmt.Errorf("compiler: mkdir content: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(cfg.OutDir, "graph"), 0o755); err != nil {
		return nil, fmt.Errorf("compiler: mkdir graph: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(cfg.OutDir, "evidence"), 0o755); err != nil {
		return nil, fmt.Errorf("compiler: mkdir evidence: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(cfg.OutDir, "sig"), 0o755); err != nil {
		return nil, fmt.Errorf("compiler: mkdir sig: %w", err)
	}
	sourcePath := filepath.Join(cfg.OutDir, "content", "source.txt")
	if err := os.WriteFile(sourcePath, content, 0o644); err != nil {
		return nil, fmt.Errorf("compiler: write source.txt: %w", err)
	}

	entityIDs, entities, err := resolveEntities(cfg.Namespace, candidates)
	if err != nil {
		return nil, err
	}

	claimEntries, err := resolveClaims(candidates, entityIDs, content, sourceHash, cfg.Namespace)
	if err != nil {
		return nil, err
	}
	if len(claimEntries) == 0 {
		return nil, fmt.Errorf("compiler: zero claims produced, aborting build")
	}

	claims := make([]schema.Claim, len(claimEntries))
	provenance := make([]schema.Provenance, len(claimEntries))
	spans := make([]schema.Span, len(claimEntries))
	for i, ce := range claimEntries {
		claims[i] = ce.claim
		provID := derivedID("p_", ce.sourceHash, ce.byteStart, ce.byteEnd)
		spanID := derivedID("s_", ce.sourceHash, ce.byteStart, ce.byteEnd, ce.evidence)
		provenance[i] = schema.Provenance{
			ProvenanceID: provID,
			ClaimID:      ce.claim.ClaimID,
			SourceHash:   ce.sourceHash,
			ByteStart:    ce.byteStart,
			ByteEnd:      ce.byteEnd,
		}
		spans[i] = schema.Span{
			SpanID:     spanID,
			SourceHash: ce.sourceHash,
			ByteStart:  ce.byteStart,
			ByteEnd:    ce.byteEnd,
			Text:       ce.evidence,
		}
	}

	sort.Slice(entities, func(i, j int) bool { return entities[i].EntityID < entities[j].EntityID })
	sort.Slice(claims, func(i, j int) bool { return claims[i].ClaimID < claims[j].ClaimID })
	sort.Slice(provenance, func(i, j int) bool { return provenance[i].ProvenanceID < provenance[j].ProvenanceID })
	sort.Slice(spans, func(i, j int) bool { return spans[i].SpanID < spans[j].SpanID })

	if err := table.Write(filepath.Join(cfg.OutDir, "graph", "entities.parquet"), schema.EntitiesSchema, table.EntityRows(entities)); err != nil {
		return nil, err
	}
	if err := table.Write(filepath.Join(cfg.OutDir, "graph", "claims.parquet"), schema.ClaimsSchema, table.ClaimRows(claims)); err != nil {
		return nil, err
	}
	if err := table.Write(filepath.Join(cfg.OutDir, "graph", "provenance.parquet"), schema.ProvenanceSchema, table.ProvenanceRows(provenance)); err != nil {
		return nil, err
	}
	if err := table.Write(filepath.Join(cfg.OutDir, "evidence", "spans.parquet"), schema.SpansSchema, table.SpanRows(spans)); err != nil {
		return nil, err
	}

	merkleRoot, err := merkle.ComputeRoot(cfg.OutDir)
	if err != nil {
		return nil, fmt.Errorf("compiler: compute merkle root: %w", err)
	}

	manifest := Manifest{
		SpecVersion: specVersion,
		ShardID:     "shard_blake3_" + merkleRoot,
		Metadata: ManifestMetadata{
			Title:     cfg.Title,
			Namespace: cfg.Namespace,
			CreatedAt: cfg.CreatedAt,
		},
		Publisher: ManifestPublisher{ID: cfg.PublisherID, Name: cfg.PublisherName},
		License:   ManifestLicense{SPDX: "UNLICENSED", Notes: "Generic build"},
		Sources: []ManifestSource{
			{Path: "content/source.txt", Hash: sourceHash},
		},
		Integrity:  ManifestIntegrity{Algorithm: "blake3", MerkleRoot: merkleRoot},
		Statistics: ManifestStatistics{Entities: len(entities), Claims: len(claims)},
	}

	manifestBytes, err := canonicaljson.EncodeManifest(manifest)
	if err != nil {
		return nil, fmt.Errorf("compiler: encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.OutDir, "manifest.json"), manifestBytes, 0o644); err != nil {
		return nil, fmt.Errorf("compiler: write manifest: %w", err)
	}

	signer, err := axmcrypto.NewSigner(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("compiler: %w", err)
	}
	sig := signer.Sign(manifestBytes)
	pub := signer.PublicKey()
	if err := os.WriteFile(filepath.Join(cfg.OutDir, "sig", "publisher.pub"), pub, 0o644); err != nil {
		return nil, fmt.Errorf("compiler: write publisher.pub: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.OutDir, "sig", "manifest.sig"), sig, 0o644); err != nil {
		return nil, fmt.Errorf("compiler: write manifest.sig: %w", err)
	}

	report := verifier.Verify(cfg.OutDir, pub)
	if report.Status != schema.StatusPass {
		return nil, fmt.Errorf("compiler: self-verification failed with %d error(s): %+v", report.ErrorCount, report.Errors)
	}

	return &Result{
		ShardID:    manifest.ShardID,
		MerkleRoot: merkleRoot,
		Entities:   len(entities),
		Claims:     len(claims),
	}, nil
}

func resolveEntities(namespace string, candidates []Candidate) (map[string]string, []schema.Entity, error) {
	ids := make(map[string]string)
	var entities []schema.Entity

	const entityKeyPrefix = "entity\x00"
	const storedEntityType = "concept"

	seenIDs := make(map[string]bool)

	add := func(label string) error {
		if label == "" {
			return nil
		}
		key := entityKeyPrefix + label
		if _, ok := ids[key]; ok {
			return nil
		}
		id, err := identity.EntityID(namespace, label)
		if err != nil {
			return fmt.Errorf("compiler: entity id for %q: %w", label, err)
		}
		ids[key] = id
		if seenIDs[id] {
			// A differently-cased or -spaced label canonicalized to an
			// entity_id already emitted; record the lookup, don't duplicate
			// the row.
			return nil
		}
		seenIDs[id] = true
		entities = append(entities, schema.Entity{
			EntityID:   id,
			Namespace:  namespace,
			Label:      label,
			EntityType: storedEntityType,
		})
		return nil
	}

	for _, c := range candidates {
		if c.Subject == "" || c.Predicate == "" || c.Evidence == "" {
			continue
		}
		if err := add(c.Subject); err != nil {
			return nil, nil, err
		}
		if c.ObjectType == string(schema.ObjectTypeEntity) {
			if err := add(c.Object); err != nil {
				return nil, nil, err
			}
		}
	}
	return ids, entities, nil
}

func resolveClaims(candidates []Candidate, entityIDs map[string]string, content []byte, sourceHash, namespace string) ([]claimEntry, error) {
	var out []claimEntry
	for _, c := range candidates {
		if c.Subject == "" || c.Predicate == "" || c.Evidence == "" {
			continue
		}
		if !schema.ValidObjectTypes[schema.ObjectType(c.ObjectType)] {
			continue
		}
		tier := c.Tier
		if !schema.ValidTiers[tier] {
			tier = 0
		}

		subjectID, ok := entityIDs["entity\x00"+c.Subject]
		if !ok {
			var err error
			subjectID, err = identity.EntityID(namespace, c.Subject)
			if err != nil {
				continue
			}
		}

		objectValue := c.Object
		if c.ObjectType == string(schema.ObjectTypeEntity) {
			if id, ok := entityIDs["entity\x00"+c.Object]; ok {
				objectValue = id
			}
		}

		claimID, err := identity.ClaimID(subjectID, c.Predicate, objectValue, c.ObjectType)
		if err != nil {
			continue
		}

		start, end, spanErr := findSpanStrict(content, c.Evidence)
		if spanErr != nil {
			if _, ambiguous := spanErr.(*ErrAmbiguousEvidence); ambiguous {
				return nil, fmt.Errorf("compiler: %w", spanErr)
			}
			continue // evidence not found: soft-skip this candidate
		}

		out = append(out, claimEntry{
			claim: schema.Claim{
				ClaimID:    claimID,
				Subject:    subjectID,
				Predicate:  c.Predicate,
				Object:     objectValue,
				ObjectType: c.ObjectType,
				Tier:       int8(tier),
			},
			sourceHash: sourceHash,
			byteStart:  start,
			byteEnd:    end,
			evidence:   c.Evidence,
		})
	}
	return out, nil
}
