// Package verifier implements an eight-stage, strictly ordered validation
// pipeline over a shard directory. Each stage accumulates every error it
// finds; the pipeline moves to the next stage only if the current stage
// produced zero errors.
package verifier

import (
	"fmt"
	"os"

	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
)

// Verify runs all eight stages against the shard at root, trusting
// trustedKey as the anchor public key. It never panics or returns a Go
// error: any failure becomes an accumulated VerifyError in the report.
func Verify(root string, trustedKey []byte) schema.VerifyReport {
	var errs []schema.VerifyError

	// Stage 1: layout.
	if layoutErrs := checkLayout(root); len(layoutErrs) > 0 {
		return schema.Finalize(root, layoutErrs)
	}

	// Stage 2: manifest.
	manifestBytes, declaredRoot, manifestErrs := readManifest(root)
	if len(manifestErrs) > 0 {
		return schema.Finalize(root, manifestErrs)
	}

	// Stage 3: crypto anchor + Merkle.
	if cryptoErrs := checkCryptoAndMerkle(root, manifestBytes, declaredRoot, trustedKey); len(cryptoErrs) > 0 {
		return schema.Finalize(root, cryptoErrs)
	}

	// Stage 4/5: table schema validation and decode.
	tables, schemaErrs := checkAndLoadTables(root)
	if len(schemaErrs) > 0 {
		return schema.Finalize(root, schemaErrs)
	}

	// Stage 6: identity recomputation and claim-level reference checks.
	// This stage does not short-circuit internally: every row is checked.
	entityIDs, claimIDs, identityErrs := checkIdentityAndClaimRefs(tables)
	if len(identityErrs) > 0 {
		return schema.Finalize(root, identityErrs)
	}
	_ = entityIDs

	// Stage 7: content hashing and provenance referential integrity.
	contentHashes, contentPaths, hashErrs := hashContentFiles(root)
	if len(hashErrs) > 0 {
		return schema.Finalize(root, hashErrs)
	}
	provErrs := checkProvenance(tables, claimIDs, contentHashes, contentPaths)
	if len(provErrs) > 0 {
		return schema.Finalize(root, provErrs)
	}

	// Stage 8: span byte-exactness.
	spanErrs := checkSpans(tables, contentHashes, contentPaths)
	errs = append(errs, spanErrs...)

	return schema.Finalize(root, errs)
}

// LoadTrustedKey reads a 32-byte raw Ed25519 public key from path, as
// supplied via the verifier CLI's --trusted-key flag.
func LoadTrustedKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("verifier: read trusted key: %w", err)
	}
	if len(key) != schema.PubKeyLen {
		return nil, fmt.Errorf("verifier: trusted key must be %d bytes, got %d", schema.PubKeyLen, len(key))
	}
	return key, nil
}
