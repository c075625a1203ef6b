package verifier

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
)

type manifestIntegrity struct {
	MerkleRoot string `json:"merkle_root"`
}

type manifestDoc struct {
	Integrity manifestIntegrity `json:"integrity"`
}

// readManifest validates stage 2: manifest.json exists, is within the size
// bound, parses as JSON, and carries a well-formed integrity.merkle_root.
// Returns the raw bytes (needed later for signature verification) and the
// parsed merkle root.
func readManifest(root string) ([]byte, string, []schema.VerifyError) {
	path := filepath.Join(root, "manifest.json")

	info, err := os.Stat(path)
	if err != nil {
		return nil, "", []schema.VerifyError{{Code: schema.ErrManifestSyntax, Message: "manifest.json missing: " + err.Error()}}
	}
	if info.Size() > maxManifestBytes {
		return nil, "", []schema.VerifyError{{Code: schema.ErrManifestSchema, Message: "manifest.json exceeds maximum size"}}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", []schema.VerifyError{{Code: schema.ErrManifestSyntax, Message: "cannot read manifest.json: " + err.Error()}}
	}

	var doc manifestDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, "", []schema.VerifyError{{Code: schema.ErrManifestSyntax, Message: "manifest.json is not valid JSON: " + err.Error()}}
	}

	if !schema.IsLowerHex64(doc.Integrity.MerkleRoot) {
		return raw, "", []schema.VerifyError{{Code: schema.ErrManifestSchema, Message: "integrity.merkle_root is not a 64-character lowercase hex digest"}}
	}

	return raw, doc.Integrity.MerkleRoot, nil
}
