package verifier

import (
	"bytes"
	"os"
	"path/filepath"

	axmcrypto "github.com/BigBirdReturns/axm-genesis/pkg/crypto"
	"github.com/BigBirdReturns/axm-genesis/pkg/merkle"
	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
)

// checkCryptoAndMerkle validates stage 3: the shard's embedded publisher
// key matches the trusted anchor byte-for-byte, the manifest signature
// verifies under that key, and the recomputed Merkle root matches the
// manifest's declared root. Each sub-check short-circuits on failure.
func checkCryptoAndMerkle(root string, manifestBytes []byte, declaredRoot string, trustedKey []byte) []schema.VerifyError {
	pubPath := filepath.Join(root, "sig", "publisher.pub")
	sigPath := filepath.Join(root, "sig", "manifest.sig")

	pub, err := os.ReadFile(pubPath)
	if err != nil {
		return []schema.VerifyError{{Code: schema.ErrSigMissing, Message: "cannot read sig/publisher.pub: " + err.Error()}}
	}
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return []schema.VerifyError{{Code: schema.ErrSigMissing, Message: "cannot read sig/manifest.sig: " + err.Error()}}
	}

	if len(pub) != schema.PubKeyLen || !bytes.Equal(pub, trustedKey) {
		return []schema.VerifyError{{Code: schema.ErrSigInvalid, Message: "sig/publisher.pub does not match trusted key"}}
	}

	if !axmcrypto.Verify(pub, manifestBytes, sig) {
		return []schema.VerifyError{{Code: schema.ErrSigInvalid, Message: "manifest signature does not verify"}}
	}

	computedRoot, err := merkle.ComputeRoot(root)
	if err != nil {
		return []schema.VerifyError{{Code: schema.ErrMerkleMismatch, Message: "cannot compute merkle root: " + err.Error()}}
	}
	if computedRoot != declaredRoot {
		return []schema.VerifyError{{Code: schema.ErrMerkleMismatch, Message: "recomputed merkle root does not match manifest"}}
	}

	return nil
}
