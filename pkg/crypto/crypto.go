// Package crypto signs and verifies shard manifest bytes with Ed25519.
package crypto

import (
	"crypto/ed25519"
	"fmt"

	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
)

// Signer holds an Ed25519 private key derived from a 32-byte seed.
type Signer struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

// NewSigner derives a Signer from a 32-byte seed. Any other length is
// rejected.
func NewSigner(seed []byte) (*Signer, error) {
	if len(seed) != 32 {
		return nil, fmt.Errorf("crypto: seed must be 32 bytes, got %d", len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &Signer{private: priv, public: priv.Public().(ed25519.PublicKey)}, nil
}

// PublicKey returns the 32-byte public key corresponding to this signer.
func (s *Signer) PublicKey() []byte {
	pub := make([]byte, len(s.public))
	copy(pub, s.public)
	return pub
}

// Sign returns the 64-byte Ed25519 signature over data (the exact canonical
// manifest bytes).
func (s *Signer) Sign(data []byte) []byte {
	return ed25519.Sign(s.private, data)
}

// Verify reports whether sig is a valid Ed25519 signature over data under
// pubKey. It never panics or returns an error: any malformed input (wrong
// key length, wrong signature length) simply yields false.
func Verify(pubKey, data, sig []byte) bool {
	if len(pubKey) != schema.PubKeyLen {
		return false
	}
	if len(sig) != schema.SigLen {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), data, sig)
}
