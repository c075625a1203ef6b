package compiler

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// derivedID derives a stable lowercase base32 identifier for provenance and
// span rows from their constituent fields, following the same
// hash-and-truncate shape as entity/claim ids but over already-resolved,
// non-canonicalized values (byte offsets and hashes need no normalization).
func derivedID(prefix string, parts ...any) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		fmt.Fprintf(h, "%v", p)
	}
	sum := h.Sum(nil)
	return prefix + toLowerB32(sum[:15])
}

func toLowerB32(b []byte) string {
	s := b32.EncodeToString(b)
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
