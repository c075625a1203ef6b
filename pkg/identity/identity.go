// Package identity derives the deterministic entity and claim identifiers
// used throughout an AXM shard, from canonicalized label/predicate/object
// text.
package identity

import (
	"crypto/sha256"
	"encoding/base32"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
)

var caseFold = cases.Fold()

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Canonicalize normalizes s for identity derivation: NFC normalization,
// Unicode case-folding, whitespace-delimited tokenization with Cc-category
// characters stripped from each token, then rejoined with single ASCII
// spaces. Returns an error if s contains a NUL byte.
func Canonicalize(s string) (string, error) {
	if strings.ContainsRune(s, 0) {
		return "", errors.New("identity: input contains NUL byte")
	}
	folded := caseFold.String(norm.NFC.String(s))

	fields := strings.FieldsFunc(folded, unicode.IsSpace)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		chunk := stripControl(f)
		if chunk != "" {
			out = append(out, chunk)
		}
	}
	return strings.Join(out, " "), nil
}

func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Cc, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func b32Hash(prefix string, parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return prefix + strings.ToLower(b32.EncodeToString(sum[:15]))
}

// EntityID derives the deterministic entity_id for a (namespace, label)
// pair: canonicalize both, hash, base32-encode the first 15 bytes of the
// digest, lowercase, prefix "e_".
func EntityID(namespace, label string) (string, error) {
	ns, err := Canonicalize(namespace)
	if err != nil {
		return "", err
	}
	lb, err := Canonicalize(label)
	if err != nil {
		return "", err
	}
	return b32Hash("e_", ns, lb), nil
}

// ClaimID derives the deterministic claim_id for a (subject, predicate,
// object, objectType) tuple. subject is the already
// resolved subject entity_id (not re-canonicalized); predicate is always
// canonicalized; object is canonicalized unless objectType is "entity", in
// which case it is the verbatim resolved object entity_id.
func ClaimID(subject, predicate, object, objectType string) (string, error) {
	pred, err := Canonicalize(predicate)
	if err != nil {
		return "", err
	}
	objValue := object
	if schema.ObjectType(objectType) != schema.ObjectTypeEntity {
		objValue, err = Canonicalize(object)
		if err != nil {
			return "", err
		}
	}
	return b32Hash("c_", subject, pred, objectType, objValue), nil
}
