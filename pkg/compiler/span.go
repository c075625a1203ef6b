package compiler

import (
	"bytes"
	"fmt"
)

// ErrEvidenceNotFound is returned (wrapped) when a candidate's evidence
// string has zero occurrences in the source content. Callers treat this as
// a soft per-candidate skip, not a build failure.
type ErrEvidenceNotFound struct{ Evidence string }

func (e *ErrEvidenceNotFound) Error() string {
	return fmt.Sprintf("evidence not found: %q", e.Evidence)
}

// ErrAmbiguousEvidence is returned when a candidate's evidence string
// occurs more than once in the source content. This is fatal to the build.
type ErrAmbiguousEvidence struct{ Evidence string }

func (e *ErrAmbiguousEvidence) Error() string {
	return fmt.Sprintf("ambiguous evidence: %q occurs more than once", e.Evidence)
}

// findSpanStrict locates the unique byte offset range of needle within
// content. It returns ErrEvidenceNotFound if needle occurs zero times, and
// ErrAmbiguousEvidence if it occurs more than once.
func findSpanStrict(content []byte, needle string) (start, end int64, err error) {
	nb := []byte(needle)
	count := bytes.Count(content, nb)
	if count == 0 {
		return 0, 0, &ErrEvidenceNotFound{Evidence: needle}
	}
	if count > 1 {
		return 0, 0, &ErrAmbiguousEvidence{Evidence: needle}
	}
	idx := bytes.Index(content, nb)
	return int64(idx), int64(idx + len(nb)), nil
}
