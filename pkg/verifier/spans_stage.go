package verifier

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
)

// checkSpans validates stage 8: every span's source_hash is known, its
// byte range is in bounds, the bytes at that range decode as valid UTF-8,
// and the decoded text matches the span's stored text exactly.
func checkSpans(tables *loadedTables, contentHashes map[string]bool, contentPaths map[string]string) []schema.VerifyError {
	var errs []schema.VerifyError
	for _, s := range tables.spans {
		if !contentHashes[s.SourceHash] {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefSource, Message: fmt.Sprintf("span %s references unknown source_hash %s", s.SpanID, s.SourceHash)})
			continue
		}
		path := contentPaths[s.SourceHash]
		if boundsErr := checkByteBounds(path, s.ByteStart, s.ByteEnd); boundsErr != nil {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefSource, Message: fmt.Sprintf("span %s: %s", s.SpanID, boundsErr.Error())})
			continue
		}
		text, err := readByteRange(path, s.ByteStart, s.ByteEnd)
		if err != nil {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefSource, Message: fmt.Sprintf("span %s: %s", s.SpanID, err.Error())})
			continue
		}
		if !utf8.Valid(text) {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefSource, Message: fmt.Sprintf("span %s: byte range is not valid UTF-8", s.SpanID)})
			continue
		}
		if string(text) != s.Text {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefSource, Message: fmt.Sprintf("span %s: stored text does not match byte range", s.SpanID)})
		}
	}
	return errs
}

func readByteRange(path string, start, end int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, end-start)
	if _, err := f.ReadAt(buf, start); err != nil {
		return nil, err
	}
	return buf, nil
}
