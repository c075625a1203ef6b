package verifier

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
)

// hashContentFiles walks content/ (without following symlinks) and returns
// the set of sha256 hex digests present plus a hash-to-path map, enforcing
// the same file-count/size hardening limits as the compiler.
func hashContentFiles(root string) (hashes map[string]bool, paths map[string]string, errs []schema.VerifyError) {
	hashes = make(map[string]bool)
	paths = make(map[string]string)
	contentDir := filepath.Join(root, "content")

	var fileCount int
	var totalBytes int64

	walkErr := filepath.WalkDir(contentDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == contentDir || d.IsDir() {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefRead, Message: "symlink not allowed under content/: " + path})
			return nil
		}
		fileCount++
		if fileCount > maxContentFiles {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefRead, Message: "content/ exceeds max file count"})
			return filepath.SkipAll
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxFileBytes {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefRead, Message: "content file exceeds max size: " + path})
			return nil
		}
		totalBytes += info.Size()
		if totalBytes > maxTotalBytes {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefRead, Message: "content/ exceeds max total bytes"})
			return filepath.SkipAll
		}

		digest, err := sha256File(path)
		if err != nil {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefRead, Message: "cannot hash content file: " + err.Error()})
			return nil
		}
		hashes[digest] = true
		paths[digest] = path
		return nil
	})
	if walkErr != nil {
		errs = append(errs, schema.VerifyError{Code: schema.ErrRefRead, Message: "cannot walk content/: " + walkErr.Error()})
	}
	return hashes, paths, errs
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return "", rerr
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// checkProvenance validates the second half of stage 7: every provenance
// row's claim_id is known, source_hash matches a hashed content file, and
// the byte range is within that file's bounds.
func checkProvenance(tables *loadedTables, claimIDs map[string]bool, contentHashes map[string]bool, contentPaths map[string]string) []schema.VerifyError {
	var errs []schema.VerifyError
	for _, p := range tables.provenance {
		if !claimIDs[p.ClaimID] {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefOrphan, Message: fmt.Sprintf("provenance %s references unknown claim %s", p.ProvenanceID, p.ClaimID)})
		}
		if !contentHashes[p.SourceHash] {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefSource, Message: fmt.Sprintf("provenance %s references unknown source_hash %s", p.ProvenanceID, p.SourceHash)})
			continue
		}
		if boundsErr := checkByteBounds(contentPaths[p.SourceHash], p.ByteStart, p.ByteEnd); boundsErr != nil {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefSource, Message: fmt.Sprintf("provenance %s: %s", p.ProvenanceID, boundsErr.Error())})
		}
	}
	return errs
}

func checkByteBounds(path string, start, end int64) error {
	if start < 0 || end < start {
		return fmt.Errorf("invalid byte range [%d,%d)", start, end)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if end > info.Size() {
		return fmt.Errorf("byte range [%d,%d) exceeds file size %d", start, end, info.Size())
	}
	return nil
}
