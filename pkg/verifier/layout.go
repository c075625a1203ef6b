package verifier

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
)

// checkLayout validates stage 1: the shard root exists, contains exactly
// the required top-level items, and carries no dotfiles anywhere beneath
// it (following no symlinks).
func checkLayout(root string) []schema.VerifyError {
	var errs []schema.VerifyError

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return []schema.VerifyError{{Code: schema.ErrLayoutMissing, Message: "shard root does not exist or is not a directory"}}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return []schema.VerifyError{{Code: schema.ErrLayoutMissing, Message: "cannot read shard root: " + err.Error()}}
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		seen[e.Name()] = true
		if !schema.RequiredRootItems[e.Name()] {
			errs = append(errs, schema.VerifyError{Code: schema.ErrLayoutDirty, Message: "unexpected root entry: " + e.Name()})
		}
	}
	for required := range schema.RequiredRootItems {
		if !seen[required] {
			errs = append(errs, schema.VerifyError{Code: schema.ErrLayoutMissing, Message: "missing required root entry: " + required})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	errs = append(errs, checkExactDirContents(root, "sig", schema.RequiredSigFiles)...)
	errs = append(errs, checkExactDirContents(root, "graph", schema.RequiredGraphFiles)...)
	errs = append(errs, checkExactDirContents(root, "evidence", map[string]bool{schema.RequiredEvidenceFile: true})...)
	if len(errs) > 0 {
		return errs
	}

	if dotErr := findDotfile(root); dotErr != nil {
		errs = append(errs, *dotErr)
	}
	return errs
}

// checkExactDirContents requires that root/subdir contains exactly the file
// names in required, no more and no fewer.
func checkExactDirContents(root, subdir string, required map[string]bool) []schema.VerifyError {
	dir := filepath.Join(root, subdir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []schema.VerifyError{{Code: schema.ErrLayoutMissing, Message: "cannot read " + subdir + "/: " + err.Error()}}
	}

	var errs []schema.VerifyError
	seen := make(map[string]bool)
	for _, e := range entries {
		seen[e.Name()] = true
		if !required[e.Name()] {
			errs = append(errs, schema.VerifyError{Code: schema.ErrLayoutDirty, Message: "unexpected entry in " + subdir + "/: " + e.Name()})
		}
	}
	for name := range required {
		if !seen[name] {
			errs = append(errs, schema.VerifyError{Code: schema.ErrLayoutMissing, Message: "missing required " + subdir + "/" + name})
		}
	}
	return errs
}

// findDotfile walks root (without following symlinks) and returns on the
// first dotfile-named entry encountered.
func findDotfile(root string) *schema.VerifyError {
	var found *schema.VerifyError
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if found != nil {
			return filepath.SkipAll
		}
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			rel, _ := filepath.Rel(root, path)
			found = &schema.VerifyError{Code: schema.ErrDotfile, Message: "dotfile present: " + filepath.ToSlash(rel)}
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
