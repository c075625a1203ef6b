// Package merkle computes the content-addressed Merkle root over a shard
// directory tree: BLAKE3 leaf hashes over relpath-prefixed file bytes,
// sorted by relpath, folded pairwise.
package merkle

import (
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lukechampine.com/blake3"
)

const (
	// MaxFileBytes bounds any single hashed file.
	MaxFileBytes = 512 * 1024 * 1024
	// MaxTotalBytes bounds the sum of hashed file sizes.
	MaxTotalBytes = 2 * 1024 * 1024 * 1024
	// MaxFiles bounds the number of files walked.
	MaxFiles = 100_000

	chunkSize = 64 * 1024
)

// leaf is one (relpath, hash) pair prior to sorting.
type leaf struct {
	relpath string
	hash    []byte
}

// ComputeRoot walks root (without following symlinks), excluding
// manifest.json and everything under sig/, and returns the hex-encoded
// Merkle root over the remaining files.
func ComputeRoot(root string) (string, error) {
	leaves, err := collectLeaves(root)
	if err != nil {
		return "", err
	}

	sort.Slice(leaves, func(i, j int) bool { return leaves[i].relpath < leaves[j].relpath })

	if len(leaves) == 0 {
		empty := blake3.Sum256(nil)
		return hex.EncodeToString(empty[:]), nil
	}

	level := make([][]byte, len(leaves))
	for i, l := range leaves {
		level[i] = l.hash
	}
	for len(level) > 1 {
		var next [][]byte
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, foldPair(level[i], level[i+1]))
			} else {
				next = append(next, foldPair(level[i], level[i]))
			}
		}
		level = next
	}
	return hex.EncodeToString(level[0]), nil
}

func foldPair(a, b []byte) []byte {
	h := blake3.New(32, nil)
	h.Write(a)
	h.Write(b)
	return h.Sum(nil)
}

func collectLeaves(root string) ([]leaf, error) {
	var leaves []leaf
	var totalBytes int64
	var fileCount int

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)

		if d.Type()&fs.ModeSymlink != 0 {
			return fmt.Errorf("merkle: symlink not allowed: %s", relSlash)
		}

		if d.IsDir() {
			if relSlash == "sig" {
				return filepath.SkipDir
			}
			return nil
		}

		if relSlash == "manifest.json" || strings.HasPrefix(relSlash, "sig/") {
			return nil
		}

		fileCount++
		if fileCount > MaxFiles {
			return fmt.Errorf("merkle: exceeds max file count %d", MaxFiles)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > MaxFileBytes {
			return fmt.Errorf("merkle: %s exceeds max file size (%d > %d)", relSlash, info.Size(), MaxFileBytes)
		}
		totalBytes += info.Size()
		if totalBytes > MaxTotalBytes {
			return fmt.Errorf("merkle: exceeds max total bytes %d", MaxTotalBytes)
		}

		h, err := hashLeaf(path, relSlash)
		if err != nil {
			return err
		}
		leaves = append(leaves, leaf{relpath: relSlash, hash: h})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return leaves, nil
}

func hashLeaf(path, relSlash string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("merkle: open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New(32, nil)
	h.Write([]byte(relSlash))
	h.Write([]byte{0})

	buf := make([]byte, chunkSize)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("merkle: read %s: %w", path, readErr)
		}
	}
	return h.Sum(nil), nil
}
