package merkle

import (
	"os"
	"path/filepath"
	"testing"
)

func TestComputeRootEmptyDir(t *testing.T) {
	dir := t.TempDir()
	root, err := ComputeRoot(dir)
	if err != nil {
		t.Fatalf("ComputeRoot() error = %v", err)
	}
	if len(root) != 64 {
		t.Fatalf("ComputeRoot() = %q, want 64 hex chars", root)
	}
}

func TestComputeRootDeterministicAcrossFileOrder(t *testing.T) {
	dirA := t.TempDir()
	writeFiles(t, dirA, map[string]string{
		"content/a.txt": "hello",
		"content/b.txt": "world",
		"graph/c.txt":   "claims",
	})

	dirB := t.TempDir()
	writeFiles(t, dirB, map[string]string{
		"graph/c.txt":   "claims",
		"content/b.txt": "world",
		"content/a.txt": "hello",
	})

	rootA, err := ComputeRoot(dirA)
	if err != nil {
		t.Fatalf("ComputeRoot(dirA) error = %v", err)
	}
	rootB, err := ComputeRoot(dirB)
	if err != nil {
		t.Fatalf("ComputeRoot(dirB) error = %v", err)
	}
	if rootA != rootB {
		t.Fatalf("ComputeRoot() not order-independent: %s != %s", rootA, rootB)
	}
}

func TestComputeRootExcludesManifestAndSig(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"content/a.txt": "hello",
	})
	withoutExtra, err := ComputeRoot(dir)
	if err != nil {
		t.Fatalf("ComputeRoot() error = %v", err)
	}

	writeFiles(t, dir, map[string]string{
		"manifest.json":     `{"irrelevant":true}`,
		"sig/manifest.sig":  "sig-bytes",
		"sig/publisher.pub": "pub-bytes",
	})
	withExtra, err := ComputeRoot(dir)
	if err != nil {
		t.Fatalf("ComputeRoot() error = %v", err)
	}

	if withoutExtra != withExtra {
		t.Fatalf("ComputeRoot() changed after adding manifest.json/sig/: %s != %s", withoutExtra, withExtra)
	}
}

func TestComputeRootRejectsSymlink(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"content/a.txt": "hello"})
	if err := os.Symlink(filepath.Join(dir, "content", "a.txt"), filepath.Join(dir, "content", "link.txt")); err != nil {
		t.Skipf("symlinks unsupported in this environment: %v", err)
	}
	if _, err := ComputeRoot(dir); err == nil {
		t.Fatalf("ComputeRoot() expected error for symlink")
	}
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}
