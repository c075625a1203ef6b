package compiler

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuildFixtureIsDeterministic(t *testing.T) {
	dirA := filepath.Join(t.TempDir(), "shard-a")
	dirB := filepath.Join(t.TempDir(), "shard-b")

	resultA, err := BuildFixture(dirA)
	if err != nil {
		t.Fatalf("BuildFixture() error = %v", err)
	}
	resultB, err := BuildFixture(dirB)
	if err != nil {
		t.Fatalf("BuildFixture() error = %v", err)
	}

	if resultA.MerkleRoot != resultB.MerkleRoot {
		t.Fatalf("BuildFixture() merkle roots differ: %s != %s", resultA.MerkleRoot, resultB.MerkleRoot)
	}
	if resultA.ShardID != resultB.ShardID {
		t.Fatalf("BuildFixture() shard ids differ: %s != %s", resultA.ShardID, resultB.ShardID)
	}

	manifestA, err := os.ReadFile(filepath.Join(dirA, "manifest.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	manifestB, err := os.ReadFile(filepath.Join(dirB, "manifest.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(manifestA) != string(manifestB) {
		t.Fatalf("BuildFixture() manifest bytes differ across runs")
	}
}

func TestBuildFixtureLeavesNoScratchFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shard")
	if _, err := BuildFixture(dir); err != nil {
		t.Fatalf("BuildFixture() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name()[0] == '.' {
			t.Fatalf("BuildFixture() left a dotfile in the shard root: %s", e.Name())
		}
	}
}
