package compiler

import (
	"os"
	"path/filepath"
	"testing"

	axmcrypto "github.com/BigBirdReturns/axm-genesis/pkg/crypto"
	"github.com/BigBirdReturns/axm-genesis/pkg/verifier"
)

func testKey() []byte {
	return make([]byte, 32)
}

func writeCandidates(t *testing.T, dir string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, "candidates.jsonl")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func writeSource(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "source.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestCompileProducesVerifiablePassingShard(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "A tourniquet stops severe bleeding quickly.\n")
	candidates := writeCandidates(t, dir, []string{
		`{"subject":"tourniquet","predicate":"treats","object":"severe bleeding","object_type":"entity","tier":0,"evidence":"A tourniquet stops severe bleeding quickly."}`,
	})
	outDir := filepath.Join(dir, "shard")

	result, err := Compile(Config{
		SourcePath:     source,
		CandidatesPath: candidates,
		OutDir:         outDir,
		PrivateKey:     testKey(),
		Namespace:      "test/ns",
		PublisherID:    "@test",
		PublisherName:  "Test Publisher",
		CreatedAt:      "2026-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if result.Claims != 1 || result.Entities != 2 {
		t.Fatalf("Compile() result = %+v, want 1 claim / 2 entities", result)
	}

	signer, err := axmcrypto.NewSigner(testKey())
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	report := verifier.Verify(outDir, signer.PublicKey())
	if report.Status != "PASS" {
		t.Fatalf("Verify() = %+v, want PASS", report)
	}
}

func TestCompileAbortsOnAmbiguousEvidence(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "bleeding bleeding control matters.\n")
	candidates := writeCandidates(t, dir, []string{
		`{"subject":"control","predicate":"treats","object":"bleeding","object_type":"literal:string","tier":0,"evidence":"bleeding"}`,
	})
	outDir := filepath.Join(dir, "shard")

	_, err := Compile(Config{
		SourcePath:     source,
		CandidatesPath: candidates,
		OutDir:         outDir,
		PrivateKey:     testKey(),
		Namespace:      "test/ns",
		PublisherID:    "@test",
		PublisherName:  "Test Publisher",
		CreatedAt:      "2026-01-01T00:00:00Z",
	})
	if err == nil {
		t.Fatalf("Compile() expected error for ambiguous evidence")
	}
}

func TestCompileSkipsCandidateWithMissingEvidence(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "Only one relevant sentence is present here.\n")
	candidates := writeCandidates(t, dir, []string{
		`{"subject":"a","predicate":"treats","object":"b","object_type":"literal:string","tier":0,"evidence":"this text does not appear"}`,
		`{"subject":"sentence","predicate":"describes","object":"relevant","object_type":"literal:string","tier":0,"evidence":"Only one relevant sentence is present here."}`,
	})
	outDir := filepath.Join(dir, "shard")

	result, err := Compile(Config{
		SourcePath:     source,
		CandidatesPath: candidates,
		OutDir:         outDir,
		PrivateKey:     testKey(),
		Namespace:      "test/ns",
		PublisherID:    "@test",
		PublisherName:  "Test Publisher",
		CreatedAt:      "2026-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if result.Claims != 1 {
		t.Fatalf("Compile() claims = %d, want 1 (one candidate soft-skipped)", result.Claims)
	}
}

func TestCompileFailsWithZeroClaims(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "Nothing matches any candidate here.\n")
	candidates := writeCandidates(t, dir, []string{
		`{"subject":"x","predicate":"y","object":"z","object_type":"literal:string","tier":0,"evidence":"not present anywhere"}`,
	})
	outDir := filepath.Join(dir, "shard")

	_, err := Compile(Config{
		SourcePath:     source,
		CandidatesPath: candidates,
		OutDir:         outDir,
		PrivateKey:     testKey(),
		Namespace:      "test/ns",
		PublisherID:    "@test",
		PublisherName:  "Test Publisher",
		CreatedAt:      "2026-01-01T00:00:00Z",
	})
	if err == nil {
		t.Fatalf("Compile() expected error for zero claims")
	}
}

func TestVerifyRejectsWrongTrustedKey(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "A hemostatic agent controls junctional bleeding.\n")
	candidates := writeCandidates(t, dir, []string{
		`{"subject":"hemostatic agent","predicate":"treats","object":"junctional bleeding","object_type":"entity","tier":0,"evidence":"A hemostatic agent controls junctional bleeding."}`,
	})
	outDir := filepath.Join(dir, "shard")

	if _, err := Compile(Config{
		SourcePath:     source,
		CandidatesPath: candidates,
		OutDir:         outDir,
		PrivateKey:     testKey(),
		Namespace:      "test/ns",
		PublisherID:    "@test",
		PublisherName:  "Test Publisher",
		CreatedAt:      "2026-01-01T00:00:00Z",
	}); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	wrongKey := make([]byte, 32)
	wrongKey[0] = 1
	report := verifier.Verify(outDir, wrongKey)
	if report.Status != "FAIL" {
		t.Fatalf("Verify() with wrong trusted key = %+v, want FAIL", report)
	}
}
