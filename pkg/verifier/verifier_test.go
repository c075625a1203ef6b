package verifier_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BigBirdReturns/axm-genesis/pkg/compiler"
	axmcrypto "github.com/BigBirdReturns/axm-genesis/pkg/crypto"
	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
	"github.com/BigBirdReturns/axm-genesis/pkg/verifier"
)

func buildValidShard(t *testing.T) (shardDir string, trustedKey []byte) {
	t.Helper()
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "source.txt")
	if err := os.WriteFile(sourcePath, []byte("A tourniquet stops severe bleeding quickly.\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	candPath := filepath.Join(dir, "candidates.jsonl")
	line := `{"subject":"tourniquet","predicate":"treats","object":"severe bleeding","object_type":"entity","tier":0,"evidence":"A tourniquet stops severe bleeding quickly."}` + "\n"
	if err := os.WriteFile(candPath, []byte(line), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	shardDir = filepath.Join(dir, "shard")
	key := make([]byte, 32)
	key[0] = 7

	if _, err := compiler.Compile(compiler.Config{
		SourcePath:     sourcePath,
		CandidatesPath: candPath,
		OutDir:         shardDir,
		PrivateKey:     key,
		Namespace:      "test/ns",
		PublisherID:    "@test",
		PublisherName:  "Test Publisher",
		CreatedAt:      "2026-01-01T00:00:00Z",
	}); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	signer, err := axmcrypto.NewSigner(key)
	if err != nil {
		t.Fatalf("NewSigner() error = %v", err)
	}
	return shardDir, signer.PublicKey()
}

func TestVerifyPassesOnValidShard(t *testing.T) {
	shardDir, trustedKey := buildValidShard(t)
	report := verifier.Verify(shardDir, trustedKey)
	if report.Status != schema.StatusPass {
		t.Fatalf("Verify() = %+v, want PASS", report)
	}
}

func TestVerifyDetectsMissingRootItem(t *testing.T) {
	shardDir, trustedKey := buildValidShard(t)
	if err := os.RemoveAll(filepath.Join(shardDir, "evidence")); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	report := verifier.Verify(shardDir, trustedKey)
	assertSingleErrorCode(t, report, schema.ErrLayoutMissing)
}

func TestVerifyDetectsDirtyRoot(t *testing.T) {
	shardDir, trustedKey := buildValidShard(t)
	if err := os.WriteFile(filepath.Join(shardDir, "extra.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	report := verifier.Verify(shardDir, trustedKey)
	assertSingleErrorCode(t, report, schema.ErrLayoutDirty)
}

func TestVerifyDetectsDotfile(t *testing.T) {
	shardDir, trustedKey := buildValidShard(t)
	if err := os.WriteFile(filepath.Join(shardDir, "content", ".hidden"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	report := verifier.Verify(shardDir, trustedKey)
	assertSingleErrorCode(t, report, schema.ErrDotfile)
}

func TestVerifyDetectsTamperedManifest(t *testing.T) {
	shardDir, trustedKey := buildValidShard(t)
	path := filepath.Join(shardDir, "manifest.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	tampered := append([]byte(nil), raw...)
	tampered = append(tampered, ' ') // breaks canonical JSON / signature
	if err := os.WriteFile(path, tampered, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	report := verifier.Verify(shardDir, trustedKey)
	if report.Status != schema.StatusFail {
		t.Fatalf("Verify() = %+v, want FAIL", report)
	}
}

func TestVerifyDetectsMerkleMismatch(t *testing.T) {
	shardDir, trustedKey := buildValidShard(t)
	path := filepath.Join(shardDir, "content", "source.txt")
	if err := os.WriteFile(path, []byte("tampered content that was not signed\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	report := verifier.Verify(shardDir, trustedKey)
	assertSingleErrorCode(t, report, schema.ErrMerkleMismatch)
}

func TestVerifyDetectsWrongTrustedKey(t *testing.T) {
	shardDir, _ := buildValidShard(t)
	wrongKey := make([]byte, 32)
	wrongKey[0] = 99
	report := verifier.Verify(shardDir, wrongKey)
	assertSingleErrorCode(t, report, schema.ErrSigInvalid)
}

func assertSingleErrorCode(t *testing.T, report schema.VerifyReport, code schema.ErrorCode) {
	t.Helper()
	if report.Status != schema.StatusFail {
		t.Fatalf("Verify() = %+v, want FAIL", report)
	}
	found := false
	for _, e := range report.Errors {
		if e.Code == code {
			found = true
		}
	}
	if !found {
		t.Fatalf("Verify() errors = %+v, want code %s present", report.Errors, code)
	}
}
