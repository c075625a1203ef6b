package compiler

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/sjson"
)

// canonicalTestPrivateKeyHex is the fixed 32-byte Ed25519 seed used to
// build the deterministic example shard. It is a test fixture, never
// runtime configuration: it must never be used to sign a real shard.
const canonicalTestPrivateKeyHex = "a665a45920422f9d417e4867efdc4fb8a04a1f3fff1fa07e998e86f7f7a27ae"

// goldCreatedAt is the fixed build timestamp used by the fixture shard, so
// repeated fixture builds are byte-identical.
const goldCreatedAt = "2026-01-01T00:00:00Z"

const fixtureNamespace = "survival/medical"

type fixtureClaim struct {
	subject, predicate, object, objectType string
	tier                                   int
	evidence                               string
}

var fixtureClaims = []fixtureClaim{
	{"pressure dressing", "treats", "severe bleeding", "entity", 0,
		"Pressure dressing is the preferred method for controlling severe bleeding"},
	{"tourniquet", "treats", "hemorrhagic shock", "entity", 0,
		"A tourniquet applied high and tight can prevent progression to hemorrhagic shock"},
	{"direct pressure", "treats", "extremity wound", "entity", 0,
		"Direct pressure should be held continuously on an extremity wound"},
	{"wound packing", "treats", "severe bleeding", "entity", 0,
		"Wound packing combined with pressure is effective for severe bleeding at junctional sites"},
	{"hemostatic agent", "treats", "extremity wound", "entity", 0,
		"A hemostatic agent can be packed into an extremity wound when direct pressure alone fails"},
	{"tourniquet", "treats", "severe bleeding", "entity", 0,
		"Tourniquet application is indicated for severe bleeding that does not respond to direct pressure"},
}

const fixtureSourceText = `PRESSURE DRESSING

Pressure dressing is the preferred method for controlling severe bleeding
in most extremity injuries. A tourniquet applied high and tight can prevent
progression to hemorrhagic shock when direct pressure is insufficient.

Direct pressure should be held continuously on an extremity wound until
bleeding is controlled. Wound packing combined with pressure is effective
for severe bleeding at junctional sites. A hemostatic agent can be packed
into an extremity wound when direct pressure alone fails. Tourniquet
application is indicated for severe bleeding that does not respond to
direct pressure.
`

// BuildFixture writes a deterministic example shard to outDir, using the
// canonical test private key and a fixed build timestamp so repeated
// invocations are byte-identical.
func BuildFixture(outDir string) (*Result, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("compiler: mkdir %s: %w", outDir, err)
	}

	scratchDir, err := os.MkdirTemp("", "axm-fixture-*")
	if err != nil {
		return nil, fmt.Errorf("compiler: create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratchDir)

	srcPath := filepath.Join(scratchDir, "fixture-source.txt")
	if err := os.WriteFile(srcPath, []byte(fixtureSourceText), 0o644); err != nil {
		return nil, fmt.Errorf("compiler: write fixture source: %w", err)
	}

	candPath := filepath.Join(scratchDir, "fixture-candidates.jsonl")
	if err := os.WriteFile(candPath, []byte(fixtureCandidatesJSONL()), 0o644); err != nil {
		return nil, fmt.Errorf("compiler: write fixture candidates: %w", err)
	}

	key, err := hex.DecodeString(canonicalTestPrivateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("compiler: decode fixture key: %w", err)
	}

	return Compile(Config{
		SourcePath:     srcPath,
		CandidatesPath: candPath,
		OutDir:         outDir,
		PrivateKey:     key,
		Namespace:      fixtureNamespace,
		PublisherID:    "@axm_genesis_test",
		PublisherName:  "AXM Genesis Canonical Test Publisher",
		CreatedAt:      goldCreatedAt,
		Title:          "Pressure Dressing (fixture)",
	})
}

// fixtureCandidatesJSONL builds the NDJSON candidate stream field by field
// with sjson rather than string formatting, so a quote or backslash in an
// evidence string can never produce invalid JSON.
func fixtureCandidatesJSONL() string {
	var b strings.Builder
	for _, c := range fixtureClaims {
		line := "{}"
		for _, set := range []struct {
			path string
			val  any
		}{
			{"subject", c.subject},
			{"predicate", c.predicate},
			{"object", c.object},
			{"object_type", c.objectType},
			{"tier", c.tier},
			{"evidence", c.evidence},
		} {
			updated, err := sjson.Set(line, set.path, set.val)
			if err != nil {
				panic(fmt.Sprintf("compiler: building fixture candidate line: %v", err))
			}
			line = updated
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
