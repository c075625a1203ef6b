// Command axm builds and verifies AXM shards: signed, content-addressed
// bundles pairing a normalized source document with a knowledge graph and
// byte-precise provenance.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BigBirdReturns/axm-genesis/pkg/compiler"
	"github.com/BigBirdReturns/axm-genesis/pkg/config"
	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
	"github.com/BigBirdReturns/axm-genesis/pkg/verifier"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "axm",
		Short: "Build and verify signed, content-addressed knowledge shards",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to YAML file with default namespace/publisher/key-path values")

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(verifyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an AXM shard",
	}
	cmd.AddCommand(compileCmd())
	cmd.AddCommand(fixtureCmd())
	return cmd
}

func compileCmd() *cobra.Command {
	var candidatesPath string
	var outDir string
	var keyHex string
	var namespace string
	var publisherID string
	var publisherName string
	var createdAt string
	var title string

	cmd := &cobra.Command{
		Use:   "compile <source>",
		Short: "Compile a source document and candidate claims into a shard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			key, err := resolvePrivateKey(keyHex)
			if err != nil {
				return err
			}

			result, err := compiler.Compile(compiler.Config{
				SourcePath:     args[0],
				CandidatesPath: candidatesPath,
				OutDir:         outDir,
				PrivateKey:     key,
				Namespace:      config.StringOr(namespace, config.StringOr(cfg.Namespace, "generic/import")),
				PublisherID:    config.StringOr(publisherID, config.StringOr(cfg.PublisherID, "@cli_builder")),
				PublisherName:  config.StringOr(publisherName, config.StringOr(cfg.PublisherName, "AXM CLI Builder")),
				CreatedAt:      createdAt,
				Title:          title,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "built %s: %d entities, %d claims, merkle_root=%s\n",
				result.ShardID, result.Entities, result.Claims, result.MerkleRoot)
			return nil
		},
	}

	cmd.Flags().StringVar(&candidatesPath, "candidates", "", "path to newline-delimited JSON candidate claims (required)")
	cmd.Flags().StringVar(&outDir, "out", "", "output shard directory (required)")
	cmd.Flags().StringVar(&keyHex, "key", "", "64-character hex Ed25519 seed (falls back to AXM_PRIVATE_KEY)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "entity/claim namespace (default generic/import)")
	cmd.Flags().StringVar(&publisherID, "publisher-id", "", "publisher id (default @cli_builder)")
	cmd.Flags().StringVar(&publisherName, "publisher-name", "", "publisher display name (default AXM CLI Builder)")
	cmd.Flags().StringVar(&createdAt, "created-at", "", "ISO-8601 build timestamp (required)")
	cmd.Flags().StringVar(&title, "title", "", "optional human title for manifest metadata")
	_ = cmd.MarkFlagRequired("candidates")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("created-at")

	return cmd
}

func fixtureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fixture <out-dir>",
		Short: "Build the deterministic example shard used by tests and demos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := compiler.BuildFixture(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "built fixture %s: %d entities, %d claims\n", result.ShardID, result.Entities, result.Claims)
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	var trustedKeyPath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an AXM shard against a trusted publisher key",
	}

	shardCmd := &cobra.Command{
		Use:   "shard <path>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := verifier.LoadTrustedKey(trustedKeyPath)
			if err != nil {
				return err
			}

			report := verifier.Verify(args[0], key)

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(out))

			if report.Status != schema.StatusPass {
				os.Exit(1)
			}
			return nil
		},
	}
	shardCmd.Flags().StringVar(&trustedKeyPath, "trusted-key", "", "path to the 32-byte trusted publisher public key (required)")
	_ = shardCmd.MarkFlagRequired("trusted-key")

	cmd.AddCommand(shardCmd)
	return cmd
}

func resolvePrivateKey(keyHex string) ([]byte, error) {
	if keyHex == "" {
		keyHex = os.Getenv("AXM_PRIVATE_KEY")
	}
	if keyHex == "" {
		return nil, fmt.Errorf("no private key supplied: set --key or AXM_PRIVATE_KEY")
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid --key/AXM_PRIVATE_KEY hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("private key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
