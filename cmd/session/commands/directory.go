package commands

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"secure-session/internal/app"
	sscrypto "secure-session/internal/crypto"
	"secure-session/internal/directory"
)

func newDirectoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Manage the local id-to-public-key directory used for get_public_key_for_id lookups",
	}
	cmd.AddCommand(newDirectoryAddCommand())
	return cmd
}

func newDirectoryAddCommand() *cobra.Command {
	var id, pemFile string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a peer's PEM-encoded public key under an id",
		RunE: func(cmd *cobra.Command, args []string) error {
			pemBytes, err := os.ReadFile(pemFile)
			if err != nil {
				return fmt.Errorf("read pem file: %w", err)
			}
			block, _ := pem.Decode(pemBytes)
			if block == nil {
				return fmt.Errorf("no PEM block found in %s", pemFile)
			}
			key, err := x509.ParsePKIXPublicKey(block.Bytes)
			if err != nil {
				return fmt.Errorf("parse public key: %w", err)
			}
			pub, ok := key.(*ecdsa.PublicKey)
			if !ok {
				return fmt.Errorf("%s does not hold an ECDSA public key", pemFile)
			}

			w, err := app.NewWire(cfg)
			if err != nil {
				return err
			}
			defer w.Log.Sync()

			entries := map[string]*ecdsa.PublicKey{id: pub}
			if err := mergeDirectoryEntry(w.Config.DirectoryPath(), entries); err != nil {
				return err
			}
			fp := sscrypto.Fingerprint(sscrypto.EncodeSigningPublic(pub))
			fmt.Printf("registered %q in %s\nfingerprint: %s\n", id, w.Config.DirectoryPath(), fp)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "peer id")
	cmd.Flags().StringVar(&pemFile, "pem-file", "", "path to the peer's PEM-encoded public key")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("pem-file")
	return cmd
}

// mergeDirectoryEntry adds entries to the directory file at path,
// preserving whatever is already there.
func mergeDirectoryEntry(path string, entries map[string]*ecdsa.PublicKey) error {
	if _, err := os.Stat(path); err == nil {
		existing, err := directory.LoadFileDirectory(path)
		if err != nil {
			return fmt.Errorf("load existing directory: %w", err)
		}
		for id, pub := range existing.All() {
			if _, ok := entries[id]; !ok {
				entries[id] = pub
			}
		}
	}
	return directory.WriteFileDirectory(path, entries)
}
