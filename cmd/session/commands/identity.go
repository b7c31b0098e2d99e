package commands

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"secure-session/internal/app"
	sscrypto "secure-session/internal/crypto"
)

func newIdentityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage the local long-term signing identity",
	}
	cmd.AddCommand(newIdentityGenerateCommand())
	cmd.AddCommand(newIdentityExportCommand())
	return cmd
}

func newIdentityGenerateCommand() *cobra.Command {
	var id, passphrase string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new long-term signing key and store it under a passphrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := app.NewWire(cfg)
			if err != nil {
				return err
			}
			defer w.Log.Sync()

			priv, err := sscrypto.GenerateSigningKey()
			if err != nil {
				return err
			}
			if err := w.Identity.Save(passphrase, id, priv); err != nil {
				return fmt.Errorf("save identity: %w", err)
			}
			fp := sscrypto.Fingerprint(sscrypto.EncodeSigningPublic(&priv.PublicKey))
			w.Log.Info("generated identity", zap.String("id", id), zap.String("fingerprint", fp))
			fmt.Printf("generated identity %q at %s\nfingerprint: %s\n", id, w.Config.IdentityPath(), fp)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "identity id")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "passphrase protecting the keystore")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("passphrase")
	return cmd
}

func newIdentityExportCommand() *cobra.Command {
	var passphrase string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the local identity's PEM-encoded public key, for sharing with a peer",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := app.NewWire(cfg)
			if err != nil {
				return err
			}
			defer w.Log.Sync()

			id, priv, err := w.Identity.Load(passphrase)
			if err != nil {
				return err
			}
			der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
			if err != nil {
				return fmt.Errorf("marshal public key: %w", err)
			}
			fp := sscrypto.Fingerprint(sscrypto.EncodeSigningPublic(&priv.PublicKey))
			fmt.Printf("id: %s\nfingerprint: %s\n%s", id, fp, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
			return nil
		},
	}
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "passphrase protecting the keystore")
	cmd.MarkFlagRequired("passphrase")
	return cmd
}
