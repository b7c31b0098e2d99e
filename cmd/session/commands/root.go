// Package commands implements the session CLI's cobra subcommands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"secure-session/internal/app"
)

var cfg app.Config

// NewRootCommand builds the session CLI's root command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "session",
		Short: "Mutually-authenticated handshake and transport core demo CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			defaultCfg, err := app.DefaultConfig()
			if err != nil {
				return fmt.Errorf("resolve default config: %w", err)
			}
			if cfg.HomeDir == "" {
				cfg.HomeDir = defaultCfg.HomeDir
			}
			if cfg.ListenAddr == "" {
				cfg.ListenAddr = defaultCfg.ListenAddr
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfg.HomeDir, "home", "", "directory holding the identity keystore and peer directory (default $HOME/.secure-session)")
	root.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newIdentityCommand())
	root.AddCommand(newDirectoryCommand())
	root.AddCommand(newListenCommand())
	root.AddCommand(newConnectCommand())

	return root
}
