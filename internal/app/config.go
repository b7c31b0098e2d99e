// Package app wires together the pieces cmd/session drives: a logger,
// the on-disk identity keystore, the identity directory, and the
// long-lived values a CLI command needs to build a session.Context.
package app

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Config holds the process-wide settings a command needs before it can
// build a Wire.
type Config struct {
	// HomeDir is the directory holding the identity keystore and
	// directory file. Defaults to "$HOME/.secure-session".
	HomeDir string
	// ListenAddr is the TCP address the listen command binds.
	ListenAddr string
	// Verbose enables debug-level logging.
	Verbose bool
}

// DefaultConfig returns a Config with HomeDir resolved under the user's
// home directory.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		HomeDir:    filepath.Join(home, ".secure-session"),
		ListenAddr: "127.0.0.1:4433",
	}, nil
}

// IdentityPath is the keystore file path under HomeDir.
func (c Config) IdentityPath() string { return filepath.Join(c.HomeDir, "identity.json") }

// DirectoryPath is the peer directory file path under HomeDir.
func (c Config) DirectoryPath() string { return filepath.Join(c.HomeDir, "directory.json") }

// NewLogger builds the process's zap logger per Verbose.
func (c Config) NewLogger() (*zap.Logger, error) {
	if c.Verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
