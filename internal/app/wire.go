package app

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"secure-session/internal/directory"
	"secure-session/internal/store"
)

// Wire holds the constructed dependencies a command needs to build a
// session.Context: a logger, the identity keystore, and the peer
// directory.
type Wire struct {
	Config    Config
	Log       *zap.Logger
	Identity  *store.IdentityStore
	Directory *directory.FileDirectory
}

// NewWire constructs a Wire from cfg, creating HomeDir if it doesn't
// exist yet. The directory file is optional: a command that only needs
// the identity keystore (e.g. "identity generate") may see Directory be
// nil if no directory.json exists yet.
func NewWire(cfg Config) (*Wire, error) {
	log, err := cfg.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("app: build logger: %w", err)
	}

	if err := os.MkdirAll(cfg.HomeDir, 0o700); err != nil {
		return nil, fmt.Errorf("app: create home dir: %w", err)
	}

	w := &Wire{
		Config:   cfg,
		Log:      log,
		Identity: store.NewIdentityStore(cfg.IdentityPath()),
	}

	if _, err := os.Stat(cfg.DirectoryPath()); err == nil {
		dir, err := directory.LoadFileDirectory(cfg.DirectoryPath())
		if err != nil {
			return nil, fmt.Errorf("app: load directory: %w", err)
		}
		w.Directory = dir
	}

	return w, nil
}
