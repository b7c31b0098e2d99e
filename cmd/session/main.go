package main

import (
	"os"

	"secure-session/cmd/session/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
