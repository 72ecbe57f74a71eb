package main

import (
	"os"

	"github.com/flav-dev/flav/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
