package main

import (
	"os"

	"github.com/posrecon-dev/posrecon/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
