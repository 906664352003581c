package main

import (
	"os"

	"github.com/gauravnainwal518/note-app/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
