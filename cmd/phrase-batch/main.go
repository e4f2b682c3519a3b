package main

import (
	"os"

	"github.com/phrase-tools/phrase-batch/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
