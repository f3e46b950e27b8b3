// Package main is the entry point for the lensboard CLI.
package main

import (
	"os"

	"github.com/lensboard/lensboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
