// Package main provides the CLI for the metacatalog insurance data catalog.
package main

import (
	"os"

	"github.com/leapstack-labs/metacatalog/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
