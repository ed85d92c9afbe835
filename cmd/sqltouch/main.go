// Package main provides the sqltouch command-line interface.
package main

import (
	"os"

	"github.com/touchset-labs/sqltouch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
