// Package main is the entry point for the storefront server.
package main

import (
	"fmt"
	"os"

	"github.com/pupped/storefront/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
