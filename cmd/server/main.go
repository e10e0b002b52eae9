// Package main is the entry point for the hanzi server and CLI.
package main

import (
	"os"

	"hanzi_backend/cmd/server/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
