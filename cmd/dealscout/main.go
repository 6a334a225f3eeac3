// Package main is the entry point for dealscout.
package main

import (
	"os"

	"github.com/resaleops/dealscout/cmd/dealscout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
