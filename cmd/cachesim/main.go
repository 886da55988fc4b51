// Package main provides the cachesim CLI tool for replaying memory-access
// traces against a set-associative LRU cache.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
