// Package main is the single-binary entrypoint for Nutrio.
package main

import "github.com/nutrio/nutrio/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
