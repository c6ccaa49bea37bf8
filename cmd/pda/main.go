// Package main implements the pda binary. It is the only public-facing
// entry point, since the Go packages are all internal.
package main

import "github.com/ikmich/package-deps-admin/internal/cli"

func main() {
	cli.DoCLI()
}
