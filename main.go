// ABOUTME: Entry point for the SalesFlow demo server, relay, MCP server and CLI
// ABOUTME: All routing happens in the cobra command tree
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/salesflow/cli"
)

// Set by ldflags at build time.
var (
	version = "0.1.3"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
