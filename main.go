// Package main is the entry point for the jira-agent CLI application.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/jira-agent/cmd"
	"github.com/danielolaszy/jira-agent/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	logging.Debug("starting jira-agent", "version", version)

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
