// Package main is the entry point for the pipelinekit CLI.
//
// pipelinekit wires a Git repository to a hosted CI service: it resolves or
// creates the organization and project, connects GitHub and the cloud
// subscription, then creates a pipeline and queues its first run.
//
// Commands: configure, init, check-org, parse-remote, version, completion.
//
// For detailed usage information, run:
//
//	pipelinekit --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/pipelinekit/cmd/pipelinekit/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
