package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/pipelinekit/cmd/pipelinekit/handlers"
)

// ParseRemote returns the command that shows how a remote URL is classified.
func ParseRemote() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-remote <url>",
		Short: "Show the provider and identifiers of a Git remote URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return handlers.ParseRemote(args[0])
		},
	}
}
