// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/imamik/pipelinekit/cmd/pipelinekit/handlers"
)

// Root returns the root command for the pipelinekit CLI.
//
// The root command builds the logger every subcommand finds on its context.
func Root() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "pipelinekit",
		Short:         "Set up CI/CD pipelines for a Git repository",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := handlers.NewLogger(verbose)
			if err != nil {
				return err
			}
			cmd.SetContext(logr.NewContext(cmd.Context(), logger))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every control plane request")

	cmd.AddCommand(Configure())
	cmd.AddCommand(Init())
	cmd.AddCommand(CheckOrg())
	cmd.AddCommand(ParseRemote())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
