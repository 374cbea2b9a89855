package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/pipelinekit/cmd/pipelinekit/handlers"
)

// Init returns the command for interactively creating a configuration file.
//
// Flags:
//
//	--output, -o: Path to output file (default "pipelinekit.yaml")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a pipelinekit configuration",
		Long: `Interactively create a pipelinekit configuration file.

This command asks about:

  - The organization (existing or new) and project
  - The deployment target and its tenant
  - The service principal (existing or created per run)
  - The pipeline strategy and YAML file path

Secrets are never written to the file. Provide them through the
environment when running 'pipelinekit configure'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "pipelinekit.yaml", "Output file path")

	return cmd
}
