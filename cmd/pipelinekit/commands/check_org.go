package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/pipelinekit/cmd/pipelinekit/handlers"
)

// CheckOrg returns the command that validates an organization name.
func CheckOrg() *cobra.Command {
	return &cobra.Command{
		Use:   "check-org <name>",
		Short: "Check whether an organization name can be created",
		Long: `Check an organization name against the naming rules and, when
PIPELINEKIT_TOKEN is set, against the names already taken.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.CheckOrg(cmd.Context(), args[0])
		},
	}
}
