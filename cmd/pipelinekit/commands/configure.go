package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/pipelinekit/cmd/pipelinekit/handlers"
)

// Configure returns the command that provisions a pipeline for a repository.
//
// Flags override values from the configuration file.
//
// Environment variables:
//
//	PIPELINEKIT_TOKEN: control plane access token (required)
//	PIPELINEKIT_GITHUB_PAT: GitHub token for GitHub repositories (prompted when unset)
//	PIPELINEKIT_GRAPH_TOKEN, PIPELINEKIT_MANAGEMENT_TOKEN: needed to create a service principal
//	PIPELINEKIT_SP_CLIENT_SECRET: secret of an existing service principal
func Configure() *cobra.Command {
	var opts handlers.ConfigureOptions

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Create a pipeline for the current repository and run it",
		Long: `Create a pipeline for the current repository and queue its first run.

The command resolves or creates the organization and project, connects
GitHub (for GitHub repositories) and the cloud subscription, then creates
the pipeline and prints the link to its first run.

Resources created before a failure are not removed. Re-running reuses the
organization and project.

If no config file is specified, it looks for pipelinekit.yaml in the current
directory. Use 'pipelinekit init' to create one.

Examples:
  # Use pipelinekit.yaml and the origin remote of the working tree
  pipelinekit configure

  # Create a new organization and use the single-call strategy
  pipelinekit configure --create-organization --organization my-org --strategy aggregated

  # Provision for a remote without a local clone
  pipelinekit configure --remote https://github.com/acme/widget.git --branch main`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Configure(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: pipelinekit.yaml)")
	f.StringVarP(&opts.Organization, "organization", "o", "", "Organization name")
	f.BoolVar(&opts.CreateOrganization, "create-organization", false, "Create the organization instead of using an existing one")
	f.StringVarP(&opts.Project, "project", "p", "", "Project name (default: derived from the repository)")
	f.StringVar(&opts.RemoteURL, "remote", "", "Git remote URL (default: origin of the working tree)")
	f.StringVar(&opts.Branch, "branch", "", "Branch to run (default: current branch)")
	f.StringVar(&opts.Strategy, "strategy", "", "Pipeline creation strategy: definition or aggregated")
	f.StringVar(&opts.ResourceName, "resource-name", "", "Name of the deployment target")
	f.StringVar(&opts.ResourceID, "resource-id", "", "Resource id of the deployment target")
	f.StringVar(&opts.TenantID, "tenant-id", "", "Directory tenant of the subscription")
	f.StringVar(&opts.MetricsFile, "metrics-file", "", "Write control plane call metrics to this file")

	return cmd
}
