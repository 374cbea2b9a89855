package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/pipelinekit/internal/config"
	"github.com/imamik/pipelinekit/internal/config/wizard"
	"github.com/imamik/pipelinekit/internal/provisioning/organization"
)

// Factory function variables for init - can be replaced in tests.
var (
	fileExists       = wizard.FileExists
	confirmOverwrite = wizard.ConfirmOverwrite
	runWizard        = wizard.RunWizard
	writeConfig      = wizard.WriteConfig
)

// Init runs the configuration wizard and writes the result to outputPath.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		ok, err := confirmOverwrite(outputPath)
		if err != nil {
			return fmt.Errorf("failed to confirm overwrite: %w", err)
		}
		if !ok {
			fmt.Fprintln(stdout, "Aborted, existing configuration kept.")
			return nil
		}
	}

	printWelcome()

	result, err := runWizard(ctx, organization.ValidateName)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := wizard.BuildConfig(result)
	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

func printWelcome() {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "pipelinekit - CI/CD pipelines for your repository")
	fmt.Fprintln(stdout, "=================================================")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "This wizard writes the organization, deployment target and")
	fmt.Fprintln(stdout, "pipeline settings used by `pipelinekit configure`.")
	fmt.Fprintln(stdout)
}

func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Configuration saved!")
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "  File: %s\n", outputPath)
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Summary")
	fmt.Fprintln(stdout, "-------")
	fmt.Fprintf(stdout, "  Organization: %s\n", cfg.Organization.Name)
	if cfg.Organization.Create {
		fmt.Fprintf(stdout, "                (created in %s)\n", cfg.Organization.Region)
	}
	if cfg.Project.Name != "" {
		fmt.Fprintf(stdout, "  Project:      %s\n", cfg.Project.Name)
	}
	fmt.Fprintf(stdout, "  Target:       %s\n", cfg.Target.ResourceName)
	fmt.Fprintf(stdout, "  Strategy:     %s\n", cfg.Pipeline.Strategy)
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Next steps")
	fmt.Fprintln(stdout, "----------")
	fmt.Fprintf(stdout, "  export %s=<personal access token>\n", envToken)
	fmt.Fprintf(stdout, "  pipelinekit configure --config %s\n", outputPath)
	fmt.Fprintln(stdout)
}
