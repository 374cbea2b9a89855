package wizard

import (
	"context"
	"path"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/imamik/pipelinekit/internal/config"
)

// runOrganizationGroup prompts for the organization and project.
func runOrganizationGroup(ctx context.Context, result *WizardResult, validate func(string) error) error {
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Create a new organization?").
				Value(&result.CreateOrganization),
		).Title("Organization"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	nameInput := huh.NewInput().
		Title("Organization Name").
		Value(&result.OrganizationName)
	if result.CreateOrganization {
		result.Region = config.DefaultRegion
		nameInput = nameInput.
			Description("Leave empty to generate one from your user name and the repository").
			Validate(optional(validate))
	} else {
		nameInput = nameInput.
			Description("An organization you are a member of").
			Validate(required(validate))
	}

	fields := []huh.Field{
		nameInput,
		huh.NewInput().
			Title("Project Name (Optional)").
			Description("Defaults to the project in the repository URL or AzurePipelines-<repo>").
			Value(&result.ProjectName),
	}
	if result.CreateOrganization {
		fields = append(fields, huh.NewSelect[string]().
			Title("Region").
			Options(RegionsToOptions()...).
			Value(&result.Region))
	}

	return huh.NewForm(huh.NewGroup(fields...).Title("Organization")).RunWithContext(ctx)
}

// runTargetGroup prompts for the deployment target.
func runTargetGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Target Resource Name").
				Placeholder("webapp01").
				Value(&result.TargetResourceName).
				Validate(validateRequired(errResourceNameRequired)),
			huh.NewInput().
				Title("Target Resource ID").
				Placeholder("/subscriptions/<sub>/resourceGroups/<rg>/providers/Microsoft.Web/sites/webapp01").
				Value(&result.TargetResourceID).
				Validate(validateResourceID),
			huh.NewInput().
				Title("Subscription Name (Optional)").
				Value(&result.SubscriptionName),
			huh.NewInput().
				Title("Tenant ID").
				Value(&result.TenantID).
				Validate(validateRequired(errTenantRequired)),
		).Title("Deployment Target"),
	).RunWithContext(ctx)
}

// runServicePrincipalGroup asks whether to create a principal or reuse one.
func runServicePrincipalGroup(ctx context.Context, result *WizardResult) error {
	result.CreateServicePrincipal = true
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Create a service principal for the deployment connection?").
				Description("Choose no to use an existing principal; its secret is read from PIPELINEKIT_SP_CLIENT_SECRET").
				Value(&result.CreateServicePrincipal),
		).Title("Service Principal"),
	).RunWithContext(ctx)
	if err != nil || result.CreateServicePrincipal {
		return err
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Client ID").
				Value(&result.ClientID).
				Validate(validateRequired(errClientIDRequired)),
		).Title("Service Principal"),
	).RunWithContext(ctx)
}

// runPipelineGroup prompts for the pipeline backend and file.
func runPipelineGroup(ctx context.Context, result *WizardResult) error {
	result.Strategy = config.StrategyDefinition
	result.YAMLPath = config.DefaultYAMLPath

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Pipeline Creation").
				Options(StrategiesToOptions()...).
				Value(&result.Strategy),
			huh.NewInput().
				Title("Pipeline File").
				Description("Path of the pipeline YAML relative to the repository root").
				Value(&result.YAMLPath).
				Validate(validateYAMLPath),
		).Title("Pipeline"),
	).RunWithContext(ctx)
}

func optional(validate func(string) error) func(string) error {
	return func(s string) error {
		if s == "" || validate == nil {
			return nil
		}
		return validate(s)
	}
}

func required(validate func(string) error) func(string) error {
	return func(s string) error {
		if s == "" {
			return errOrganizationRequired
		}
		if validate == nil {
			return nil
		}
		return validate(s)
	}
}

func validateRequired(errEmpty error) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errEmpty
		}
		return nil
	}
}

func validateResourceID(s string) error {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "/subscriptions/") {
		return errResourceIDInvalid
	}
	return nil
}

func validateYAMLPath(s string) error {
	s = strings.TrimSpace(s)
	ext := strings.ToLower(path.Ext(s))
	if s == "" || strings.HasPrefix(s, "/") || strings.HasPrefix(path.Clean(s), "..") || (ext != ".yml" && ext != ".yaml") {
		return errYAMLPathInvalid
	}
	return nil
}
