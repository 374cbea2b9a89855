package wizard

import (
	"context"
	"fmt"
)

// WizardResult holds all the answers from the interactive wizard.
type WizardResult struct {
	// Organization
	OrganizationName   string
	CreateOrganization bool
	Region             string
	ProjectName        string

	// Deployment target
	TargetResourceName string
	TargetResourceID   string
	TenantID           string
	SubscriptionName   string

	// Service principal (ClientID empty means create one)
	CreateServicePrincipal bool
	ClientID               string

	// Pipeline
	Strategy string
	YAMLPath string
}

// RunWizard runs the interactive configuration wizard. validateOrganization
// checks a typed organization name before the form accepts it.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context, validateOrganization func(string) error) (*WizardResult, error) {
	result := &WizardResult{}

	if err := runOrganizationGroup(ctx, result, validateOrganization); err != nil {
		return nil, fmt.Errorf("organization: %w", err)
	}

	if err := runTargetGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	if err := runServicePrincipalGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("service principal: %w", err)
	}

	if err := runPipelineGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	return result, nil
}
