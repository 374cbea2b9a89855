package wizard

import (
	"strings"

	"github.com/imamik/pipelinekit/internal/config"
)

// BuildConfig creates a Config struct from the wizard result.
func BuildConfig(result *WizardResult) *config.Config {
	cfg := &config.Config{
		Organization: config.OrganizationConfig{
			Name:   strings.TrimSpace(result.OrganizationName),
			Create: result.CreateOrganization,
			Region: result.Region,
		},
		Project: config.ProjectConfig{
			Name: strings.TrimSpace(result.ProjectName),
		},
		Target: config.TargetConfig{
			ResourceName:     strings.TrimSpace(result.TargetResourceName),
			ResourceID:       strings.TrimSpace(result.TargetResourceID),
			SubscriptionName: strings.TrimSpace(result.SubscriptionName),
			TenantID:         strings.TrimSpace(result.TenantID),
		},
		Pipeline: config.PipelineConfig{
			Strategy: result.Strategy,
			YAMLPath: strings.TrimSpace(result.YAMLPath),
		},
	}

	cfg.Target.SubscriptionID = subscriptionFromResourceID(cfg.Target.ResourceID)

	if result.CreateServicePrincipal || result.ClientID == "" {
		cfg.ServicePrincipal.Create = true
	} else {
		cfg.ServicePrincipal.ClientID = strings.TrimSpace(result.ClientID)
	}

	cfg.ApplyDefaults()
	return cfg
}

func subscriptionFromResourceID(id string) string {
	parts := strings.Split(strings.Trim(id, "/"), "/")
	if len(parts) >= 2 && strings.EqualFold(parts[0], "subscriptions") {
		return parts[1]
	}
	return ""
}
