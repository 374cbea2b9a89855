package config

import (
	"errors"
	"fmt"
)

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Organization.Name == "" && !c.Organization.Create {
		errs = append(errs, errors.New("organization.name is required unless organization.create is set"))
	}

	if c.Target.ResourceName == "" {
		errs = append(errs, errors.New("target.resourceName is required"))
	}
	if c.Target.ResourceID == "" {
		errs = append(errs, errors.New("target.resourceId is required"))
	}
	if c.Target.TenantID == "" {
		errs = append(errs, errors.New("target.tenantId is required"))
	}

	sp := c.ServicePrincipal
	if !sp.Configured() && !sp.Create {
		errs = append(errs, errors.New("servicePrincipal.clientId and clientSecret are required unless servicePrincipal.create is set"))
	}
	if sp.ClientID != "" && sp.ClientSecret == "" {
		errs = append(errs, errors.New("servicePrincipal.clientSecret is required when clientId is set"))
	}

	switch c.Pipeline.Strategy {
	case StrategyDefinition, StrategyAggregated:
	default:
		errs = append(errs, fmt.Errorf("pipeline.strategy %q is invalid (expected %s or %s)",
			c.Pipeline.Strategy, StrategyDefinition, StrategyAggregated))
	}
	if c.Pipeline.QueueID < 0 {
		errs = append(errs, fmt.Errorf("pipeline.queueId must not be negative, got %d", c.Pipeline.QueueID))
	}

	return errors.Join(errs...)
}
