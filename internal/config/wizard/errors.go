package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errOrganizationRequired = errors.New("organization name is required")
	errResourceNameRequired = errors.New("target resource name is required")
	errResourceIDInvalid    = errors.New("resource id must start with /subscriptions/")
	errTenantRequired       = errors.New("tenant id is required")
	errClientIDRequired     = errors.New("client id is required when using an existing service principal")
	errTokenRequired        = errors.New("a personal access token is required")
	errYAMLPathInvalid      = errors.New("pipeline file must be a relative .yml or .yaml path")
)
