package testing

import (
	"github.com/imamik/pipelinekit/internal/config"
)

// Values used by the default test configuration.
const (
	TestOrganization     = "contoso"
	TestRemoteURL        = "https://github.com/acme/widget.git"
	TestBranch           = "main"
	TestCommit           = "0f1e2d3c"
	TestResourceName     = "webapp"
	TestResourceID       = "/subscriptions/sub-1/resourceGroups/rg-web/providers/Microsoft.Web/sites/webapp"
	TestSubscriptionID   = "sub-1"
	TestSubscriptionName = "Pay-As-You-Go"
	TestTenantID         = "tenant-1"
	TestClientID         = "client-1"
	TestClientSecret     = "secret-1"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a ConfigBuilder for an existing organization, a
// GitHub repository and existing service principal credentials.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			Organization: config.OrganizationConfig{Name: TestOrganization},
			Repository: config.RepositoryConfig{
				RemoteURL: TestRemoteURL,
				Branch:    TestBranch,
				CommitID:  TestCommit,
			},
			Target: config.TargetConfig{
				ResourceName:     TestResourceName,
				ResourceID:       TestResourceID,
				SubscriptionID:   TestSubscriptionID,
				SubscriptionName: TestSubscriptionName,
				TenantID:         TestTenantID,
			},
			ServicePrincipal: config.ServicePrincipalConfig{
				ClientID:     TestClientID,
				ClientSecret: TestClientSecret,
			},
		},
	}
}

// WithOrganization selects an existing organization.
func (b *ConfigBuilder) WithOrganization(name string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Organization.Name = name
	nb.cfg.Organization.Create = false
	return nb
}

// WithNewOrganization asks for an organization to be created. An empty name
// with a user generates one.
func (b *ConfigBuilder) WithNewOrganization(name, user string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Organization.Name = name
	nb.cfg.Organization.User = user
	nb.cfg.Organization.Create = true
	return nb
}

func (b *ConfigBuilder) WithProject(name string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Project.Name = name
	return nb
}

// WithRemote sets the repository remote URL.
func (b *ConfigBuilder) WithRemote(remoteURL string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Repository.RemoteURL = remoteURL
	return nb
}

// WithStrategy selects the pipeline creation strategy.
func (b *ConfigBuilder) WithStrategy(strategy string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Pipeline.Strategy = strategy
	return nb
}

// WithCreatedServicePrincipal drops the configured credentials so the run
// creates a principal.
func (b *ConfigBuilder) WithCreatedServicePrincipal() *ConfigBuilder {
	nb := b.clone()
	nb.cfg.ServicePrincipal = config.ServicePrincipalConfig{Create: true}
	return nb
}

// WithSourceConnection names a GitHub connection to reuse.
func (b *ConfigBuilder) WithSourceConnection(name string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.SourceConnection.Name = name
	return nb
}

// Build returns the constructed config with defaults applied.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.cfg
	cfg.ApplyDefaults()
	return &cfg
}

// config.Config holds no slices or maps, so a value copy is deep.
func (b *ConfigBuilder) clone() *ConfigBuilder {
	return &ConfigBuilder{cfg: b.cfg}
}
