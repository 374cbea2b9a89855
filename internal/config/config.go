package config

import (
	"github.com/imamik/pipelinekit/internal/domain"
)

// Pipeline creation strategies.
const (
	StrategyDefinition = "definition"
	StrategyAggregated = "aggregated"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultRegion       = "CUS"
	DefaultQueueID      = 539
	DefaultQueueName    = "Hosted Ubuntu 1604"
	DefaultYAMLPath     = "azure-pipelines.yml"
	DefaultConfigFile   = "pipelinekit.yaml"
	DefaultGitHubAPIURL = "https://api.github.com"
)

// Config is everything one provisioning run needs besides credentials.
type Config struct {
	Organization     OrganizationConfig     `yaml:"organization"`
	Project          ProjectConfig          `yaml:"project"`
	Repository       RepositoryConfig       `yaml:"repository"`
	Target           TargetConfig           `yaml:"target"`
	ServicePrincipal ServicePrincipalConfig `yaml:"servicePrincipal"`
	SourceConnection SourceConnectionConfig `yaml:"sourceConnection"`
	Pipeline         PipelineConfig         `yaml:"pipeline"`
	Endpoints        EndpointsConfig        `yaml:"endpoints"`
}

// OrganizationConfig selects or creates the organization.
type OrganizationConfig struct {
	Name   string `yaml:"name"`
	Create bool   `yaml:"create"`
	Region string `yaml:"region"`
	// User seeds the generated organization name when Name is empty.
	User string `yaml:"user"`
}

type ProjectConfig struct {
	Name string `yaml:"name"`
}

// RepositoryConfig overrides what the local Git collaborator reports.
type RepositoryConfig struct {
	RemoteURL string `yaml:"remoteUrl"`
	Branch    string `yaml:"branch"`
	CommitID  string `yaml:"commitId"`
}

// TargetConfig is the cloud resource the pipeline deploys to.
type TargetConfig struct {
	ResourceName     string `yaml:"resourceName"`
	ResourceID       string `yaml:"resourceId"`
	SubscriptionID   string `yaml:"subscriptionId"`
	SubscriptionName string `yaml:"subscriptionName"`
	TenantID         string `yaml:"tenantId"`
}

// Resource converts the target section into the domain value.
func (t TargetConfig) Resource() domain.TargetResource {
	return domain.TargetResource{
		Name:             t.ResourceName,
		ID:               t.ResourceID,
		SubscriptionID:   t.SubscriptionID,
		SubscriptionName: t.SubscriptionName,
		TenantID:         t.TenantID,
	}
}

// ServicePrincipalConfig holds existing credentials. When ClientID is empty
// and Create is set, a new principal is created for the run.
type ServicePrincipalConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	ObjectID     string `yaml:"objectId"`
	Create       bool   `yaml:"create"`
}

// Configured reports whether existing credentials were supplied.
func (s ServicePrincipalConfig) Configured() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// SourceConnectionConfig names an existing GitHub connection to reuse.
type SourceConnectionConfig struct {
	Name string `yaml:"name"`
}

type PipelineConfig struct {
	YAMLPath  string `yaml:"yamlPath"`
	Strategy  string `yaml:"strategy"`
	QueueID   int    `yaml:"queueId"`
	QueueName string `yaml:"queueName"`
}

// EndpointsConfig overrides service base URLs. Empty values keep the
// production defaults.
type EndpointsConfig struct {
	Accounts             string `yaml:"accounts"`
	Acquisition          string `yaml:"acquisition"`
	OrganizationTemplate string `yaml:"organizationTemplate"`
	GitHubAPI            string `yaml:"gitHubApi"`
	Graph                string `yaml:"graph"`
	Management           string `yaml:"management"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.Organization.Region == "" {
		c.Organization.Region = DefaultRegion
	}
	if c.Pipeline.Strategy == "" {
		c.Pipeline.Strategy = StrategyDefinition
	}
	if c.Pipeline.QueueID == 0 {
		c.Pipeline.QueueID = DefaultQueueID
	}
	if c.Pipeline.QueueName == "" {
		c.Pipeline.QueueName = DefaultQueueName
	}
	if c.Pipeline.YAMLPath == "" {
		c.Pipeline.YAMLPath = DefaultYAMLPath
	}
	if c.Endpoints.GitHubAPI == "" {
		c.Endpoints.GitHubAPI = DefaultGitHubAPIURL
	}
}
