// Package domain holds the entities shared by the provisioning workflow and
// the error taxonomy every layer reports through.
package domain

import "strings"

// ProviderKind identifies where a repository is hosted and therefore which
// connection and payload branch is taken downstream.
type ProviderKind int

const (
	// ProviderAzureRepos is a repository hosted by the CI control plane itself.
	ProviderAzureRepos ProviderKind = iota + 1
	// ProviderGitHub is a repository hosted on GitHub.
	ProviderGitHub
)

// String returns the repository type string the control plane expects.
func (k ProviderKind) String() string {
	switch k {
	case ProviderAzureRepos:
		return "tfsgit"
	case ProviderGitHub:
		return "github"
	default:
		return "unknown"
	}
}

// ConnectionKind identifies the external system a service connection trusts.
type ConnectionKind int

const (
	// ConnectionSourceControl trusts a source host (GitHub) via a personal access token.
	ConnectionSourceControl ConnectionKind = iota + 1
	// ConnectionCloudSubscription trusts a cloud subscription via a service principal.
	ConnectionCloudSubscription
)

// EndpointType returns the service endpoint type string for the kind.
func (k ConnectionKind) EndpointType() string {
	switch k {
	case ConnectionSourceControl:
		return "github"
	case ConnectionCloudSubscription:
		return "azurerm"
	default:
		return "unknown"
	}
}

func (k ConnectionKind) String() string {
	switch k {
	case ConnectionSourceControl:
		return "source-control"
	case ConnectionCloudSubscription:
		return "cloud-subscription"
	default:
		return "unknown"
	}
}

// ConnectionState is the readiness of a service connection.
type ConnectionState int

const (
	ConnectionPending ConnectionState = iota
	ConnectionReady
	ConnectionFailed
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionReady:
		return "Ready"
	case ConnectionFailed:
		return "Failed"
	default:
		return "Pending"
	}
}

// Organization is a top-level tenant of the CI control plane.
// Identity is the name, compared case-insensitively.
type Organization struct {
	ID         string
	Name       string
	BaseURL    string
	Properties map[string]string
}

// Matches reports whether name identifies this organization.
func (o Organization) Matches(name string) bool {
	return strings.EqualFold(o.Name, name)
}

// Project is a workspace inside one organization.
type Project struct {
	ID   string
	Name string
}

// ServiceConnection is a stored credential binding the control plane to an
// external system.
type ServiceConnection struct {
	ID                        string
	Name                      string
	Kind                      ConnectionKind
	State                     ConnectionState
	AuthorizedForAllPipelines bool
}

// GitDetails is what the local Git collaborator reports for the working tree.
type GitDetails struct {
	RemoteURL string
	Branch    string
	CommitID  string
}

// RepositoryDescriptor is derived once from a Git remote URL. Provider never
// changes after the first resolution.
type RepositoryDescriptor struct {
	Provider            ProviderKind
	RemoteURL           string
	OrganizationName    string
	ProjectName         string
	RepositoryID        string
	RepositoryName      string
	Branch              string
	CommitID            string
	ServiceConnectionID string
}

// RenderedTemplate is the pipeline file produced by the template collaborator.
// Path is relative to the repository root.
type RenderedTemplate struct {
	Content string
	Path    string
}

// TargetResource is the cloud deployment target the pipeline deploys to.
type TargetResource struct {
	Name             string
	ID               string
	SubscriptionID   string
	SubscriptionName string
	TenantID         string
}

// ServicePrincipal is the identity a cloud subscription connection uses.
type ServicePrincipal struct {
	ClientID string
	Secret   string
	ObjectID string
}

// PipelineDefinition is a stored build configuration bound to a repository.
type PipelineDefinition struct {
	ID         int
	Name       string
	ProjectID  string
	Repository RepositoryDescriptor
	YAMLPath   string
	QueueID    int
}

// PipelineRun is one triggered execution of a definition.
type PipelineRun struct {
	DefinitionID int
	ProjectID    string
	SourceBranch string
	SourceCommit string
	WebURL       string
}
