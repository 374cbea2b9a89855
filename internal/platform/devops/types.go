package devops

import "encoding/json"

// ServiceURLProperty is the organization property holding its base service URL.
const ServiceURLProperty = "Microsoft.VisualStudio.Services.Account.ServiceUrl.00025394-6065-48ca-87d9-7f5672854ef7"

// Fixed identifiers the control plane expects verbatim.
const (
	AgileProcessTemplateID      = "adcc42ab-9882-485e-a3ed-7678f01f66bc"
	CreateAndRunContributionID  = "ms.vss-build-web.create-and-run-pipeline-data-provider"
	DefaultCommitDescriptorName = "Set up CI/CD with Azure Pipelines"
)

// ConnectionData is the identity behind the current credential.
type ConnectionData struct {
	AuthenticatedUser Identity `json:"authenticatedUser"`
}

type Identity struct {
	ID                  string `json:"id"`
	ProviderDisplayName string `json:"providerDisplayName"`
}

// Account is one organization as returned by the accounts listing.
type Account struct {
	AccountID   string                     `json:"accountId"`
	AccountName string                     `json:"accountName"`
	AccountURI  string                     `json:"accountUri"`
	Properties  map[string]json.RawMessage `json:"properties"`
}

type accountList struct {
	Count int       `json:"count"`
	Value []Account `json:"value"`
}

// PropertyValues flattens {"$type": ..., "$value": ...} property envelopes.
// Properties that are plain strings are kept as-is.
func (a Account) PropertyValues() map[string]string {
	out := make(map[string]string, len(a.Properties))
	for k, raw := range a.Properties {
		var envelope struct {
			Value string `json:"$value"`
		}
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Value != "" {
			out[k] = envelope.Value
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out[k] = s
		}
	}
	return out
}

// NameAvailability answers whether an organization name can be registered.
type NameAvailability struct {
	Name                 string `json:"name"`
	IsAvailable          bool   `json:"isAvailable"`
	UnavailabilityReason string `json:"unavailabilityReason"`
}

// Collection is the host acquisition response for a new organization.
type Collection struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Operation *OperationReference `json:"operation,omitempty"`
}

// OperationReference points at a long-running server-side operation.
type OperationReference struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	URL    string `json:"url"`
	// Message is set instead of URL when the request was rejected outright.
	Message string `json:"message"`
}

// Operation is the polled state of a long-running operation.
type Operation struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	URL             string `json:"url"`
	DetailedMessage string `json:"detailedMessage"`
	ResultMessage   string `json:"resultMessage"`
}

// Operation status values, compared case-insensitively.
const (
	OperationSucceeded = "succeeded"
	OperationFailed    = "failed"
)

type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	State      string `json:"state"`
	Visibility any    `json:"visibility"`
}

type projectList struct {
	Count int       `json:"count"`
	Value []Project `json:"value"`
}

type createProjectRequest struct {
	Name         string              `json:"name"`
	Visibility   int                 `json:"visibility"`
	Capabilities projectCapabilities `json:"capabilities"`
}

type projectCapabilities struct {
	VersionControl  map[string]string `json:"versioncontrol"`
	ProcessTemplate map[string]string `json:"processTemplate"`
}

// Repository is a Git repository hosted by the control plane.
type Repository struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	DefaultBranch string  `json:"defaultBranch"`
	RemoteURL     string  `json:"remoteUrl"`
	Project       Project `json:"project"`
}

// ServiceEndpoint is the wire form of a service connection.
type ServiceEndpoint struct {
	ID              string                   `json:"id,omitempty"`
	Name            string                   `json:"name"`
	Type            string                   `json:"type"`
	URL             string                   `json:"url"`
	Description     string                   `json:"description"`
	Authorization   EndpointAuthorization    `json:"authorization"`
	Data            map[string]string        `json:"data,omitempty"`
	IsReady         bool                     `json:"isReady"`
	OperationStatus *EndpointOperationStatus `json:"operationStatus"`
	AdminGroup      any                      `json:"administratorsGroup"`
	ReadersGroup    any                      `json:"readersGroup"`
	GroupScopeID    any                      `json:"groupScopeId"`
}

type EndpointAuthorization struct {
	Scheme     string            `json:"scheme"`
	Parameters map[string]string `json:"parameters"`
}

// EndpointOperationStatus is reported by connections whose provisioning is
// asynchronous on the server, such as cloud subscription connections.
type EndpointOperationStatus struct {
	State         string `json:"state"`
	StatusMessage string `json:"statusMessage"`
}

type endpointList struct {
	Count int               `json:"count"`
	Value []ServiceEndpoint `json:"value"`
}

// PipelinePermission is the authorization state of a resource for pipelines.
type PipelinePermission struct {
	AllPipelines *PipelineAuthorization `json:"allPipelines"`
	Resource     PermissionResource     `json:"resource"`
	Pipelines    any                    `json:"pipelines"`
}

type PipelineAuthorization struct {
	Authorized   bool `json:"authorized"`
	AuthorizedBy any  `json:"authorizedBy"`
	AuthorizedOn any  `json:"authorizedOn"`
}

type PermissionResource struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Authorized reports whether all pipelines may use the resource.
func (p PipelinePermission) Authorized() bool {
	return p.AllPipelines != nil && p.AllPipelines.Authorized
}

// BuildDefinition is the wire form of a pipeline definition.
type BuildDefinition struct {
	ID         int                  `json:"id,omitempty"`
	Name       string               `json:"name"`
	Type       int                  `json:"type"`
	Quality    int                  `json:"quality"`
	Path       string               `json:"path"`
	Project    ProjectReference     `json:"project"`
	Process    DefinitionProcess    `json:"process"`
	Queue      QueueReference       `json:"queue"`
	Triggers   []DefinitionTrigger  `json:"triggers"`
	Repository DefinitionRepository `json:"repository"`
}

type ProjectReference struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type DefinitionProcess struct {
	Type         int    `json:"type"`
	YAMLFileName string `json:"yamlFileName"`
}

type QueueReference struct {
	ID int `json:"id"`
}

type DefinitionTrigger struct {
	TriggerType        int  `json:"triggerType"`
	SettingsSourceType int  `json:"settingsSourceType"`
	BatchChanges       bool `json:"batchChanges"`
}

type DefinitionRepository struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Type          string                `json:"type"`
	DefaultBranch string                `json:"defaultBranch"`
	URL           string                `json:"url"`
	Properties    *RepositoryProperties `json:"properties"`
}

// RepositoryProperties lets the control plane browse an external repository.
type RepositoryProperties struct {
	APIURL             string `json:"apiUrl"`
	BranchesURL        string `json:"branchesUrl"`
	CloneURL           string `json:"cloneUrl"`
	ConnectedServiceID string `json:"connectedServiceId"`
	DefaultBranch      string `json:"defaultBranch"`
	FullName           string `json:"fullName"`
	RefsURL            string `json:"refsUrl"`
}

// Build definition enum values.
const (
	DefinitionTypeYAML           = 2
	DefinitionQualityDefinition  = 1
	ProcessTypeYAML              = 2
	TriggerContinuousIntegration = 2
	TriggerSettingsFromYAML      = 2
)

// QueueBuildRequest triggers a run of a definition.
type QueueBuildRequest struct {
	Definition    DefinitionReference `json:"definition"`
	Project       ProjectReference    `json:"project"`
	SourceBranch  string              `json:"sourceBranch"`
	SourceVersion string              `json:"sourceVersion"`
}

type DefinitionReference struct {
	ID int `json:"id"`
}

// Build is a queued run.
type Build struct {
	ID          int        `json:"id"`
	BuildNumber string     `json:"buildNumber"`
	Status      string     `json:"status"`
	Links       BuildLinks `json:"_links"`
}

type BuildLinks struct {
	Web Link `json:"web"`
}

type Link struct {
	Href string `json:"href"`
}

// CreateAndRunContext is the data-provider context for the aggregated
// create-and-run call.
type CreateAndRunContext struct {
	ConnectionID         string     `json:"connectionId"`
	SourceProvider       string     `json:"sourceProvider"`
	RepositoryID         string     `json:"repositoryId"`
	RepositoryName       string     `json:"repositoryName"`
	Branch               string     `json:"branch"`
	SourceBranch         string     `json:"sourceBranch"`
	Path                 string     `json:"path"`
	Queue                string     `json:"queue"`
	CommitID             string     `json:"commitId"`
	CommitDescriptorName string     `json:"commitDescriptorName"`
	SourcePage           SourcePage `json:"sourcePage"`
}

type SourcePage struct {
	RouteValues map[string]string `json:"routeValues"`
}

type hierarchyQuery struct {
	ContributionIDs     []string            `json:"contributionIds"`
	DataProviderContext dataProviderContext `json:"dataProviderContext"`
}

type dataProviderContext struct {
	Properties CreateAndRunContext `json:"properties"`
}

type hierarchyResponse struct {
	DataProviders map[string]json.RawMessage `json:"dataProviders"`
}

// CreateAndRunResult is what the create-and-run data provider returns.
type CreateAndRunResult struct {
	PipelineID          int    `json:"pipelineId"`
	PipelineBuildWebURL string `json:"pipelineBuildWebUrl"`
}
