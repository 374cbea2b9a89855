package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/platform/devops"
)

// API is the control plane surface the strategies use; *devops.Client
// satisfies it.
type API interface {
	CreateBuildDefinition(ctx context.Context, orgURL string, def devops.BuildDefinition) (*devops.BuildDefinition, error)
	QueueBuild(ctx context.Context, orgURL string, req devops.QueueBuildRequest) (*devops.Build, error)
	CreateAndRunPipeline(ctx context.Context, orgURL string, properties devops.CreateAndRunContext) (*devops.CreateAndRunResult, error)
}

// Request is everything a strategy needs to create and run one pipeline.
type Request struct {
	OrganizationURL string
	Project         domain.Project
	Repository      domain.RepositoryDescriptor
	Name            string
	YAMLPath        string
	QueueID         int
	QueueName       string
	// GitHubAPIURL roots the browse URLs of GitHub repositories.
	GitHubAPIURL string
}

// Result is the stored definition and its queued run.
type Result struct {
	Definition domain.PipelineDefinition
	Run        domain.PipelineRun
}

// Strategy creates a pipeline and triggers a run of it.
type Strategy interface {
	CreateAndRun(ctx context.Context, req Request) (*Result, error)
}

// DefinitionStrategy stores a build definition, then queues a build.
type DefinitionStrategy struct {
	api API
}

func NewDefinitionStrategy(api API) *DefinitionStrategy {
	return &DefinitionStrategy{api: api}
}

// CreateAndRun implements Strategy.
func (s *DefinitionStrategy) CreateAndRun(ctx context.Context, req Request) (*Result, error) {
	payload, err := DefinitionPayload(req)
	if err != nil {
		return nil, err
	}

	def, err := s.api.CreateBuildDefinition(ctx, req.OrganizationURL, payload)
	if err != nil {
		return nil, err
	}
	projectID := def.Project.ID
	if projectID == "" {
		projectID = req.Project.ID
	}

	build, err := s.api.QueueBuild(ctx, req.OrganizationURL, devops.QueueBuildRequest{
		Definition:    devops.DefinitionReference{ID: def.ID},
		Project:       devops.ProjectReference{ID: projectID},
		SourceBranch:  req.Repository.Branch,
		SourceVersion: req.Repository.CommitID,
	})
	if err != nil {
		return nil, err
	}
	if build.Links.Web.Href == "" {
		return nil, fmt.Errorf("queued build %d has no web link", build.ID)
	}

	return &Result{
		Definition: domain.PipelineDefinition{
			ID:         def.ID,
			Name:       payload.Name,
			ProjectID:  projectID,
			Repository: req.Repository,
			YAMLPath:   req.YAMLPath,
			QueueID:    req.QueueID,
		},
		Run: domain.PipelineRun{
			DefinitionID: def.ID,
			ProjectID:    projectID,
			SourceBranch: req.Repository.Branch,
			SourceCommit: req.Repository.CommitID,
			WebURL:       build.Links.Web.Href,
		},
	}, nil
}

// DefinitionPayload builds the YAML build definition for req. The CI trigger
// defers to the trigger section of the YAML file.
func DefinitionPayload(req Request) (devops.BuildDefinition, error) {
	repo := req.Repository
	properties, ok := repositoryProperties[repo.Provider]
	if !ok {
		return devops.BuildDefinition{}, fmt.Errorf("no pipeline repository mapping for provider %s", repo.Provider)
	}

	return devops.BuildDefinition{
		Name:    req.Name,
		Type:    devops.DefinitionTypeYAML,
		Quality: devops.DefinitionQualityDefinition,
		Path:    `\`,
		Project: devops.ProjectReference{ID: req.Project.ID, Name: req.Project.Name},
		Process: devops.DefinitionProcess{
			Type:         devops.ProcessTypeYAML,
			YAMLFileName: req.YAMLPath,
		},
		Queue: devops.QueueReference{ID: req.QueueID},
		Triggers: []devops.DefinitionTrigger{{
			TriggerType:        devops.TriggerContinuousIntegration,
			SettingsSourceType: devops.TriggerSettingsFromYAML,
		}},
		Repository: devops.DefinitionRepository{
			ID:            repo.RepositoryID,
			Name:          repo.RepositoryName,
			Type:          repo.Provider.String(),
			DefaultBranch: repo.Branch,
			URL:           repo.RemoteURL,
			Properties:    properties(req),
		},
	}, nil
}

// repositoryProperties maps each provider to the browse properties of its
// repositories. Hosted repositories need none.
var repositoryProperties = map[domain.ProviderKind]func(Request) *devops.RepositoryProperties{
	domain.ProviderAzureRepos: func(Request) *devops.RepositoryProperties { return nil },
	domain.ProviderGitHub:     gitHubProperties,
}

func gitHubProperties(req Request) *devops.RepositoryProperties {
	repo := req.Repository
	root := strings.TrimRight(req.GitHubAPIURL, "/") + "/repos/" + repo.RepositoryID
	return &devops.RepositoryProperties{
		APIURL:             root,
		BranchesURL:        root + "/branches",
		CloneURL:           repo.RemoteURL,
		ConnectedServiceID: repo.ServiceConnectionID,
		DefaultBranch:      repo.Branch,
		FullName:           repo.RepositoryName,
		RefsURL:            root + "/git/refs",
	}
}

// AggregatedStrategy creates and runs the pipeline in one call.
type AggregatedStrategy struct {
	api API
}

func NewAggregatedStrategy(api API) *AggregatedStrategy {
	return &AggregatedStrategy{api: api}
}

// CreateAndRun implements Strategy. The control plane names the pipeline
// itself, so req.Name is not sent.
func (s *AggregatedStrategy) CreateAndRun(ctx context.Context, req Request) (*Result, error) {
	repo := req.Repository
	out, err := s.api.CreateAndRunPipeline(ctx, req.OrganizationURL, devops.CreateAndRunContext{
		ConnectionID:         repo.ServiceConnectionID,
		SourceProvider:       repo.Provider.String(),
		RepositoryID:         repo.RepositoryID,
		RepositoryName:       repo.RepositoryName,
		Branch:               repo.Branch,
		SourceBranch:         repo.Branch,
		Path:                 "./" + strings.TrimPrefix(req.YAMLPath, "./"),
		Queue:                req.QueueName,
		CommitID:             repo.CommitID,
		CommitDescriptorName: devops.DefaultCommitDescriptorName,
		SourcePage: devops.SourcePage{
			RouteValues: map[string]string{"project": req.Project.Name},
		},
	})
	if err != nil {
		return nil, err
	}
	if out.PipelineBuildWebURL == "" {
		return nil, fmt.Errorf("pipeline %d was created without a run link", out.PipelineID)
	}

	return &Result{
		Definition: domain.PipelineDefinition{
			ID:         out.PipelineID,
			ProjectID:  req.Project.ID,
			Repository: repo,
			YAMLPath:   req.YAMLPath,
			QueueID:    req.QueueID,
		},
		Run: domain.PipelineRun{
			DefinitionID: out.PipelineID,
			ProjectID:    req.Project.ID,
			SourceBranch: repo.Branch,
			SourceCommit: repo.CommitID,
			WebURL:       out.PipelineBuildWebURL,
		},
	}, nil
}
