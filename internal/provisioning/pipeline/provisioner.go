package pipeline

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/imamik/pipelinekit/internal/config"
	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/provisioning"
	"github.com/imamik/pipelinekit/internal/util/naming"
)

const phase = "pipeline"

// Provisioner creates the pipeline with the configured strategy.
type Provisioner struct {
	strategies map[string]Strategy
}

// NewProvisioner creates a pipeline provisioner offering both strategies.
func NewProvisioner(api API) *Provisioner {
	return &Provisioner{strategies: map[string]Strategy{
		config.StrategyDefinition: NewDefinitionStrategy(api),
		config.StrategyAggregated: NewAggregatedStrategy(api),
	}}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config.Pipeline
	strategy, ok := p.strategies[cfg.Strategy]
	if !ok {
		return &domain.ValidationError{Field: "pipeline strategy", Value: cfg.Strategy, Reason: "is not supported"}
	}
	if ctx.State.Organization == nil || ctx.State.Project == nil {
		return errors.New("organization and project must be resolved before the pipeline")
	}
	repo := ctx.State.Repository
	if repo.Provider == domain.ProviderGitHub && repo.ServiceConnectionID == "" {
		return errors.New("a GitHub repository needs a source connection before the pipeline")
	}

	yamlPath := ctx.State.Template.Path
	if yamlPath == "" {
		yamlPath = cfg.YAMLPath
	}
	req := Request{
		OrganizationURL: ctx.State.OrganizationURL(),
		Project:         *ctx.State.Project,
		Repository:      repo,
		Name:            naming.PipelineDefinition(ctx.Config.Target.ResourceName),
		YAMLPath:        yamlPath,
		QueueID:         cfg.QueueID,
		QueueName:       cfg.QueueName,
		GitHubAPIURL:    ctx.Config.Endpoints.GitHubAPI,
	}

	// The aggregated strategy lets the control plane pick the name, so events
	// are keyed by repository.
	provisioning.LogResourceCreating(ctx.Observer, phase, "pipeline", repo.RepositoryName)
	res, err := strategy.CreateAndRun(ctx, req)
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phase, "pipeline", repo.RepositoryName, err)
		return fmt.Errorf("failed to configure pipeline: %w", err)
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "pipeline", repo.RepositoryName, strconv.Itoa(res.Definition.ID))
	ctx.Observer.Printf("[%s] Run queued on %s: %s", phase, res.Run.SourceBranch, res.Run.WebURL)

	ctx.State.Definition = &res.Definition
	ctx.State.Run = &res.Run
	return nil
}
