package provisioning

import (
	"fmt"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/gitremote"
)

// RepositoryPhase derives the repository descriptor from the local working
// tree and renders the pipeline file. It makes no control plane calls.
type RepositoryPhase struct{}

// NewRepositoryPhase creates a new repository phase.
func NewRepositoryPhase() *RepositoryPhase {
	return &RepositoryPhase{}
}

// Name implements the Phase interface.
func (rp *RepositoryPhase) Name() string {
	return "repository"
}

// Provision implements the Phase interface.
func (rp *RepositoryPhase) Provision(ctx *Context) error {
	details, err := rp.gitDetails(ctx)
	if err != nil {
		return err
	}

	repo, err := gitremote.Describe(details)
	if err != nil {
		return err
	}
	ctx.State.Repository = repo
	ctx.Observer.Printf("[%s] %s repository %s on branch %s", rp.Name(), repo.Provider, repo.RepositoryName, repo.Branch)

	tmpl := domain.RenderedTemplate{Path: ctx.Config.Pipeline.YAMLPath}
	if ctx.Renderer != nil {
		rendered, err := ctx.Renderer.Render(ctx, repo)
		if err != nil {
			return fmt.Errorf("failed to render pipeline template: %w", err)
		}
		if rendered.Path != "" {
			tmpl.Path = rendered.Path
		}
		tmpl.Content = rendered.Content
	}
	ctx.State.Template = tmpl
	return nil
}

// gitDetails asks the Git collaborator and applies configured overrides.
func (rp *RepositoryPhase) gitDetails(ctx *Context) (domain.GitDetails, error) {
	var details domain.GitDetails
	if ctx.Git != nil {
		d, err := ctx.Git.GitDetails(ctx)
		if err != nil {
			return details, fmt.Errorf("failed to read git details: %w", err)
		}
		details = d
	}

	over := ctx.Config.Repository
	if over.RemoteURL != "" {
		details.RemoteURL = over.RemoteURL
	}
	if over.Branch != "" {
		details.Branch = over.Branch
	}
	if over.CommitID != "" {
		details.CommitID = over.CommitID
	}

	if details.RemoteURL == "" {
		return details, &domain.ValidationError{Field: "repository remote", Reason: "the working tree has no remote configured"}
	}
	if details.Branch == "" {
		return details, &domain.ValidationError{Field: "repository branch", Reason: "the working tree is not on a branch"}
	}
	return details, nil
}
