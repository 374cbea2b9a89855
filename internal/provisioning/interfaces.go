package provisioning

import (
	"context"

	"github.com/imamik/pipelinekit/internal/domain"
)

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}

// Logger is the printf-style subset of Observer.
type Logger interface {
	Printf(format string, v ...any)
}

// GitDetailsProvider reports the remote, branch and commit of the local
// working tree.
type GitDetailsProvider interface {
	GitDetails(ctx context.Context) (domain.GitDetails, error)
}

// TemplateRenderer produces the pipeline file for a repository. Committing
// and pushing the file is the caller's business.
type TemplateRenderer interface {
	Render(ctx context.Context, repo domain.RepositoryDescriptor) (domain.RenderedTemplate, error)
}

// Prompter asks the user for freeform values.
type Prompter interface {
	// OrganizationName asks for a new organization name; validate is applied
	// to every answer before it is accepted.
	OrganizationName(ctx context.Context, validate func(string) error) (string, error)

	// PersonalAccessToken asks for a GitHub personal access token.
	PersonalAccessToken(ctx context.Context) (string, error)
}
