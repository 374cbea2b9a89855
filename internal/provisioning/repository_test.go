package provisioning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/pipelinekit/internal/domain"
)

type stubGit struct {
	details domain.GitDetails
	err     error
}

func (s stubGit) GitDetails(context.Context) (domain.GitDetails, error) {
	return s.details, s.err
}

type stubRenderer struct {
	tmpl domain.RenderedTemplate
	err  error
	got  domain.RepositoryDescriptor
}

func (s *stubRenderer) Render(_ context.Context, repo domain.RepositoryDescriptor) (domain.RenderedTemplate, error) {
	s.got = repo
	return s.tmpl, s.err
}

func TestRepositoryPhase_GitHub(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(NewMockObserver())
	ctx.Config = validConfig()
	ctx.Config.Repository.RemoteURL = ""
	ctx.Config.Repository.Branch = ""
	ctx.Git = stubGit{details: domain.GitDetails{
		RemoteURL: "https://github.com/acme/widget.git",
		Branch:    "main",
		CommitID:  "abc123",
	}}
	renderer := &stubRenderer{tmpl: domain.RenderedTemplate{Content: "trigger: [main]", Path: "ci/azure-pipelines.yml"}}
	ctx.Renderer = renderer

	require.NoError(t, NewRepositoryPhase().Provision(ctx))

	repo := ctx.State.Repository
	assert.Equal(t, domain.ProviderGitHub, repo.Provider)
	assert.Equal(t, "acme/widget", repo.RepositoryID)
	assert.Equal(t, "abc123", repo.CommitID)
	assert.Equal(t, repo, renderer.got)
	assert.Equal(t, "ci/azure-pipelines.yml", ctx.State.Template.Path)
	assert.Equal(t, "trigger: [main]", ctx.State.Template.Content)
}

func TestRepositoryPhase_ConfigOverridesGit(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(NewMockObserver())
	ctx.Config = validConfig()
	ctx.Config.Repository.RemoteURL = "https://dev.azure.com/contoso/web/_git/site"
	ctx.Config.Repository.Branch = "release"
	ctx.Git = stubGit{details: domain.GitDetails{RemoteURL: "https://github.com/acme/widget", Branch: "main", CommitID: "c1"}}

	require.NoError(t, NewRepositoryPhase().Provision(ctx))

	repo := ctx.State.Repository
	assert.Equal(t, domain.ProviderAzureRepos, repo.Provider)
	assert.Equal(t, "contoso", repo.OrganizationName)
	assert.Equal(t, "web", repo.ProjectName)
	assert.Equal(t, "site", repo.RepositoryName)
	assert.Equal(t, "release", repo.Branch)
	assert.Equal(t, "c1", repo.CommitID)
	assert.Equal(t, ctx.Config.Pipeline.YAMLPath, ctx.State.Template.Path)
}

func TestRepositoryPhase_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		git    GitDetailsProvider
		remote string
		branch string
		is     error
		msg    string
	}{
		{
			name: "git failure",
			git:  stubGit{err: errors.New("not a git repository")},
			msg:  "failed to read git details: not a git repository",
		},
		{
			name:   "unrecognized remote",
			remote: "https://gitlab.com/acme/widget.git",
			branch: "main",
			is:     domain.ErrUnrecognizedRepositoryURL,
		},
		{
			name:   "no branch",
			remote: "https://github.com/acme/widget.git",
			is:     domain.ErrValidation,
			msg:    "not on a branch",
		},
		{
			name: "no remote",
			git:  stubGit{details: domain.GitDetails{Branch: "main"}},
			is:   domain.ErrValidation,
			msg:  "no remote configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := newTestContext(NewMockObserver())
			ctx.Config = validConfig()
			ctx.Config.Repository.RemoteURL = tt.remote
			ctx.Config.Repository.Branch = tt.branch
			ctx.Git = tt.git

			err := NewRepositoryPhase().Provision(ctx)

			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestRepositoryPhase_RenderFailure(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(NewMockObserver())
	ctx.Config = validConfig()
	ctx.Renderer = &stubRenderer{err: errors.New("no template for target")}

	err := NewRepositoryPhase().Provision(ctx)

	require.Error(t, err)
	assert.Equal(t, "failed to render pipeline template: no template for target", err.Error())
}
