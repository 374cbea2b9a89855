package organization

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/provisioning"
	"github.com/imamik/pipelinekit/internal/util/async"
	"github.com/imamik/pipelinekit/internal/util/naming"
)

const phase = "organization"

// Provisioner resolves or creates the organization and project a run works
// in. For Azure Repos repositories it also resolves the repository id.
type Provisioner struct {
	api API
}

// NewProvisioner creates a new organization provisioner.
func NewProvisioner(api API) *Provisioner {
	return &Provisioner{api: api}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	resolver := NewResolver(p.api, WithPollOptions(ctx.PollOptions()...))

	org, err := p.organization(ctx, resolver)
	if err != nil {
		return err
	}
	ctx.State.Organization = &org

	return p.projectAndRepository(ctx, org)
}

func (p *Provisioner) organization(ctx *provisioning.Context, resolver *Resolver) (domain.Organization, error) {
	cfg := ctx.Config.Organization
	repo := ctx.State.Repository

	// Repositories hosted by the control plane pin their organization.
	if repo.Provider == domain.ProviderAzureRepos {
		return p.resolve(ctx, resolver, repo.OrganizationName)
	}
	if !cfg.Create {
		return p.resolve(ctx, resolver, cfg.Name)
	}

	name, err := p.newName(ctx)
	if err != nil {
		return domain.Organization{}, err
	}

	// Re-runs reuse an organization created earlier under the same name.
	org, err := resolver.Resolve(ctx, name)
	if err == nil {
		provisioning.LogResourceExists(ctx.Observer, phase, "organization", org.Name, org.ID)
		return org, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Organization{}, err
	}

	if err := Validate(ctx, p.api, name); err != nil {
		return domain.Organization{}, err
	}

	provisioning.LogResourceCreating(ctx.Observer, phase, "organization", name)
	org, err = resolver.Create(ctx, name)
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phase, "organization", name, err)
		return domain.Organization{}, fmt.Errorf("failed to create organization %s: %w", name, err)
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "organization", org.Name, org.ID)
	return org, nil
}

func (p *Provisioner) resolve(ctx *provisioning.Context, resolver *Resolver, name string) (domain.Organization, error) {
	if err := ValidateName(name); err != nil {
		return domain.Organization{}, err
	}
	org, err := resolver.Resolve(ctx, name)
	if err != nil {
		return domain.Organization{}, err
	}
	ctx.Observer.Printf("[%s] Using organization %s (%s)", phase, org.Name, org.BaseURL)
	return org, nil
}

// newName picks the name of an organization to create: configured, generated
// from the user, or asked for. It is checked locally before it is returned.
func (p *Provisioner) newName(ctx *provisioning.Context) (string, error) {
	cfg := ctx.Config.Organization

	name := cfg.Name
	switch {
	case name != "":
	case cfg.User != "":
		name = naming.Organization(cfg.User, ctx.State.Repository.RepositoryName)
		ctx.Observer.Printf("[%s] Generated organization name %s", phase, name)
	case ctx.Prompter != nil:
		answer, err := ctx.Prompter.OrganizationName(ctx, ValidateName)
		if err != nil {
			return "", fmt.Errorf("failed to read organization name: %w", err)
		}
		name = answer
	default:
		return "", &domain.ValidationError{Field: "organization name", Reason: "no name configured and no way to ask for one"}
	}

	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

// projectAndRepository resolves the project and, for Azure Repos, the
// repository id. Both only need the organization, so they run together.
func (p *Provisioner) projectAndRepository(ctx *provisioning.Context, org domain.Organization) error {
	repo := ctx.State.Repository
	hosted := repo.Provider == domain.ProviderAzureRepos

	var (
		project    domain.Project
		created    bool
		repository domain.RepositoryDescriptor
	)

	projectName := p.projectName(ctx)
	tasks := []async.Task{{
		Name: "project " + projectName,
		Func: func(c context.Context) error {
			var err error
			if hosted {
				project, err = LookupProject(c, p.api, org.BaseURL, projectName)
				return err
			}
			project, created, err = EnsureProject(c, p.api, org.BaseURL, projectName, ctx.PollOptions())
			return err
		},
	}}
	if hosted {
		tasks = append(tasks, async.Task{
			Name: "repository " + repo.RepositoryName,
			Func: func(c context.Context) error {
				found, err := p.api.GetRepository(c, org.BaseURL, repo.ProjectName, repo.RepositoryName)
				if err != nil {
					return err
				}
				repository = repo
				repository.RepositoryID = found.ID
				if found.Project.Name != "" {
					repository.ProjectName = found.Project.Name
				}
				return nil
			},
		})
	}

	if err := async.RunParallel(ctx, tasks); err != nil {
		return err
	}

	if created {
		provisioning.LogResourceCreated(ctx.Observer, phase, "project", project.Name, project.ID)
	} else {
		provisioning.LogResourceExists(ctx.Observer, phase, "project", project.Name, project.ID)
	}
	ctx.State.Project = &project

	if hosted {
		ctx.State.Repository = repository
		ctx.Observer.Printf("[%s] Repository %s has id %s", phase, repository.RepositoryName, repository.RepositoryID)
	}
	return nil
}

func (p *Provisioner) projectName(ctx *provisioning.Context) string {
	repo := ctx.State.Repository
	if repo.Provider == domain.ProviderAzureRepos && repo.ProjectName != "" {
		return repo.ProjectName
	}
	if name := ctx.Config.Project.Name; name != "" {
		return name
	}
	return naming.Project(repo.RepositoryName)
}
