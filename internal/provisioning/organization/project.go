package organization

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/platform/devops"
	"github.com/imamik/pipelinekit/internal/platform/rest"
	"github.com/imamik/pipelinekit/internal/util/retry"
)

// ProjectCreationError is a project request the control plane refused
// without starting an operation.
type ProjectCreationError struct {
	Name    string
	Message string
}

func (e *ProjectCreationError) Error() string {
	return fmt.Sprintf("project %s was not created: %s", e.Name, e.Message)
}

// EnsureProject returns the project called name in the organization at
// orgURL, creating it when the lookup comes back 404. created reports
// whether a new project was made.
func EnsureProject(ctx context.Context, api API, orgURL, name string, pollOpts []retry.Option) (project domain.Project, created bool, err error) {
	existing, err := findProject(ctx, api, orgURL, name)
	if err == nil {
		return domain.Project{ID: existing.ID, Name: existing.Name}, false, nil
	}
	if !rest.IsNotFound(err) {
		return domain.Project{}, false, err
	}

	ref, err := api.CreateProject(ctx, orgURL, name)
	if err != nil {
		return domain.Project{}, false, err
	}
	if ref.URL == "" {
		msg := ref.Message
		if msg == "" {
			msg = "no operation was started"
		}
		return domain.Project{}, false, &ProjectCreationError{Name: name, Message: msg}
	}
	if err := waitForOperation(ctx, api, ref.URL, "project "+name+" creation", pollOpts); err != nil {
		return domain.Project{}, false, err
	}

	fresh, err := api.GetProject(ctx, orgURL, name)
	if err != nil {
		return domain.Project{}, false, fmt.Errorf("failed to read created project: %w", err)
	}
	return domain.Project{ID: fresh.ID, Name: fresh.Name}, true, nil
}

// LookupProject resolves a project that must already exist.
func LookupProject(ctx context.Context, api API, orgURL, name string) (domain.Project, error) {
	existing, err := findProject(ctx, api, orgURL, name)
	if rest.IsNotFound(err) {
		return domain.Project{}, &domain.NotFoundError{Kind: "project", Name: name}
	}
	if err != nil {
		return domain.Project{}, err
	}
	return domain.Project{ID: existing.ID, Name: existing.Name}, nil
}

// findProject gets the project by name and, on a 404, falls back to a
// case-insensitive match over the project listing. The original 404 is
// returned when the listing has no match either.
func findProject(ctx context.Context, api API, orgURL, name string) (*devops.Project, error) {
	project, err := api.GetProject(ctx, orgURL, name)
	if !rest.IsNotFound(err) {
		return project, err
	}

	projects, listErr := api.ListProjects(ctx, orgURL)
	if listErr != nil {
		return nil, listErr
	}
	for i := range projects {
		if strings.EqualFold(projects[i].Name, name) {
			return &projects[i], nil
		}
	}
	return nil, err
}
