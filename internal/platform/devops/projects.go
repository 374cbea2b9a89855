package devops

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/imamik/pipelinekit/internal/platform/rest"
)

// CreateProject starts creating a private Git project and returns the
// operation to poll. A reference without a URL means the request was refused.
func (c *Client) CreateProject(ctx context.Context, orgURL, name string) (*OperationReference, error) {
	var out OperationReference
	err := c.rest.Do(ctx, rest.Request{
		Operation:  "create_project",
		Method:     http.MethodPost,
		URL:        join(orgURL, "_apis/projects"),
		APIVersion: versionProjects,
		Body: createProjectRequest{
			Name:       name,
			Visibility: 0,
			Capabilities: projectCapabilities{
				VersionControl:  map[string]string{"sourceControlType": "Git"},
				ProcessTemplate: map[string]string{"templateTypeId": AgileProcessTemplateID},
			},
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("create project %s: %w", name, err)
	}
	return &out, nil
}

// GetProject looks a project up by name or id. A missing project surfaces as
// a 404 *rest.APIError.
func (c *Client) GetProject(ctx context.Context, orgURL, nameOrID string) (*Project, error) {
	var out Project
	err := c.rest.Do(ctx, rest.Request{
		Operation:  "get_project",
		Method:     http.MethodGet,
		URL:        join(orgURL, "_apis/projects", url.PathEscape(nameOrID)),
		Query:      url.Values{"includeCapabilities": {"false"}},
		APIVersion: versionProjects,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", nameOrID, err)
	}
	return &out, nil
}

func (c *Client) ListProjects(ctx context.Context, orgURL string) ([]Project, error) {
	var out projectList
	err := c.rest.Do(ctx, rest.Request{
		Operation:  "list_projects",
		Method:     http.MethodGet,
		URL:        join(orgURL, "_apis/projects"),
		APIVersion: versionProjects,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out.Value, nil
}

// GetRepository resolves a hosted Git repository by name within a project.
func (c *Client) GetRepository(ctx context.Context, orgURL, project, name string) (*Repository, error) {
	var out Repository
	err := c.rest.Do(ctx, rest.Request{
		Operation:  "get_repository",
		Method:     http.MethodGet,
		URL:        join(orgURL, url.PathEscape(project), "_apis/git/repositories", url.PathEscape(name)),
		APIVersion: versionRepositories,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("get repository %s: %w", name, err)
	}
	return &out, nil
}
