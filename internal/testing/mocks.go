package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/pipelinekit/internal/domain"
)

// MockPrompter is a mock implementation of provisioning.Prompter.
type MockPrompter struct {
	mock.Mock
}

// OrganizationName returns the scripted answer after running validate on it,
// the way an interactive form would.
func (m *MockPrompter) OrganizationName(_ context.Context, validate func(string) error) (string, error) {
	args := m.Called()
	name := args.String(0)
	if err := args.Error(1); err != nil {
		return "", err
	}
	if validate != nil {
		if err := validate(name); err != nil {
			return "", err
		}
	}
	return name, nil
}

func (m *MockPrompter) PersonalAccessToken(_ context.Context) (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// StaticGit reports fixed working tree details.
type StaticGit struct {
	Details domain.GitDetails
	Err     error
}

func (g StaticGit) GitDetails(context.Context) (domain.GitDetails, error) {
	return g.Details, g.Err
}

// StaticRenderer renders a fixed pipeline file.
type StaticRenderer struct {
	Content string
	Path    string
}

func (r StaticRenderer) Render(context.Context, domain.RepositoryDescriptor) (domain.RenderedTemplate, error) {
	return domain.RenderedTemplate{Content: r.Content, Path: r.Path}, nil
}
