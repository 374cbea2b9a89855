package provisioning

import "github.com/imamik/pipelinekit/internal/domain"

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Repository results (populated by the repository phase)
	Repository domain.RepositoryDescriptor
	Template   domain.RenderedTemplate

	// Organization results (populated by the organization provisioner)
	Organization *domain.Organization
	Project      *domain.Project

	// Connection results
	SourceConnection *domain.ServiceConnection // only for GitHub repositories
	ServicePrincipal *domain.ServicePrincipal
	CloudConnection  *domain.ServiceConnection

	// Pipeline results
	Definition *domain.PipelineDefinition
	Run        *domain.PipelineRun
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{}
}

// OrganizationURL returns the resolved organization base URL, or "".
func (s *State) OrganizationURL() string {
	if s.Organization == nil {
		return ""
	}
	return s.Organization.BaseURL
}

// ProjectName returns the resolved project name, or "".
func (s *State) ProjectName() string {
	if s.Project == nil {
		return ""
	}
	return s.Project.Name
}
