package connection

import (
	"context"

	"github.com/imamik/pipelinekit/internal/platform/devops"
)

// mockAPI implements API with overridable functions.
type mockAPI struct {
	CreateServiceEndpointFunc func(ctx context.Context, orgURL, project string, ep devops.ServiceEndpoint) (*devops.ServiceEndpoint, error)
	GetServiceEndpointFunc    func(ctx context.Context, orgURL, project, id string) (*devops.ServiceEndpoint, error)
	ListServiceEndpointsFunc  func(ctx context.Context, orgURL, project, endpointType string) ([]devops.ServiceEndpoint, error)
	AuthorizeFunc             func(ctx context.Context, orgURL, project, id string) (*devops.PipelinePermission, error)

	polls int
}

func (m *mockAPI) CreateServiceEndpoint(ctx context.Context, orgURL, project string, ep devops.ServiceEndpoint) (*devops.ServiceEndpoint, error) {
	if m.CreateServiceEndpointFunc != nil {
		return m.CreateServiceEndpointFunc(ctx, orgURL, project, ep)
	}
	ep.ID = "endpoint-1"
	return &ep, nil
}

func (m *mockAPI) GetServiceEndpoint(ctx context.Context, orgURL, project, id string) (*devops.ServiceEndpoint, error) {
	m.polls++
	if m.GetServiceEndpointFunc != nil {
		return m.GetServiceEndpointFunc(ctx, orgURL, project, id)
	}
	return &devops.ServiceEndpoint{ID: id, IsReady: true}, nil
}

func (m *mockAPI) ListServiceEndpoints(ctx context.Context, orgURL, project, endpointType string) ([]devops.ServiceEndpoint, error) {
	if m.ListServiceEndpointsFunc != nil {
		return m.ListServiceEndpointsFunc(ctx, orgURL, project, endpointType)
	}
	return nil, nil
}

func (m *mockAPI) AuthorizeEndpointForAllPipelines(ctx context.Context, orgURL, project, id string) (*devops.PipelinePermission, error) {
	if m.AuthorizeFunc != nil {
		return m.AuthorizeFunc(ctx, orgURL, project, id)
	}
	return &devops.PipelinePermission{AllPipelines: &devops.PipelineAuthorization{Authorized: true}}, nil
}

// gitHubSequence answers successive polls with the given isReady values,
// repeating the last one.
func gitHubSequence(ready ...bool) func(context.Context, string, string, string) (*devops.ServiceEndpoint, error) {
	i := 0
	return func(_ context.Context, _, _, id string) (*devops.ServiceEndpoint, error) {
		v := ready[min(i, len(ready)-1)]
		i++
		return &devops.ServiceEndpoint{ID: id, Type: "github", IsReady: v}, nil
	}
}

func cloudSequence(states ...string) func(context.Context, string, string, string) (*devops.ServiceEndpoint, error) {
	i := 0
	return func(_ context.Context, _, _, id string) (*devops.ServiceEndpoint, error) {
		st := states[min(i, len(states)-1)]
		i++
		return &devops.ServiceEndpoint{
			ID:              id,
			Type:            "azurerm",
			OperationStatus: &devops.EndpointOperationStatus{State: st, StatusMessage: "status " + st},
		}, nil
	}
}
