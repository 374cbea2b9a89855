package connection

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/platform/devops"
	"github.com/imamik/pipelinekit/internal/platform/rest"
	"github.com/imamik/pipelinekit/internal/util/retry"
)

var testScope = Scope{OrganizationURL: "https://dev.azure.com/contoso", Project: "AzurePipelines-widget"}

func fastProvisioner(api API, opts ...Option) *Provisioner {
	opts = append([]Option{WithPollOptions(retry.WithMaxAttempts(20), retry.WithFixedInterval(time.Millisecond))}, opts...)
	return NewProvisioner(api, opts...)
}

func TestWaitReady_PendingPendingReady(t *testing.T) {
	t.Parallel()
	api := &mockAPI{GetServiceEndpointFunc: gitHubSequence(false, false, true)}
	var waits []string
	p := fastProvisioner(api, WithPollHook(func(_ domain.ConnectionKind, _ string, st Status) {
		waits = append(waits, st.Raw)
	}))

	err := p.WaitReady(context.Background(), testScope, domain.ConnectionSourceControl, "ep-1")
	require.NoError(t, err)
	assert.Equal(t, 3, api.polls)
	assert.Equal(t, []string{"false", "false"}, waits)
}

func TestWaitReady_NeverReady(t *testing.T) {
	t.Parallel()
	api := &mockAPI{GetServiceEndpointFunc: gitHubSequence(false)}

	err := fastProvisioner(api).WaitReady(context.Background(), testScope, domain.ConnectionSourceControl, "ep-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvisioningTimedOut)
	assert.ErrorIs(t, err, domain.ErrConnectionNotReady)
	assert.Equal(t, 20, api.polls)

	var notReady *domain.ConnectionNotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Equal(t, "ep-1", notReady.ConnectionID)
	assert.Equal(t, "false", notReady.State)
	assert.Equal(t, 20, notReady.Attempts)
	assert.False(t, notReady.Failed)
}

func TestWaitReady_FailedIsImmediate(t *testing.T) {
	t.Parallel()
	api := &mockAPI{GetServiceEndpointFunc: cloudSequence("Failed")}

	err := fastProvisioner(api).WaitReady(context.Background(), testScope, domain.ConnectionCloudSubscription, "ep-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConnectionNotReady)
	assert.NotErrorIs(t, err, domain.ErrProvisioningTimedOut)
	assert.Equal(t, 1, api.polls)
	assert.Contains(t, err.Error(), "status Failed")
}

func TestWaitReady_CloudInProgressThenReady(t *testing.T) {
	t.Parallel()
	api := &mockAPI{GetServiceEndpointFunc: cloudSequence("InProgress", "InProgress", "InProgress", "Ready")}

	require.NoError(t, fastProvisioner(api).WaitReady(context.Background(), testScope, domain.ConnectionCloudSubscription, "ep-2"))
	assert.Equal(t, 4, api.polls)
}

func TestWaitReady_TransientErrorsUsePolls(t *testing.T) {
	t.Parallel()
	ready := gitHubSequence(true)
	api := &mockAPI{}
	api.GetServiceEndpointFunc = func(ctx context.Context, orgURL, project, id string) (*devops.ServiceEndpoint, error) {
		if api.polls < 3 {
			return nil, &rest.APIError{Operation: "get_service_endpoint", StatusCode: http.StatusServiceUnavailable}
		}
		return ready(ctx, orgURL, project, id)
	}

	require.NoError(t, fastProvisioner(api).WaitReady(context.Background(), testScope, domain.ConnectionSourceControl, "ep-1"))
	assert.Equal(t, 3, api.polls)
}

func TestWaitReady_PermanentErrorStops(t *testing.T) {
	t.Parallel()
	api := &mockAPI{GetServiceEndpointFunc: func(context.Context, string, string, string) (*devops.ServiceEndpoint, error) {
		return nil, &rest.APIError{Operation: "get_service_endpoint", StatusCode: http.StatusForbidden, Message: "access denied"}
	}}

	err := fastProvisioner(api).WaitReady(context.Background(), testScope, domain.ConnectionSourceControl, "ep-1")
	require.Error(t, err)
	assert.True(t, rest.IsStatus(err, http.StatusForbidden))
	assert.Equal(t, 1, api.polls)
}

func TestWaitReady_StopsOnCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	api := &mockAPI{}
	api.GetServiceEndpointFunc = func(_ context.Context, _, _, id string) (*devops.ServiceEndpoint, error) {
		if api.polls == 2 {
			cancel()
		}
		return &devops.ServiceEndpoint{ID: id}, nil
	}

	err := fastProvisioner(api).WaitReady(ctx, testScope, domain.ConnectionSourceControl, "ep-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, api.polls)
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	t.Run("authorized", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, fastProvisioner(&mockAPI{}).Authorize(context.Background(), testScope, "ep-1"))
	})

	t.Run("not echoed", func(t *testing.T) {
		t.Parallel()
		api := &mockAPI{AuthorizeFunc: func(context.Context, string, string, string) (*devops.PipelinePermission, error) {
			return &devops.PipelinePermission{AllPipelines: &devops.PipelineAuthorization{Authorized: false}}, nil
		}}

		err := fastProvisioner(api).Authorize(context.Background(), testScope, "ep-1")
		var authErr *domain.AuthorizationFailedError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "ep-1", authErr.ConnectionID)
	})

	t.Run("missing allPipelines", func(t *testing.T) {
		t.Parallel()
		api := &mockAPI{AuthorizeFunc: func(context.Context, string, string, string) (*devops.PipelinePermission, error) {
			return &devops.PipelinePermission{}, nil
		}}
		assert.ErrorIs(t, fastProvisioner(api).Authorize(context.Background(), testScope, "ep-1"), domain.ErrAuthorizationFailed)
	})

	t.Run("request error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		api := &mockAPI{AuthorizeFunc: func(context.Context, string, string, string) (*devops.PipelinePermission, error) {
			return nil, boom
		}}
		assert.ErrorIs(t, fastProvisioner(api).Authorize(context.Background(), testScope, "ep-1"), boom)
	})
}

func TestCreate_ReturnsUsableConnection(t *testing.T) {
	t.Parallel()
	var created devops.ServiceEndpoint
	api := &mockAPI{
		CreateServiceEndpointFunc: func(_ context.Context, orgURL, project string, ep devops.ServiceEndpoint) (*devops.ServiceEndpoint, error) {
			assert.Equal(t, testScope.OrganizationURL, orgURL)
			assert.Equal(t, testScope.Project, project)
			created = ep
			ep.ID = "ep-9"
			return &ep, nil
		},
		GetServiceEndpointFunc: gitHubSequence(false, true),
	}

	conn, err := fastProvisioner(api).Create(context.Background(), testScope, domain.ConnectionSourceControl,
		devops.NewGitHubEndpoint("acme-widget-abcde", "ghp_token"))
	require.NoError(t, err)

	assert.Equal(t, "github", created.Type)
	assert.Equal(t, domain.ServiceConnection{
		ID:                        "ep-9",
		Name:                      "acme-widget-abcde",
		Kind:                      domain.ConnectionSourceControl,
		State:                     domain.ConnectionReady,
		AuthorizedForAllPipelines: true,
	}, conn)
	assert.Equal(t, 2, api.polls)
}

func TestFindReusable(t *testing.T) {
	t.Parallel()
	api := &mockAPI{ListServiceEndpointsFunc: func(_ context.Context, _, _, endpointType string) ([]devops.ServiceEndpoint, error) {
		assert.Equal(t, "github", endpointType)
		return []devops.ServiceEndpoint{{ID: "a", Name: "other"}, {ID: "b", Name: "acme"}}, nil
	}}
	p := fastProvisioner(api)

	ep, err := p.FindReusable(context.Background(), testScope, "github", "acme")
	require.NoError(t, err)
	require.NotNil(t, ep)
	assert.Equal(t, "b", ep.ID)

	ep, err = p.FindReusable(context.Background(), testScope, "github", "missing")
	require.NoError(t, err)
	assert.Nil(t, ep)
}

func TestFindReusable_SkipsFailed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		endpoints []devops.ServiceEndpoint
		wantID    string
	}{
		{
			name: "failed before ready",
			endpoints: []devops.ServiceEndpoint{
				{ID: "a", Name: "sub", OperationStatus: &devops.EndpointOperationStatus{State: "Failed"}},
				{ID: "b", Name: "sub", OperationStatus: &devops.EndpointOperationStatus{State: "Ready"}},
			},
			wantID: "b",
		},
		{
			name: "only failed",
			endpoints: []devops.ServiceEndpoint{
				{ID: "a", Name: "sub", OperationStatus: &devops.EndpointOperationStatus{State: "failed"}},
			},
		},
		{
			name: "pending is reused",
			endpoints: []devops.ServiceEndpoint{
				{ID: "c", Name: "sub", OperationStatus: &devops.EndpointOperationStatus{State: "InProgress"}},
			},
			wantID: "c",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			api := &mockAPI{ListServiceEndpointsFunc: func(context.Context, string, string, string) ([]devops.ServiceEndpoint, error) {
				return tt.endpoints, nil
			}}

			ep, err := fastProvisioner(api).FindReusable(context.Background(), testScope, "azurerm", "sub")
			require.NoError(t, err)
			if tt.wantID == "" {
				assert.Nil(t, ep)
				return
			}
			require.NotNil(t, ep)
			assert.Equal(t, tt.wantID, ep.ID)
		})
	}
}
