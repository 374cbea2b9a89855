package devops

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/imamik/pipelinekit/internal/platform/rest"
)

const (
	gitHubEndpointURL     = "http://github.com"
	managementEndpointURL = "https://management.azure.com/"
)

// NewGitHubEndpoint builds a source-control connection authenticated with a
// personal access token.
func NewGitHubEndpoint(name, accessToken string) ServiceEndpoint {
	return ServiceEndpoint{
		Name: name,
		Type: "github",
		URL:  gitHubEndpointURL,
		Authorization: EndpointAuthorization{
			Scheme:     "PersonalAccessToken",
			Parameters: map[string]string{"accessToken": accessToken},
		},
	}
}

// AzureRMEndpoint describes a cloud subscription connection.
type AzureRMEndpoint struct {
	Name             string
	TenantID         string
	SubscriptionID   string
	SubscriptionName string
	Scope            string
	// ClientID and ClientSecret identify an existing service principal. When
	// empty the control plane creates one itself.
	ClientID     string
	ClientSecret string
	ObjectID     string
}

// NewAzureRMEndpoint builds a cloud subscription connection authenticated
// with a service principal key.
func NewAzureRMEndpoint(p AzureRMEndpoint) ServiceEndpoint {
	creationMode := "Automatic"
	if p.ClientID != "" {
		creationMode = "Manual"
	}
	subscriptionName := p.SubscriptionName
	if subscriptionName == "" {
		subscriptionName = p.SubscriptionID
	}
	return ServiceEndpoint{
		Name: p.Name,
		Type: "azurerm",
		URL:  managementEndpointURL,
		Authorization: EndpointAuthorization{
			Scheme: "ServicePrincipal",
			Parameters: map[string]string{
				"authenticationType":  "spnKey",
				"scope":               p.Scope,
				"serviceprincipalid":  p.ClientID,
				"serviceprincipalkey": p.ClientSecret,
				"tenantid":            p.TenantID,
			},
		},
		Data: map[string]string{
			"appObjectId":              "",
			"azureSpnPermissions":      "",
			"azureSpnRoleAssignmentId": "",
			"creationMode":             creationMode,
			"environment":              "AzureCloud",
			"scopeLevel":               "Subscription",
			"spnObjectId":              p.ObjectID,
			"subscriptionId":           p.SubscriptionID,
			"subscriptionName":         subscriptionName,
		},
	}
}

func endpointsURL(orgURL, project string, parts ...string) string {
	return join(orgURL, append([]string{url.PathEscape(project), "_apis/serviceendpoint/endpoints"}, parts...)...)
}

// CreateServiceEndpoint creates a connection. The returned id is not usable
// until the endpoint reports ready.
func (c *Client) CreateServiceEndpoint(ctx context.Context, orgURL, project string, ep ServiceEndpoint) (*ServiceEndpoint, error) {
	var out ServiceEndpoint
	err := c.rest.Do(ctx, rest.Request{
		Operation:       "create_service_endpoint",
		Method:          http.MethodPost,
		URL:             endpointsURL(orgURL, project),
		APIVersion:      versionEndpoints,
		VersionInAccept: true,
		AcceptOptions:   excludeURLs,
		Body:            ep,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("create %s service connection %s: %w", ep.Type, ep.Name, err)
	}
	return &out, nil
}

// GetServiceEndpoint reads a connection's current status.
func (c *Client) GetServiceEndpoint(ctx context.Context, orgURL, project, id string) (*ServiceEndpoint, error) {
	var out ServiceEndpoint
	err := c.rest.Do(ctx, rest.Request{
		Operation:       "get_service_endpoint",
		Method:          http.MethodGet,
		URL:             endpointsURL(orgURL, project, url.PathEscape(id)),
		APIVersion:      versionEndpoints,
		VersionInAccept: true,
		AcceptOptions:   excludeURLs,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("get service connection %s: %w", id, err)
	}
	return &out, nil
}

// ListServiceEndpoints lists non-failed connections of one endpoint type.
func (c *Client) ListServiceEndpoints(ctx context.Context, orgURL, project, endpointType string) ([]ServiceEndpoint, error) {
	var out endpointList
	err := c.rest.Do(ctx, rest.Request{
		Operation:       "list_service_endpoints",
		Method:          http.MethodGet,
		URL:             endpointsURL(orgURL, project),
		Query:           url.Values{"type": {endpointType}, "includeFailed": {"false"}},
		APIVersion:      versionEndpoints,
		VersionInAccept: true,
		AcceptOptions:   excludeURLs,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("list %s service connections: %w", endpointType, err)
	}
	return out.Value, nil
}

// AuthorizeEndpointForAllPipelines grants every pipeline in the project use
// of the connection and returns the permission the server recorded.
func (c *Client) AuthorizeEndpointForAllPipelines(ctx context.Context, orgURL, project, id string) (*PipelinePermission, error) {
	var out PipelinePermission
	err := c.rest.Do(ctx, rest.Request{
		Operation:       "authorize_service_endpoint",
		Method:          http.MethodPatch,
		URL:             join(orgURL, url.PathEscape(project), "_apis/pipelines/pipelinePermissions/endpoint", url.PathEscape(id)),
		APIVersion:      versionPermissions,
		VersionInAccept: true,
		AcceptOptions:   webAPIOptions,
		Body: PipelinePermission{
			AllPipelines: &PipelineAuthorization{Authorized: true},
			Resource:     PermissionResource{ID: id, Type: "endpoint"},
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("authorize service connection %s: %w", id, err)
	}
	return &out, nil
}
