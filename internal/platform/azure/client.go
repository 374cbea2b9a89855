// Package azure creates the cloud identity a subscription service connection
// authenticates with: a directory application with a password credential, its
// service principal, and a role assignment on the deployment scope.
package azure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imamik/pipelinekit/internal/platform/rest"
)

const (
	DefaultGraphURL      = "https://graph.windows.net"
	DefaultManagementURL = "https://management.azure.com"

	// ContributorRoleID is the built-in Contributor role definition.
	ContributorRoleID = "b24988ac-6180-42a0-ab88-20f7382dd24c"

	versionGraph           = "1.6"
	versionRoleAssignments = "2015-07-01"
)

// Doer is the request layer; *rest.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req rest.Request, out any) error
}

// Client talks to the directory graph and the resource manager. The two use
// different credentials, so each gets its own request layer.
type Client struct {
	graph         Doer
	management    Doer
	graphURL      string
	managementURL string
	now           func() time.Time
	newID         func() string
}

// Option configures a Client.
type Option func(*Client)

func WithGraphURL(u string) Option {
	return func(c *Client) {
		c.graphURL = strings.TrimRight(u, "/")
	}
}

func WithManagementURL(u string) Option {
	return func(c *Client) {
		c.managementURL = strings.TrimRight(u, "/")
	}
}

// NewClient creates a cloud identity client.
func NewClient(graph, management Doer, opts ...Option) *Client {
	c := &Client{
		graph:         graph,
		management:    management,
		graphURL:      DefaultGraphURL,
		managementURL: DefaultManagementURL,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Application is a created directory application.
type Application struct {
	AppID    string `json:"appId"`
	ObjectID string `json:"objectId"`
}

type passwordCredential struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Value     string    `json:"value"`
}

type createApplicationRequest struct {
	AvailableToOtherTenants bool                 `json:"availableToOtherTenants"`
	DisplayName             string               `json:"displayName"`
	Homepage                string               `json:"homepage"`
	IdentifierURIs          []string             `json:"identifierUris"`
	PasswordCredentials     []passwordCredential `json:"passwordCredentials"`
}

// CreateApplication registers an application whose password credential is
// valid for one year.
func (c *Client) CreateApplication(ctx context.Context, tenantID, name, secret string) (*Application, error) {
	start := c.now().UTC()
	homepage := "https://" + name

	var out Application
	err := c.graph.Do(ctx, rest.Request{
		Operation:  "create_application",
		Method:     http.MethodPost,
		URL:        fmt.Sprintf("%s/%s/applications", c.graphURL, url.PathEscape(tenantID)),
		APIVersion: versionGraph,
		Body: createApplicationRequest{
			DisplayName:    name,
			Homepage:       homepage,
			IdentifierURIs: []string{homepage},
			PasswordCredentials: []passwordCredential{{
				StartDate: start,
				EndDate:   start.AddDate(1, 0, 0),
				Value:     secret,
			}},
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("create application %s: %w", name, err)
	}
	return &out, nil
}

// ServicePrincipal is the tenant-local identity of an application.
type ServicePrincipal struct {
	ObjectID string `json:"objectId"`
	AppID    string `json:"appId"`
}

// CreateServicePrincipal creates the principal for appID. A freshly created
// application may not be visible yet, so callers retry this.
func (c *Client) CreateServicePrincipal(ctx context.Context, tenantID, appID string) (*ServicePrincipal, error) {
	var out ServicePrincipal
	err := c.graph.Do(ctx, rest.Request{
		Operation:  "create_service_principal",
		Method:     http.MethodPost,
		URL:        fmt.Sprintf("%s/%s/servicePrincipals", c.graphURL, url.PathEscape(tenantID)),
		APIVersion: versionGraph,
		Body: map[string]string{
			"appId":          appID,
			"accountEnabled": "true",
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("create service principal for %s: %w", appID, err)
	}
	return &out, nil
}

// RoleAssignment is a created role assignment.
type RoleAssignment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type roleAssignmentRequest struct {
	Properties roleAssignmentProperties `json:"properties"`
}

type roleAssignmentProperties struct {
	RoleDefinitionID string `json:"roleDefinitionId"`
	PrincipalID      string `json:"principalId"`
}

// AssignRole grants roleID to principalID on scope under a fresh assignment id.
func (c *Client) AssignRole(ctx context.Context, scope, roleID, principalID string) (*RoleAssignment, error) {
	scope = "/" + strings.Trim(scope, "/")
	var out RoleAssignment
	err := c.management.Do(ctx, rest.Request{
		Operation:  "create_role_assignment",
		Method:     http.MethodPut,
		URL:        fmt.Sprintf("%s%s/providers/Microsoft.Authorization/roleAssignments/%s", c.managementURL, scope, c.newID()),
		APIVersion: versionRoleAssignments,
		Body: roleAssignmentRequest{Properties: roleAssignmentProperties{
			RoleDefinitionID: scope + "/providers/Microsoft.Authorization/roleDefinitions/" + roleID,
			PrincipalID:      principalID,
		}},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("assign role %s on %s: %w", roleID, scope, err)
	}
	return &out, nil
}

// ResourceGroupScope reduces a resource id to its resource group scope
// ("/subscriptions/{sub}/resourceGroups/{rg}"). Ids that are already at
// subscription or group level are returned normalized.
func ResourceGroupScope(resourceID string) string {
	parts := strings.Split(strings.Trim(resourceID, "/"), "/")
	if len(parts) > 4 && strings.EqualFold(parts[0], "subscriptions") && strings.EqualFold(parts[2], "resourceGroups") {
		parts = parts[:4]
	}
	return "/" + strings.Join(parts, "/")
}

// SubscriptionFromResourceID extracts the subscription id, or "".
func SubscriptionFromResourceID(resourceID string) string {
	parts := strings.Split(strings.Trim(resourceID, "/"), "/")
	if len(parts) >= 2 && strings.EqualFold(parts[0], "subscriptions") {
		return parts[1]
	}
	return ""
}
