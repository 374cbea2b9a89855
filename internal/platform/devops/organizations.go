package devops

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/platform/rest"
)

// ConnectionData returns the identity the credential authenticates as.
func (c *Client) ConnectionData(ctx context.Context) (*ConnectionData, error) {
	var out ConnectionData
	err := c.rest.Do(ctx, rest.Request{
		Operation:  "get_connection_data",
		Method:     http.MethodGet,
		URL:        join(c.endpoints.Accounts, "_apis/connectiondata"),
		APIVersion: versionConnectionData,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("get connection data: %w", err)
	}
	return &out, nil
}

// CreateProfile creates the user profile a first-time identity needs before
// connection data is available.
func (c *Client) CreateProfile(ctx context.Context) error {
	err := c.rest.Do(ctx, rest.Request{
		Operation:  "create_profile",
		Method:     http.MethodPost,
		URL:        join(c.endpoints.Accounts, "_apis/_AzureProfile/CreateProfile"),
		APIVersion: versionProfile,
	}, nil)
	if err != nil {
		return fmt.Errorf("create user profile: %w", err)
	}
	return nil
}

// ListOrganizations returns every organization memberID belongs to, sorted
// case-insensitively by name. BaseURL comes from the service URL property and
// falls back to the organization URL template.
func (c *Client) ListOrganizations(ctx context.Context, memberID string) ([]domain.Organization, error) {
	var out accountList
	err := c.rest.Do(ctx, rest.Request{
		Operation: "list_organizations",
		Method:    http.MethodGet,
		URL:       join(c.endpoints.Accounts, "_apis/accounts"),
		Query: url.Values{
			"memberId":   {memberID},
			"properties": {ServiceURLProperty},
		},
		APIVersion: versionAccounts,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	orgs := make([]domain.Organization, 0, len(out.Value))
	for _, a := range out.Value {
		props := a.PropertyValues()
		base := props[ServiceURLProperty]
		if base == "" {
			base = c.OrganizationURL(a.AccountName)
		}
		orgs = append(orgs, domain.Organization{
			ID:         a.AccountID,
			Name:       a.AccountName,
			BaseURL:    strings.TrimRight(base, "/"),
			Properties: props,
		})
	}
	sort.SliceStable(orgs, func(i, j int) bool {
		return strings.ToLower(orgs[i].Name) < strings.ToLower(orgs[j].Name)
	})
	return orgs, nil
}

// CheckNameAvailability asks whether an organization name is still free.
func (c *Client) CheckNameAvailability(ctx context.Context, name string) (*NameAvailability, error) {
	var out NameAvailability
	err := c.rest.Do(ctx, rest.Request{
		Operation:       "check_organization_name",
		Method:          http.MethodGet,
		URL:             join(c.endpoints.Acquisition, "_apis/HostAcquisition/NameAvailability", url.PathEscape(name)),
		APIVersion:      versionNameCheck,
		VersionInAccept: true,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("check organization name availability: %w", err)
	}
	return &out, nil
}

// CreateOrganization registers a new organization in the preferred region.
func (c *Client) CreateOrganization(ctx context.Context, name string) (*Collection, error) {
	var out Collection
	err := c.rest.Do(ctx, rest.Request{
		Operation: "create_organization",
		Method:    http.MethodPost,
		URL:       join(c.endpoints.Acquisition, "_apis/HostAcquisition/collections"),
		Query: url.Values{
			"collectionName":  {name},
			"preferredRegion": {c.endpoints.PreferredRegion},
		},
		APIVersion: versionAcquisition,
		Body: map[string]string{
			"VisualStudio.Services.HostResolution.UseCodexDomainForHostCreation": "true",
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("create organization %s: %w", name, err)
	}
	return &out, nil
}

// GetOperation reads a long-running operation by its URL.
func (c *Client) GetOperation(ctx context.Context, operationURL string) (*Operation, error) {
	var out Operation
	err := c.rest.Do(ctx, rest.Request{
		Operation:  "get_operation",
		Method:     http.MethodGet,
		URL:        operationURL,
		APIVersion: versionOperations,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("get operation status: %w", err)
	}
	return &out, nil
}
