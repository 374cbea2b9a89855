// Package devops is the client for the CI control plane's REST API:
// organizations, projects, repositories, service endpoints, build
// definitions and runs.
//
// Calls that target a single organization take its resolved base URL (see
// [OrganizationURL]) rather than a name, so the caller owns organization
// resolution. Each method is exactly one HTTP request with an explicit API
// version; nothing is retried here.
package devops

import (
	"context"
	"strings"

	"github.com/imamik/pipelinekit/internal/platform/rest"
)

// Default service roots.
const (
	DefaultAccountsURL          = "https://app.vssps.visualstudio.com"
	DefaultAcquisitionURL       = "https://app.vsaex.visualstudio.com"
	DefaultOrganizationTemplate = "https://dev.azure.com/{organization}"
	DefaultPreferredRegion      = "CUS"
)

// API versions per endpoint family.
const (
	versionAccounts       = "5.0"
	versionNameCheck      = "5.0-preview.1"
	versionAcquisition    = "4.0-preview.1"
	versionProjects       = "5.0"
	versionOperations     = "5.0"
	versionRepositories   = "5.0"
	versionEndpoints      = "5.1-preview.2"
	versionPermissions    = "5.1-preview.1"
	versionDefinitions    = "5.0-preview.7"
	versionBuilds         = "5.2-preview.5"
	versionHierarchyQuery = "5.0-preview.1"
	versionProfile        = "5.0"
	versionConnectionData = "5.0"
)

var (
	excludeURLs   = []string{"excludeUrls=true"}
	webAPIOptions = []string{"excludeUrls=true", "enumsAsNumbers=true", "msDateFormat=true", "noArrayWrap=true"}
)

// Doer is the request layer the client sends through; *rest.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req rest.Request, out any) error
}

// Endpoints are the service roots the client talks to.
type Endpoints struct {
	Accounts    string
	Acquisition string
	// OrganizationTemplate builds an organization URL when the listing does
	// not carry one; "{organization}" is replaced with the name.
	OrganizationTemplate string
	PreferredRegion      string
}

// DefaultEndpoints returns the public service roots.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Accounts:             DefaultAccountsURL,
		Acquisition:          DefaultAcquisitionURL,
		OrganizationTemplate: DefaultOrganizationTemplate,
		PreferredRegion:      DefaultPreferredRegion,
	}
}

// Client talks to the CI control plane.
type Client struct {
	rest      Doer
	endpoints Endpoints
}

// NewClient creates a control-plane client. Empty endpoint fields fall back
// to the defaults.
func NewClient(doer Doer, endpoints Endpoints) *Client {
	def := DefaultEndpoints()
	if endpoints.Accounts == "" {
		endpoints.Accounts = def.Accounts
	}
	if endpoints.Acquisition == "" {
		endpoints.Acquisition = def.Acquisition
	}
	if endpoints.OrganizationTemplate == "" {
		endpoints.OrganizationTemplate = def.OrganizationTemplate
	}
	if endpoints.PreferredRegion == "" {
		endpoints.PreferredRegion = def.PreferredRegion
	}
	endpoints.Accounts = strings.TrimRight(endpoints.Accounts, "/")
	endpoints.Acquisition = strings.TrimRight(endpoints.Acquisition, "/")
	return &Client{rest: doer, endpoints: endpoints}
}

// OrganizationURL is the fallback base URL for an organization name.
func (c *Client) OrganizationURL(name string) string {
	return strings.TrimRight(strings.ReplaceAll(c.endpoints.OrganizationTemplate, "{organization}", name), "/")
}

func join(base string, parts ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(strings.Trim(p, "/"))
	}
	return b.String()
}
