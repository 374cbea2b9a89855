package handlers

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// Environment variables carrying credentials. None of them is ever logged.
const (
	envToken           = "PIPELINEKIT_TOKEN"
	envGitHubPAT       = "PIPELINEKIT_GITHUB_PAT"
	envGraphToken      = "PIPELINEKIT_GRAPH_TOKEN"
	envManagementToken = "PIPELINEKIT_MANAGEMENT_TOKEN"
	envSPClientSecret  = "PIPELINEKIT_SP_CLIENT_SECRET"
)

// getenv is replaced in tests.
var getenv = os.Getenv

// credentials are the token sources of one run. Optional ones are nil when
// their variable is unset.
type credentials struct {
	ControlPlane oauth2.TokenSource
	GitHub       oauth2.TokenSource
	Graph        oauth2.TokenSource
	Management   oauth2.TokenSource
}

func loadCredentials() (*credentials, error) {
	creds := &credentials{
		ControlPlane: staticToken(getenv(envToken)),
		GitHub:       staticToken(getenv(envGitHubPAT)),
		Graph:        staticToken(getenv(envGraphToken)),
		Management:   staticToken(getenv(envManagementToken)),
	}
	if creds.ControlPlane == nil {
		return nil, fmt.Errorf("%s environment variable is required", envToken)
	}
	return creds, nil
}

// canCreateIdentity reports whether both cloud identity credentials are set.
func (c *credentials) canCreateIdentity() bool {
	return c.Graph != nil && c.Management != nil
}

func staticToken(value string) oauth2.TokenSource {
	if value == "" {
		return nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: value})
}
