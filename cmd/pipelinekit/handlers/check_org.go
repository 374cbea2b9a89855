package handlers

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"golang.org/x/oauth2"

	"github.com/imamik/pipelinekit/internal/platform/devops"
	"github.com/imamik/pipelinekit/internal/platform/rest"
	"github.com/imamik/pipelinekit/internal/provisioning/organization"
)

// newNameChecker creates the availability client; replaced in tests.
var newNameChecker = func(ctx context.Context, ts oauth2.TokenSource) organization.NameChecker {
	return devops.NewClient(rest.NewClient(ts,
		rest.WithLogger(logr.FromContextOrDiscard(ctx)),
		rest.WithUserAgent(userAgent),
	), devops.Endpoints{})
}

// CheckOrg validates an organization name locally and, when a token is
// available, asks the control plane whether the name is still free.
func CheckOrg(ctx context.Context, name string) error {
	if err := organization.ValidateName(name); err != nil {
		return err
	}

	ts := staticToken(getenv(envToken))
	if ts == nil {
		fmt.Fprintf(stdout, "%q is a valid organization name (set %s to check availability)\n", name, envToken)
		return nil
	}

	if err := organization.Validate(ctx, newNameChecker(ctx, ts), name); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%q is a valid organization name and available\n", name)
	return nil
}
