// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/oauth2"

	"github.com/imamik/pipelinekit/internal/config"
	"github.com/imamik/pipelinekit/internal/orchestration"
	"github.com/imamik/pipelinekit/internal/platform/azure"
	"github.com/imamik/pipelinekit/internal/platform/devops"
	"github.com/imamik/pipelinekit/internal/platform/rest"
	"github.com/imamik/pipelinekit/internal/provisioning"
	"github.com/imamik/pipelinekit/internal/util/prerequisites"
)

// ConfigureOptions are the flag values of the configure command. Empty
// values keep what the configuration file says.
type ConfigureOptions struct {
	ConfigPath         string
	Organization       string
	CreateOrganization bool
	Project            string
	RemoteURL          string
	Branch             string
	Strategy           string
	ResourceName       string
	ResourceID         string
	TenantID           string
	MetricsFile        string
}

// Runner interface for testing - matches orchestration.Orchestrator.
type Runner interface {
	Run(ctx context.Context) (string, error)
	State() *provisioning.State
}

var userAgent = "pipelinekit/dev"

// SetUserAgentVersion tags control plane requests with the CLI version.
func SetUserAgentVersion(v string) {
	userAgent = "pipelinekit/" + v
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads config from file, returning defaults when it is absent.
	loadConfigFile = config.LoadOptional

	// loadTimeouts reads poll and retry budgets from the environment.
	loadTimeouts = config.LoadTimeouts

	// newHTTPClient creates the HTTP client shared by every request layer.
	newHTTPClient = func(t *config.Timeouts) *http.Client {
		return &http.Client{Timeout: t.HTTPTimeout}
	}

	// newRunner creates the orchestrator for one run.
	newRunner = func(cp orchestration.ControlPlane, cfg *config.Config, opts ...orchestration.Option) Runner {
		return orchestration.New(cp, cfg, opts...)
	}

	// checkGit verifies git is installed before the working tree is read.
	checkGit = prerequisites.CheckGit

	// stdout receives the run summary.
	stdout io.Writer = os.Stdout
)

// Configure provisions a pipeline for a repository and queues its first run.
//
// This function:
//  1. Loads the configuration file (if any) and applies flag overrides
//  2. Builds the control plane client from PIPELINEKIT_TOKEN, plus a cloud
//     identity client when graph and management tokens are set
//  3. Reads the working tree through git unless a remote URL is given
//  4. Runs every provisioning phase and prints the link to the queued run
//
// Call metrics are written to opts.MetricsFile whether or not the run
// succeeds.
func Configure(ctx context.Context, opts ConfigureOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	creds, err := loadCredentials()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := rest.NewMetrics(reg)
	timeouts := loadTimeouts()
	log := logr.FromContextOrDiscard(ctx)
	httpClient := newHTTPClient(timeouts)

	newREST := func(ts oauth2.TokenSource) *rest.Client {
		return rest.NewClient(ts,
			rest.WithHTTPClient(httpClient),
			rest.WithMetrics(metrics),
			rest.WithLogger(log),
			rest.WithUserAgent(userAgent),
		)
	}

	controlPlane := devops.NewClient(newREST(creds.ControlPlane), devops.Endpoints{
		Accounts:             cfg.Endpoints.Accounts,
		Acquisition:          cfg.Endpoints.Acquisition,
		OrganizationTemplate: cfg.Endpoints.OrganizationTemplate,
		PreferredRegion:      cfg.Organization.Region,
	})

	runOpts := []orchestration.Option{
		orchestration.WithTimeouts(timeouts),
		orchestration.WithPrompter(newPrompter()),
	}
	if creds.GitHub != nil {
		runOpts = append(runOpts, orchestration.WithSourceToken(creds.GitHub))
	}
	if creds.canCreateIdentity() {
		runOpts = append(runOpts, orchestration.WithIdentity(
			azure.NewClient(newREST(creds.Graph), newREST(creds.Management), azureOptions(cfg)...),
		))
	}
	if cfg.Repository.RemoteURL == "" {
		if err := checkGit(); err != nil {
			return err
		}
		runOpts = append(runOpts, orchestration.WithGit(newLocalGit(".")))
	}

	runner := newRunner(controlPlane, cfg, runOpts...)
	runURL, runErr := runner.Run(ctx)

	if opts.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, reg); err != nil {
			log.Error(err, "failed to write metrics file", "path", opts.MetricsFile)
		}
	}

	if runErr != nil {
		fmt.Fprint(stdout, renderFailure(runner.State()))
		return runErr
	}
	fmt.Fprint(stdout, renderSuccess(runner.State(), runURL))
	return nil
}

// loadConfig reads the configuration file and applies flag overrides and
// the service principal secret from the environment. Validation happens in
// the first provisioning phase.
func loadConfig(opts ConfigureOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultConfigFile
	}
	cfg, err := loadConfigFile(path)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		value  string
		target *string
	}{
		{opts.Organization, &cfg.Organization.Name},
		{opts.Project, &cfg.Project.Name},
		{opts.RemoteURL, &cfg.Repository.RemoteURL},
		{opts.Branch, &cfg.Repository.Branch},
		{opts.Strategy, &cfg.Pipeline.Strategy},
		{opts.ResourceName, &cfg.Target.ResourceName},
		{opts.ResourceID, &cfg.Target.ResourceID},
		{opts.TenantID, &cfg.Target.TenantID},
	}
	for _, o := range overrides {
		if o.value != "" {
			*o.target = o.value
		}
	}
	if opts.CreateOrganization {
		cfg.Organization.Create = true
	}
	if secret := getenv(envSPClientSecret); secret != "" {
		cfg.ServicePrincipal.ClientSecret = secret
	}
	return cfg, nil
}

func azureOptions(cfg *config.Config) []azure.Option {
	var opts []azure.Option
	if cfg.Endpoints.Graph != "" {
		opts = append(opts, azure.WithGraphURL(cfg.Endpoints.Graph))
	}
	if cfg.Endpoints.Management != "" {
		opts = append(opts, azure.WithManagementURL(cfg.Endpoints.Management))
	}
	return opts
}
