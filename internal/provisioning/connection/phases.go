package connection

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/platform/azure"
	"github.com/imamik/pipelinekit/internal/platform/devops"
	"github.com/imamik/pipelinekit/internal/provisioning"
	"github.com/imamik/pipelinekit/internal/util/naming"
)

const (
	sourcePhase = "source-connection"
	cloudPhase  = "cloud-connection"
)

func scopeOf(ctx *provisioning.Context) (Scope, error) {
	if ctx.State.Organization == nil || ctx.State.Project == nil {
		return Scope{}, errors.New("organization and project must be resolved first")
	}
	return Scope{OrganizationURL: ctx.State.OrganizationURL(), Project: ctx.State.ProjectName()}, nil
}

func newProvisioner(api API, ctx *provisioning.Context, phase string) *Provisioner {
	return NewProvisioner(api,
		WithPollOptions(ctx.PollOptions()...),
		WithPollHook(func(kind domain.ConnectionKind, id string, st Status) {
			provisioning.LogResourceWaiting(ctx.Observer, phase, kind.String()+" connection", id, st.Raw)
		}),
	)
}

// SourcePhase connects GitHub repositories to the project. Repositories
// hosted by the control plane need no connection and skip it.
type SourcePhase struct {
	api API
	// PAT supplies the GitHub personal access token. When nil the token is
	// asked for through the run's Prompter.
	pat oauth2.TokenSource
}

// NewSourcePhase creates the source connection phase.
func NewSourcePhase(api API, pat oauth2.TokenSource) *SourcePhase {
	return &SourcePhase{api: api, pat: pat}
}

// Name implements the provisioning.Phase interface.
func (s *SourcePhase) Name() string {
	return sourcePhase
}

// Provision implements the provisioning.Phase interface.
func (s *SourcePhase) Provision(ctx *provisioning.Context) error {
	repo := ctx.State.Repository
	if repo.Provider != domain.ProviderGitHub {
		provisioning.LogPhaseSkipped(ctx.Observer, sourcePhase, "repository is hosted by the control plane")
		return nil
	}

	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}
	p := newProvisioner(s.api, ctx, sourcePhase)

	name := ctx.Config.SourceConnection.Name
	if name != "" {
		existing, err := p.FindReusable(ctx, scope, domain.ConnectionSourceControl.EndpointType(), name)
		if err != nil {
			return err
		}
		if existing != nil {
			provisioning.LogResourceExists(ctx.Observer, sourcePhase, "service connection", existing.Name, existing.ID)
			conn, err := p.Use(ctx, scope, domain.ConnectionSourceControl, existing.ID, existing.Name)
			if err != nil {
				return err
			}
			s.store(ctx, conn)
			return nil
		}
	} else {
		name = naming.ServiceConnection(repo.RepositoryName)
	}

	token, err := s.token(ctx)
	if err != nil {
		return err
	}

	provisioning.LogResourceCreating(ctx.Observer, sourcePhase, "service connection", name)
	conn, err := p.Create(ctx, scope, domain.ConnectionSourceControl, devops.NewGitHubEndpoint(name, token))
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, sourcePhase, "service connection", name, err)
		return err
	}
	provisioning.LogResourceCreated(ctx.Observer, sourcePhase, "service connection", conn.Name, conn.ID)
	s.store(ctx, conn)
	return nil
}

func (s *SourcePhase) store(ctx *provisioning.Context, conn domain.ServiceConnection) {
	ctx.State.SourceConnection = &conn
	ctx.State.Repository.ServiceConnectionID = conn.ID
}

func (s *SourcePhase) token(ctx *provisioning.Context) (string, error) {
	var token string
	switch {
	case s.pat != nil:
		t, err := s.pat.Token()
		if err != nil {
			return "", fmt.Errorf("failed to read GitHub personal access token: %w", err)
		}
		token = t.AccessToken
	case ctx.Prompter != nil:
		t, err := ctx.Prompter.PersonalAccessToken(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to read GitHub personal access token: %w", err)
		}
		token = t
	}
	if strings.TrimSpace(token) == "" {
		return "", &domain.ValidationError{Field: "GitHub personal access token", Reason: "is required to connect a GitHub repository"}
	}
	return strings.TrimSpace(token), nil
}

// CloudPhase connects the project to the target's subscription through the
// run's service principal.
type CloudPhase struct {
	api API
}

// NewCloudPhase creates the cloud connection phase.
func NewCloudPhase(api API) *CloudPhase {
	return &CloudPhase{api: api}
}

// Name implements the provisioning.Phase interface.
func (c *CloudPhase) Name() string {
	return cloudPhase
}

// Provision implements the provisioning.Phase interface.
func (c *CloudPhase) Provision(ctx *provisioning.Context) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}

	sp := ctx.State.ServicePrincipal
	if sp == nil {
		cfg := ctx.Config.ServicePrincipal
		if !cfg.Configured() {
			return errors.New("no service principal available for the cloud connection")
		}
		sp = &domain.ServicePrincipal{ClientID: cfg.ClientID, Secret: cfg.ClientSecret, ObjectID: cfg.ObjectID}
	}

	target := ctx.Config.Target.Resource()
	if target.SubscriptionID == "" {
		target.SubscriptionID = azure.SubscriptionFromResourceID(target.ID)
	}
	name := naming.ServiceConnection(target.Name)

	ep := devops.NewAzureRMEndpoint(devops.AzureRMEndpoint{
		Name:             name,
		TenantID:         target.TenantID,
		SubscriptionID:   target.SubscriptionID,
		SubscriptionName: target.SubscriptionName,
		Scope:            azure.ResourceGroupScope(target.ID),
		ClientID:         sp.ClientID,
		ClientSecret:     sp.Secret,
		ObjectID:         sp.ObjectID,
	})

	provisioning.LogResourceCreating(ctx.Observer, cloudPhase, "service connection", name)
	conn, err := newProvisioner(c.api, ctx, cloudPhase).Create(ctx, scope, domain.ConnectionCloudSubscription, ep)
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, cloudPhase, "service connection", name, err)
		return err
	}
	provisioning.LogResourceCreated(ctx.Observer, cloudPhase, "service connection", conn.Name, conn.ID)
	ctx.State.CloudConnection = &conn
	return nil
}
