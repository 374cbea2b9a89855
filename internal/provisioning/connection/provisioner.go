package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/platform/devops"
	"github.com/imamik/pipelinekit/internal/platform/rest"
	"github.com/imamik/pipelinekit/internal/util/retry"
)

// API is the part of the control plane connections need; *devops.Client
// satisfies it.
type API interface {
	CreateServiceEndpoint(ctx context.Context, orgURL, project string, ep devops.ServiceEndpoint) (*devops.ServiceEndpoint, error)
	GetServiceEndpoint(ctx context.Context, orgURL, project, id string) (*devops.ServiceEndpoint, error)
	ListServiceEndpoints(ctx context.Context, orgURL, project, endpointType string) ([]devops.ServiceEndpoint, error)
	AuthorizeEndpointForAllPipelines(ctx context.Context, orgURL, project, id string) (*devops.PipelinePermission, error)
}

// Scope is the project a connection lives in.
type Scope struct {
	OrganizationURL string
	Project         string
}

// PollHook is told about every poll that found the connection not ready.
type PollHook func(kind domain.ConnectionKind, id string, status Status)

// Provisioner creates, waits for and authorizes service connections.
type Provisioner struct {
	api      API
	pollOpts []retry.Option
	onPoll   PollHook
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithPollOptions sets the readiness polling budget.
func WithPollOptions(opts ...retry.Option) Option {
	return func(p *Provisioner) {
		p.pollOpts = opts
	}
}

func WithPollHook(hook PollHook) Option {
	return func(p *Provisioner) {
		p.onPoll = hook
	}
}

// NewProvisioner creates a connection provisioner polling 20 times every 2s
// unless configured otherwise.
func NewProvisioner(api API, opts ...Option) *Provisioner {
	p := &Provisioner{
		api: api,
		pollOpts: []retry.Option{
			retry.WithMaxAttempts(20),
			retry.WithFixedInterval(2 * time.Second),
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Create posts ep, waits until the connection is ready and authorizes it for
// all pipelines. The returned connection is usable.
func (p *Provisioner) Create(ctx context.Context, scope Scope, kind domain.ConnectionKind, ep devops.ServiceEndpoint) (domain.ServiceConnection, error) {
	created, err := p.api.CreateServiceEndpoint(ctx, scope.OrganizationURL, scope.Project, ep)
	if err != nil {
		return domain.ServiceConnection{}, err
	}
	logr.FromContextOrDiscard(ctx).V(1).Info("service connection created", "kind", kind.String(), "id", created.ID, "name", created.Name)

	return p.Use(ctx, scope, kind, created.ID, created.Name)
}

// Use waits for an existing connection and authorizes it.
func (p *Provisioner) Use(ctx context.Context, scope Scope, kind domain.ConnectionKind, id, name string) (domain.ServiceConnection, error) {
	if err := p.WaitReady(ctx, scope, kind, id); err != nil {
		return domain.ServiceConnection{}, err
	}
	if err := p.Authorize(ctx, scope, id); err != nil {
		return domain.ServiceConnection{}, err
	}
	return domain.ServiceConnection{
		ID:                        id,
		Name:                      name,
		Kind:                      kind,
		State:                     domain.ConnectionReady,
		AuthorizedForAllPipelines: true,
	}, nil
}

// WaitReady polls the connection until it is ready. A Failed status stops
// immediately; running out of polls yields a *domain.ConnectionNotReadyError
// that also matches domain.ErrProvisioningTimedOut. Transient request errors
// use up polls; other request errors stop.
func (p *Provisioner) WaitReady(ctx context.Context, scope Scope, kind domain.ConnectionKind, id string) error {
	readiness, ok := Readiness[kind]
	if !ok {
		return fmt.Errorf("no readiness check for %s connections", kind)
	}

	var (
		last     Status
		attempts int
	)
	opts := append(append([]retry.Option{}, p.pollOpts...), retry.WithRetryIf(rest.IsTransient))

	err := retry.Poll(ctx, func(ctx context.Context) (bool, error) {
		attempts++
		ep, err := p.api.GetServiceEndpoint(ctx, scope.OrganizationURL, scope.Project, id)
		if err != nil {
			return false, err
		}
		last = readiness(ep)

		switch last.State {
		case domain.ConnectionReady:
			return true, nil
		case domain.ConnectionFailed:
			return false, retry.Fatal(&domain.ConnectionNotReadyError{
				ConnectionID: id,
				Kind:         kind,
				State:        last.Raw,
				Message:      last.Message,
				Attempts:     attempts,
				Failed:       true,
			})
		default:
			if p.onPoll != nil {
				p.onPoll(kind, id, last)
			}
			return false, nil
		}
	}, opts...)

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		msg := last.Message
		if exhausted.Err != nil {
			msg = exhausted.Err.Error()
		}
		return &domain.ConnectionNotReadyError{
			ConnectionID: id,
			Kind:         kind,
			State:        last.Raw,
			Message:      msg,
			Attempts:     exhausted.Attempts,
		}
	}
	return err
}

// Authorize lets every pipeline in the project use the connection. The
// server must echo the authorization back.
func (p *Provisioner) Authorize(ctx context.Context, scope Scope, id string) error {
	perm, err := p.api.AuthorizeEndpointForAllPipelines(ctx, scope.OrganizationURL, scope.Project, id)
	if err != nil {
		return err
	}
	if !perm.Authorized() {
		return &domain.AuthorizationFailedError{ConnectionID: id}
	}
	return nil
}

// FindReusable returns the first connection of the given type called name
// whose server-side operation has not failed, or nil.
func (p *Provisioner) FindReusable(ctx context.Context, scope Scope, endpointType, name string) (*devops.ServiceEndpoint, error) {
	endpoints, err := p.api.ListServiceEndpoints(ctx, scope.OrganizationURL, scope.Project, endpointType)
	if err != nil {
		return nil, err
	}
	for i := range endpoints {
		if endpoints[i].Name != name || operationState(&endpoints[i]).State == domain.ConnectionFailed {
			continue
		}
		return &endpoints[i], nil
	}
	return nil, nil
}
