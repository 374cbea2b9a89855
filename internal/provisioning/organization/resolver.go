package organization

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/platform/devops"
	"github.com/imamik/pipelinekit/internal/platform/rest"
	"github.com/imamik/pipelinekit/internal/util/retry"
)

// API is the part of the control plane the resolver needs; *devops.Client
// satisfies it.
type API interface {
	NameChecker
	ConnectionData(ctx context.Context) (*devops.ConnectionData, error)
	CreateProfile(ctx context.Context) error
	ListOrganizations(ctx context.Context, memberID string) ([]domain.Organization, error)
	CreateOrganization(ctx context.Context, name string) (*devops.Collection, error)
	GetOperation(ctx context.Context, operationURL string) (*devops.Operation, error)
	OrganizationURL(name string) string
	CreateProject(ctx context.Context, orgURL, name string) (*devops.OperationReference, error)
	GetProject(ctx context.Context, orgURL, nameOrID string) (*devops.Project, error)
	ListProjects(ctx context.Context, orgURL string) ([]devops.Project, error)
	GetRepository(ctx context.Context, orgURL, project, name string) (*devops.Repository, error)
}

// Resolver maps organization names to organizations for one provisioning
// run. The listing is fetched at most once unless a refresh is forced after
// a creation. A Resolver is not safe for concurrent use.
type Resolver struct {
	api      API
	pollOpts []retry.Option

	memberID string
	orgs     []domain.Organization
	loaded   bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPollOptions sets the budget for operation status polling.
func WithPollOptions(opts ...retry.Option) Option {
	return func(r *Resolver) {
		r.pollOpts = opts
	}
}

// NewResolver creates a resolver. Polling defaults to 20 attempts every 2s.
func NewResolver(api API, opts ...Option) *Resolver {
	r := &Resolver{
		api: api,
		pollOpts: []retry.Option{
			retry.WithMaxAttempts(20),
			retry.WithFixedInterval(defaultPollInterval),
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the organization called name (case-insensitive). A cache
// miss triggers one listing; an organization absent from it is NotFound.
func (r *Resolver) Resolve(ctx context.Context, name string) (domain.Organization, error) {
	if org, ok := r.lookup(name); ok {
		return org, nil
	}
	if !r.loaded {
		if _, err := r.List(ctx, false); err != nil {
			return domain.Organization{}, err
		}
		if org, ok := r.lookup(name); ok {
			return org, nil
		}
	}
	return domain.Organization{}, &domain.NotFoundError{Kind: "organization", Name: name}
}

// List returns the organizations of the signed-in identity, fetching them
// when not cached or when refresh is set.
func (r *Resolver) List(ctx context.Context, refresh bool) ([]domain.Organization, error) {
	if r.loaded && !refresh {
		return r.orgs, nil
	}

	memberID, err := r.member(ctx)
	if err != nil {
		return nil, err
	}
	orgs, err := r.api.ListOrganizations(ctx, memberID)
	if err != nil {
		return nil, err
	}
	r.orgs = orgs
	r.loaded = true
	return orgs, nil
}

// Create registers a new organization, waits for its acquisition operation
// and refreshes the listing.
func (r *Resolver) Create(ctx context.Context, name string) (domain.Organization, error) {
	log := logr.FromContextOrDiscard(ctx)

	coll, err := r.api.CreateOrganization(ctx, name)
	if err != nil {
		return domain.Organization{}, err
	}

	if coll.Operation != nil && coll.Operation.URL != "" {
		log.V(1).Info("waiting for organization creation", "name", name, "operation", coll.Operation.ID)
		if err := waitForOperation(ctx, r.api, coll.Operation.URL, "organization "+name+" creation", r.pollOpts); err != nil {
			return domain.Organization{}, err
		}
	}

	if _, err := r.List(ctx, true); err != nil {
		return domain.Organization{}, err
	}
	if org, ok := r.lookup(name); ok {
		return org, nil
	}

	// The listing can lag behind a fresh organization.
	org := domain.Organization{ID: coll.ID, Name: name, BaseURL: r.api.OrganizationURL(name)}
	if coll.Name != "" {
		org.Name = coll.Name
	}
	r.orgs = append(r.orgs, org)
	log.V(1).Info("organization not listed yet, using its default URL", "name", name, "url", org.BaseURL)
	return org, nil
}

func (r *Resolver) lookup(name string) (domain.Organization, bool) {
	for _, org := range r.orgs {
		if org.Matches(name) {
			return org, true
		}
	}
	return domain.Organization{}, false
}

// member returns the identity id used to list organizations. A user without
// a profile gets one created, then connection data is fetched again.
func (r *Resolver) member(ctx context.Context) (string, error) {
	if r.memberID != "" {
		return r.memberID, nil
	}

	data, err := r.api.ConnectionData(ctx)
	if err != nil {
		var apiErr *rest.APIError
		if errors.As(err, &apiErr) && !rest.IsTransient(err) {
			logr.FromContextOrDiscard(ctx).Info("no connection data, creating user profile", "status", apiErr.StatusCode)
			if perr := r.api.CreateProfile(ctx); perr != nil {
				return "", fmt.Errorf("failed to create user profile after %v: %w", err, perr)
			}
			data, err = r.api.ConnectionData(ctx)
		}
		if err != nil {
			return "", err
		}
	}
	if data.AuthenticatedUser.ID == "" {
		return "", errors.New("connection data has no authenticated user")
	}
	r.memberID = data.AuthenticatedUser.ID
	return r.memberID, nil
}
