package principal

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/platform/azure"
	"github.com/imamik/pipelinekit/internal/provisioning"
	"github.com/imamik/pipelinekit/internal/util/naming"
	"github.com/imamik/pipelinekit/internal/util/retry"
)

const (
	phase        = "service-principal"
	secretLength = 20
)

// API is the cloud identity surface; *azure.Client satisfies it.
type API interface {
	CreateApplication(ctx context.Context, tenantID, name, secret string) (*azure.Application, error)
	CreateServicePrincipal(ctx context.Context, tenantID, appID string) (*azure.ServicePrincipal, error)
	AssignRole(ctx context.Context, scope, roleID, principalID string) (*azure.RoleAssignment, error)
}

// Provisioner creates an application, its service principal and a
// Contributor role assignment on the target's resource group.
type Provisioner struct {
	api API
}

// NewProvisioner creates a new service principal provisioner. api may be nil
// when every run supplies existing credentials.
func NewProvisioner(api API) *Provisioner {
	return &Provisioner{api: api}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config.ServicePrincipal
	if cfg.Configured() {
		ctx.State.ServicePrincipal = &domain.ServicePrincipal{
			ClientID: cfg.ClientID,
			Secret:   cfg.ClientSecret,
			ObjectID: cfg.ObjectID,
		}
		provisioning.LogPhaseSkipped(ctx.Observer, phase, "using configured service principal "+cfg.ClientID)
		return nil
	}
	if p.api == nil {
		return errors.New("creating a service principal needs graph and management credentials")
	}

	target := ctx.Config.Target.Resource()
	name := naming.Application(ctx.State.Organization.Name, ctx.State.ProjectName())
	secret, err := naming.Password(secretLength)
	if err != nil {
		return err
	}

	provisioning.LogResourceCreating(ctx.Observer, phase, "application", name)
	app, err := p.api.CreateApplication(ctx, target.TenantID, name, secret)
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phase, "application", name, err)
		return err
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "application", name, app.AppID)

	// A new application takes a while to become visible to the graph and
	// the resource manager.
	var sp *azure.ServicePrincipal
	err = retry.WithExponentialBackoff(ctx, func() error {
		var err error
		sp, err = p.api.CreateServicePrincipal(ctx, target.TenantID, app.AppID)
		return err
	}, ctx.RetryOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create service principal for application %s: %w", app.AppID, err)
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "service principal", name, sp.ObjectID)

	scope := azure.ResourceGroupScope(target.ID)
	err = retry.WithExponentialBackoff(ctx, func() error {
		_, err := p.api.AssignRole(ctx, scope, azure.ContributorRoleID, sp.ObjectID)
		return err
	}, ctx.RetryOptions()...)
	if err != nil {
		return fmt.Errorf("failed to assign Contributor on %s: %w", scope, err)
	}
	ctx.Observer.Printf("[%s] Granted Contributor on %s to %s", phase, scope, app.AppID)

	ctx.State.ServicePrincipal = &domain.ServicePrincipal{
		ClientID: app.AppID,
		Secret:   secret,
		ObjectID: sp.ObjectID,
	}
	return nil
}
