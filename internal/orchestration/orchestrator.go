package orchestration

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/imamik/pipelinekit/internal/config"
	"github.com/imamik/pipelinekit/internal/provisioning"
	"github.com/imamik/pipelinekit/internal/provisioning/connection"
	"github.com/imamik/pipelinekit/internal/provisioning/organization"
	"github.com/imamik/pipelinekit/internal/provisioning/pipeline"
	"github.com/imamik/pipelinekit/internal/provisioning/principal"
)

// ControlPlane is every control plane call a run makes; *devops.Client
// satisfies it.
type ControlPlane interface {
	organization.API
	connection.API
	pipeline.API
}

// Orchestrator runs the provisioning workflow for one repository.
type Orchestrator struct {
	controlPlane ControlPlane
	identity     principal.API
	sourceToken  oauth2.TokenSource
	config       *config.Config

	git      provisioning.GitDetailsProvider
	renderer provisioning.TemplateRenderer
	prompter provisioning.Prompter
	observer provisioning.Observer
	timeouts *config.Timeouts

	state *provisioning.State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithIdentity sets the cloud identity client used when a service principal
// has to be created.
func WithIdentity(api principal.API) Option {
	return func(o *Orchestrator) {
		o.identity = api
	}
}

// WithSourceToken supplies the GitHub personal access token. Without it the
// prompter is asked.
func WithSourceToken(ts oauth2.TokenSource) Option {
	return func(o *Orchestrator) {
		o.sourceToken = ts
	}
}

func WithGit(git provisioning.GitDetailsProvider) Option {
	return func(o *Orchestrator) {
		o.git = git
	}
}

func WithRenderer(r provisioning.TemplateRenderer) Option {
	return func(o *Orchestrator) {
		o.renderer = r
	}
}

func WithPrompter(p provisioning.Prompter) Option {
	return func(o *Orchestrator) {
		o.prompter = p
	}
}

// WithObserver replaces the console observer built from the context logger.
func WithObserver(obs provisioning.Observer) Option {
	return func(o *Orchestrator) {
		o.observer = obs
	}
}

// WithTimeouts replaces the environment-derived poll and retry budgets.
func WithTimeouts(t *config.Timeouts) Option {
	return func(o *Orchestrator) {
		o.timeouts = t
	}
}

// New creates an orchestrator for cfg.
func New(cp ControlPlane, cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		controlPlane: cp,
		config:       cfg,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Phases returns the phases of a run in execution order.
func (o *Orchestrator) Phases() []provisioning.Phase {
	return []provisioning.Phase{
		provisioning.NewValidationPhase(),
		provisioning.NewRepositoryPhase(),
		organization.NewProvisioner(o.controlPlane),
		connection.NewSourcePhase(o.controlPlane, o.sourceToken),
		principal.NewProvisioner(o.identity),
		connection.NewCloudPhase(o.controlPlane),
		pipeline.NewProvisioner(o.controlPlane),
	}
}

// Run executes every phase and returns the web URL of the queued run.
func (o *Orchestrator) Run(ctx context.Context) (string, error) {
	pCtx := provisioning.NewContext(ctx, o.config, o.git, o.renderer, o.prompter)
	if o.observer != nil {
		pCtx.Observer = o.observer
	}
	// Every event of a run carries the same run id.
	pCtx.Observer = pCtx.Observer.WithFields(map[string]string{"run": uuid.NewString()})
	if o.timeouts != nil {
		pCtx.Timeouts = o.timeouts
	}
	o.state = pCtx.State

	if err := provisioning.NewPipeline(o.Phases()...).Run(pCtx); err != nil {
		return "", err
	}
	if pCtx.State.Run == nil || pCtx.State.Run.WebURL == "" {
		return "", errors.New("provisioning finished without a pipeline run")
	}
	return pCtx.State.Run.WebURL, nil
}

// State returns what the last run resolved and created, including partial
// results of a failed run. It is nil before Run.
func (o *Orchestrator) State() *provisioning.State {
	return o.state
}
