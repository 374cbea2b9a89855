package provisioning

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/imamik/pipelinekit/internal/config"
	"github.com/imamik/pipelinekit/internal/util/retry"
)

// Context wraps all dependencies and state needed for a provisioning phase.
// One Context belongs to exactly one provisioning run.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Git      GitDetailsProvider
	Renderer TemplateRenderer
	Prompter Prompter
	Observer Observer
	Timeouts *config.Timeouts
}

// NewContext creates a new provisioning context. The observer logs through
// the logr.Logger carried by ctx.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	git GitDetailsProvider,
	renderer TemplateRenderer,
	prompter Prompter,
) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(),
		Git:      git,
		Renderer: renderer,
		Prompter: prompter,
		Observer: NewConsoleObserver(logr.FromContextOrDiscard(ctx)),
		Timeouts: config.LoadTimeouts(),
	}
}

// PollOptions is the fixed-interval budget for status polling loops.
func (c *Context) PollOptions() []retry.Option {
	t := c.timeouts()
	return []retry.Option{
		retry.WithMaxAttempts(t.PollAttempts),
		retry.WithFixedInterval(t.PollInterval),
	}
}

// RetryOptions is the budget for calls retried across propagation delay.
func (c *Context) RetryOptions() []retry.Option {
	t := c.timeouts()
	return []retry.Option{
		retry.WithMaxAttempts(t.RetryMaxAttempts),
		retry.WithFixedInterval(t.RetryInitialDelay),
	}
}

func (c *Context) timeouts() *config.Timeouts {
	if c.Timeouts == nil {
		c.Timeouts = config.LoadTimeouts()
	}
	return c.Timeouts
}
