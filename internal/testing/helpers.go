package testing

import (
	"context"
	"testing"
	"time"

	"github.com/imamik/pipelinekit/internal/config"
	"github.com/imamik/pipelinekit/internal/provisioning"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// FastTimeouts keeps the production attempt budgets but polls every
// millisecond.
func FastTimeouts() *config.Timeouts {
	return &config.Timeouts{
		PollInterval:      time.Millisecond,
		PollAttempts:      20,
		HTTPTimeout:       5 * time.Second,
		RetryMaxAttempts:  20,
		RetryInitialDelay: time.Millisecond,
	}
}

// NewProvisioningContext builds a run context with fast timeouts and a
// recording observer. Collaborators are left nil.
func NewProvisioningContext(t *testing.T, cfg *config.Config) (*provisioning.Context, *RecordingObserver) {
	t.Helper()
	obs := NewRecordingObserver()
	ctx := provisioning.NewContext(TestContext(t), cfg, nil, nil, nil)
	ctx.Observer = obs
	ctx.Timeouts = FastTimeouts()
	return ctx, obs
}
