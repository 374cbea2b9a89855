package provisioning

import (
	"fmt"
	"time"

	"github.com/imamik/pipelinekit/internal/domain"
)

// Pipeline is an ordered list of phases. Each phase must succeed before the
// next one starts.
type Pipeline struct {
	Phases []Phase
}

// NewPipeline creates a pipeline running phases in the given order.
func NewPipeline(phases ...Phase) *Pipeline {
	return &Pipeline{Phases: phases}
}

// Run executes the pipeline. See RunPhases.
func (p *Pipeline) Run(ctx *Context) error {
	return RunPhases(ctx, p.Phases)
}

// RunPhases executes all provisioning phases sequentially and stops at the
// first failure. Completed phases are not undone.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting provisioning with %d phases...", len(phases))

	for i, phase := range phases {
		if err := ctx.Err(); err != nil {
			return &domain.StepError{Step: phase.Name(), Err: err}
		}

		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		LogPhaseStart(ctx.Observer, name)

		if err := phase.Provision(ctx); err != nil {
			LogPhaseFailed(ctx.Observer, name, err)
			return &domain.StepError{Step: phase.Name(), Err: err}
		}

		LogPhaseComplete(ctx.Observer, name, time.Since(phaseStart))
		ctx.Observer.Progress("provisioning", i+1, len(phases))
	}

	ctx.Observer.Printf("Provisioning completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
