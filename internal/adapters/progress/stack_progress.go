package progress

import (
	"context"

	"github.com/xterio/xdeploy/internal/cli/render"
	"github.com/xterio/xdeploy/internal/usecase"
)

// StackProgress renders the plan and per-component results of a stack
// deployment as they happen, and forwards recipe events to the inner sink
type StackProgress struct {
	renderer     *render.StackRenderer
	inner        usecase.ProgressSink
	planRendered bool
}

// NewStackProgress creates a new stack progress reporter
func NewStackProgress(renderer *render.StackRenderer, inner usecase.ProgressSink) *StackProgress {
	return &StackProgress{renderer: renderer, inner: inner}
}

// OnProgress handles progress events for stack deployments
func (p *StackProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	switch event.Stage {
	case "plan_created":
		if plan, ok := event.Metadata.(*usecase.StackPlan); ok && !p.planRendered {
			p.renderer.RenderPlan(plan)
			p.planRendered = true
		}
	case "step_starting":
		p.renderer.RenderStepStarting(event.Current, event.Total, event.Message)
	case "step_completed":
		if step, ok := event.Metadata.(*usecase.StackStepResult); ok {
			p.renderer.RenderStepResult(step)
		}
	default:
		p.inner.OnProgress(ctx, event)
	}
}

// Info prints an info message
func (p *StackProgress) Info(message string) {
	p.inner.Info(message)
}

// Error prints an error message
func (p *StackProgress) Error(message string) {
	p.inner.Error(message)
}

var _ usecase.ProgressSink = (*StackProgress)(nil)
