package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/xterio/xdeploy/internal/cli/render"
	"github.com/xterio/xdeploy/internal/usecase"
)

func init() {
	color.NoColor = true
}

func TestSpinnerSink_StageSummary(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSpinnerSink(&buf)
	ctx := context.Background()

	for _, stage := range []string{"creating", "initializing", "configuring", "configuring"} {
		sink.OnProgress(ctx, usecase.ProgressEvent{Stage: stage, Message: stage, Spinner: true})
	}
	assert.Len(t, sink.stages, 3)

	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "ready"})
	assert.False(t, sink.spinner.Active())
	assert.Contains(t, buf.String(), "creating (")
	assert.Contains(t, buf.String(), "→ configuring")
	assert.Contains(t, buf.String(), "→ ready")
	assert.Empty(t, sink.stages)
}

func TestLineSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLineSink(&buf)
	sink.OnProgress(context.Background(), usecase.ProgressEvent{Stage: "configuring", Current: 1, Total: 3, Message: "setGateway"})
	sink.OnProgress(context.Background(), usecase.ProgressEvent{Stage: "ready"})
	sink.Info("done")
	assert.Equal(t, "[configuring 1/3] setGateway\ndone\n", buf.String())
}

func TestStackProgress(t *testing.T) {
	var out, inner bytes.Buffer
	p := NewStackProgress(render.NewStackRenderer(&out), NewLineSink(&inner))
	ctx := context.Background()

	plan := &usecase.StackPlan{Group: "core", Components: []*usecase.StackStep{{Name: "gateway", Kind: "gateway"}}}
	p.OnProgress(ctx, usecase.ProgressEvent{Stage: "plan_created", Metadata: plan})
	p.OnProgress(ctx, usecase.ProgressEvent{Stage: "plan_created", Metadata: plan})
	p.OnProgress(ctx, usecase.ProgressEvent{Stage: "step_starting", Current: 1, Total: 1, Message: "gateway (gateway)"})
	p.OnProgress(ctx, usecase.ProgressEvent{Stage: "creating", Message: "TokenGateway"})

	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("Deploying stack core")))
	assert.Contains(t, out.String(), "[1/1] gateway (gateway)")
	assert.Equal(t, "[creating] TokenGateway\n", inner.String())
}
