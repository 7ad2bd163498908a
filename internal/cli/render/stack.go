package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xterio/xdeploy/internal/usecase"
)

// StackRenderer handles rendering of stack deployments
type StackRenderer struct {
	out io.Writer
}

// NewStackRenderer creates a new stack renderer
func NewStackRenderer(out io.Writer) *StackRenderer {
	return &StackRenderer{out: out}
}

// RenderPlan displays the deployment order
func (r *StackRenderer) RenderPlan(plan *usecase.StackPlan) {
	fmt.Fprintf(r.out, "\n🎯 Deploying stack %s\n", plan.Group)
	boldColor.Fprintf(r.out, "📋 Plan: %d components\n", len(plan.Components))
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("─", 50))

	for i, step := range plan.Components {
		fmt.Fprintf(r.out, "%d. ", i+1)
		cyanColor.Fprint(r.out, step.Name)
		fmt.Fprint(r.out, " → ")
		greenColor.Fprint(r.out, string(step.Kind))

		if step.Address != nil {
			yellow.Fprintf(r.out, " (existing %s)", step.Address.Hex())
		}
		if len(step.Dependencies) > 0 {
			faintColor.Fprintf(r.out, " (depends on: %s)", strings.Join(step.Dependencies, ", "))
		}
		fmt.Fprintln(r.out)

		names := make([]string, 0, len(step.Args))
		for name := range step.Args {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			faintColor.Fprintf(r.out, "   %s = %s\n", name, step.Args[name])
		}
	}
	fmt.Fprintln(r.out)
}

// RenderStepStarting prints the header of a component
func (r *StackRenderer) RenderStepStarting(current, total int, label string) {
	boldColor.Fprintf(r.out, "\n[%d/%d] %s\n", current, total, label)
}

// RenderStepResult prints how a single component ended
func (r *StackRenderer) RenderStepResult(step *usecase.StackStepResult) {
	switch step.Status {
	case usecase.StackStepFailed:
		redColor.Fprintf(r.out, "  ✗ Failed: %v\n", step.Error)
	case usecase.StackStepReused:
		yellow.Fprintf(r.out, "  ↺ Using existing %s\n", step.Address.Hex())
	case usecase.StackStepResumed:
		yellow.Fprintf(r.out, "  ↺ Deployed by a previous run at %s\n", step.Address.Hex())
	default:
		greenColor.Fprintf(r.out, "  ✓ Deployed at %s\n", step.Address.Hex())
		if step.Verification != nil {
			fmt.Fprintf(r.out, "    %s\n", verificationLine(step.Verification))
		}
	}
}

// Render prints the summary table
func (r *StackRenderer) Render(result *usecase.StackResult) error {
	if result.Aborted {
		fmt.Fprintln(r.out, FormatWarning("Stack deployment cancelled, no transactions were sent"))
		return nil
	}

	fmt.Fprintf(r.out, "\n%s\n", strings.Repeat("═", 70))
	if result.Success {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Stack %s deployed", result.Plan.Group)))
	} else {
		fmt.Fprintln(r.out, FormatError(fmt.Sprintf("stack %s failed at %s", result.Plan.Group, result.FailedStep.Step.Name)))
	}
	fmt.Fprintln(r.out)

	t := newTable()
	t.AppendHeader(table.Row{"Component", "Kind", "Status", "Address", "Verification"})
	for _, step := range result.Steps {
		address := ""
		if step.Status != usecase.StackStepFailed {
			address = step.Address.Hex()
		}
		t.AppendRow(table.Row{step.Step.Name, step.Step.Kind, Title(string(step.Status)), address, verificationLine(step.Verification)})
	}
	fmt.Fprintln(r.out, t.Render())

	if !result.Success {
		pending := len(result.Plan.Components) - len(result.Steps)
		fmt.Fprintf(r.out, "\n%d component(s) not attempted. Fix the error and re-run with --resume.\n", pending)
	}
	return nil
}

var _ Renderer[*usecase.StackResult] = (*StackRenderer)(nil)
