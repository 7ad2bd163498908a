package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/xterio/xdeploy/internal/domain/models"
	"github.com/xterio/xdeploy/internal/usecase"
)

// SpinnerSink shows a spinner while transactions are pending and records how
// long each stage of a recipe took
type SpinnerSink struct {
	out     io.Writer
	spinner *spinner.Spinner
	stages  []stageInfo
}

type stageInfo struct {
	Stage     string
	StartTime time.Time
	EndTime   time.Time
}

// NewSpinnerSink creates a spinner-based progress sink
func NewSpinnerSink(out io.Writer) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false
	return &SpinnerSink{out: out, spinner: s}
}

// OnProgress handles progress events
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if isRecipeStage(event.Stage) {
		r.enterStage(event.Stage)
	}

	if event.Spinner {
		r.spinner.Suffix = " " + r.suffix(event)
		if !r.spinner.Active() {
			r.spinner.Start()
		}
		return
	}
	r.stop()
	if event.Stage == string(models.StageReady) {
		color.New(color.FgGreen).Fprintf(r.out, "✓ %s\n", r.summary())
		r.stages = nil
	}
}

// Info prints an info message
func (r *SpinnerSink) Info(message string) {
	r.pause(func() { color.New(color.FgCyan).Fprintln(r.out, message) })
}

// Error prints an error message
func (r *SpinnerSink) Error(message string) {
	r.pause(func() { color.New(color.FgRed).Fprintln(r.out, message) })
}

func (r *SpinnerSink) pause(print func()) {
	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}
	print()
	if wasActive {
		r.spinner.Start()
	}
}

func (r *SpinnerSink) stop() {
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

func (r *SpinnerSink) enterStage(stage string) {
	now := time.Now()
	if n := len(r.stages); n > 0 {
		if r.stages[n-1].Stage == stage {
			return
		}
		r.stages[n-1].EndTime = now
	}
	r.stages = append(r.stages, stageInfo{Stage: stage, StartTime: now})
}

func (r *SpinnerSink) suffix(event usecase.ProgressEvent) string {
	msg := event.Message
	if event.Total > 0 {
		msg = fmt.Sprintf("[%d/%d] %s", event.Current, event.Total, msg)
	}
	return msg
}

// summary renders "creating (1.2s) → initializing (3.4s)"
func (r *SpinnerSink) summary() string {
	var display string
	for i, stage := range r.stages {
		if stage.Stage == string(models.StageReady) {
			continue
		}
		if i > 0 {
			display += " → "
		}
		display += stage.Stage
		if !stage.EndTime.IsZero() {
			display += fmt.Sprintf(" (%s)", stage.EndTime.Sub(stage.StartTime).Round(time.Millisecond))
		}
	}
	if display == "" {
		return "ready"
	}
	return display + " → ready"
}

func isRecipeStage(stage string) bool {
	switch models.Stage(stage) {
	case models.StageCreating, models.StageInitializing, models.StageConfiguring, models.StageReady:
		return true
	}
	return false
}

var _ usecase.ProgressSink = (*SpinnerSink)(nil)
