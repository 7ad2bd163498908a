package progress

import (
	"context"
	"fmt"
	"io"

	"github.com/xterio/xdeploy/internal/usecase"
)

// LineSink prints one plain line per event, for CI logs and non-interactive runs
type LineSink struct {
	out io.Writer
}

// NewLineSink creates a line-based progress sink
func NewLineSink(out io.Writer) *LineSink {
	return &LineSink{out: out}
}

// OnProgress handles progress events
func (s *LineSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if event.Message == "" {
		return
	}
	if event.Total > 0 {
		fmt.Fprintf(s.out, "[%s %d/%d] %s\n", event.Stage, event.Current, event.Total, event.Message)
		return
	}
	fmt.Fprintf(s.out, "[%s] %s\n", event.Stage, event.Message)
}

// Info prints an info message
func (s *LineSink) Info(message string) {
	fmt.Fprintln(s.out, message)
}

// Error prints an error message
func (s *LineSink) Error(message string) {
	fmt.Fprintln(s.out, message)
}

var _ usecase.ProgressSink = (*LineSink)(nil)
