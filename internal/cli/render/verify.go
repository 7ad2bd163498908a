package render

import (
	"fmt"
	"io"

	"github.com/xterio/xdeploy/internal/usecase"
)

// VerifyRenderer handles rendering of verification results
type VerifyRenderer struct {
	out io.Writer
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out io.Writer) *VerifyRenderer {
	return &VerifyRenderer{out: out}
}

// Render implements Renderer
func (r *VerifyRenderer) Render(outcome *usecase.VerifyOutcome) error {
	if outcome == nil {
		return nil
	}
	req := outcome.Request
	switch outcome.Status {
	case usecase.VerifyStatusVerified:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Verified %s at %s", req.ContractName(), req.Address.Hex())))
		if outcome.Result != nil {
			if outcome.Result.Message != "" && outcome.Result.Message != "verified" {
				fmt.Fprintf(r.out, "  %s\n", faintColor.Sprint(outcome.Result.Message))
			}
			if outcome.Result.URL != "" {
				fmt.Fprintf(r.out, "  %s\n", cyanColor.Sprint(outcome.Result.URL))
			}
		}
	case usecase.VerifyStatusFailed:
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Verification of %s at %s failed", req.ContractName(), req.Address.Hex())))
		if outcome.Err != nil {
			fmt.Fprintf(r.out, "  %s\n", outcome.Err)
		}
	default:
		fmt.Fprintf(r.out, "%s\n", faintColor.Sprintf("Verification of %s skipped", req.ContractName()))
	}
	return nil
}

var _ Renderer[*usecase.VerifyOutcome] = (*VerifyRenderer)(nil)
