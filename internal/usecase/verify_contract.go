package usecase

import (
	"context"
	"log/slog"

	"github.com/xterio/xdeploy/internal/domain/models"
)

// VerifyStatus is the final state of a verification attempt
type VerifyStatus string

const (
	VerifyStatusVerified VerifyStatus = "verified"
	VerifyStatusFailed   VerifyStatus = "failed"
	VerifyStatusSkipped  VerifyStatus = "skipped"
)

// VerifyOutcome reports how verification went. A failed verification is not an error
// of the surrounding deployment.
type VerifyOutcome struct {
	Request models.VerificationRequest
	Status  VerifyStatus
	Result  *models.VerificationResult
	Err     error
}

// VerifyContract submits one verification request per deployed contract
type VerifyContract struct {
	verifier ContractVerifier
	progress ProgressSink
	log      *slog.Logger
}

// NewVerifyContract creates a new verify contract use case
func NewVerifyContract(verifier ContractVerifier, progress ProgressSink, log *slog.Logger) *VerifyContract {
	return &VerifyContract{
		verifier: verifier,
		progress: progress,
		log:      log.With("component", "VerifyContract"),
	}
}

// Verify submits req unless skip is set. It never fails: errors are logged and
// returned in the outcome.
func (v *VerifyContract) Verify(ctx context.Context, req models.VerificationRequest, skip bool) *VerifyOutcome {
	outcome := &VerifyOutcome{Request: req}
	if skip {
		outcome.Status = VerifyStatusSkipped
		return outcome
	}

	v.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "verifying",
		Message: "Verifying " + req.String(),
		Spinner: true,
	})

	result, err := v.verifier.Verify(ctx, req)
	if err != nil {
		v.log.Warn("verification failed", "contract", req.ContractID, "address", req.Address.Hex(), "error", err)
		v.progress.Error("Verification failed: " + err.Error())
		outcome.Status = VerifyStatusFailed
		outcome.Err = err
		return outcome
	}

	outcome.Status = VerifyStatusVerified
	outcome.Result = result
	v.progress.Info("Verified " + req.String())
	return outcome
}
