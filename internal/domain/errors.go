package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrUnknownContract is returned when a contract kind or artifact is not registered
	ErrUnknownContract = errors.New("unknown contract")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrMissingArgument is returned when a required recipe argument is absent
	ErrMissingArgument = errors.New("missing required argument")

	// ErrUnresolvedReference is returned when an address reference points at no prior output
	ErrUnresolvedReference = errors.New("unresolved address reference")

	// ErrSenderMismatch is returned when a tx override names a sender other than the active signer
	ErrSenderMismatch = errors.New("sender does not match active signer")

	// ErrNoSigner is returned when no deployer key is configured
	ErrNoSigner = errors.New("no deployer key configured")

	// ErrNetworkNotConfigured is returned when an on-chain operation runs without --network
	ErrNetworkNotConfigured = errors.New("no network configured")

	// ErrTransactionReverted is returned when a mined transaction has a failed status
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrConfirmationRequired is returned when a prompt is needed in non-interactive mode
	ErrConfirmationRequired = errors.New("confirmation required in non-interactive mode (use --yes)")

	// ErrVerificationFailed is returned when contract verification fails
	ErrVerificationFailed = errors.New("verification failed")
)

// UnknownContractErr reports a contract name that is not part of the registry or artifact set.
type UnknownContractErr struct {
	Name        string
	Suggestions []string
}

func (e UnknownContractErr) Error() string {
	msg := fmt.Sprintf("unknown contract %q", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e UnknownContractErr) Is(target error) bool {
	return target == ErrUnknownContract
}

// ChainRejection wraps a failed on-chain step of a recipe. The wrapped error is the
// transaction failure exactly as the node or the binding returned it.
type ChainRejection struct {
	Contract string
	Step     string
	Err      error
}

func (e *ChainRejection) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Contract, e.Step, e.Err)
}

func (e *ChainRejection) Unwrap() error {
	return e.Err
}
