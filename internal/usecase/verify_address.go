package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/domain/models"
)

// VerifyAddressParams selects an already deployed contract to verify
type VerifyAddressParams struct {
	Address    common.Address
	ContractID string
	// ConstructorArgs is used as-is when set, otherwise Args/Types are encoded
	ConstructorArgs []byte
	Args            []string
	Types           []string
}

// VerifyAddress verifies any deployed contract, not only the known recipes
type VerifyAddress struct {
	config *config.RuntimeConfig
	verify *VerifyContract
	log    *slog.Logger
}

// NewVerifyAddress creates a new VerifyAddress use case
func NewVerifyAddress(cfg *config.RuntimeConfig, verify *VerifyContract, log *slog.Logger) *VerifyAddress {
	return &VerifyAddress{
		config: cfg,
		verify: verify,
		log:    log.With("component", "VerifyAddress"),
	}
}

// Run builds the verification request and submits it
func (v *VerifyAddress) Run(ctx context.Context, params VerifyAddressParams) (*VerifyOutcome, error) {
	if v.config.Network == nil {
		return nil, domain.ErrNetworkNotConfigured
	}
	if params.ContractID == "" {
		return nil, fmt.Errorf("%w: contract (path:Name)", domain.ErrMissingArgument)
	}

	encoded := params.ConstructorArgs
	if len(encoded) == 0 && len(params.Args) > 0 {
		var err error
		if encoded, err = EncodeConstructorArgs(params.Args, params.Types); err != nil {
			return nil, fmt.Errorf("failed to encode constructor arguments: %w", err)
		}
	} else if len(encoded) > 0 && len(params.Args) > 0 {
		return nil, fmt.Errorf("use either encoded constructor args or --args/--types, not both")
	}

	req := models.VerificationRequest{
		Address:         params.Address,
		ContractID:      params.ContractID,
		ConstructorArgs: encoded,
	}
	v.log.Debug("verifying existing contract", "request", req.String(), "network", v.config.Network.Name)
	return v.verify.Verify(ctx, req, false), nil
}
