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

// ScriptOutcome is how a deploy script ended
type ScriptOutcome string

const (
	ScriptOutcomeDeployed     ScriptOutcome = "deployed"
	ScriptOutcomeVerifiedOnly ScriptOutcome = "verified-only"
	ScriptOutcomeAborted      ScriptOutcome = "aborted"
)

// ScriptParams contains the inputs of one deploy script invocation
type ScriptParams struct {
	Kind      models.ContractKind
	Args      map[string]common.Address
	Overrides *models.TxOverrides
	Script    config.ScriptConfig
}

// ScriptResult contains the result of a deploy script
type ScriptResult struct {
	Outcome      ScriptOutcome
	Network      *config.Network
	Deployer     common.Address
	Contract     *models.DeployedContract
	Verification *VerifyOutcome
}

// RunDeployScript is the confirm, deploy, verify workflow around a single recipe
type RunDeployScript struct {
	cfg       *config.RuntimeConfig
	deploy    *DeployContract
	verify    *VerifyContract
	resolver  ContractFactoryResolver
	signer    SignerSource
	chain     ChainReader
	confirmer Confirmer
	log       *slog.Logger
}

// NewRunDeployScript creates a new deploy script use case
func NewRunDeployScript(
	cfg *config.RuntimeConfig,
	deploy *DeployContract,
	verify *VerifyContract,
	resolver ContractFactoryResolver,
	signer SignerSource,
	chain ChainReader,
	confirmer Confirmer,
	log *slog.Logger,
) *RunDeployScript {
	return &RunDeployScript{
		cfg:       cfg,
		deploy:    deploy,
		verify:    verify,
		resolver:  resolver,
		signer:    signer,
		chain:     chain,
		confirmer: confirmer,
		log:       log.With("component", "RunDeployScript"),
	}
}

// Run executes the script. A declined confirmation returns an aborted result and no error.
func (r *RunDeployScript) Run(ctx context.Context, params ScriptParams) (*ScriptResult, error) {
	if r.cfg.Network == nil {
		return nil, domain.ErrNetworkNotConfigured
	}
	recipe, ok := models.LookupRecipe(params.Kind)
	if !ok {
		return nil, domain.UnknownContractErr{Name: string(params.Kind)}
	}

	if params.Script.VerifyAddress != nil {
		return r.verifyExisting(ctx, recipe, params)
	}

	deployer, err := r.signer.Address(ctx)
	if err != nil {
		return nil, err
	}
	chainID, err := r.chain.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	result := &ScriptResult{Network: r.cfg.Network, Deployer: deployer}

	confirmed, err := r.confirmer.Confirm(ctx, ConfirmRequest{
		Title:    fmt.Sprintf("Deploy %s (%s)", recipe.Kind, recipe.Artifact),
		Network:  r.cfg.Network.Name,
		ChainID:  chainID,
		Deployer: deployer,
	})
	if err != nil {
		return nil, err
	}
	if !confirmed {
		r.log.Debug("deployment declined", "kind", recipe.Kind)
		result.Outcome = ScriptOutcomeAborted
		return result, nil
	}

	contract, err := r.deploy.Deploy(ctx, DeployRequest{
		Kind:      params.Kind,
		Args:      params.Args,
		Overrides: params.Overrides,
	})
	if err != nil {
		return nil, err
	}

	result.Outcome = ScriptOutcomeDeployed
	result.Contract = contract
	result.Verification = r.verify.Verify(ctx, models.VerificationRequest{
		Address:         contract.VerificationTarget(),
		ContractID:      contract.ContractID,
		ConstructorArgs: contract.EncodedConstructorArgs,
	}, params.Script.SkipVerify)
	return result, nil
}

// verifyExisting verifies an address deployed by an earlier run. No prompt, no transaction.
// Proxy recipes expect the implementation address; only constructor params are needed.
func (r *RunDeployScript) verifyExisting(ctx context.Context, recipe models.Recipe, params ScriptParams) (*ScriptResult, error) {
	result := &ScriptResult{Outcome: ScriptOutcomeVerifiedOnly, Network: r.cfg.Network}

	if params.Script.SkipVerify {
		result.Verification = r.verify.Verify(ctx, models.VerificationRequest{
			Address:    *params.Script.VerifyAddress,
			ContractID: recipe.ContractID(),
		}, true)
		return result, nil
	}

	handle, err := r.resolver.Resolve(ctx, recipe)
	if err != nil {
		return nil, err
	}

	// proxy recipes verify the logic contract, which has no constructor arguments
	var encoded []byte
	if recipe.Strategy == models.StrategyDirect {
		args, signer, err := r.constructorArgs(ctx, recipe, params.Args)
		if err != nil {
			return nil, err
		}
		result.Deployer = signer
		encoded, err = handle.PackConstructor(args...)
		if err != nil {
			return nil, fmt.Errorf("failed to encode constructor arguments: %w", err)
		}
	}

	result.Verification = r.verify.Verify(ctx, models.VerificationRequest{
		Address:         *params.Script.VerifyAddress,
		ContractID:      handle.ContractID,
		ConstructorArgs: encoded,
	}, false)
	return result, nil
}

// constructorArgs collects the creation params of a direct recipe. Params that only
// feed configuration calls are not required.
func (r *RunDeployScript) constructorArgs(ctx context.Context, recipe models.Recipe, args map[string]common.Address) ([]any, common.Address, error) {
	for name := range args {
		if _, ok := recipe.Param(name); !ok {
			return nil, common.Address{}, fmt.Errorf("%s does not take argument %q", recipe.Kind, name)
		}
	}

	var signer common.Address
	out := make([]any, 0, len(recipe.CreationParams))
	for _, name := range recipe.CreationParams {
		if addr, ok := args[name]; ok {
			out = append(out, addr)
			continue
		}
		p, _ := recipe.Param(name)
		if !p.DefaultsToSigner {
			return nil, common.Address{}, fmt.Errorf("%w: %s requires %s", domain.ErrMissingArgument, recipe.Kind, name)
		}
		if signer == (common.Address{}) {
			addr, err := r.signer.Address(ctx)
			if err != nil {
				return nil, common.Address{}, err
			}
			signer = addr
		}
		out = append(out, signer)
	}
	return out, signer, nil
}
