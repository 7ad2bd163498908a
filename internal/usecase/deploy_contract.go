package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/models"
)

// DeployContract runs the deployment recipe of a single contract kind: creation,
// proxy initialization and configuration calls, each awaited before the next.
type DeployContract struct {
	resolver ContractFactoryResolver
	deployer ContractDeployer
	proxies  ProxyDeployer
	signer   SignerSource
	progress ProgressSink
	log      *slog.Logger
}

// NewDeployContract creates a new deploy contract use case
func NewDeployContract(
	resolver ContractFactoryResolver,
	deployer ContractDeployer,
	proxies ProxyDeployer,
	signer SignerSource,
	progress ProgressSink,
	log *slog.Logger,
) *DeployContract {
	return &DeployContract{
		resolver: resolver,
		deployer: deployer,
		proxies:  proxies,
		signer:   signer,
		progress: progress,
		log:      log.With("component", "DeployContract"),
	}
}

// DeployRequest describes one recipe invocation
type DeployRequest struct {
	Kind      models.ContractKind
	Args      map[string]common.Address
	Overrides *models.TxOverrides
}

// Deploy runs the recipe for req.Kind. No transaction is sent unless the arguments
// and sender validate. A failed step stops the recipe; earlier steps are not undone.
func (d *DeployContract) Deploy(ctx context.Context, req DeployRequest) (*models.DeployedContract, error) {
	recipe, ok := models.LookupRecipe(req.Kind)
	if !ok {
		return nil, domain.UnknownContractErr{Name: string(req.Kind)}
	}

	signer, err := d.signer.Address(ctx)
	if err != nil {
		return nil, err
	}
	if req.Overrides != nil && req.Overrides.From != nil && *req.Overrides.From != signer {
		return nil, fmt.Errorf("%w: --from %s, signer %s", domain.ErrSenderMismatch, req.Overrides.From.Hex(), signer.Hex())
	}

	resolved, err := recipe.ResolveArgs(req.Args, signer)
	if err != nil {
		return nil, err
	}

	handle, err := d.resolver.Resolve(ctx, recipe)
	if err != nil {
		return nil, err
	}

	result := &models.DeployedContract{
		Kind:       recipe.Kind,
		ContractID: handle.ContractID,
		Args:       resolved,
	}
	overrides := req.Overrides.Clone()
	total := d.countSteps(recipe, resolved)
	step := 0

	d.emit(ctx, models.StageCreating, step, total, fmt.Sprintf("Deploying %s", handle.Name))

	switch recipe.Strategy {
	case models.StrategyProxy:
		initArgs := recipe.CreationArgs(resolved)
		d.log.Debug("deploying proxy", "contract", handle.Name, "init_args", initArgs)

		receipt, err := d.proxies.DeployProxy(ctx, handle, initArgs, overrides.Clone())
		if err != nil {
			return nil, &domain.ChainRejection{Contract: handle.Name, Step: "proxy deployment", Err: err}
		}
		// logic creation and proxy creation
		overrides.Advance()
		overrides.Advance()
		step += 2

		result.Address = receipt.Proxy
		result.Implementation = receipt.Implementation
		result.CreationArgs = initArgs
		result.Steps = append(result.Steps,
			models.StepRecord{Stage: models.StageCreating, Label: "logic", TxHash: receipt.LogicTx},
			models.StepRecord{Stage: models.StageInitializing, Label: "proxy", TxHash: receipt.ProxyTx},
		)
		d.emit(ctx, models.StageInitializing, step, total, fmt.Sprintf("Proxy %s initialized (implementation %s)", receipt.Proxy.Hex(), receipt.Implementation.Hex()))

	default:
		args := recipe.CreationArgs(resolved)
		d.log.Debug("deploying contract", "contract", handle.Name, "args", args)

		receipt, err := d.deployer.Deploy(ctx, handle, args, overrides.Clone())
		if err != nil {
			return nil, &domain.ChainRejection{Contract: handle.Name, Step: "deployment", Err: err}
		}
		overrides.Advance()
		step++

		result.Address = receipt.Address
		result.CreationArgs = args
		result.EncodedConstructorArgs = receipt.EncodedArgs
		result.Steps = append(result.Steps, models.StepRecord{Stage: models.StageCreating, Label: "create", TxHash: receipt.TxHash})
	}

	for _, call := range recipe.ConfigCalls {
		args, ok := call.Args(resolved)
		if !ok {
			d.log.Debug("skipping configuration call", "method", call.Method, "missing", call.Param)
			continue
		}

		step++
		d.emit(ctx, models.StageConfiguring, step, total, fmt.Sprintf("%s(%s)", call.Method, resolved[call.Param].Hex()))

		hash, err := d.deployer.Transact(ctx, handle, result.Address, call.Method, args, overrides.Clone())
		if err != nil {
			return nil, &domain.ChainRejection{Contract: handle.Name, Step: call.Method, Err: err}
		}
		overrides.Advance()
		result.Steps = append(result.Steps, models.StepRecord{Stage: models.StageConfiguring, Label: call.Method, TxHash: hash})
	}

	d.emit(ctx, models.StageReady, total, total, fmt.Sprintf("%s deployed at %s", handle.Name, result.Address.Hex()))
	return result, nil
}

// countSteps returns the number of transactions the recipe will send
func (d *DeployContract) countSteps(recipe models.Recipe, resolved map[string]common.Address) int {
	n := 1
	if recipe.Strategy == models.StrategyProxy {
		n = 2
	}
	for _, call := range recipe.ConfigCalls {
		if _, ok := call.Args(resolved); ok {
			n++
		}
	}
	return n
}

func (d *DeployContract) emit(ctx context.Context, stage models.Stage, current, total int, msg string) {
	d.progress.OnProgress(ctx, ProgressEvent{
		Stage:   string(stage),
		Current: current,
		Total:   total,
		Message: msg,
		Spinner: stage != models.StageReady,
	})
}
