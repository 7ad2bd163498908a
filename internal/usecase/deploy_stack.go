package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/domain/models"
)

// Stack run states
const (
	StackStatusRunning   = "running"
	StackStatusFailed    = "failed"
	StackStatusCompleted = "completed"
)

// StackState is persisted after every component so a failed run can be resumed
type StackState struct {
	Stack        string                    `json:"stack"`
	ManifestPath string                    `json:"manifest_path"`
	Network      string                    `json:"network"`
	ChainID      uint64                    `json:"chain_id"`
	StartedAt    time.Time                 `json:"started_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
	Status       string                    `json:"status"`
	Outputs      map[string]common.Address `json:"outputs"`
	Failed       string                    `json:"failed,omitempty"`
	Error        string                    `json:"error,omitempty"`
}

// StackParams contains parameters for a stack deployment
type StackParams struct {
	ManifestPath string
	Resume       bool
	SkipVerify   bool
	Overrides    *models.TxOverrides
}

// StackStepStatus is the outcome of one stack component
type StackStepStatus string

const (
	StackStepDeployed StackStepStatus = "deployed"
	StackStepReused   StackStepStatus = "reused"
	StackStepResumed  StackStepStatus = "resumed"
	StackStepFailed   StackStepStatus = "failed"
)

// StackStepResult contains the result of executing a single component
type StackStepResult struct {
	Step         *StackStep
	Status       StackStepStatus
	Address      common.Address
	Contract     *models.DeployedContract
	Verification *VerifyOutcome
	Error        error
}

// StackResult contains the result of a stack deployment
type StackResult struct {
	Plan       *StackPlan
	Network    *config.Network
	Deployer   common.Address
	Steps      []*StackStepResult
	FailedStep *StackStepResult
	Success    bool
	Aborted    bool
}

// DeployStack deploys a manifest of components in dependency order, threading
// each component's address into the arguments of the components that reference it
type DeployStack struct {
	cfg       *config.RuntimeConfig
	deploy    *DeployContract
	verify    *VerifyContract
	signer    SignerSource
	chain     ChainReader
	confirmer Confirmer
	store     StackStateStore
	progress  ProgressSink
	log       *slog.Logger
}

// NewDeployStack creates a new stack deployment use case
func NewDeployStack(
	cfg *config.RuntimeConfig,
	deploy *DeployContract,
	verify *VerifyContract,
	signer SignerSource,
	chain ChainReader,
	confirmer Confirmer,
	store StackStateStore,
	progress ProgressSink,
	log *slog.Logger,
) *DeployStack {
	return &DeployStack{
		cfg:       cfg,
		deploy:    deploy,
		verify:    verify,
		signer:    signer,
		chain:     chain,
		confirmer: confirmer,
		store:     store,
		progress:  progress,
		log:       log.With("component", "DeployStack"),
	}
}

// Execute runs the stack. Execution stops at the first failing component; the
// failure is reported in the result, not as an error.
func (s *DeployStack) Execute(ctx context.Context, params StackParams) (*StackResult, error) {
	if s.cfg.Network == nil {
		return nil, domain.ErrNetworkNotConfigured
	}
	if params.Overrides != nil && params.Overrides.Nonce != nil {
		return nil, fmt.Errorf("--nonce cannot be used with a stack deployment")
	}

	manifest, err := ParseStackManifest(params.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stack manifest: %w", err)
	}
	plan, err := manifest.Plan()
	if err != nil {
		return nil, fmt.Errorf("invalid stack manifest: %w", err)
	}

	deployer, err := s.signer.Address(ctx)
	if err != nil {
		return nil, err
	}
	chainID, err := s.chain.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	state, err := s.initState(ctx, plan, params, chainID)
	if err != nil {
		return nil, err
	}

	result := &StackResult{Plan: plan, Network: s.cfg.Network, Deployer: deployer, Success: true}

	s.progress.OnProgress(ctx, ProgressEvent{Stage: "plan_created", Metadata: plan})

	confirmed, err := s.confirmer.Confirm(ctx, ConfirmRequest{
		Title:    fmt.Sprintf("Deploy stack %s (%d components)", plan.Group, len(plan.Components)),
		Network:  s.cfg.Network.Name,
		ChainID:  chainID,
		Deployer: deployer,
		Items:    s.describePlan(plan, state),
	})
	if err != nil {
		return nil, err
	}
	if !confirmed {
		result.Aborted = true
		result.Success = false
		return result, nil
	}

	for i, step := range plan.Components {
		s.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "step_starting",
			Current: i + 1,
			Total:   len(plan.Components),
			Message: fmt.Sprintf("%s (%s)", step.Name, step.Kind),
		})

		stepResult := s.executeStep(ctx, step, state, params)
		result.Steps = append(result.Steps, stepResult)
		s.progress.OnProgress(ctx, ProgressEvent{Stage: "step_completed", Current: i + 1, Total: len(plan.Components), Metadata: stepResult})

		if stepResult.Error != nil {
			result.FailedStep = stepResult
			result.Success = false
			state.Status = StackStatusFailed
			state.Failed = step.Name
			state.Error = stepResult.Error.Error()
			s.saveState(ctx, state)
			break
		}

		state.Outputs[step.Name] = stepResult.Address
		s.saveState(ctx, state)
	}

	if result.Success {
		state.Status = StackStatusCompleted
		state.Failed = ""
		state.Error = ""
		s.saveState(ctx, state)
	}
	return result, nil
}

func (s *DeployStack) executeStep(ctx context.Context, step *StackStep, state *StackState, params StackParams) *StackStepResult {
	res := &StackStepResult{Step: step}

	if addr, ok := state.Outputs[step.Name]; ok {
		res.Status = StackStepResumed
		res.Address = addr
		return res
	}
	if step.Address != nil {
		res.Status = StackStepReused
		res.Address = *step.Address
		return res
	}

	args := make(map[string]common.Address, len(step.Args))
	for name, ref := range step.Args {
		addr, err := ref.Resolve(state.Outputs)
		if err != nil {
			res.Status = StackStepFailed
			res.Error = fmt.Errorf("%s: %w", step.Name, err)
			return res
		}
		args[name] = addr
	}

	contract, err := s.deploy.Deploy(ctx, DeployRequest{Kind: step.Kind, Args: args, Overrides: params.Overrides})
	if err != nil {
		res.Status = StackStepFailed
		res.Error = err
		return res
	}

	res.Status = StackStepDeployed
	res.Contract = contract
	res.Address = contract.Address
	res.Verification = s.verify.Verify(ctx, models.VerificationRequest{
		Address:         contract.VerificationTarget(),
		ContractID:      contract.ContractID,
		ConstructorArgs: contract.EncodedConstructorArgs,
	}, params.SkipVerify || step.SkipVerify)
	return res
}

func (s *DeployStack) initState(ctx context.Context, plan *StackPlan, params StackParams, chainID uint64) (*StackState, error) {
	manifestPath, err := filepath.Abs(params.ManifestPath)
	if err != nil {
		manifestPath = params.ManifestPath
	}

	if params.Resume {
		prev, err := s.store.Load(ctx, plan.Group)
		if err != nil {
			return nil, fmt.Errorf("failed to resume: %w", err)
		}
		if prev == nil {
			return nil, fmt.Errorf("failed to resume: no previous run of stack %s", plan.Group)
		}
		if prev.ChainID != chainID {
			return nil, fmt.Errorf("cannot resume: previous run of %s was on chain %d, now %d", plan.Group, prev.ChainID, chainID)
		}
		if prev.Status == StackStatusCompleted {
			return nil, fmt.Errorf("previous run of %s already completed successfully", plan.Group)
		}
		if prev.Outputs == nil {
			prev.Outputs = make(map[string]common.Address)
		}
		// drop outputs of components no longer in the manifest
		for name := range prev.Outputs {
			if !planHas(plan, name) {
				delete(prev.Outputs, name)
			}
		}
		prev.Status = StackStatusRunning
		prev.ManifestPath = manifestPath
		return prev, nil
	}

	return &StackState{
		Stack:        plan.Group,
		ManifestPath: manifestPath,
		Network:      s.cfg.Network.Name,
		ChainID:      chainID,
		StartedAt:    time.Now(),
		Status:       StackStatusRunning,
		Outputs:      make(map[string]common.Address),
	}, nil
}

func (s *DeployStack) saveState(ctx context.Context, state *StackState) {
	state.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, state); err != nil {
		s.log.Warn("failed to save stack state", "stack", state.Stack, "error", err)
	}
}

func (s *DeployStack) describePlan(plan *StackPlan, state *StackState) []string {
	items := make([]string, 0, len(plan.Components))
	for _, step := range plan.Components {
		var args []string
		for _, p := range recipeFor(step.Kind).Params {
			if ref, ok := step.Args[p.Name]; ok {
				args = append(args, fmt.Sprintf("%s=%s", p.Name, ref))
			}
		}
		line := fmt.Sprintf("%s: %s(%s)", step.Name, step.Kind, strings.Join(args, ", "))
		switch {
		case state.Outputs[step.Name] != (common.Address{}):
			line += " [done " + state.Outputs[step.Name].Hex() + "]"
		case step.Address != nil:
			line += " [existing " + step.Address.Hex() + "]"
		}
		items = append(items, line)
	}
	return items
}

func recipeFor(kind models.ContractKind) models.Recipe {
	r, _ := models.LookupRecipe(kind)
	return r
}

func planHas(plan *StackPlan, name string) bool {
	return lo.ContainsBy(plan.Components, func(step *StackStep) bool { return step.Name == name })
}
