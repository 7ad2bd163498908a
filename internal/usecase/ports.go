package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xterio/xdeploy/internal/domain/models"
)

// ContractFactoryResolver maps recipes and contract names to compiled artifacts
type ContractFactoryResolver interface {
	Resolve(ctx context.Context, recipe models.Recipe) (*models.ContractHandle, error)
	ResolveByName(ctx context.Context, name string) (*models.ContractHandle, error)
}

// ContractDeployer sends creation and call transactions and waits for them to be mined
type ContractDeployer interface {
	Deploy(ctx context.Context, handle *models.ContractHandle, args []any, overrides *models.TxOverrides) (*models.CreationReceipt, error)
	Transact(ctx context.Context, handle *models.ContractHandle, address common.Address, method string, args []any, overrides *models.TxOverrides) (common.Hash, error)
}

// ProxyDeployer deploys a logic contract behind an upgradeable proxy, running the
// initializer with initArgs in the proxy constructor
type ProxyDeployer interface {
	DeployProxy(ctx context.Context, logic *models.ContractHandle, initArgs []any, overrides *models.TxOverrides) (*models.ProxyReceipt, error)
}

// ContractVerifier submits source verification requests to the network's explorer
type ContractVerifier interface {
	Verify(ctx context.Context, req models.VerificationRequest) (*models.VerificationResult, error)
}

// SignerSource provides the deployer account
type SignerSource interface {
	Address(ctx context.Context) (common.Address, error)
}

// ChainReader reads the chain the deployer is connected to
type ChainReader interface {
	ChainID(ctx context.Context) (uint64, error)
}

// ConfirmRequest is what the operator sees before any transaction is sent
type ConfirmRequest struct {
	Title    string
	Network  string
	ChainID  uint64
	Deployer common.Address
	Items    []string
}

// Confirmer asks the operator to approve a deployment
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmRequest) (bool, error)
}

// InteractivePrompter fills in what the operator left out on the command line
type InteractivePrompter interface {
	SelectKind(ctx context.Context, kinds []models.ContractKind) (models.ContractKind, error)
	PromptAddress(ctx context.Context, param models.Param) (common.Address, error)
}

// StackStateStore persists stack progress between runs
type StackStateStore interface {
	Load(ctx context.Context, stack string) (*StackState, error)
	Save(ctx context.Context, state *StackState) error
	Delete(ctx context.Context, stack string) error
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
