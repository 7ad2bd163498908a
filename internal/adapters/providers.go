package adapters

import (
	"github.com/google/wire"
	"github.com/xterio/xdeploy/internal/adapters/artifacts"
	"github.com/xterio/xdeploy/internal/adapters/blockchain"
	"github.com/xterio/xdeploy/internal/adapters/fs"
	"github.com/xterio/xdeploy/internal/adapters/interactive"
	"github.com/xterio/xdeploy/internal/adapters/senders"
	"github.com/xterio/xdeploy/internal/adapters/verification"
	"github.com/xterio/xdeploy/internal/usecase"
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewStackStateStoreAdapter,
	wire.Bind(new(usecase.StackStateStore), new(*fs.StackStateStoreAdapter)),
)

// ArtifactsSet provides compiled contract lookup
var ArtifactsSet = wire.NewSet(
	artifacts.NewResolver,
	wire.Bind(new(usecase.ContractFactoryResolver), new(*artifacts.Resolver)),
)

// SignerSet provides the deployer key
var SignerSet = wire.NewSet(
	senders.NewSigner,
	wire.Bind(new(usecase.SignerSource), new(*senders.Signer)),
	wire.Bind(new(blockchain.Transactor), new(*senders.Signer)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	blockchain.NewClient,
	wire.Bind(new(usecase.ChainReader), new(*blockchain.Client)),

	blockchain.NewDeployer,
	wire.Bind(new(usecase.ContractDeployer), new(*blockchain.Deployer)),

	blockchain.NewProxyDeployer,
	wire.Bind(new(usecase.ProxyDeployer), new(*blockchain.ProxyDeployer)),
)

// VerificationSet provides explorer verification
var VerificationSet = wire.NewSet(
	verification.NewForgeVerifier,
	wire.Bind(new(usecase.ContractVerifier), new(*verification.ForgeVerifier)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewConfirmer,
	wire.Bind(new(usecase.Confirmer), new(*interactive.Confirmer)),

	interactive.NewSelector,
	wire.Bind(new(usecase.InteractivePrompter), new(*interactive.Selector)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	ArtifactsSet,
	SignerSet,
	BlockchainSet,
	VerificationSet,
	InteractiveSet,
)
