package blockchain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/domain/models"
	"github.com/xterio/xdeploy/internal/usecase"
)

const (
	uupsProxyArtifact        = "ERC1967Proxy"
	transparentProxyArtifact = "TransparentUpgradeableProxy"
	initializerMethod        = "initialize"
	upgradeMethod            = "upgradeToAndCall"
)

// ProxyDeployer deploys a logic contract and an ERC-1967 proxy in front of it.
// The initializer is executed by the proxy constructor so the proxy is never
// left uninitialized. Without a configured kind, logic contracts exposing
// upgradeToAndCall get a UUPS proxy and all others a transparent one.
type ProxyDeployer struct {
	deployer usecase.ContractDeployer
	resolver usecase.ContractFactoryResolver
	signer   usecase.SignerSource
	kind     config.ProxyKind
	owner    string
	log      *slog.Logger
}

// NewProxyDeployer creates a new proxy deployer
func NewProxyDeployer(
	cfg *config.RuntimeConfig,
	deployer usecase.ContractDeployer,
	resolver usecase.ContractFactoryResolver,
	signer usecase.SignerSource,
	log *slog.Logger,
) *ProxyDeployer {
	return &ProxyDeployer{
		deployer: deployer,
		resolver: resolver,
		signer:   signer,
		kind:     cfg.Artifacts.ProxyKind,
		owner:    cfg.Artifacts.ProxyOwner,
		log:      log.With("component", "ProxyDeployer"),
	}
}

// DeployProxy sends two transactions: the logic contract, then the proxy.
// A nonce override is used for the first and incremented for the second.
func (p *ProxyDeployer) DeployProxy(ctx context.Context, logic *models.ContractHandle, initArgs []any, overrides *models.TxOverrides) (*models.ProxyReceipt, error) {
	kind, err := p.proxyKind(logic)
	if err != nil {
		return nil, err
	}

	initData, err := encodeInitializer(logic.ABI, initArgs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", logic.Name, err)
	}

	proxyHandle, err := p.resolver.ResolveByName(ctx, proxyArtifact(kind))
	if err != nil {
		return nil, fmt.Errorf("proxy artifact: %w", err)
	}

	// resolve the owner before anything is sent
	var owner common.Address
	if kind == config.ProxyKindTransparent {
		if owner, err = p.proxyOwner(ctx); err != nil {
			return nil, err
		}
	}

	logicReceipt, err := p.deployer.Deploy(ctx, logic, nil, overrides.Clone())
	if err != nil {
		return nil, fmt.Errorf("logic contract: %w", err)
	}
	p.log.Debug("logic deployed", "contract", logic.Name, "address", logicReceipt.Address.Hex(), "proxy", kind)

	proxyOverrides := overrides.Clone()
	proxyOverrides.Advance()

	args := []any{logicReceipt.Address, initData}
	if kind == config.ProxyKindTransparent {
		args = []any{logicReceipt.Address, owner, initData}
	}

	proxyReceipt, err := p.deployer.Deploy(ctx, proxyHandle, args, proxyOverrides)
	if err != nil {
		return nil, fmt.Errorf("proxy for %s at %s: %w", logic.Name, logicReceipt.Address.Hex(), err)
	}

	return &models.ProxyReceipt{
		Proxy:           proxyReceipt.Address,
		Implementation:  logicReceipt.Address,
		LogicTx:         logicReceipt.TxHash,
		ProxyTx:         proxyReceipt.TxHash,
		InitData:        initData,
		ProxyContractID: proxyHandle.ContractID,
	}, nil
}

// proxyKind picks the proxy for a logic contract. A UUPS proxy in front of a
// contract without upgradeToAndCall could never be upgraded.
func (p *ProxyDeployer) proxyKind(logic *models.ContractHandle) (config.ProxyKind, error) {
	_, upgradeable := logic.ABI.Methods[upgradeMethod]
	switch p.kind {
	case config.ProxyKindTransparent:
		return config.ProxyKindTransparent, nil
	case config.ProxyKindUUPS:
		if !upgradeable {
			return "", fmt.Errorf("%s has no %s and cannot sit behind a UUPS proxy (set [artifacts] proxy = \"transparent\")", logic.Name, upgradeMethod)
		}
		return config.ProxyKindUUPS, nil
	default:
		if upgradeable {
			return config.ProxyKindUUPS, nil
		}
		return config.ProxyKindTransparent, nil
	}
}

func proxyArtifact(kind config.ProxyKind) string {
	if kind == config.ProxyKindTransparent {
		return transparentProxyArtifact
	}
	return uupsProxyArtifact
}

func (p *ProxyDeployer) proxyOwner(ctx context.Context) (common.Address, error) {
	if p.owner != "" {
		return models.ParseAddress(p.owner)
	}
	return p.signer.Address(ctx)
}

// encodeInitializer packs the initialize call. Contracts without an
// initializer get empty data as long as no arguments were supplied.
func encodeInitializer(contractABI abi.ABI, args []any) ([]byte, error) {
	if _, ok := contractABI.Methods[initializerMethod]; !ok {
		if len(args) > 0 {
			return nil, fmt.Errorf("no %s method to receive %d argument(s)", initializerMethod, len(args))
		}
		return []byte{}, nil
	}
	data, err := contractABI.Pack(initializerMethod, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", initializerMethod, err)
	}
	return data, nil
}

var _ usecase.ProxyDeployer = (*ProxyDeployer)(nil)
