package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/models"
	"github.com/xterio/xdeploy/internal/usecase"
)

// Transactor builds signing options for the deployer account
type Transactor interface {
	TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error)
}

// Deployer implements ContractDeployer with go-ethereum bindings. Every
// transaction is awaited until mined with a successful status.
type Deployer struct {
	client *Client
	signer Transactor
	log    *slog.Logger
}

// NewDeployer creates a new deployer
func NewDeployer(client *Client, signer Transactor, log *slog.Logger) *Deployer {
	return &Deployer{
		client: client,
		signer: signer,
		log:    log.With("component", "Deployer"),
	}
}

// Deploy sends a creation transaction and waits until the contract code is on chain
func (d *Deployer) Deploy(ctx context.Context, handle *models.ContractHandle, args []any, overrides *models.TxOverrides) (*models.CreationReceipt, error) {
	backend, chainID, err := d.client.Connect(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := d.transactOpts(ctx, chainID, overrides)
	if err != nil {
		return nil, err
	}

	encoded, err := handle.PackConstructor(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode constructor arguments for %s: %w", handle.Name, err)
	}

	address, tx, _, err := bind.DeployContract(opts, handle.ABI, handle.Bytecode, backend, args...)
	if err != nil {
		return nil, err
	}
	d.log.Debug("creation transaction sent", "contract", handle.Name, "tx", tx.Hash().Hex(), "address", address.Hex(), "nonce", tx.Nonce())

	if _, err := d.waitMined(ctx, backend, tx); err != nil {
		return nil, err
	}

	code, err := backend.CodeAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read code at %s: %w", address.Hex(), err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", bind.ErrNoCodeAfterDeploy, address.Hex())
	}

	return &models.CreationReceipt{
		Address:     address,
		TxHash:      tx.Hash(),
		EncodedArgs: encoded,
	}, nil
}

// Transact calls a state-changing method and waits until it is mined
func (d *Deployer) Transact(ctx context.Context, handle *models.ContractHandle, address common.Address, method string, args []any, overrides *models.TxOverrides) (common.Hash, error) {
	backend, chainID, err := d.client.Connect(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	opts, err := d.transactOpts(ctx, chainID, overrides)
	if err != nil {
		return common.Hash{}, err
	}

	contract := bind.NewBoundContract(address, handle.ABI, backend, backend, backend)
	tx, err := contract.Transact(opts, method, args...)
	if err != nil {
		return common.Hash{}, err
	}
	d.log.Debug("transaction sent", "contract", handle.Name, "method", method, "tx", tx.Hash().Hex(), "nonce", tx.Nonce())

	if _, err := d.waitMined(ctx, backend, tx); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

func (d *Deployer) waitMined(ctx context.Context, backend Backend, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, backend, tx)
	if err != nil {
		return nil, fmt.Errorf("waiting for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s (block %s, gas used %d)", domain.ErrTransactionReverted, tx.Hash().Hex(), receipt.BlockNumber, receipt.GasUsed)
	}
	return receipt, nil
}

func (d *Deployer) transactOpts(ctx context.Context, chainID *big.Int, overrides *models.TxOverrides) (*bind.TransactOpts, error) {
	opts, err := d.signer.TransactOpts(ctx, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx

	if overrides == nil {
		return opts, nil
	}
	if overrides.From != nil && *overrides.From != opts.From {
		return nil, fmt.Errorf("%w: --from %s, signer %s", domain.ErrSenderMismatch, overrides.From.Hex(), opts.From.Hex())
	}
	if overrides.GasPrice != nil {
		opts.GasPrice = new(big.Int).Set(overrides.GasPrice)
	}
	if overrides.GasLimit != 0 {
		opts.GasLimit = overrides.GasLimit
	}
	if overrides.Nonce != nil {
		opts.Nonce = new(big.Int).SetUint64(*overrides.Nonce)
	}
	return opts, nil
}

var _ usecase.ContractDeployer = (*Deployer)(nil)
