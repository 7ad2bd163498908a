package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/usecase"
)

// Backend is the node API needed to deploy and call contracts
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// Client connects to the configured network on first use and checks its chain ID
type Client struct {
	network *config.Network

	mu      sync.Mutex
	backend Backend
	chainID *big.Int
}

// NewClient creates a client for the network selected in the runtime config
func NewClient(cfg *config.RuntimeConfig) *Client {
	return &Client{network: cfg.Network}
}

// NewClientWithBackend wraps an already connected backend
func NewClientWithBackend(backend Backend, network *config.Network) *Client {
	return &Client{network: network, backend: backend}
}

// Connect returns the backend and its verified chain ID
func (c *Client) Connect(ctx context.Context) (Backend, *big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.chainID != nil {
		return c.backend, c.chainID, nil
	}
	if c.network == nil {
		return nil, nil, domain.ErrNetworkNotConfigured
	}

	if c.backend == nil {
		client, err := ethclient.DialContext(ctx, c.network.RPCURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to RPC: %w", err)
		}
		c.backend = client
	}

	networkChainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	// If chainID was 0, use the network's chain ID
	if c.network.ChainID != 0 && networkChainID.Uint64() != c.network.ChainID {
		return nil, nil, fmt.Errorf("chain ID mismatch: %s expects %d, RPC reports %d", c.network.Name, c.network.ChainID, networkChainID.Uint64())
	}
	c.chainID = networkChainID
	return c.backend, c.chainID, nil
}

// ChainID returns the chain ID reported by the node
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	_, chainID, err := c.Connect(ctx)
	if err != nil {
		return 0, err
	}
	return chainID.Uint64(), nil
}

var _ usecase.ChainReader = (*Client)(nil)
