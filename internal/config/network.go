package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/xterio/xdeploy/internal/domain/config"
)

// ChainIDFetcher asks an RPC endpoint for its chain id
type ChainIDFetcher func(ctx context.Context, rpcURL string) (uint64, error)

// NetworkResolver resolves network names to configurations with caching
type NetworkResolver struct {
	dataDir string
	xdeploy *config.XDeployFileConfig
	foundry *config.FoundryFileConfig
	fetch   ChainIDFetcher

	mu    sync.RWMutex
	cache map[string]uint64 // rpcURL -> chainID
}

// NewNetworkResolver creates a new network resolver. Either file config may be nil.
func NewNetworkResolver(dataDir string, xdeploy *config.XDeployFileConfig, foundry *config.FoundryFileConfig) *NetworkResolver {
	r := &NetworkResolver{
		dataDir: dataDir,
		xdeploy: xdeploy,
		foundry: foundry,
		fetch:   fetchChainID,
	}
	r.loadCache()
	return r
}

// Names lists every network that can be resolved
func (r *NetworkResolver) Names() []string {
	seen := map[string]bool{}
	var names []string
	if r.xdeploy != nil {
		for name := range r.xdeploy.Networks {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	if r.foundry != nil {
		for name := range r.foundry.RpcEndpoints {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Resolve resolves a network name to its configuration
func (r *NetworkResolver) Resolve(ctx context.Context, name string) (*config.Network, error) {
	network := &config.Network{Name: name}

	if nc, ok := r.lookupXDeploy(name); ok {
		network.RPCURL = nc.RPCURL
		network.ChainID = nc.ChainID
		network.ExplorerURL = nc.ExplorerURL
		network.ExplorerAPIURL = nc.APIURL
		network.ExplorerAPIKey = nc.APIKey
		network.Verifier = nc.Verifier
	} else if url, ok := r.lookupFoundry(name); ok {
		network.RPCURL = url
	} else {
		return nil, fmt.Errorf("network '%s' not found in %s [networks] or %s [rpc_endpoints]", name, XDeployFileName, FoundryFileName)
	}

	if network.RPCURL == "" {
		return nil, fmt.Errorf("network '%s' has no rpc url (is the env var set?)", name)
	}

	// foundry.toml [etherscan] fills whatever xdeploy.toml left out
	if r.foundry != nil {
		if es, ok := r.foundry.Etherscan[name]; ok {
			if network.ExplorerAPIKey == "" {
				network.ExplorerAPIKey = es.Key
			}
			if network.ExplorerAPIURL == "" {
				network.ExplorerAPIURL = es.URL
			}
		}
	}

	if network.ChainID == 0 {
		chainID, err := r.chainID(ctx, network.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chain ID for network %s: %w", name, err)
		}
		network.ChainID = chainID
	}

	if network.ExplorerURL == "" {
		network.ExplorerURL = defaultExplorerURL(network.ChainID)
	}
	return network, nil
}

func (r *NetworkResolver) lookupXDeploy(name string) (config.NetworkFileConfig, bool) {
	if r.xdeploy == nil {
		return config.NetworkFileConfig{}, false
	}
	nc, ok := r.xdeploy.Networks[name]
	return nc, ok
}

func (r *NetworkResolver) lookupFoundry(name string) (string, bool) {
	if r.foundry == nil {
		return "", false
	}
	url, ok := r.foundry.RpcEndpoints[name]
	return url, ok
}

func (r *NetworkResolver) chainID(ctx context.Context, rpcURL string) (uint64, error) {
	r.mu.RLock()
	chainID, ok := r.cache[rpcURL]
	r.mu.RUnlock()
	if ok {
		return chainID, nil
	}

	chainID, err := r.fetch(ctx, rpcURL)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	r.cache[rpcURL] = chainID
	r.mu.Unlock()
	// cache is just for performance
	_ = r.saveCache()
	return chainID, nil
}

func fetchChainID(ctx context.Context, rpcURL string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	defer client.Close()

	id, err := client.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("eth_chainId: %w", err)
	}
	return id.Uint64(), nil
}

func (r *NetworkResolver) cachePath() string {
	return filepath.Join(r.dataDir, "chain-ids.json")
}

func (r *NetworkResolver) loadCache() {
	r.cache = make(map[string]uint64)
	if r.dataDir == "" {
		return
	}
	data, err := os.ReadFile(r.cachePath())
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, &r.cache); err != nil {
		r.cache = make(map[string]uint64)
	}
}

func (r *NetworkResolver) saveCache() error {
	if r.dataDir == "" {
		return nil
	}
	if err := os.MkdirAll(r.dataDir, 0755); err != nil {
		return err
	}
	r.mu.RLock()
	data, err := json.MarshalIndent(r.cache, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(r.cachePath(), data, 0644)
}

// defaultExplorerURL returns the public explorer for well-known chains
func defaultExplorerURL(chainID uint64) string {
	switch chainID {
	case 1:
		return "https://etherscan.io"
	case 11155111:
		return "https://sepolia.etherscan.io"
	case 10:
		return "https://optimistic.etherscan.io"
	case 137:
		return "https://polygonscan.com"
	case 8453:
		return "https://basescan.org"
	case 42161:
		return "https://arbiscan.io"
	case 56:
		return "https://bscscan.com"
	case 97:
		return "https://testnet.bscscan.com"
	default:
		return ""
	}
}
