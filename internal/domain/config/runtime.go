package config

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	Network *Network // nil if not specified

	// Execution settings
	Debug          bool
	NonInteractive bool
	AssumeYes      bool
	Timeout        time.Duration

	// "xdeploy.toml" or "foundry.toml"
	ConfigSource string

	Deployer     DeployerConfig
	Artifacts    ArtifactsConfig
	Verification VerificationConfig

	// Contracts overrides the artifact name of a contract kind
	Contracts map[string]string
}

// Network represents network configuration
type Network struct {
	Name           string `json:"name"`
	RPCURL         string `json:"rpcUrl"`
	ChainID        uint64 `json:"chainId"`
	ExplorerURL    string `json:"explorerUrl,omitempty"`
	ExplorerAPIURL string `json:"explorerApiUrl,omitempty"`
	ExplorerAPIKey string `json:"-"`
	Verifier       string `json:"verifier,omitempty"`
}

// DeployerConfig selects the key that signs every transaction
type DeployerConfig struct {
	PrivateKey  string //nolint:gosec // resolved from env, never written back
	Keystore    string
	PasswordEnv string
}

// ProxyKind is the upgradeable proxy flavour deployed for proxy recipes.
// The zero value picks UUPS or transparent from the logic contract's ABI.
type ProxyKind string

const (
	ProxyKindUUPS        ProxyKind = "uups"
	ProxyKindTransparent ProxyKind = "transparent"
)

// ArtifactsConfig tells the resolver where compiled contracts live
type ArtifactsConfig struct {
	Dirs       []string
	ProxyKind  ProxyKind
	ProxyOwner string
}

// VerificationConfig is passed through to forge verify-contract
type VerificationConfig struct {
	Verifier        string
	CompilerVersion string
	Watch           bool
}

// ScriptConfig carries the per-invocation switches of a deploy script
type ScriptConfig struct {
	SkipVerify    bool
	VerifyAddress *common.Address
}
