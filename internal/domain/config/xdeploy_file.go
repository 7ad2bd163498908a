package config

// XDeployFileConfig is the raw xdeploy.toml layout
type XDeployFileConfig struct {
	Deployer     DeployerFileConfig            `toml:"deployer"`
	Artifacts    ArtifactsFileConfig           `toml:"artifacts"`
	Verification VerificationFileConfig        `toml:"verification"`
	Networks     map[string]NetworkFileConfig  `toml:"networks"`
	Contracts    map[string]ContractFileConfig `toml:"contracts"`
}

type DeployerFileConfig struct {
	PrivateKey  string `toml:"private_key,omitempty"` //nolint:gosec // holds env var reference, not a literal secret
	Keystore    string `toml:"keystore,omitempty"`
	PasswordEnv string `toml:"password_env,omitempty"`
}

type ArtifactsFileConfig struct {
	Dirs       []string `toml:"dirs,omitempty"`
	Proxy      string   `toml:"proxy,omitempty"`
	ProxyOwner string   `toml:"proxy_owner,omitempty"`
}

type VerificationFileConfig struct {
	Verifier        string `toml:"verifier,omitempty"`
	CompilerVersion string `toml:"compiler_version,omitempty"`
	Watch           *bool  `toml:"watch,omitempty"`
}

type NetworkFileConfig struct {
	RPCURL      string `toml:"rpc_url"`
	ChainID     uint64 `toml:"chain_id,omitempty"`
	ExplorerURL string `toml:"explorer_url,omitempty"`
	APIURL      string `toml:"api_url,omitempty"`
	APIKey      string `toml:"api_key,omitempty"`
	Verifier    string `toml:"verifier,omitempty"`
}

type ContractFileConfig struct {
	Artifact string `toml:"artifact"`
}

// FoundryFileConfig is the subset of foundry.toml used as a fallback
type FoundryFileConfig struct {
	Profile      map[string]FoundryProfile  `toml:"profile"`
	RpcEndpoints map[string]string          `toml:"rpc_endpoints"`
	Etherscan    map[string]EtherscanConfig `toml:"etherscan,omitempty"`
}

// EtherscanConfig represents Etherscan configuration for a network
// This matches Foundry's expected structure
type EtherscanConfig struct {
	Key   string `toml:"key,omitempty"`
	URL   string `toml:"url,omitempty"`
	Chain any    `toml:"chain,omitempty"`
}

type FoundryProfile struct {
	OutPath     string `toml:"out,omitempty"`
	SolcVersion string `toml:"solc_version,omitempty"`
}
