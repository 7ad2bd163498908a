package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/xterio/xdeploy/internal/domain/config"
)

const (
	XDeployFileName = "xdeploy.toml"
	FoundryFileName = "foundry.toml"
)

// loadEnvFiles loads .env then .env.local. Variables already set in the process win.
func loadEnvFiles(projectRoot string) {
	for _, name := range []string{".env", ".env.local"} {
		envFile := filepath.Join(projectRoot, name)
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
		}
	}
}

// loadXDeployFile parses xdeploy.toml, returning nil when the file does not exist
func loadXDeployFile(projectRoot string) (*config.XDeployFileConfig, error) {
	path := filepath.Join(projectRoot, XDeployFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	var raw config.XDeployFileConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", XDeployFileName, err)
	}

	raw.Deployer.PrivateKey = os.ExpandEnv(raw.Deployer.PrivateKey)
	raw.Deployer.Keystore = os.ExpandEnv(raw.Deployer.Keystore)
	raw.Artifacts.ProxyOwner = os.ExpandEnv(raw.Artifacts.ProxyOwner)
	for name, n := range raw.Networks {
		n.RPCURL = os.ExpandEnv(n.RPCURL)
		n.APIKey = os.ExpandEnv(n.APIKey)
		n.APIURL = os.ExpandEnv(n.APIURL)
		raw.Networks[name] = n
	}
	return &raw, nil
}

// loadFoundryFile parses foundry.toml, returning nil when the file does not exist
func loadFoundryFile(projectRoot string) (*config.FoundryFileConfig, error) {
	path := filepath.Join(projectRoot, FoundryFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	var raw config.FoundryFileConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FoundryFileName, err)
	}

	for name, url := range raw.RpcEndpoints {
		raw.RpcEndpoints[name] = os.ExpandEnv(url)
	}
	for name, es := range raw.Etherscan {
		es.Key = os.ExpandEnv(es.Key)
		es.URL = os.ExpandEnv(es.URL)
		raw.Etherscan[name] = es
	}
	return &raw, nil
}
