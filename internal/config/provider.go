package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/domain/models"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	loadEnvFiles(projectRoot)

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, ".xdeploy"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		AssumeYes:      v.GetBool("yes"),
		Timeout:        v.GetDuration("timeout"),
		Contracts:      map[string]string{},
		Verification: config.VerificationConfig{
			Watch: true,
		},
	}

	xdeployFile, err := loadXDeployFile(projectRoot)
	if err != nil {
		return nil, err
	}
	foundryFile, err := loadFoundryFile(projectRoot)
	if err != nil {
		return nil, err
	}

	switch {
	case xdeployFile != nil:
		cfg.ConfigSource = XDeployFileName
	case foundryFile != nil:
		cfg.ConfigSource = FoundryFileName
	}

	applyFoundryFile(cfg, foundryFile)
	if err := applyXDeployFile(cfg, xdeployFile); err != nil {
		return nil, err
	}

	// env and flags win over the file
	if pk := v.GetString("private_key"); pk != "" {
		cfg.Deployer.PrivateKey = pk
	}
	if ks := v.GetString("keystore"); ks != "" {
		cfg.Deployer.Keystore = ks
	}
	if len(cfg.Artifacts.Dirs) == 0 {
		cfg.Artifacts.Dirs = []string{"out", "artifacts"}
	}

	if networkName := v.GetString("network"); networkName != "" {
		resolver := NewNetworkResolver(cfg.DataDir, xdeployFile, foundryFile)
		ctx := context.Background()
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}
		network, err := resolver.Resolve(ctx, networkName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
		}
		cfg.Network = network
	}

	return cfg, nil
}

func applyFoundryFile(cfg *config.RuntimeConfig, f *config.FoundryFileConfig) {
	if f == nil {
		return
	}
	if p, ok := f.Profile["default"]; ok {
		if p.OutPath != "" {
			cfg.Artifacts.Dirs = []string{p.OutPath}
		}
		if p.SolcVersion != "" {
			cfg.Verification.CompilerVersion = p.SolcVersion
		}
	}
}

func applyXDeployFile(cfg *config.RuntimeConfig, f *config.XDeployFileConfig) error {
	if f == nil {
		return nil
	}

	cfg.Deployer = config.DeployerConfig{
		PrivateKey:  f.Deployer.PrivateKey,
		Keystore:    f.Deployer.Keystore,
		PasswordEnv: f.Deployer.PasswordEnv,
	}

	if len(f.Artifacts.Dirs) > 0 {
		cfg.Artifacts.Dirs = f.Artifacts.Dirs
	}
	switch config.ProxyKind(strings.ToLower(f.Artifacts.Proxy)) {
	case "", "auto":
	case config.ProxyKindUUPS:
		cfg.Artifacts.ProxyKind = config.ProxyKindUUPS
	case config.ProxyKindTransparent:
		cfg.Artifacts.ProxyKind = config.ProxyKindTransparent
	default:
		return fmt.Errorf("%s: unknown proxy kind %q (expected auto, uups or transparent)", XDeployFileName, f.Artifacts.Proxy)
	}
	cfg.Artifacts.ProxyOwner = f.Artifacts.ProxyOwner

	if f.Verification.Verifier != "" {
		cfg.Verification.Verifier = f.Verification.Verifier
	}
	if f.Verification.CompilerVersion != "" {
		cfg.Verification.CompilerVersion = f.Verification.CompilerVersion
	}
	if f.Verification.Watch != nil {
		cfg.Verification.Watch = *f.Verification.Watch
	}

	for kind, c := range f.Contracts {
		if c.Artifact != "" {
			cfg.Contracts[kind] = c.Artifact
		}
	}
	return nil
}

// FindProjectRoot walks up from current directory to find xdeploy.toml or foundry.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, marker := range []string{XDeployFileName, FoundryFileName} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a contracts project (%s or %s not found)", XDeployFileName, FoundryFileName)
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("XDEPLOY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("timeout", "10m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})

	return v
}

// ScriptConfigFromViper collects the per-script switches from flags or XDEPLOY_SKIP_VERIFY / XDEPLOY_VERIFY_ADDRESS
func ScriptConfigFromViper(v *viper.Viper) (config.ScriptConfig, error) {
	sc := config.ScriptConfig{SkipVerify: v.GetBool("skip_verify")}
	if raw := v.GetString("verify_address"); raw != "" {
		addr, err := models.ParseAddress(raw)
		if err != nil {
			return config.ScriptConfig{}, fmt.Errorf("--verify-address: %w", err)
		}
		sc.VerifyAddress = &addr
	}
	return sc, nil
}
