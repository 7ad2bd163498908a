package senders

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/manifoldco/promptui"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/usecase"
)

// PasswordPrompt asks the operator for a keystore password
type PasswordPrompt func(label string) (string, error)

// Signer loads the deployer key from a raw private key or an encrypted keystore.
// The key is loaded once, on first use.
type Signer struct {
	deployer       config.DeployerConfig
	projectRoot    string
	nonInteractive bool
	prompt         PasswordPrompt

	once sync.Once
	key  *ecdsa.PrivateKey
	err  error
}

// NewSigner creates a signer from the deployer configuration
func NewSigner(cfg *config.RuntimeConfig) *Signer {
	return &Signer{
		deployer:       cfg.Deployer,
		projectRoot:    cfg.ProjectRoot,
		nonInteractive: cfg.NonInteractive,
		prompt:         promptPassword,
	}
}

// Address returns the deployer address
func (s *Signer) Address(ctx context.Context) (common.Address, error) {
	key, err := s.load()
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

// TransactOpts returns signing options bound to chainID
func (s *Signer) TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	key, err := s.load()
	if err != nil {
		return nil, err
	}
	return bind.NewKeyedTransactorWithChainID(key, chainID)
}

func (s *Signer) load() (*ecdsa.PrivateKey, error) {
	s.once.Do(func() {
		switch {
		case s.deployer.PrivateKey != "":
			s.key, s.err = parsePrivateKey(s.deployer.PrivateKey)
		case s.deployer.Keystore != "":
			s.key, s.err = s.loadKeystore()
		default:
			s.err = fmt.Errorf("%w: set deployer.private_key or deployer.keystore in xdeploy.toml, or XDEPLOY_PRIVATE_KEY", domain.ErrNoSigner)
		}
	})
	return s.key, s.err
}

func parsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(raw), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

func (s *Signer) loadKeystore() (*ecdsa.PrivateKey, error) {
	path := s.deployer.Keystore
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.projectRoot, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore: %w", err)
	}

	password, err := s.password(path)
	if err != nil {
		return nil, err
	}

	key, err := keystore.DecryptKey(data, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore %s: %w", path, err)
	}
	return key.PrivateKey, nil
}

func (s *Signer) password(path string) (string, error) {
	if s.deployer.PasswordEnv != "" {
		if password, ok := os.LookupEnv(s.deployer.PasswordEnv); ok {
			return password, nil
		}
	}
	if s.nonInteractive {
		return "", fmt.Errorf("%w: keystore password required, set %s", domain.ErrNoSigner, s.passwordEnvName())
	}
	return s.prompt(fmt.Sprintf("Password for %s", filepath.Base(path)))
}

func (s *Signer) passwordEnvName() string {
	if s.deployer.PasswordEnv != "" {
		return s.deployer.PasswordEnv
	}
	return "deployer.password_env"
}

func promptPassword(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}
	return prompt.Run()
}

var _ usecase.SignerSource = (*Signer)(nil)
