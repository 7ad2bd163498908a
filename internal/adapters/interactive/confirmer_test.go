package interactive

import (
	"bytes"
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/domain/models"
	"github.com/xterio/xdeploy/internal/usecase"
)

var request = usecase.ConfirmRequest{
	Title:    "Deploy TokenGateway",
	Network:  "sepolia",
	ChainID:  11155111,
	Deployer: common.HexToAddress("0x5e11e75e11e75e11e75e11e75e11e75e11e75e1"),
	Items:    []string{"gatewayAdmin = 0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
}

func newTestConfirmer(cfg *config.RuntimeConfig, answer bool) (*Confirmer, *bytes.Buffer, *int) {
	color.NoColor = true
	var buf bytes.Buffer
	asked := 0
	c := NewConfirmer(cfg)
	c.out = &buf
	c.ask = func(string) (bool, error) {
		asked++
		return answer, nil
	}
	return c, &buf, &asked
}

func TestConfirmer(t *testing.T) {
	t.Run("asks and prints banner", func(t *testing.T) {
		c, out, asked := newTestConfirmer(&config.RuntimeConfig{}, false)
		ok, err := c.Confirm(context.Background(), request)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, *asked)
		assert.Contains(t, out.String(), "sepolia")
		assert.Contains(t, out.String(), "11155111")
		assert.Contains(t, out.String(), request.Deployer.Hex())
		assert.Contains(t, out.String(), "gatewayAdmin")
	})

	t.Run("--yes skips the prompt", func(t *testing.T) {
		c, _, asked := newTestConfirmer(&config.RuntimeConfig{AssumeYes: true, NonInteractive: true}, false)
		ok, err := c.Confirm(context.Background(), request)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Zero(t, *asked)
	})

	t.Run("non-interactive requires --yes", func(t *testing.T) {
		c, _, asked := newTestConfirmer(&config.RuntimeConfig{NonInteractive: true}, true)
		_, err := c.Confirm(context.Background(), request)
		assert.ErrorIs(t, err, domain.ErrConfirmationRequired)
		assert.Zero(t, *asked)
	})
}

func TestSelector_NonInteractive(t *testing.T) {
	s := NewSelector(&config.RuntimeConfig{NonInteractive: true})

	_, err := s.SelectKind(context.Background(), models.AllKinds())
	assert.Error(t, err)

	_, err = s.PromptAddress(context.Background(), models.Param{Name: "gateway"})
	assert.ErrorIs(t, err, domain.ErrMissingArgument)
	assert.ErrorContains(t, err, "gateway")
}

func TestFuzzySearch(t *testing.T) {
	color.NoColor = true
	options := formatKindOptions([]models.ContractKind{models.KindGateway, models.KindTransferValidator})
	search := createFuzzySearchFunc(options)

	assert.True(t, search("", 0))
	assert.True(t, search("gate", 0))
	assert.True(t, search("trval", 1))
	assert.False(t, search("zzz", 0))
}
