package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/usecase"
)

func newTestStackStateStore(t *testing.T) (*StackStateStoreAdapter, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), ".xdeploy")
	return NewStackStateStoreAdapter(&config.RuntimeConfig{DataDir: dir}), dir
}

func TestStackStateStore_LoadMissing(t *testing.T) {
	store, _ := newTestStackStateStore(t)

	state, err := store.Load(context.Background(), "xterio-core")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestStackStateStore_SaveAndLoad(t *testing.T) {
	store, dir := newTestStackStateStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second).UTC()

	gateway := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	state := &usecase.StackState{
		Stack:     "xterio-core",
		Network:   "xterio-testnet",
		ChainID:   1637450,
		StartedAt: now,
		UpdatedAt: now,
		Status:    usecase.StackStatusFailed,
		Outputs:   map[string]common.Address{"gateway": gateway},
		Failed:    "marketplace",
		Error:     "marketplace: setGateway failed: execution reverted",
	}
	require.NoError(t, store.Save(ctx, state))

	_, err := os.Stat(filepath.Join(dir, "stack-xterio-core.json"))
	require.NoError(t, err)

	loaded, err := store.Load(ctx, "xterio-core")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, state.ChainID, loaded.ChainID)
	assert.Equal(t, gateway, loaded.Outputs["gateway"])
	assert.Equal(t, "marketplace", loaded.Failed)
	assert.True(t, now.Equal(loaded.StartedAt))
}

func TestStackStateStore_SanitizesName(t *testing.T) {
	store, dir := newTestStackStateStore(t)
	require.NoError(t, store.Save(context.Background(), &usecase.StackState{Stack: "../core stack"}))

	_, err := os.Stat(filepath.Join(dir, "stack-.._core_stack.json"))
	assert.NoError(t, err)
}

func TestStackStateStore_Delete(t *testing.T) {
	store, _ := newTestStackStateStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &usecase.StackState{Stack: "s"}))
	require.NoError(t, store.Delete(ctx, "s"))
	state, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Nil(t, state)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, "s"))
}
