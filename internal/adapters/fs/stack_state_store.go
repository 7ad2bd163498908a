package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/usecase"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// StackStateStoreAdapter implements StackStateStore using one JSON file per stack
type StackStateStoreAdapter struct {
	dir string
}

// NewStackStateStoreAdapter creates a new StackStateStoreAdapter
func NewStackStateStoreAdapter(cfg *config.RuntimeConfig) *StackStateStoreAdapter {
	return &StackStateStoreAdapter{dir: cfg.DataDir}
}

func (s *StackStateStoreAdapter) path(stack string) string {
	return filepath.Join(s.dir, fmt.Sprintf("stack-%s.json", unsafeNameChars.ReplaceAllString(stack, "_")))
}

// Load reads the state of a stack. Returns nil if the stack never ran.
func (s *StackStateStoreAdapter) Load(_ context.Context, stack string) (*usecase.StackState, error) {
	data, err := os.ReadFile(s.path(stack))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read stack state file: %w", err)
	}

	var state usecase.StackState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse stack state file: %w", err)
	}
	return &state, nil
}

// Save writes the stack state to disk, creating the directory if needed.
func (s *StackStateStoreAdapter) Save(_ context.Context, state *usecase.StackState) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stack state: %w", err)
	}

	// replace atomically
	tmp := s.path(state.Stack) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write stack state file: %w", err)
	}
	if err := os.Rename(tmp, s.path(state.Stack)); err != nil {
		return fmt.Errorf("failed to write stack state file: %w", err)
	}
	return nil
}

// Delete removes the stack state file from disk.
func (s *StackStateStoreAdapter) Delete(_ context.Context, stack string) error {
	err := os.Remove(s.path(stack))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete stack state file: %w", err)
	}
	return nil
}

var _ usecase.StackStateStore = (*StackStateStoreAdapter)(nil)
