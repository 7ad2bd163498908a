package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/domain/models"
	"github.com/xterio/xdeploy/internal/usecase"
)

// ContractInfo describes one compiled contract found in the artifact directories
type ContractInfo struct {
	Name         string
	Source       string
	ArtifactPath string
	Compiler     string

	abi      json.RawMessage
	bytecode string
}

// ID returns the fully-qualified identifier (path:Name)
func (c *ContractInfo) ID() string {
	return fmt.Sprintf("%s:%s", c.Source, c.Name)
}

// Resolver implements ContractFactoryResolver over Foundry (out/) and Hardhat (artifacts/) build output
type Resolver struct {
	projectRoot string
	dirs        []string
	overrides   map[string]string

	once     sync.Once
	indexErr error
	byID     map[string]*ContractInfo
	byName   map[string][]*ContractInfo
}

// NewResolver creates a new artifact resolver
func NewResolver(cfg *config.RuntimeConfig) *Resolver {
	return &Resolver{
		projectRoot: cfg.ProjectRoot,
		dirs:        cfg.Artifacts.Dirs,
		overrides:   cfg.Contracts,
	}
}

// Resolve returns the handle for a recipe, honouring [contracts.<kind>] artifact overrides
func (r *Resolver) Resolve(ctx context.Context, recipe models.Recipe) (*models.ContractHandle, error) {
	name := recipe.Artifact
	if override, ok := r.overrides[string(recipe.Kind)]; ok && override != "" {
		name = override
	}
	return r.ResolveByName(ctx, name)
}

// ResolveByName accepts a bare contract name or a path:Name identifier
func (r *Resolver) ResolveByName(_ context.Context, name string) (*models.ContractHandle, error) {
	if err := r.index(); err != nil {
		return nil, err
	}

	info, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return info.load()
}

func (r *Resolver) lookup(name string) (*ContractInfo, error) {
	if strings.Contains(name, ":") {
		if info, ok := r.byID[name]; ok {
			return info, nil
		}
		return nil, r.unknown(name)
	}

	matches := r.byName[name]
	switch len(matches) {
	case 0:
		return nil, r.unknown(name)
	case 1:
		return matches[0], nil
	default:
		ids := lo.Map(matches, func(c *ContractInfo, _ int) string { return c.ID() })
		sort.Strings(ids)
		return nil, fmt.Errorf("ambiguous contract %q, use one of: %s", name, strings.Join(ids, ", "))
	}
}

func (r *Resolver) unknown(name string) error {
	names := lo.Keys(r.byName)
	sort.Strings(names)
	matches := fuzzy.Find(name, names)
	suggestions := make([]string, 0, 3)
	for i := 0; i < len(matches) && i < 3; i++ {
		suggestions = append(suggestions, matches[i].Str)
	}
	return domain.UnknownContractErr{Name: name, Suggestions: suggestions}
}

// index walks the artifact directories once
func (r *Resolver) index() error {
	r.once.Do(func() {
		r.byID = make(map[string]*ContractInfo)
		r.byName = make(map[string][]*ContractInfo)

		found := false
		for _, dir := range r.dirs {
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(r.projectRoot, dir)
			}
			if _, err := os.Stat(dir); err != nil {
				continue
			}
			found = true
			if err := r.walk(dir); err != nil {
				r.indexErr = fmt.Errorf("failed to index artifacts in %s: %w", dir, err)
				return
			}
		}
		if !found {
			r.indexErr = fmt.Errorf("no artifact directory found (looked in %s); compile the contracts first", strings.Join(r.dirs, ", "))
		}
	})
	return r.indexErr
}

func (r *Resolver) walk(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
			return nil
		}

		contract, err := parseArtifact(path)
		if err != nil || contract == nil {
			// not an artifact or nothing deployable
			return nil
		}
		if _, exists := r.byID[contract.ID()]; exists {
			return nil
		}
		r.byID[contract.ID()] = contract
		r.byName[contract.Name] = append(r.byName[contract.Name], contract)
		return nil
	})
}

// artifactFile covers both Foundry and Hardhat artifact layouts
type artifactFile struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
	Metadata     json.RawMessage `json:"metadata"`
	RawMetadata  string          `json:"rawMetadata"`
}

type artifactMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

func parseArtifact(path string) (*ContractInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.ABI) == 0 {
		return nil, nil
	}

	bytecode, err := decodeBytecodeField(file.Bytecode)
	if err != nil {
		return nil, err
	}
	if bytecode == "" || bytecode == "0x" {
		return nil, nil
	}

	meta := decodeMetadata(file.Metadata, file.RawMetadata)

	info := &ContractInfo{
		Name:         file.ContractName,
		Source:       file.SourceName,
		ArtifactPath: path,
		abi:          file.ABI,
		bytecode:     bytecode,
	}
	if meta != nil {
		info.Compiler = meta.Compiler.Version
		for source, name := range meta.Settings.CompilationTarget {
			if info.Source == "" {
				info.Source = source
			}
			if info.Name == "" {
				info.Name = name
			}
		}
	}
	if info.Name == "" {
		info.Name = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	if info.Source == "" {
		// Foundry lays artifacts out as <out>/<File>.sol/<Name>.json
		info.Source = filepath.Base(filepath.Dir(path))
	}
	return info, nil
}

// decodeBytecodeField accepts "0x…" (Hardhat) or {"object": "0x…"} (Foundry)
func decodeBytecodeField(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var obj struct {
		Object string `json:"object"`
	}
	err := json.Unmarshal(raw, &obj)
	return obj.Object, err
}

// decodeMetadata handles metadata stored as an object or as an embedded JSON string
func decodeMetadata(raw json.RawMessage, rawMetadata string) *artifactMetadata {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			raw = json.RawMessage(s)
		}
	}
	if len(raw) == 0 && rawMetadata != "" {
		raw = json.RawMessage(rawMetadata)
	}
	if len(raw) == 0 {
		return nil
	}
	var meta artifactMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil
	}
	return &meta
}

func (c *ContractInfo) load() (*models.ContractHandle, error) {
	if strings.Contains(c.bytecode, "__$") {
		return nil, fmt.Errorf("%s has unlinked library references; deploy and link the libraries first", c.ID())
	}
	code := c.bytecode
	if !strings.HasPrefix(code, "0x") {
		code = "0x" + code
	}
	bytecode, err := hexutil.Decode(code)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode in %s: %w", c.ArtifactPath, err)
	}

	parsed, err := abi.JSON(bytes.NewReader(c.abi))
	if err != nil {
		return nil, fmt.Errorf("invalid ABI in %s: %w", c.ArtifactPath, err)
	}

	return &models.ContractHandle{
		Name:         c.Name,
		ContractID:   c.ID(),
		ArtifactPath: c.ArtifactPath,
		ABI:          parsed,
		Bytecode:     bytecode,
		Compiler:     c.Compiler,
	}, nil
}

var _ usecase.ContractFactoryResolver = (*Resolver)(nil)
