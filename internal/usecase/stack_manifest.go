package usecase

import (
	"fmt"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/models"
	"gopkg.in/yaml.v3"
)

// StackManifest represents the top-level configuration of a stack deployment
type StackManifest struct {
	Group      string                     `yaml:"group"`
	Components map[string]*ComponentConfig `yaml:"components"`
}

// ComponentConfig represents a single contract in the stack
type ComponentConfig struct {
	Kind string            `yaml:"kind"`
	Deps []string          `yaml:"deps,omitempty"`
	Args map[string]string `yaml:"args,omitempty"`
	// Address reuses an existing deployment instead of deploying.
	Address    string `yaml:"address,omitempty"`
	SkipVerify bool   `yaml:"skip_verify,omitempty"`
}

// StackPlan represents the linearized execution plan
type StackPlan struct {
	Group      string
	Components []*StackStep
}

// StackStep represents a single step in the execution plan
type StackStep struct {
	Name         string
	Kind         models.ContractKind
	Args         map[string]models.AddressRef
	Address      *common.Address
	SkipVerify   bool
	Dependencies []string
}

// ParseStackManifest reads a YAML stack manifest
func ParseStackManifest(path string) (*StackManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var manifest StackManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &manifest, nil
}

// Plan validates the manifest and returns its components in dependency order.
// References to other components become implicit dependencies.
func (m *StackManifest) Plan() (*StackPlan, error) {
	if m.Group == "" {
		return nil, fmt.Errorf("group name is required")
	}
	if len(m.Components) == 0 {
		return nil, fmt.Errorf("at least one component is required")
	}

	steps := make(map[string]*StackStep, len(m.Components))
	for name, component := range m.Components {
		step, err := m.buildStep(name, component)
		if err != nil {
			return nil, err
		}
		steps[name] = step
	}

	ordered, err := NewDependencyGraph(steps).TopologicalSort()
	if err != nil {
		return nil, err
	}
	return &StackPlan{Group: m.Group, Components: ordered}, nil
}

func (m *StackManifest) buildStep(name string, component *ComponentConfig) (*StackStep, error) {
	if component == nil {
		return nil, fmt.Errorf("component '%s' is empty", name)
	}
	kind, err := models.ParseContractKind(component.Kind)
	if err != nil {
		return nil, fmt.Errorf("component '%s': %w", name, err)
	}
	recipe, _ := models.LookupRecipe(kind)

	step := &StackStep{
		Name:       name,
		Kind:       kind,
		Args:       make(map[string]models.AddressRef, len(component.Args)),
		SkipVerify: component.SkipVerify,
	}

	if component.Address != "" {
		addr, err := models.ParseAddress(component.Address)
		if err != nil {
			return nil, fmt.Errorf("component '%s': %w", name, err)
		}
		step.Address = &addr
	}

	deps := map[string]bool{}
	for _, dep := range component.Deps {
		if dep == name {
			return nil, fmt.Errorf("component '%s' cannot depend on itself", name)
		}
		if _, exists := m.Components[dep]; !exists {
			return nil, fmt.Errorf("component '%s' depends on non-existent component '%s'", name, dep)
		}
		deps[dep] = true
	}

	for param, raw := range component.Args {
		if _, ok := recipe.Param(param); !ok {
			return nil, fmt.Errorf("component '%s': %s does not take argument %q", name, kind, param)
		}
		ref, err := models.ParseAddressRef(raw)
		if err != nil {
			return nil, fmt.Errorf("component '%s' arg %s: %w", name, param, err)
		}
		if ref.IsReference() {
			if ref.Component == name {
				return nil, fmt.Errorf("component '%s' cannot depend on itself", name)
			}
			if _, exists := m.Components[ref.Component]; !exists {
				return nil, fmt.Errorf("component '%s' arg %s: %w: %s", name, param, domain.ErrUnresolvedReference, ref)
			}
			deps[ref.Component] = true
		}
		step.Args[param] = ref
	}

	for dep := range deps {
		step.Dependencies = append(step.Dependencies, dep)
	}
	sort.Strings(step.Dependencies)
	return step, nil
}

// DependencyGraph represents a directed acyclic graph of stack steps
type DependencyGraph struct {
	nodes map[string]*StackStep
	edges map[string][]string // adjacency list: node -> list of dependents
}

// NewDependencyGraph creates a new dependency graph from the planned steps
func NewDependencyGraph(steps map[string]*StackStep) *DependencyGraph {
	graph := &DependencyGraph{
		nodes: steps,
		edges: make(map[string][]string),
	}
	for name, step := range steps {
		for _, dep := range step.Dependencies {
			if _, exists := steps[dep]; !exists {
				continue
			}
			graph.edges[dep] = append(graph.edges[dep], name)
		}
	}
	return graph
}

// TopologicalSort returns the steps in execution order, or an error if there's a cycle.
// Ties are broken by name so the order is deterministic.
func (g *DependencyGraph) TopologicalSort() ([]*StackStep, error) {
	inDegree := make(map[string]int)
	for name := range g.nodes {
		inDegree[name] = 0
	}
	for name, step := range g.nodes {
		for _, dep := range step.Dependencies {
			if _, exists := g.nodes[dep]; !exists {
				return nil, fmt.Errorf("component '%s' depends on non-existent component '%s'", name, dep)
			}
			inDegree[name]++
		}
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []*StackStep
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, g.nodes[current])

		dependents := g.edges[current]
		sort.Strings(dependents)
		for _, dependent := range dependents {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var cycleNodes []string
		for name, degree := range inDegree {
			if degree > 0 {
				cycleNodes = append(cycleNodes, name)
			}
		}
		sort.Strings(cycleNodes)
		return nil, fmt.Errorf("circular dependency detected involving components: %v", cycleNodes)
	}
	return result, nil
}
