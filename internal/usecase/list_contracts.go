package usecase

import (
	"context"

	"github.com/xterio/xdeploy/internal/domain/models"
)

// ContractEntry is one deployable contract kind and the artifact it resolves to
type ContractEntry struct {
	Recipe models.Recipe
	Handle *models.ContractHandle
	Err    error
}

// ListContracts shows which recipes have compiled artifacts available
type ListContracts struct {
	resolver ContractFactoryResolver
}

// NewListContracts creates a new ListContracts use case
func NewListContracts(resolver ContractFactoryResolver) *ListContracts {
	return &ListContracts{resolver: resolver}
}

// Run resolves every recipe; a missing artifact is reported per entry
func (l *ListContracts) Run(ctx context.Context) []*ContractEntry {
	var entries []*ContractEntry
	for _, kind := range models.AllKinds() {
		recipe, _ := models.LookupRecipe(kind)
		handle, err := l.resolver.Resolve(ctx, recipe)
		entries = append(entries, &ContractEntry{Recipe: recipe, Handle: handle, Err: err})
	}
	return entries
}
