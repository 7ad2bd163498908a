package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/xterio/xdeploy/internal/domain/models"
	"github.com/xterio/xdeploy/internal/usecase"
)

// ContractsRenderer lists the deployable contracts
type ContractsRenderer struct {
	out io.Writer
}

// NewContractsRenderer creates a new contracts renderer
func NewContractsRenderer(out io.Writer) *ContractsRenderer {
	return &ContractsRenderer{out: out}
}

// Render implements Renderer
func (r *ContractsRenderer) Render(entries []*usecase.ContractEntry) error {
	t := newTable()
	t.AppendHeader(table.Row{"Kind", "Strategy", "Parameters", "Artifact"})
	for _, entry := range entries {
		artifact := redColor.Sprint("not compiled")
		if entry.Err == nil {
			artifact = entry.Handle.ContractID
		}
		params := lo.Map(entry.Recipe.Params, func(p models.Param, _ int) string {
			if p.Optional || p.DefaultsToSigner {
				return p.Name + "?"
			}
			return p.Name
		})
		t.AppendRow(table.Row{entry.Recipe.Kind, entry.Recipe.Strategy, strings.Join(params, ", "), artifact})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

var _ Renderer[[]*usecase.ContractEntry] = (*ContractsRenderer)(nil)
