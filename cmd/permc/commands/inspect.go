package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.trai.ch/permc/internal/app"
)

func (c *CLI) newInspectCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect-cache",
		Short: "Show the permutation plan and the shared program cache without compiling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := c.app.Plan(cmd.Context(), compileRequest(cmd))
			if err != nil {
				return err
			}
			renderPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}
	addInputFlags(cmd.Flags())
	addOptionFlags(cmd.Flags())
	return cmd
}

func renderPlan(w io.Writer, plan *app.Plan) {
	_, _ = fmt.Fprintf(w, "module %s: %d permutations, %d types registered\n",
		plan.Module.Name, len(plan.Permutations), plan.Registry.Types)
	_, _ = fmt.Fprintf(w, "cache %s: %d bytes\n", plan.Cache.Token, plan.Cache.BlobBytes)

	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Properties", "Answers"})
	for _, perm := range plan.Permutations {
		var answers []string
		for _, request := range plan.Requests {
			answers = append(answers, request+" → "+perm.Answer(request))
		}
		t.AppendRow(table.Row{perm.ID, perm.Label(), strings.Join(answers, "\n")})
	}
	t.Render()
}
