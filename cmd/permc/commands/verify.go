package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.trai.ch/permc/internal/core/domain"
)

func (c *CLI) newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a published output directory against its manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outDir, _ := cmd.Flags().GetString("out-dir")

			m, err := c.app.Verify(outDir)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Strong name", "Fragments", "Properties"})
			for _, entry := range m.Permutations {
				props := domain.Permutation{Properties: entry.Properties}.Label()
				t.AppendRow(table.Row{entry.ID, entry.StrongName, entry.Fragments, props})
			}
			t.AppendFooter(table.Row{"", fmt.Sprintf("%d verified", len(m.Permutations)), "", ""})
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringP("out-dir", "o", domain.DefaultCompileOptions().OutDir, "Output directory")
	return cmd
}
