package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meshackyaro/Sanctifier/internal/analyzers"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "rules", Short: "List available analyzer rules"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in analyzers",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := analyzers.NewRegistry()
			reg.RegisterBuiltin()
			for _, a := range reg.Analyzers() {
				m := a.Meta()
				state := "enabled"
				if !m.DefaultEnabled {
					state = "disabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.Name, state, m.Title)
			}
			return nil
		},
	})
	return cmd
}
