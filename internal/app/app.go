package app

import (
	"github.com/spf13/cobra"

	"github.com/meshackyaro/Sanctifier/internal/cli"
)

func BuildRoot() *cobra.Command {
	root := &cobra.Command{Use: "sanctify", Short: "Static analyzer for Soroban smart contracts"}
	cli.AddCommands(root)
	return root
}
