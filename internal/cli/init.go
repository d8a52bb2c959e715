package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meshackyaro/Sanctifier/internal/config"
	"github.com/meshackyaro/Sanctifier/internal/model"
)

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a " + config.FileName + " in the target directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			path := filepath.Join(dir, config.FileName)
			if !force {
				if _, err := os.Stat(path); err == nil {
					return &model.ConfigError{Reason: path + " already exists (use --force to overwrite)"}
				}
			}
			cfg := config.Default()
			cfg.CustomRules = []config.CustomRule{
				{Name: "no_unsafe_block", Pattern: `unsafe\s*\{`},
				{Name: "no_mem_forget", Pattern: `mem::forget`},
			}
			b, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, b, 0o644); err != nil {
				return &model.IOError{Path: path, Cause: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
