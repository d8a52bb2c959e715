package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meshackyaro/Sanctifier/internal/analyzers"
	"github.com/meshackyaro/Sanctifier/internal/config"
	"github.com/meshackyaro/Sanctifier/internal/engine"
	"github.com/meshackyaro/Sanctifier/internal/model"
	"github.com/meshackyaro/Sanctifier/internal/report"
)

func AddCommands(root *cobra.Command) {
	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newWatchCmd())
}

type analyzeFlags struct {
	format string
	limit  int
	strict bool
	out    string
	failOn string
}

func newAnalyzeCmd() *cobra.Command {
	var flags analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze a Soroban contract project or artifact",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			cfg, err := resolveConfig(path, flags)
			if err != nil {
				return err
			}

			reg := analyzers.NewRegistry()
			reg.RegisterBuiltin()
			result, err := engine.New(reg).Scan(cmd.Context(), path, cfg)
			if err != nil {
				return err
			}

			if err := render(cmd, result, flags); err != nil {
				return err
			}
			return checkFailOn(result.Findings, flags.failOn)
		},
	}
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Output format: text|json|sarif")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "Override the ledger entry size limit in bytes")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Enable strict mode (lower size warning threshold)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&flags.failOn, "fail-on", "", "Exit non-zero if a finding of this severity or higher exists (low|medium|high|critical)")
	return cmd
}

// resolveConfig loads the nearest config file and applies CLI overrides on
// top. Flags win over file values, which win over defaults.
func resolveConfig(path string, flags analyzeFlags) (config.Config, error) {
	startDir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		startDir = filepath.Dir(path)
	}
	cfg, _, err := config.Load(startDir)
	if err != nil {
		return cfg, err
	}
	if flags.limit > 0 {
		cfg.LedgerLimit = flags.limit
	}
	if flags.strict {
		cfg.StrictMode = true
	}
	return cfg, cfg.Validate()
}

func render(cmd *cobra.Command, result *model.Result, flags analyzeFlags) error {
	var data []byte
	var err error
	switch flags.format {
	case "json":
		data, err = report.ToJSON(result.Findings)
	case "sarif":
		data, err = report.ToSARIF(result.Findings)
	case "text", "":
		if flags.out != "" {
			f, err := os.Create(flags.out)
			if err != nil {
				return &model.IOError{Path: flags.out, Cause: err}
			}
			defer f.Close()
			report.WriteText(f, result.Findings)
			return nil
		}
		report.WriteText(cmd.OutOrStdout(), result.Findings)
		return nil
	default:
		return &model.ConfigError{Reason: fmt.Sprintf("unknown format %q", flags.format)}
	}
	if err != nil {
		return err
	}
	if flags.out != "" {
		if werr := os.WriteFile(flags.out, data, 0o644); werr != nil {
			return &model.IOError{Path: flags.out, Cause: werr}
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func checkFailOn(findings []model.Finding, failOn string) error {
	if failOn == "" {
		return nil
	}
	threshold := model.ParseSeverity(failOn)
	for _, f := range findings {
		if model.SeverityGTE(f.Severity, threshold) {
			return fmt.Errorf("fail-on threshold met: %s finding %s", f.Severity, f.ID)
		}
	}
	return nil
}
