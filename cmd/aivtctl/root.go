package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/noah-isme/aivt-api/internal/bootstrap"
	"github.com/noah-isme/aivt-api/internal/config"
	"github.com/noah-isme/aivt-api/internal/report"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	dbPath   string
	markdown bool
	seed     bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "aivtctl",
		Short: "Inspect and maintain the academic integrity case store",
		Long: `aivtctl reads the case store used by the tracker API and prints
case tables, reports and statistics. It can also export, back up
and reset the store.

The store location comes from the same AIVT_* environment variables
as the API server; --db overrides the sqlite file path.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dbPath, "db", "", "sqlite store path (default: $AIVT_DATABASE_PATH or aivt_data.db)")
	pf.BoolVar(&flags.markdown, "markdown", false, "Render tables as Markdown")
	pf.BoolVar(&flags.seed, "seed", false, "Insert the sample cases when the store is empty")

	root.AddCommand(
		newListCmd(flags),
		newShowCmd(flags),
		newStudentCmd(flags),
		newSummaryCmd(flags),
		newStatsCmd(flags),
		newExportCmd(flags),
		newBackupCmd(flags),
		newResetCmd(flags),
	)
	return root
}

func (f *rootFlags) config() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if f.dbPath != "" {
		cfg.DatabaseDriver = config.DriverSQLite
		cfg.DatabasePath = f.dbPath
	}
	return cfg, nil
}

func (f *rootFlags) open(cmd *cobra.Command) (*bootstrap.Runtime, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}
	logger := bootstrap.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	return bootstrap.Open(commandContext(cmd), cfg, logger, f.seed)
}

func (f *rootFlags) mode() report.Mode {
	if f.markdown {
		return report.Markdown
	}
	return report.ASCII
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
