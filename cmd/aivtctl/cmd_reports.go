package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/aivt-api/internal/report"
	"github.com/noah-isme/aivt-api/internal/repository"
	"github.com/noah-isme/aivt-api/internal/service"
)

func newSummaryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print case counts by type, status and gravity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			fmt.Fprintln(cmd.OutOrStdout(), rt.Registry.GenerateSummaryReport())
			return nil
		},
	}
}

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-student case counts and store information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total cases: %d\n", rt.Registry.TotalCases())
			fmt.Fprintln(out, report.StudentTable(rt.Registry.StudentStatistics(), flags.mode()))

			stats, err := rt.Store.Stats(commandContext(cmd))
			switch {
			case errors.Is(err, repository.ErrStoreMissing):
				fmt.Fprintln(out, "No case store found.")
			case err != nil:
				return err
			default:
				fmt.Fprintln(out, report.StoreStatsTable(stats, flags.mode()))
			}
			return nil
		},
	}
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every case report to a readable text or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			exports := service.NewExportService(rt.Registry, rt.Store, rt.Logger)
			path := output
			if path == "" {
				path = rt.Config.ExportPath
			}

			switch strings.ToLower(format) {
			case "text", "txt":
				_, err = exports.ExportText(path)
			case "yaml", "yml":
				if output == "" {
					path = strings.TrimSuffix(path, ".txt") + ".yaml"
				}
				_, err = exports.ExportYAML(path)
			default:
				return fmt.Errorf("unsupported format %q (want text or yaml)", format)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Readable data saved to %s\n", path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&format, "format", "text", "Export format: text or yaml")
	f.StringVarP(&output, "output", "o", "", "Output path (default: $AIVT_EXPORT_PATH or aivt_data.txt)")
	return cmd
}

func newBackupCmd(flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Copy the sqlite store to a backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			path := output
			if path == "" {
				path = rt.Config.BackupPath
			}
			if _, err := service.NewExportService(rt.Registry, rt.Store, rt.Logger).Backup(commandContext(cmd), path); err != nil {
				if errors.Is(err, repository.ErrStoreMissing) {
					return errors.New("no data file found to back up")
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Backup created: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Backup path (default: $AIVT_BACKUP_PATH or aivt_data_backup.db)")
	return cmd
}

func newResetCmd(flags *rootFlags) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all persisted case data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return errors.New("refusing to reset without --yes")
			}

			rt, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.Store.Reset(commandContext(cmd)); err != nil {
				if errors.Is(err, repository.ErrStoreMissing) {
					fmt.Fprintln(cmd.OutOrStdout(), "Data store does not exist.")
					return nil
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Case data deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm deletion")
	return cmd
}
