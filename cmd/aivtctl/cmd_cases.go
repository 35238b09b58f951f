package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/aivt-api/internal/report"
	"github.com/noah-isme/aivt-api/internal/service"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every case in registry order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			cases := rt.Registry.ListCases()
			if len(cases) == 0 {
				fmt.Fprintln(out, "No cases found.")
				return nil
			}
			fmt.Fprintln(out, report.CaseTable(cases, flags.mode()))
			return nil
		},
	}
}

func newShowCmd(flags *rootFlags) *cobra.Command {
	var saveDir string

	cmd := &cobra.Command{
		Use:   "show <case-id>",
		Short: "Print the full report for one case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid case id %q", args[0])
			}

			rt, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			violation, ok := rt.Registry.SearchCase(id)
			if !ok {
				return fmt.Errorf("case %d not found", id)
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, violation.GenerateReport())
			fmt.Fprintln(out, violation.ResolutionSummary())

			if saveDir != "" {
				path, err := service.NewExportService(rt.Registry, rt.Store, rt.Logger).WriteCaseReport(id, saveDir)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Report saved to: %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&saveDir, "save-report", "", "Also write the report to Case_Report_<id>_<name>.txt in this directory")
	return cmd
}

func newStudentCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "student <enrollment-number>",
		Short: "List the cases recorded against one student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			enrollment := strings.TrimSpace(args[0])
			cases := rt.Registry.SearchByStudent(enrollment)
			if len(cases) == 0 {
				fmt.Fprintf(out, "No cases found for student %s.\n", enrollment)
				return nil
			}

			fmt.Fprintf(out, "Student: %s\n", cases[0].Student.DisplayInfo())
			for i := range cases {
				fmt.Fprintln(out, cases[i].Summary())
			}
			return nil
		},
	}
}
