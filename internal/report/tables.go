// Package report renders registry contents as terminal or Markdown tables.
package report

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/noah-isme/aivt-api/internal/models"
	"github.com/noah-isme/aivt-api/internal/repository"
	"github.com/noah-isme/aivt-api/internal/service"
)

// Mode selects the table output format.
type Mode int

const (
	ASCII    Mode = iota // box-drawn terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

const (
	studentColumnWidth = 20
	typeColumnWidth    = 15
	statusColumnWidth  = 19
)

func newWriter(m Mode) table.Writer {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return w
}

func render(w table.Writer, m Mode) string {
	if m == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// CaseTable lists cases with one row per case in registry order.
func CaseTable(cases []models.Violation, m Mode) string {
	w := newWriter(m)
	w.AppendHeader(table.Row{"ID", "Student", "Enrollment", "Type", "Status", "Gravity", "Date"})
	for i := range cases {
		v := &cases[i]
		w.AppendRow(table.Row{
			v.RecordID,
			Truncate(v.FullName(), studentColumnWidth),
			v.EnrollmentNumber(),
			Truncate(v.MisconductType, typeColumnWidth),
			Truncate(string(v.CurrentStatus), statusColumnWidth),
			fmt.Sprintf("%d/5", v.GravityLevel),
			v.IncidentDate.Format(models.DateLayout),
		})
	}
	w.AppendFooter(table.Row{"", "", "", "", "Total", len(cases), ""})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 6, Align: text.AlignCenter},
	})
	return render(w, m)
}

// StudentTable lists per-student case counts.
func StudentTable(stats []service.StudentCaseCount, m Mode) string {
	w := newWriter(m)
	w.AppendHeader(table.Row{"Enrollment", "Student", "Department", "Cases"})
	for _, entry := range stats {
		w.AppendRow(table.Row{
			entry.Student.EnrollmentNumber,
			Truncate(entry.Student.FullName, studentColumnWidth),
			entry.Student.Department,
			entry.Count,
		})
	}
	w.AppendFooter(table.Row{"", "Unique students", "", len(stats)})
	w.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
	return render(w, m)
}

// StoreStatsTable describes the persisted store.
func StoreStatsTable(stats repository.StoreStats, m Mode) string {
	w := newWriter(m)
	w.AppendHeader(table.Row{"Property", "Value"})
	w.AppendRow(table.Row{"Location", stats.Location})
	w.AppendRow(table.Row{"Size", fmt.Sprintf("%.2f KB", stats.SizeKB())})
	w.AppendRow(table.Row{"Last Modified", formatTimestamp(stats.LastModified)})
	w.AppendRow(table.Row{"Last Saved", formatTimestamp(stats.SavedAt)})
	w.AppendRow(table.Row{"Cases", stats.CaseCount})
	w.AppendRow(table.Row{"Next Case ID", stats.NextCaseID})
	return render(w, m)
}
