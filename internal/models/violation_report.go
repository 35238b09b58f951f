package models

import (
	"fmt"
	"strings"
)

const (
	reportRule  = "=================================================="
	sectionRule = "--------------------------------------------------"
	reportWidth = 50
)

// GenerateReport renders the fixed-layout case report. The final section lists
// the evidence specific to the violation kind.
func (v *Violation) GenerateReport() string {
	var b strings.Builder

	heading := "CASE REPORT"
	var details []string
	if v.Details != nil {
		heading = v.Details.reportHeading()
		details = v.Details.reportLines()
	}

	b.WriteString(reportRule + "\n")
	b.WriteString(centered(heading) + "\n")
	b.WriteString(reportRule + "\n")
	fmt.Fprintf(&b, "Case ID: %d\n", v.RecordID)
	fmt.Fprintf(&b, "Student: %s (%s)\n", v.Student.FullName, v.Student.EnrollmentNumber)
	fmt.Fprintf(&b, "Email: %s\n", v.Student.Email)
	fmt.Fprintf(&b, "Department: %s\n", v.Student.Department)
	fmt.Fprintf(&b, "Incident Date: %s\n", v.IncidentDate.Format(DateLayout))
	fmt.Fprintf(&b, "Reporting Faculty: %s\n", v.ReportingFaculty)
	b.WriteString(sectionRule + "\n")
	fmt.Fprintf(&b, "Gravity Level: %d/5\n", v.GravityLevel)
	fmt.Fprintf(&b, "Current Status: %s\n", v.CurrentStatus)
	fmt.Fprintf(&b, "Applied Sanction: %s\n", v.AppliedSanction)
	if v.ClosureDate != nil {
		fmt.Fprintf(&b, "Closure Date: %s\n", v.ClosureDate.Format(DateLayout))
	}
	b.WriteString(sectionRule + "\n")
	b.WriteString("Incident Description:\n")
	b.WriteString(v.IncidentDescription + "\n")
	b.WriteString(sectionRule + "\n")
	b.WriteString("Supporting Evidence:\n")
	b.WriteString(v.SupportingEvidence + "\n")
	if len(details) > 0 {
		b.WriteString(sectionRule + "\n")
		for _, line := range details {
			b.WriteString(line + "\n")
		}
	}
	b.WriteString(reportRule + "\n")

	return b.String()
}

func centered(text string) string {
	if len(text) >= reportWidth {
		return text
	}
	pad := (reportWidth - len(text)) / 2
	return strings.Repeat(" ", pad) + text
}
