package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aivt-api/internal/models"
	"github.com/noah-isme/aivt-api/internal/report"
	"github.com/noah-isme/aivt-api/internal/repository"
	"github.com/noah-isme/aivt-api/internal/service"
)

func sampleCases(t *testing.T) []models.Violation {
	t.Helper()
	samples, err := service.SampleCases()
	require.NoError(t, err)

	cases := make([]models.Violation, 0, len(samples))
	for i, v := range samples {
		v.RecordID = service.FirstCaseID + i
		cases = append(cases, *v)
	}
	cases[0].Student.FullName = "Johnathan Alexander Smithington"
	return cases
}

func TestCaseTableASCII(t *testing.T) {
	out := report.CaseTable(sampleCases(t), report.ASCII)

	require.Contains(t, out, "ENROLLMENT")
	require.Contains(t, out, "1000")
	require.Contains(t, out, "Mary Davis")
	require.Contains(t, out, "Johnathan Alexand...")
	require.NotContains(t, out, "Smithington")
	require.Contains(t, out, "Under Investigation")
	require.Contains(t, out, "4/5")
	require.Contains(t, out, "2024-03-25")
	require.Contains(t, out, "───")
}

func TestCaseTableMarkdown(t *testing.T) {
	out := report.CaseTable(sampleCases(t), report.Markdown)
	require.True(t, strings.HasPrefix(out, "| ID"))
	require.Contains(t, out, "1002")
	require.Contains(t, out, "Alex Chen")
}

func TestStudentTable(t *testing.T) {
	stats := []service.StudentCaseCount{
		{Student: models.NewStudent("20230001", "John Smith", "john@university.edu", "Computer Science"), Count: 2},
		{Student: models.NewStudent("20230002", "Mary Davis", "mary@university.edu", "Mathematics"), Count: 1},
	}
	out := report.StudentTable(stats, report.ASCII)
	require.Contains(t, out, "20230001")
	require.Contains(t, out, "Mathematics")
	require.Contains(t, out, "UNIQUE STUDENTS")
}

func TestStoreStatsTable(t *testing.T) {
	modified := time.Date(2024, 4, 1, 9, 30, 0, 0, time.Local)
	out := report.StoreStatsTable(repository.StoreStats{
		Location:     "aivt_data.db",
		SizeBytes:    2048,
		LastModified: &modified,
		CaseCount:    3,
		NextCaseID:   1003,
	}, report.ASCII)

	require.Contains(t, out, "aivt_data.db")
	require.Contains(t, out, "2.00 KB")
	require.Contains(t, out, "2024-04-01 09:30:00")
	require.Contains(t, out, "N/A")
	require.Contains(t, out, "1003")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", report.Truncate("short", 10))
	require.Equal(t, "abcdefg...", report.Truncate("abcdefghijklmnop", 10))
	require.Equal(t, "ab", report.Truncate("abcdef", 2))
}
