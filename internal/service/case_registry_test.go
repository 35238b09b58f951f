package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/aivt-api/internal/models"
	"github.com/noah-isme/aivt-api/internal/repository"
)

func seededRegistry(t *testing.T) (*caseRegistry, *fakeCaseStore) {
	t.Helper()
	store := &fakeCaseStore{}
	registry := newCaseRegistry(store, nil, testLogger())

	ctx := context.Background()
	for _, v := range []*models.Violation{
		newTestViolation("20230001", "John Smith", models.PlagiarismDetails{SourceDetected: "Wikipedia", SimilarityPercentage: 75}, 3),
		newTestViolation("20230002", "Mary Davis", models.CheatingDetails{CheatingMethod: "Notes"}, 4),
		newTestViolation("20230001", "John Smith", models.CollusionDetails{InvolvedParties: "Alex Chen"}, 2),
	} {
		_, err := registry.AddCase(ctx, v)
		require.NoError(t, err)
	}
	return registry, store
}

func caseIDs(cases []models.Violation) []int {
	ids := make([]int, 0, len(cases))
	for _, v := range cases {
		ids = append(ids, v.RecordID)
	}
	return ids
}

func TestCaseRegistryAssignsSequentialIdentifiers(t *testing.T) {
	registry, store := seededRegistry(t)

	require.Equal(t, []int{1000, 1001, 1002}, caseIDs(registry.ListCases()))
	require.Equal(t, 1003, registry.NextCaseID())
	require.Equal(t, 3, store.saveCalls)
	require.Equal(t, 1003, store.saved.NextCaseID)
	require.Len(t, store.saved.Cases, 3)
}

func TestCaseRegistryAddCaseSetsCallerIdentifier(t *testing.T) {
	registry := newCaseRegistry(&fakeCaseStore{}, nil, testLogger())
	v := newTestViolation("20230001", "John Smith", models.CheatingDetails{}, 1)

	id, err := registry.AddCase(context.Background(), v)
	require.NoError(t, err)
	require.Equal(t, FirstCaseID, id)
	require.Equal(t, FirstCaseID, v.RecordID)
}

func TestCaseRegistryRejectsInvalidInsert(t *testing.T) {
	store := &fakeCaseStore{}
	registry := newCaseRegistry(store, nil, testLogger())

	_, err := registry.AddCase(context.Background(), nil)
	require.ErrorIs(t, err, models.ErrInvalidInput)

	v := newTestViolation("20230001", "John Smith", models.CheatingDetails{}, 3)
	v.GravityLevel = 6
	_, err = registry.AddCase(context.Background(), v)
	require.ErrorIs(t, err, models.ErrInvalidInput)

	v = newTestViolation("20230001", "John Smith", models.CheatingDetails{}, 3)
	v.CurrentStatus = models.CaseStatusClosed
	_, err = registry.AddCase(context.Background(), v)
	require.ErrorIs(t, err, models.ErrInvalidInput)

	require.Equal(t, FirstCaseID, registry.NextCaseID())
	require.Zero(t, registry.TotalCases())
	require.Zero(t, store.saveCalls)
}

func TestCaseRegistryRemoveScenario(t *testing.T) {
	registry, store := seededRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.RemoveCase(ctx, 1001))
	require.Equal(t, []int{1000, 1002}, caseIDs(registry.ListCases()))
	_, found := registry.SearchCase(1001)
	require.False(t, found)

	summary := registry.Summary()
	require.Equal(t, 2, summary.Total)
	require.ElementsMatch(t, []CountEntry{{Key: "Plagiarism", Count: 1}, {Key: "Collusion", Count: 1}}, summary.ByType)
	require.ElementsMatch(t, []CountEntry{{Key: "Pending", Count: 2}}, summary.ByStatus)
	require.ElementsMatch(t, []CountEntry{{Key: "3", Count: 1}, {Key: "2", Count: 1}}, summary.ByGravity)

	report := registry.GenerateSummaryReport()
	require.Contains(t, report, "Total Cases: 2")
	require.Contains(t, report, "Plagiarism")
	require.NotContains(t, report, "Cheating")

	savesBefore := store.saveCalls
	require.NoError(t, registry.RemoveCase(ctx, 4242))
	require.Equal(t, 2, registry.TotalCases())
	require.Equal(t, savesBefore+1, store.saveCalls)
}

func TestCaseRegistryNeverReusesIdentifiers(t *testing.T) {
	registry, _ := seededRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.RemoveCase(ctx, 1002))
	id, err := registry.AddCase(ctx, newTestViolation("20230009", "Nadia Park", models.CheatingDetails{}, 1))
	require.NoError(t, err)
	require.Equal(t, 1003, id)
}

func TestCaseRegistrySearchByStudentPreservesOrder(t *testing.T) {
	registry, _ := seededRegistry(t)

	matches := registry.SearchByStudent("20230001")
	require.Equal(t, []int{1000, 1002}, caseIDs(matches))
	require.Empty(t, registry.SearchByStudent("29999999"))

	found, ok := registry.SearchCase(1001)
	require.True(t, ok)
	require.Equal(t, "Mary Davis", found.FullName())
}

func TestCaseRegistrySnapshotsAreDefensive(t *testing.T) {
	registry, _ := seededRegistry(t)

	cases := registry.ListCases()
	cases[0].AppliedSanction = "Expulsion"
	cases = append(cases[:1], cases[2:]...)
	require.Len(t, cases, 2)

	found, ok := registry.SearchCase(1000)
	require.True(t, ok)
	require.Equal(t, models.DefaultSanction, found.AppliedSanction)
	found.CurrentStatus = models.CaseStatusClosed

	again, _ := registry.SearchCase(1000)
	require.Equal(t, models.CaseStatusPending, again.CurrentStatus)
	require.Equal(t, 3, registry.TotalCases())
}

func TestCaseRegistryPenaltyCloseReopenScenario(t *testing.T) {
	registry, store := seededRegistry(t)
	ctx := context.Background()

	_, _, err := registry.ApplyPenalty(ctx, 1000, "Grade Reduction")
	require.NoError(t, err)
	closed, err := registry.CloseCase(ctx, 1000)
	require.NoError(t, err)
	require.Equal(t, models.CaseStatusClosed, closed.CurrentStatus)
	require.NotNil(t, closed.ClosureDate)

	reopened, err := registry.ReopenCase(ctx, 1000)
	require.NoError(t, err)
	require.Equal(t, models.CaseStatusUnderInvestigation, reopened.CurrentStatus)
	require.Nil(t, reopened.ClosureDate)
	require.Equal(t, "Grade Reduction", reopened.AppliedSanction)

	require.Equal(t, models.CaseStatusUnderInvestigation, store.saved.Cases[0].CurrentStatus)
}

func TestCaseRegistryPenaltyOnClosedCaseIsRevised(t *testing.T) {
	registry, _ := seededRegistry(t)
	ctx := context.Background()

	_, err := registry.CloseCase(ctx, 1001)
	require.NoError(t, err)

	updated, outcome, err := registry.ApplyPenalty(ctx, 1001, "Suspension")
	require.NoError(t, err)
	require.True(t, outcome.Revised)
	require.Equal(t, models.CaseStatusClosed, outcome.PreviousStatus)
	require.Equal(t, models.CaseStatusResolved, updated.CurrentStatus)
	require.Nil(t, updated.ClosureDate)
	require.Equal(t, "Suspension", updated.AppliedSanction)
}

func TestCaseRegistryMutationErrors(t *testing.T) {
	registry, _ := seededRegistry(t)
	ctx := context.Background()

	_, err := registry.CloseCase(ctx, 999)
	require.ErrorIs(t, err, ErrCaseNotFound)

	_, err = registry.UpdateStatus(ctx, 1000, "Escalated")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, _, err = registry.ApplyPenalty(ctx, 1000, "   ")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	found, _ := registry.SearchCase(1000)
	require.Equal(t, models.CaseStatusPending, found.CurrentStatus)
	require.Equal(t, models.DefaultSanction, found.AppliedSanction)
}

func TestCaseRegistryUpdateStatusStampsClosure(t *testing.T) {
	registry, _ := seededRegistry(t)
	fixed := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return fixed }

	updated, err := registry.UpdateStatus(context.Background(), 1002, "closed")
	require.NoError(t, err)
	require.Equal(t, models.CaseStatusClosed, updated.CurrentStatus)
	require.Equal(t, "2024-06-01", updated.ClosureDate.Format(models.DateLayout))
}

func TestCaseRegistrySaveFailureKeepsMutation(t *testing.T) {
	registry, store := seededRegistry(t)
	store.saveErr = errors.New("disk full")

	_, err := registry.CloseCase(context.Background(), 1000)
	require.ErrorIs(t, err, repository.ErrPersistenceFailure)

	found, _ := registry.SearchCase(1000)
	require.Equal(t, models.CaseStatusClosed, found.CurrentStatus)

	id, err := registry.AddCase(context.Background(), newTestViolation("20230004", "Priya Nair", models.CheatingDetails{}, 2))
	require.ErrorIs(t, err, repository.ErrPersistenceFailure)
	require.Equal(t, 1003, id)
	require.Equal(t, 4, registry.TotalCases())
}

func TestCaseRegistryEmptySummary(t *testing.T) {
	registry := NewCaseRegistry(&fakeCaseStore{}, nil, testLogger())
	require.Equal(t, EmptySummaryMessage, registry.GenerateSummaryReport())
	require.Zero(t, registry.Summary().Total)
}

func TestCaseRegistryStudentStatistics(t *testing.T) {
	registry, _ := seededRegistry(t)

	stats := registry.StudentStatistics()
	require.Len(t, stats, 2)
	require.Equal(t, "20230001", stats[0].Student.EnrollmentNumber)
	require.Equal(t, 2, stats[0].Count)
	require.Equal(t, "20230002", stats[1].Student.EnrollmentNumber)
	require.Equal(t, 1, stats[1].Count)
}

func TestOpenCaseRegistryFallsBackToEmpty(t *testing.T) {
	store := &fakeCaseStore{loadErr: fmt.Errorf("%w: bad payload", repository.ErrStoreCorrupt)}
	registry, loaded := OpenCaseRegistry(context.Background(), store, testLogger())
	require.False(t, loaded)
	require.Zero(t, registry.TotalCases())
	require.Equal(t, FirstCaseID, registry.NextCaseID())

	registry, loaded = OpenCaseRegistry(context.Background(), &fakeCaseStore{}, testLogger())
	require.False(t, loaded)
	require.Zero(t, registry.TotalCases())
}

func TestOpenCaseRegistryRestoresCounter(t *testing.T) {
	original, store := seededRegistry(t)
	require.NoError(t, original.RemoveCase(context.Background(), 1002))

	registry, loaded := OpenCaseRegistry(context.Background(), store, testLogger())
	require.True(t, loaded)
	require.Equal(t, []int{1000, 1001}, caseIDs(registry.ListCases()))
	require.Equal(t, 1003, registry.NextCaseID())
}

func TestCaseRegistryRoundTripThroughSQLiteStore(t *testing.T) {
	ctx := context.Background()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	store := repository.NewCaseStore(db, "")

	registry := NewCaseRegistry(store, nil, testLogger())
	for _, v := range []*models.Violation{
		newTestViolation("20230001", "John Smith", models.PlagiarismDetails{SourceDetected: "Blog", SimilarityPercentage: 64.5}, 3),
		newTestViolation("20230003", "Alex Chen", models.CodePlagiarismDetails{SourceDetected: "GitHub", SimilarityPercentage: 88, ProgrammingLanguage: "Go", DetectionTool: "MOSS"}, 5),
	} {
		_, err := registry.AddCase(ctx, v)
		require.NoError(t, err)
	}
	_, err = registry.CloseCase(ctx, 1001)
	require.NoError(t, err)

	restored, loaded := OpenCaseRegistry(ctx, store, testLogger())
	require.True(t, loaded)
	require.Equal(t, registry.NextCaseID(), restored.NextCaseID())
	if diff := cmp.Diff(registry.ListCases(), restored.ListCases()); diff != "" {
		t.Fatalf("registry mismatch after reload (-want +got):\n%s", diff)
	}
}
