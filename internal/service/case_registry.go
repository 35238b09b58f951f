package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/aivt-api/internal/models"
	"github.com/noah-isme/aivt-api/internal/observability"
	"github.com/noah-isme/aivt-api/internal/repository"
)

// FirstCaseID is the identifier assigned to the first case of an empty registry.
const FirstCaseID = 1000

// EmptySummaryMessage is returned by GenerateSummaryReport when no cases exist.
const EmptySummaryMessage = "No cases available for summary report."

// ErrCaseNotFound indicates no live case carries the requested identifier.
var ErrCaseNotFound = errors.New("case not found")

// CountEntry is one group of a summary aggregation.
type CountEntry struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// CaseSummary aggregates the registry by misconduct type, status and gravity.
type CaseSummary struct {
	Total     int          `json:"total" yaml:"total"`
	ByType    []CountEntry `json:"by_type" yaml:"by_type"`
	ByStatus  []CountEntry `json:"by_status" yaml:"by_status"`
	ByGravity []CountEntry `json:"by_gravity" yaml:"by_gravity"`
}

// StudentCaseCount is the number of cases recorded against one student.
type StudentCaseCount struct {
	Student models.Student `json:"student" yaml:"student"`
	Count   int            `json:"count" yaml:"count"`
}

// CaseRegistry owns every case, assigns identifiers and persists the full set
// after each mutation.
type CaseRegistry interface {
	AddCase(ctx context.Context, violation *models.Violation) (int, error)
	SearchCase(id int) (models.Violation, bool)
	SearchByStudent(enrollmentNumber string) []models.Violation
	RemoveCase(ctx context.Context, id int) error
	ListCases() []models.Violation
	TotalCases() int
	NextCaseID() int
	Summary() CaseSummary
	GenerateSummaryReport() string
	StudentStatistics() []StudentCaseCount
	UpdateStatus(ctx context.Context, id int, status models.CaseStatus) (models.Violation, error)
	ApplyPenalty(ctx context.Context, id int, penalty string) (models.Violation, PenaltyOutcome, error)
	CloseCase(ctx context.Context, id int) (models.Violation, error)
	ReopenCase(ctx context.Context, id int) (models.Violation, error)
	Save(ctx context.Context) error
}

type caseRegistry struct {
	mu     sync.RWMutex
	cases  []models.Violation
	nextID int
	store  repository.CaseStore
	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewCaseRegistry builds a registry from snapshot, or an empty registry when
// snapshot is nil.
func NewCaseRegistry(store repository.CaseStore, snapshot *models.RegistrySnapshot, logger zerolog.Logger) CaseRegistry {
	return newCaseRegistry(store, snapshot, logger)
}

func newCaseRegistry(store repository.CaseStore, snapshot *models.RegistrySnapshot, logger zerolog.Logger) *caseRegistry {
	r := &caseRegistry{
		cases:  make([]models.Violation, 0),
		nextID: FirstCaseID,
		store:  store,
		logger: logger.With().Str("component", "case_registry").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/aivt-api/internal/service/case_registry"),
		now:    time.Now,
	}

	if snapshot != nil {
		maxID := FirstCaseID - 1
		for _, violation := range snapshot.Cases {
			r.cases = append(r.cases, violation.Clone())
			if violation.RecordID > maxID {
				maxID = violation.RecordID
			}
		}
		r.nextID = snapshot.NextCaseID
		if r.nextID <= maxID {
			r.nextID = maxID + 1
		}
	}

	return r
}

// OpenCaseRegistry loads the registry from store. A missing store yields an
// empty registry; an unreadable one is logged and also yields an empty registry.
// loaded reports whether prior state was restored.
func OpenCaseRegistry(ctx context.Context, store repository.CaseStore, logger zerolog.Logger) (registry CaseRegistry, loaded bool) {
	log := logger.With().Str("component", "case_registry").Logger()

	snapshot, err := store.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load case store, starting with empty registry")
		return NewCaseRegistry(store, nil, logger), false
	}
	if snapshot == nil {
		log.Info().Msg("no existing case store found, starting with empty registry")
		return NewCaseRegistry(store, nil, logger), false
	}

	log.Info().Int("cases", len(snapshot.Cases)).Int("next_case_id", snapshot.NextCaseID).Msg("case store loaded")
	return NewCaseRegistry(store, snapshot, logger), true
}

func (r *caseRegistry) AddCase(ctx context.Context, violation *models.Violation) (int, error) {
	if err := validateForInsert(violation); err != nil {
		return 0, err
	}

	ctx, span := r.tracer.Start(ctx, "cases.add")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	violation.RecordID = id
	r.cases = append(r.cases, violation.Clone())

	span.SetAttributes(
		attribute.Int("case.id", id),
		attribute.String("case.kind", string(violation.Kind())),
	)
	observability.CasesRegistered().WithLabelValues(string(violation.Kind())).Inc()
	r.logger.Info().Int("case_id", id).Str("kind", string(violation.Kind())).Msg("case added")

	return id, r.persistLocked(ctx, span)
}

func (r *caseRegistry) SearchCase(id int) (models.Violation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if idx := r.indexOf(id); idx >= 0 {
		return r.cases[idx].Clone(), true
	}
	return models.Violation{}, false
}

func (r *caseRegistry) SearchByStudent(enrollmentNumber string) []models.Violation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Violation, 0)
	for i := range r.cases {
		if r.cases[i].Student.EnrollmentNumber == enrollmentNumber {
			result = append(result, r.cases[i].Clone())
		}
	}
	return result
}

func (r *caseRegistry) RemoveCase(ctx context.Context, id int) error {
	ctx, span := r.tracer.Start(ctx, "cases.remove", trace.WithAttributes(attribute.Int("case.id", id)))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.cases[:0]
	removed := 0
	for _, violation := range r.cases {
		if violation.RecordID == id {
			removed++
			continue
		}
		kept = append(kept, violation)
	}
	for i := len(kept); i < len(r.cases); i++ {
		r.cases[i] = models.Violation{}
	}
	r.cases = kept

	span.SetAttributes(attribute.Int("case.removed", removed))
	if removed > 0 {
		observability.CaseTransitions().WithLabelValues("remove").Inc()
		r.logger.Info().Int("case_id", id).Msg("case removed")
	}

	return r.persistLocked(ctx, span)
}

func (r *caseRegistry) ListCases() []models.Violation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshotLocked()
}

func (r *caseRegistry) TotalCases() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.cases)
}

func (r *caseRegistry) NextCaseID() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.nextID
}

func (r *caseRegistry) Summary() CaseSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byType := map[string]int{}
	byStatus := map[string]int{}
	byGravity := map[int]int{}
	for i := range r.cases {
		byType[r.cases[i].MisconductType]++
		byStatus[string(r.cases[i].CurrentStatus)]++
		byGravity[r.cases[i].GravityLevel]++
	}

	gravityLevels := make([]int, 0, len(byGravity))
	for level := range byGravity {
		gravityLevels = append(gravityLevels, level)
	}
	sort.Ints(gravityLevels)
	gravity := make([]CountEntry, 0, len(gravityLevels))
	for _, level := range gravityLevels {
		gravity = append(gravity, CountEntry{Key: strconv.Itoa(level), Count: byGravity[level]})
	}

	return CaseSummary{
		Total:     len(r.cases),
		ByType:    sortedCounts(byType),
		ByStatus:  sortedCounts(byStatus),
		ByGravity: gravity,
	}
}

func (r *caseRegistry) GenerateSummaryReport() string {
	summary := r.Summary()
	if summary.Total == 0 {
		return EmptySummaryMessage
	}

	var b strings.Builder
	b.WriteString("==================================================\n")
	b.WriteString("                  SUMMARY REPORT\n")
	b.WriteString("==================================================\n")
	fmt.Fprintf(&b, "Total Cases: %d\n", summary.Total)

	b.WriteString("\n--- Cases by Type ---\n")
	for _, entry := range summary.ByType {
		fmt.Fprintf(&b, "%-20s: %d\n", entry.Key, entry.Count)
	}

	b.WriteString("\n--- Cases by Status ---\n")
	for _, entry := range summary.ByStatus {
		fmt.Fprintf(&b, "%-20s: %d\n", entry.Key, entry.Count)
	}

	b.WriteString("\n--- Cases by Gravity Level ---\n")
	for _, entry := range summary.ByGravity {
		fmt.Fprintf(&b, "Level %-14s: %d\n", entry.Key, entry.Count)
	}
	b.WriteString("==================================================\n")

	return b.String()
}

func (r *caseRegistry) StudentStatistics() []StudentCaseCount {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index := map[string]int{}
	stats := make([]StudentCaseCount, 0)
	for i := range r.cases {
		enrollment := r.cases[i].Student.EnrollmentNumber
		if pos, ok := index[enrollment]; ok {
			stats[pos].Count++
			stats[pos].Student = r.cases[i].Student
			continue
		}
		index[enrollment] = len(stats)
		stats = append(stats, StudentCaseCount{Student: r.cases[i].Student, Count: 1})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Student.EnrollmentNumber < stats[j].Student.EnrollmentNumber
	})
	return stats
}

func (r *caseRegistry) UpdateStatus(ctx context.Context, id int, status models.CaseStatus) (models.Violation, error) {
	return r.mutate(ctx, id, "update_status", func(v *models.Violation) error {
		return v.UpdateStatus(status, r.now())
	})
}

func (r *caseRegistry) ApplyPenalty(ctx context.Context, id int, penalty string) (models.Violation, PenaltyOutcome, error) {
	var outcome PenaltyOutcome
	updated, err := r.mutate(ctx, id, "apply_penalty", func(v *models.Violation) error {
		var err error
		outcome, err = ApplyPenalty(v, penalty, r.now())
		return err
	})
	if outcome.Revised {
		r.logger.Warn().Int("case_id", id).Msg("penalty applied to closed case, status revised to Resolved")
	}
	return updated, outcome, err
}

func (r *caseRegistry) CloseCase(ctx context.Context, id int) (models.Violation, error) {
	return r.mutate(ctx, id, "close", func(v *models.Violation) error {
		return CloseCase(v, r.now())
	})
}

func (r *caseRegistry) ReopenCase(ctx context.Context, id int) (models.Violation, error) {
	return r.mutate(ctx, id, "reopen", func(v *models.Violation) error {
		return ReopenCase(v, r.now())
	})
}

func (r *caseRegistry) Save(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "cases.save")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.persistLocked(ctx, span)
}

// mutate applies fn to a working copy and commits it only when fn succeeds, so
// a rejected transition leaves the stored case untouched.
func (r *caseRegistry) mutate(ctx context.Context, id int, action string, fn func(v *models.Violation) error) (models.Violation, error) {
	ctx, span := r.tracer.Start(ctx, "cases."+action, trace.WithAttributes(attribute.Int("case.id", id)))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		span.SetStatus(codes.Error, "case_not_found")
		return models.Violation{}, fmt.Errorf("%w: %d", ErrCaseNotFound, id)
	}

	working := r.cases[idx].Clone()
	if err := fn(&working); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, action+"_rejected")
		return r.cases[idx].Clone(), err
	}
	r.cases[idx] = working

	observability.CaseTransitions().WithLabelValues(action).Inc()
	r.logger.Info().Int("case_id", id).Str("action", action).Str("status", string(working.CurrentStatus)).Msg("case updated")

	return working.Clone(), r.persistLocked(ctx, span)
}

func (r *caseRegistry) persistLocked(ctx context.Context, span trace.Span) error {
	start := time.Now()
	err := r.store.Save(ctx, models.RegistrySnapshot{
		Cases:      r.snapshotLocked(),
		NextCaseID: r.nextID,
	})
	observability.StoreWriteDuration().Observe(time.Since(start).Seconds())

	if err != nil {
		observability.StoreWrites().WithLabelValues("failure").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "store_write_failed")
		r.logger.Error().Err(err).Int("cases", len(r.cases)).Msg("failed to save case store")
		if !errors.Is(err, repository.ErrPersistenceFailure) {
			err = fmt.Errorf("%w: %w", repository.ErrPersistenceFailure, err)
		}
		return err
	}

	observability.StoreWrites().WithLabelValues("success").Inc()
	r.logger.Debug().Int("cases", len(r.cases)).Msg("case store saved")
	return nil
}

func (r *caseRegistry) snapshotLocked() []models.Violation {
	snapshot := make([]models.Violation, 0, len(r.cases))
	for i := range r.cases {
		snapshot = append(snapshot, r.cases[i].Clone())
	}
	return snapshot
}

func (r *caseRegistry) indexOf(id int) int {
	for i := range r.cases {
		if r.cases[i].RecordID == id {
			return i
		}
	}
	return -1
}

func validateForInsert(violation *models.Violation) error {
	if violation == nil {
		return fmt.Errorf("%w: violation cannot be nil", models.ErrInvalidInput)
	}
	if violation.Details == nil {
		return fmt.Errorf("%w: violation details are required", models.ErrInvalidInput)
	}
	if err := models.ValidateGravity(violation.GravityLevel); err != nil {
		return err
	}
	if !violation.CurrentStatus.IsValid() {
		return fmt.Errorf("%w: unknown case status %q", models.ErrInvalidInput, violation.CurrentStatus)
	}
	if violation.CurrentStatus.IsClosed() != (violation.ClosureDate != nil) {
		return fmt.Errorf("%w: closure date must be set exactly when the case is closed", models.ErrInvalidInput)
	}
	return nil
}

func sortedCounts(counts map[string]int) []CountEntry {
	entries := make([]CountEntry, 0, len(counts))
	for key, count := range counts {
		entries = append(entries, CountEntry{Key: key, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}
