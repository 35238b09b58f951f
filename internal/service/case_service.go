package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/aivt-api/internal/dto"
	"github.com/noah-isme/aivt-api/internal/models"
	"github.com/noah-isme/aivt-api/internal/observability"
	"github.com/noah-isme/aivt-api/internal/repository"
)

// CaseService is the intake and resolution workflow exposed to the API and CLI.
type CaseService interface {
	Register(ctx context.Context, req dto.CaseCreateRequest) (dto.CaseResponse, error)
	Get(id int) (dto.CaseResponse, error)
	List() []dto.CaseResponse
	ListByStudent(enrollmentNumber string) []dto.CaseResponse
	Report(id int) (dto.CaseReportResponse, error)
	Remove(ctx context.Context, id int) error
	UpdateStatus(ctx context.Context, id int, req dto.CaseStatusRequest) (dto.CaseResponse, error)
	ApplyPenalty(ctx context.Context, id int, req dto.CasePenaltyRequest) (dto.PenaltyResponse, error)
	Close(ctx context.Context, id int) (dto.CaseResponse, error)
	Reopen(ctx context.Context, id int) (dto.CaseResponse, error)
	Summary() CaseSummary
	SummaryReport() string
	StudentStatistics() []dto.StudentStatisticResponse
	Save(ctx context.Context) (dto.SaveResponse, error)
}

type caseService struct {
	registry  CaseRegistry
	events    *CaseEventPublisher
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewCaseService constructs the case workflow. events may be nil.
func NewCaseService(registry CaseRegistry, events *CaseEventPublisher, validate *validator.Validate, logger zerolog.Logger) CaseService {
	return &caseService{
		registry:  registry,
		events:    events,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "case_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/aivt-api/internal/service/case"),
		now:       time.Now,
	}
}

func (s *caseService) Register(ctx context.Context, req dto.CaseCreateRequest) (dto.CaseResponse, error) {
	ctx, span := s.tracer.Start(ctx, "cases.register", trace.WithAttributes(attribute.String("case.kind", req.Kind)))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.CaseResponse{}, err
	}

	violation, err := s.buildViolation(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid case")
		return dto.CaseResponse{}, err
	}

	id, err := s.registry.AddCase(ctx, violation)
	if err != nil && !errors.Is(err, repository.ErrPersistenceFailure) {
		return dto.CaseResponse{}, err
	}
	span.SetAttributes(attribute.Int("case.id", id))

	resp := dto.NewCaseResponse(*violation)
	if err != nil {
		return resp, err
	}

	s.publish(ctx, "add", *violation)
	s.logger.Info().
		Int("case_id", id).
		Str("enrollment_number", violation.EnrollmentNumber()).
		Str("email", maskEmail(violation.Student.Email)).
		Str("correlation_id", observability.CorrelationIDFromContext(ctx)).
		Msg("case registered")
	return resp, nil
}

func (s *caseService) Get(id int) (dto.CaseResponse, error) {
	violation, ok := s.registry.SearchCase(id)
	if !ok {
		return dto.CaseResponse{}, fmt.Errorf("%w: %d", ErrCaseNotFound, id)
	}
	return dto.NewCaseResponse(violation), nil
}

func (s *caseService) List() []dto.CaseResponse {
	return dto.NewCaseResponses(s.registry.ListCases())
}

func (s *caseService) ListByStudent(enrollmentNumber string) []dto.CaseResponse {
	return dto.NewCaseResponses(s.registry.SearchByStudent(strings.TrimSpace(enrollmentNumber)))
}

func (s *caseService) Report(id int) (dto.CaseReportResponse, error) {
	violation, ok := s.registry.SearchCase(id)
	if !ok {
		return dto.CaseReportResponse{}, fmt.Errorf("%w: %d", ErrCaseNotFound, id)
	}
	return dto.CaseReportResponse{ID: id, Report: violation.GenerateReport()}, nil
}

func (s *caseService) Remove(ctx context.Context, id int) error {
	violation, ok := s.registry.SearchCase(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrCaseNotFound, id)
	}
	if err := s.registry.RemoveCase(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "remove", violation)
	return nil
}

func (s *caseService) UpdateStatus(ctx context.Context, id int, req dto.CaseStatusRequest) (dto.CaseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CaseResponse{}, err
	}
	status, err := models.ParseCaseStatus(req.Status)
	if err != nil {
		return dto.CaseResponse{}, err
	}
	return s.transition(ctx, "update_status", id, func(ctx context.Context) (models.Violation, error) {
		return s.registry.UpdateStatus(ctx, id, status)
	})
}

func (s *caseService) ApplyPenalty(ctx context.Context, id int, req dto.CasePenaltyRequest) (dto.PenaltyResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PenaltyResponse{}, err
	}

	penalty := s.clean(req.Penalty)
	updated, outcome, err := s.registry.ApplyPenalty(ctx, id, penalty)
	if err != nil && !errors.Is(err, repository.ErrPersistenceFailure) {
		return dto.PenaltyResponse{}, err
	}

	resp := dto.PenaltyResponse{
		Case:           dto.NewCaseResponse(updated),
		PreviousStatus: string(outcome.PreviousStatus),
		Revised:        outcome.Revised,
	}
	if err != nil {
		return resp, err
	}
	s.publish(ctx, "apply_penalty", updated)
	return resp, nil
}

func (s *caseService) Close(ctx context.Context, id int) (dto.CaseResponse, error) {
	return s.transition(ctx, "close", id, func(ctx context.Context) (models.Violation, error) {
		return s.registry.CloseCase(ctx, id)
	})
}

func (s *caseService) Reopen(ctx context.Context, id int) (dto.CaseResponse, error) {
	return s.transition(ctx, "reopen", id, func(ctx context.Context) (models.Violation, error) {
		return s.registry.ReopenCase(ctx, id)
	})
}

func (s *caseService) Summary() CaseSummary {
	return s.registry.Summary()
}

func (s *caseService) SummaryReport() string {
	return s.registry.GenerateSummaryReport()
}

// Save writes the full registry to the store on demand.
func (s *caseService) Save(ctx context.Context) (dto.SaveResponse, error) {
	if err := s.registry.Save(ctx); err != nil {
		return dto.SaveResponse{}, err
	}
	resp := dto.SaveResponse{Cases: s.registry.TotalCases(), NextCaseID: s.registry.NextCaseID()}
	s.logger.Info().Int("cases", resp.Cases).Msg("registry saved on request")
	return resp, nil
}

func (s *caseService) StudentStatistics() []dto.StudentStatisticResponse {
	stats := s.registry.StudentStatistics()
	result := make([]dto.StudentStatisticResponse, 0, len(stats))
	for _, entry := range stats {
		result = append(result, dto.StudentStatisticResponse{
			Student: dto.NewStudentResponse(entry.Student),
			Cases:   entry.Count,
		})
	}
	return result
}

func (s *caseService) transition(ctx context.Context, action string, id int, fn func(ctx context.Context) (models.Violation, error)) (dto.CaseResponse, error) {
	updated, err := fn(ctx)
	if err != nil && !errors.Is(err, repository.ErrPersistenceFailure) {
		return dto.CaseResponse{}, err
	}

	resp := dto.NewCaseResponse(updated)
	if err != nil {
		return resp, err
	}
	s.publish(ctx, action, updated)
	return resp, nil
}

func (s *caseService) publish(ctx context.Context, action string, violation models.Violation) {
	// Delivery failures are logged by the publisher and never fail the request.
	_ = s.events.Publish(ctx, action, violation)
}

func (s *caseService) buildViolation(req dto.CaseCreateRequest) (*models.Violation, error) {
	kind, err := models.ParseViolationKind(req.Kind)
	if err != nil {
		return nil, err
	}

	incident, err := time.Parse(models.DateLayout, strings.TrimSpace(req.IncidentDate))
	if err != nil {
		return nil, fmt.Errorf("%w: incident date must be YYYY-MM-DD", models.ErrInvalidInput)
	}

	var status models.CaseStatus
	if strings.TrimSpace(req.Status) != "" {
		status, err = models.ParseCaseStatus(req.Status)
		if err != nil {
			return nil, err
		}
	}

	details, err := s.buildDetails(kind, req)
	if err != nil {
		return nil, err
	}

	student := models.NewStudent(
		strings.TrimSpace(req.Student.EnrollmentNumber),
		strings.TrimSpace(req.Student.FullName),
		strings.ToLower(strings.TrimSpace(req.Student.Email)),
		s.clean(req.Student.Department),
	)

	return models.NewViolation(models.ViolationParams{
		Student:             &student,
		IncidentDate:        incident,
		ReportingFaculty:    strings.TrimSpace(req.ReportingFaculty),
		GravityLevel:        req.GravityLevel,
		CurrentStatus:       status,
		AppliedSanction:     s.clean(req.Sanction),
		IncidentDescription: s.clean(req.IncidentDescription),
		SupportingEvidence:  s.clean(req.SupportingEvidence),
		Details:             details,
	})
}

func (s *caseService) buildDetails(kind models.ViolationKind, req dto.CaseCreateRequest) (models.ViolationDetails, error) {
	switch kind {
	case models.ViolationKindPlagiarism, models.ViolationKindCodePlagiarism:
		if req.SimilarityPercentage == nil {
			return nil, fmt.Errorf("%w: similarity percentage is required for %s cases", models.ErrInvalidInput, kind.Label())
		}
		if kind == models.ViolationKindPlagiarism {
			return models.PlagiarismDetails{
				SourceDetected:       s.clean(req.SourceDetected),
				SimilarityPercentage: *req.SimilarityPercentage,
			}, nil
		}
		return models.CodePlagiarismDetails{
			SourceDetected:       s.clean(req.SourceDetected),
			SimilarityPercentage: *req.SimilarityPercentage,
			ProgrammingLanguage:  s.clean(req.ProgrammingLanguage),
			DetectionTool:        s.clean(req.DetectionTool),
		}, nil
	case models.ViolationKindCheating:
		return models.CheatingDetails{
			CheatingMethod:        s.clean(req.CheatingMethod),
			UnauthorizedMaterials: s.clean(req.UnauthorizedMaterials),
		}, nil
	case models.ViolationKindCollusion:
		return models.CollusionDetails{
			InvolvedParties:      s.clean(req.InvolvedParties),
			CollaborationDetails: s.clean(req.CollaborationDetails),
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown violation kind %q", models.ErrInvalidInput, kind)
}

// maxCleanPasses bounds how many layers of entity escaping clean peels off.
const maxCleanPasses = 4

// clean strips markup from free text, including markup hidden behind entity
// escaping, and stores plain text. Input still changing after maxCleanPasses
// is kept in its escaped sanitized form.
func (s *caseService) clean(value string) string {
	current := value
	for i := 0; i < maxCleanPasses; i++ {
		sanitized := s.sanitizer.Sanitize(html.UnescapeString(current))
		plain := html.UnescapeString(sanitized)
		if plain == current {
			return strings.TrimSpace(plain)
		}
		current = plain
	}
	return strings.TrimSpace(s.sanitizer.Sanitize(current))
}
