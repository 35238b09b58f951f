package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/aivt-api/internal/models"
)

var (
	// ErrSeedDisabled indicates sample seeding is disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrAlreadySeeded indicates the registry already holds or has held cases.
	ErrAlreadySeeded = errors.New("registry already contains case data")
)

// SeedService inserts demonstration cases into a fresh registry.
type SeedService interface {
	SeedSampleCases(ctx context.Context) (int, error)
}

type seedService struct {
	registry CaseRegistry
	enabled  bool
	logger   zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(registry CaseRegistry, enabled bool, logger zerolog.Logger) SeedService {
	return &seedService{
		registry: registry,
		enabled:  enabled,
		logger:   logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedSampleCases adds the sample cases and returns how many were inserted.
// A registry that has ever assigned an id is left untouched.
func (s *seedService) SeedSampleCases(ctx context.Context) (int, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if s.registry.TotalCases() > 0 || s.registry.NextCaseID() != FirstCaseID {
		return 0, ErrAlreadySeeded
	}

	samples, err := SampleCases()
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, sample := range samples {
		if _, err := s.registry.AddCase(ctx, sample); err != nil {
			return inserted, fmt.Errorf("seed case for %s: %w", sample.EnrollmentNumber(), err)
		}
		inserted++
	}

	s.logger.Info().Int("cases", inserted).Msg("sample cases seeded")
	return inserted, nil
}

// SampleCases builds the demonstration cases in insertion order.
func SampleCases() ([]*models.Violation, error) {
	john := models.NewStudent("20230001", "John Smith", "john.smith@university.edu", "Computer Science")
	mary := models.NewStudent("20230002", "Mary Davis", "mary.davis@university.edu", "Mathematics")
	alex := models.NewStudent("20230003", "Alex Chen", "alex.chen@university.edu", "Engineering")

	params := []models.ViolationParams{
		{
			Student:             &john,
			IncidentDate:        time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			ReportingFaculty:    "Dr. Johnson",
			GravityLevel:        3,
			CurrentStatus:       models.CaseStatusUnderInvestigation,
			AppliedSanction:     "Grade Reduction",
			IncidentDescription: "Student submitted essay with 75% similarity to online source",
			SupportingEvidence:  "Turnitin report, original source documentation",
			Details: models.PlagiarismDetails{
				SourceDetected:       "Wikipedia and academic papers",
				SimilarityPercentage: 75.3,
			},
		},
		{
			Student:             &mary,
			IncidentDate:        time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC),
			ReportingFaculty:    "Prof. Wilson",
			GravityLevel:        4,
			CurrentStatus:       models.CaseStatusResolved,
			AppliedSanction:     "Suspension",
			IncidentDescription: "Student used unauthorized notes during exam",
			SupportingEvidence:  "Security camera footage, confiscated notes",
			Details: models.CheatingDetails{
				CheatingMethod:        "Hidden notes under desk",
				UnauthorizedMaterials: "Cheat sheets, smartphone",
			},
		},
		{
			Student:             &alex,
			IncidentDate:        time.Date(2024, time.March, 25, 0, 0, 0, 0, time.UTC),
			ReportingFaculty:    "Dr. Brown",
			GravityLevel:        2,
			CurrentStatus:       models.CaseStatusPending,
			AppliedSanction:     "Warning",
			IncidentDescription: "Multiple students submitted identical lab reports",
			SupportingEvidence:  "Identical code submissions, similar formatting",
			Details: models.CollusionDetails{
				InvolvedParties:      "Alex Chen, Sarah Kim, Mike Thompson",
				CollaborationDetails: "Shared lab report with identical results and formatting",
			},
		},
	}

	cases := make([]*models.Violation, 0, len(params))
	for _, p := range params {
		violation, err := models.NewViolation(p)
		if err != nil {
			return nil, err
		}
		cases = append(cases, violation)
	}
	return cases, nil
}
