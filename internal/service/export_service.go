package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/aivt-api/internal/dto"
	"github.com/noah-isme/aivt-api/internal/repository"
)

// ExportTitle heads every readable export.
const ExportTitle = "Academic Integrity Violation Tracker"

const exportRule = "=================================================="

// ExportService renders the registry for humans and maintains the store.
type ExportService interface {
	RenderText() string
	RenderYAML() ([]byte, error)
	ExportText(path string) (dto.ExportResponse, error)
	ExportYAML(path string) (dto.ExportResponse, error)
	WriteCaseReport(id int, dir string) (string, error)
	Backup(ctx context.Context, destination string) (dto.ExportResponse, error)
	Stats(ctx context.Context) (repository.StoreStats, error)
	Reset(ctx context.Context) error
}

type exportService struct {
	registry CaseRegistry
	store    repository.CaseStore
	logger   zerolog.Logger
	now      func() time.Time
}

// yamlExport is the document written by ExportYAML.
type yamlExport struct {
	Title       string             `yaml:"title"`
	GeneratedAt time.Time          `yaml:"generated_at"`
	TotalCases  int                `yaml:"total_cases"`
	NextCaseID  int                `yaml:"next_case_id"`
	Cases       []dto.CaseResponse `yaml:"cases"`
}

// NewExportService constructs the export service.
func NewExportService(registry CaseRegistry, store repository.CaseStore, logger zerolog.Logger) ExportService {
	return &exportService{
		registry: registry,
		store:    store,
		logger:   logger.With().Str("component", "export_service").Logger(),
		now:      time.Now,
	}
}

func (s *exportService) RenderText() string {
	cases := s.registry.ListCases()

	var b strings.Builder
	b.WriteString(exportRule + "\n")
	b.WriteString("  " + ExportTitle + "\n")
	b.WriteString(exportRule + "\n")
	fmt.Fprintf(&b, "Generated on: %s\n", s.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total Cases: %d\n", len(cases))
	b.WriteString(exportRule + "\n\n")

	for i := range cases {
		b.WriteString(cases[i].GenerateReport())
		b.WriteString("\n")
		b.WriteString(exportRule + "\n\n")
	}
	return b.String()
}

func (s *exportService) RenderYAML() ([]byte, error) {
	cases := s.registry.ListCases()
	doc := yamlExport{
		Title:       ExportTitle,
		GeneratedAt: s.now().UTC().Truncate(time.Second),
		TotalCases:  len(cases),
		NextCaseID:  s.registry.NextCaseID(),
		Cases:       dto.NewCaseResponses(cases),
	}
	return yaml.Marshal(doc)
}

func (s *exportService) ExportText(path string) (dto.ExportResponse, error) {
	return s.write(path, []byte(s.RenderText()), "text")
}

func (s *exportService) ExportYAML(path string) (dto.ExportResponse, error) {
	payload, err := s.RenderYAML()
	if err != nil {
		return dto.ExportResponse{}, err
	}
	return s.write(path, payload, "yaml")
}

func (s *exportService) WriteCaseReport(id int, dir string) (string, error) {
	violation, ok := s.registry.SearchCase(id)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrCaseNotFound, id)
	}

	name := fmt.Sprintf("Case_Report_%d_%s.txt", id, strings.ReplaceAll(violation.FullName(), " ", "_"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(violation.GenerateReport()), 0o644); err != nil {
		return "", fmt.Errorf("%w: write report: %w", repository.ErrPersistenceFailure, err)
	}

	s.logger.Info().Int("case_id", id).Str("path", path).Msg("case report saved")
	return path, nil
}

func (s *exportService) Backup(ctx context.Context, destination string) (dto.ExportResponse, error) {
	if err := s.store.Backup(ctx, destination); err != nil {
		return dto.ExportResponse{}, err
	}
	s.logger.Info().Str("path", destination).Msg("backup created")
	return dto.ExportResponse{Path: destination, Cases: s.registry.TotalCases()}, nil
}

func (s *exportService) Stats(ctx context.Context) (repository.StoreStats, error) {
	return s.store.Stats(ctx)
}

func (s *exportService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	s.logger.Warn().Msg("case store reset")
	return nil
}

func (s *exportService) write(path string, payload []byte, format string) (dto.ExportResponse, error) {
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("export failed")
		return dto.ExportResponse{}, fmt.Errorf("%w: export: %w", repository.ErrPersistenceFailure, err)
	}

	total := s.registry.TotalCases()
	s.logger.Info().Str("path", path).Str("format", format).Int("cases", total).Msg("registry exported")
	return dto.ExportResponse{Path: path, Cases: total}, nil
}
