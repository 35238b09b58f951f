package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/aivt-api/internal/dto"
	"github.com/noah-isme/aivt-api/internal/service"
	"github.com/noah-isme/aivt-api/internal/utils"
)

// ReportHandler exposes aggregate reports, exports and store maintenance.
type ReportHandler struct {
	cases      service.CaseService
	exports    service.ExportService
	exportPath string
	backupPath string
	logger     zerolog.Logger
}

// NewReportHandler constructs a report handler writing exports and backups to
// the configured paths.
func NewReportHandler(cases service.CaseService, exports service.ExportService, exportPath, backupPath string, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		cases:      cases,
		exports:    exports,
		exportPath: exportPath,
		backupPath: backupPath,
		logger:     logger.With().Str("component", "report_handler").Logger(),
	}
}

type summaryResponse struct {
	service.CaseSummary
	Report string `json:"report"`
}

// Register wires report routes.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/summary", h.summary)
	router.Get("/students", h.students)
	router.Get("/export", h.download)
	router.Post("/export", h.export)
	router.Post("/save", h.save)
	router.Post("/backup", h.backup)
	router.Get("/store", h.storeStats)
}

func (h *ReportHandler) summary(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "summary generated", summaryResponse{
		CaseSummary: h.cases.Summary(),
		Report:      h.cases.SummaryReport(),
	})
}

func (h *ReportHandler) students(c *fiber.Ctx) error {
	stats := h.cases.StudentStatistics()
	return utils.OK(c, stats, "student statistics generated", utils.ListMeta{Count: len(stats), Total: len(stats)})
}

func (h *ReportHandler) download(c *fiber.Ctx) error {
	switch strings.ToLower(c.Query("format", "text")) {
	case "text", "txt":
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(h.exports.RenderText())
	case "yaml", "yml":
		payload, err := h.exports.RenderYAML()
		if err != nil {
			return sendServiceError(c, h.logger, err, nil)
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(payload)
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "format must be text or yaml")
	}
}

func (h *ReportHandler) export(c *fiber.Ctx) error {
	var (
		result dto.ExportResponse
		err    error
	)
	switch strings.ToLower(c.Query("format", "text")) {
	case "text", "txt":
		result, err = h.exports.ExportText(h.exportPath)
	case "yaml", "yml":
		result, err = h.exports.ExportYAML(yamlPath(h.exportPath))
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "format must be text or yaml")
	}
	if err != nil {
		return sendServiceError(c, h.logger, err, nil)
	}
	return utils.SendSuccess(c, "registry exported", result)
}

func (h *ReportHandler) save(c *fiber.Ctx) error {
	result, err := h.cases.Save(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err, nil)
	}
	return utils.SendSuccess(c, "registry saved", result)
}

func (h *ReportHandler) backup(c *fiber.Ctx) error {
	result, err := h.exports.Backup(c.UserContext(), h.backupPath)
	if err != nil {
		return sendServiceError(c, h.logger, err, nil)
	}
	return utils.SendSuccess(c, "backup created", result)
}

func (h *ReportHandler) storeStats(c *fiber.Ctx) error {
	stats, err := h.exports.Stats(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err, nil)
	}
	return utils.SendSuccess(c, "store statistics retrieved", dto.StoreStatsResponse{
		Location:     stats.Location,
		SizeKB:       stats.SizeKB(),
		LastModified: stats.LastModified,
		SavedAt:      stats.SavedAt,
		CaseCount:    stats.CaseCount,
		NextCaseID:   stats.NextCaseID,
	})
}

// yamlPath swaps the extension of a text export path for .yaml.
func yamlPath(path string) string {
	if idx := strings.LastIndex(path, "."); idx > strings.LastIndex(path, "/") {
		return path[:idx] + ".yaml"
	}
	return path + ".yaml"
}
