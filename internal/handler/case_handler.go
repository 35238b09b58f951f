package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/aivt-api/internal/dto"
	"github.com/noah-isme/aivt-api/internal/service"
	"github.com/noah-isme/aivt-api/internal/utils"
)

// CaseHandler exposes case registration, lookup and resolution endpoints.
type CaseHandler struct {
	service service.CaseService
	logger  zerolog.Logger
}

// NewCaseHandler constructs a case handler.
func NewCaseHandler(service service.CaseService, logger zerolog.Logger) *CaseHandler {
	return &CaseHandler{
		service: service,
		logger:  logger.With().Str("component", "case_handler").Logger(),
	}
}

// Register wires case routes. Mutating routes pass through the optional
// limiter handlers first.
func (h *CaseHandler) Register(router fiber.Router, limiters ...fiber.Handler) {
	write := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, limiters...), handler)
	}

	router.Get("", h.list)
	router.Post("", write(h.create)...)
	router.Get("/students/:enrollment", h.byStudent)
	router.Get("/:id", h.get)
	router.Get("/:id/report", h.report)
	router.Delete("/:id", write(h.remove)...)
	router.Patch("/:id/status", write(h.updateStatus)...)
	router.Post("/:id/penalty", write(h.applyPenalty)...)
	router.Post("/:id/close", write(h.close)...)
	router.Post("/:id/reopen", write(h.reopen)...)
}

func (h *CaseHandler) list(c *fiber.Ctx) error {
	cases := h.service.List()
	return utils.OK(c, cases, "cases retrieved", utils.ListMeta{Count: len(cases), Total: len(cases)})
}

func (h *CaseHandler) create(c *fiber.Ctx) error {
	var payload dto.CaseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	created, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, persistedCase(created))
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "case registered", created)
}

func (h *CaseHandler) byStudent(c *fiber.Ctx) error {
	cases := h.service.ListByStudent(c.Params("enrollment"))
	return utils.OK(c, cases, "cases retrieved", utils.ListMeta{Count: len(cases), Total: len(cases)})
}

func (h *CaseHandler) get(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid case id")
	}

	found, err := h.service.Get(id)
	if err != nil {
		return sendServiceError(c, h.logger, err, nil)
	}
	return utils.SendSuccess(c, "case retrieved", found)
}

func (h *CaseHandler) report(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid case id")
	}

	report, err := h.service.Report(id)
	if err != nil {
		return sendServiceError(c, h.logger, err, nil)
	}
	if c.Query("format") == "text" {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(report.Report)
	}
	return utils.SendSuccess(c, "case report generated", report)
}

func (h *CaseHandler) remove(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid case id")
	}

	if err := h.service.Remove(c.UserContext(), id); err != nil {
		return sendServiceError(c, h.logger, err, nil)
	}
	return utils.SendSuccess(c, "case removed", fiber.Map{"id": id})
}

func (h *CaseHandler) updateStatus(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid case id")
	}

	var payload dto.CaseStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	updated, err := h.service.UpdateStatus(c.UserContext(), id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, persistedCase(updated))
	}
	return utils.SendSuccess(c, "case status updated", updated)
}

func (h *CaseHandler) applyPenalty(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid case id")
	}

	var payload dto.CasePenaltyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.ApplyPenalty(c.UserContext(), id, payload)
	if err != nil {
		if result.Case.ID != 0 {
			return sendServiceError(c, h.logger, err, result)
		}
		return sendServiceError(c, h.logger, err, nil)
	}

	message := "penalty applied"
	if result.Revised {
		message = "penalty applied, closed case revised to Resolved"
	}
	return utils.SendSuccess(c, message, result)
}

func (h *CaseHandler) close(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid case id")
	}

	closed, err := h.service.Close(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, persistedCase(closed))
	}
	return utils.SendSuccess(c, "case closed", closed)
}

func (h *CaseHandler) reopen(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid case id")
	}

	reopened, err := h.service.Reopen(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, persistedCase(reopened))
	}
	return utils.SendSuccess(c, "case reopened", reopened)
}

func persistedCase(resp dto.CaseResponse) interface{} {
	if resp.ID == 0 {
		return nil
	}
	return resp
}
