package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/visitor-access/internal/api/dto"
	"github.com/spec-kit/visitor-access/internal/domain"
	"github.com/spec-kit/visitor-access/internal/service"
	apperrors "github.com/spec-kit/visitor-access/pkg/util/errorutil"
)

// VisitsHandler manages entry, exit and visit lookups.
type VisitsHandler struct {
	service *service.AccessService
}

// NewVisitsHandler constructs handler.
func NewVisitsHandler(accessService *service.AccessService) *VisitsHandler {
	return &VisitsHandler{service: accessService}
}

// RegisterEntry POST /api/visits.
func (h *VisitsHandler) RegisterEntry(c *fiber.Ctx) error {
	var req dto.RegisterEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.EntryInput{
		FullName:    req.FullName,
		Company:     req.Company,
		NationalID:  domain.NormalizeNationalID(req.NationalID),
		Plate:       domain.NormalizePlate(req.Plate),
		Destination: req.Destination,
	}
	visit, err := h.service.RegisterEntry(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": visitResponse(h.service, visit)})
}

// RegisterExit POST /api/visits/:id/exit.
func (h *VisitsHandler) RegisterExit(c *fiber.Ctx) error {
	visit, err := h.service.RegisterExit(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": visitResponse(h.service, visit)})
}

// ListActive GET /api/visits/active?q=.
func (h *VisitsHandler) ListActive(c *fiber.Ctx) error {
	visits := h.service.SearchActive(c.Query("q"))
	return c.JSON(fiber.Map{"data": visitList(h.service, visits)})
}

// History GET /api/visits/history?q=.
func (h *VisitsHandler) History(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return apperrors.NewValidationError("q required", nil)
	}
	return c.JSON(fiber.Map{"data": visitList(h.service, h.service.SearchHistory(term))})
}
