package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/visitor-access/internal/domain"
	"github.com/spec-kit/visitor-access/internal/service"
	apperrors "github.com/spec-kit/visitor-access/pkg/util/errorutil"
)

// VisitorsHandler serves the visitor directory.
type VisitorsHandler struct {
	service *service.AccessService
}

// NewVisitorsHandler constructs handler.
func NewVisitorsHandler(accessService *service.AccessService) *VisitorsHandler {
	return &VisitorsHandler{service: accessService}
}

// Search GET /api/visitors?q=.
func (h *VisitorsHandler) Search(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return apperrors.NewValidationError("q required", nil)
	}
	return c.JSON(fiber.Map{"data": visitorList(h.service.SearchVisitors(term))})
}

// Get GET /api/visitors/:national_id.
func (h *VisitorsHandler) Get(c *fiber.Ctx) error {
	nationalID := domain.NormalizeNationalID(c.Params("national_id"))
	visitor, err := h.service.FindVisitor(nationalID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": visitorResponse(visitor)})
}
