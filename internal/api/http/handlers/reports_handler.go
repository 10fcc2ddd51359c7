package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/visitor-access/internal/api/dto"
	"github.com/spec-kit/visitor-access/internal/service"
)

// ReportsHandler serves filtered visit reports.
type ReportsHandler struct {
	service *service.AccessService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(accessService *service.AccessService) *ReportsHandler {
	return &ReportsHandler{service: accessService}
}

// Visits GET /api/reports/visits?from=&to=.
func (h *ReportsHandler) Visits(c *fiber.Ctx) error {
	query, err := h.parseQuery(c)
	if err != nil {
		return err
	}
	report := h.service.Report(query)
	return c.JSON(fiber.Map{"data": dto.VisitReportResponse{
		Period:    report.PeriodLabel(),
		From:      formatDay(report.From),
		To:        formatDay(report.To),
		Total:     report.Total,
		Active:    report.Active,
		Completed: report.Completed,
		Visits:    visitList(h.service, report.Visits),
	}})
}

// Export GET /api/reports/visits/export?from=&to=.
func (h *ReportsHandler) Export(c *fiber.Ctx) error {
	query, err := h.parseQuery(c)
	if err != nil {
		return err
	}
	export, err := h.service.ExportReport(query)
	if err != nil {
		return err
	}
	c.Attachment(export.Filename)
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set("X-Export-Rows", strconv.Itoa(export.Rows))
	return c.Send(export.Data)
}

func (h *ReportsHandler) parseQuery(c *fiber.Ctx) (service.ReportQuery, error) {
	loc := h.service.Location()
	from, err := parseDay("from", c.Query("from"), loc)
	if err != nil {
		return service.ReportQuery{}, err
	}
	to, err := parseDay("to", c.Query("to"), loc)
	if err != nil {
		return service.ReportQuery{}, err
	}
	return service.ReportQuery{From: from, To: to}, nil
}
