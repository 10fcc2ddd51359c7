package handlers

import (
	"strings"
	"time"

	"github.com/spec-kit/visitor-access/internal/api/dto"
	"github.com/spec-kit/visitor-access/internal/domain"
	"github.com/spec-kit/visitor-access/internal/service"
	apperrors "github.com/spec-kit/visitor-access/pkg/util/errorutil"
)

const dayLayout = "2006-01-02"

func visitorResponse(visitor *domain.Visitor) dto.VisitorResponse {
	return dto.VisitorResponse{
		ID:                  visitor.ID,
		FullName:            visitor.FullName,
		Company:             visitor.Company,
		NationalID:          visitor.NationalID,
		NationalIDFormatted: domain.FormatNationalID(visitor.NationalID),
		Plate:               visitor.Plate,
		CreatedAt:           visitor.CreatedAt,
	}
}

func visitorList(visitors []domain.Visitor) []dto.VisitorResponse {
	items := make([]dto.VisitorResponse, 0, len(visitors))
	for i := range visitors {
		items = append(items, visitorResponse(&visitors[i]))
	}
	return items
}

func visitResponse(svc *service.AccessService, visit *domain.Visit) dto.VisitResponse {
	return dto.VisitResponse{
		ID:          visit.ID,
		VisitorID:   visit.VisitorID,
		FullName:    visit.FullName,
		Company:     visit.Company,
		NationalID:  visit.NationalID,
		Plate:       visit.Plate,
		Destination: visit.Destination,
		EntryTime:   visit.EntryTime,
		ExitTime:    visit.ExitTime,
		Status:      visit.Status(),
		Duration:    svc.Duration(*visit),
	}
}

func visitList(svc *service.AccessService, visits []domain.Visit) []dto.VisitResponse {
	items := make([]dto.VisitResponse, 0, len(visits))
	for i := range visits {
		items = append(items, visitResponse(svc, &visits[i]))
	}
	return items
}

// parseDay reads a YYYY-MM-DD query value as a calendar day in loc.
func parseDay(field, val string, loc *time.Location) (*time.Time, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dayLayout, val, loc)
	if err != nil {
		return nil, apperrors.NewValidationError(field+" must be a date formatted YYYY-MM-DD", map[string]any{field: val})
	}
	return &t, nil
}

func formatDay(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dayLayout)
	return &s
}
