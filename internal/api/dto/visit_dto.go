package dto

import (
	"time"

	"github.com/spec-kit/visitor-access/internal/domain"
)

// RegisterEntryRequest payload.
type RegisterEntryRequest struct {
	FullName    string `json:"full_name"`
	Company     string `json:"company"`
	NationalID  string `json:"national_id"`
	Plate       string `json:"plate"`
	Destination string `json:"destination"`
}

// VisitorResponse is a directory entry.
type VisitorResponse struct {
	ID                  string    `json:"id"`
	FullName            string    `json:"full_name"`
	Company             string    `json:"company"`
	NationalID          string    `json:"national_id"`
	NationalIDFormatted string    `json:"national_id_formatted"`
	Plate               string    `json:"plate"`
	CreatedAt           time.Time `json:"created_at"`
}

// VisitResponse is a ledger entry with its derived status and duration.
type VisitResponse struct {
	ID          string             `json:"id"`
	VisitorID   string             `json:"visitor_id"`
	FullName    string             `json:"full_name"`
	Company     string             `json:"company"`
	NationalID  string             `json:"national_id"`
	Plate       string             `json:"plate"`
	Destination string             `json:"destination"`
	EntryTime   time.Time          `json:"entry_time"`
	ExitTime    *time.Time         `json:"exit_time"`
	Status      domain.VisitStatus `json:"status"`
	Duration    string             `json:"duration"`
}

// VisitReportResponse wraps a filtered report.
type VisitReportResponse struct {
	Period    string          `json:"period"`
	From      *string         `json:"from"`
	To        *string         `json:"to"`
	Total     int             `json:"total"`
	Active    int             `json:"active"`
	Completed int             `json:"completed"`
	Visits    []VisitResponse `json:"visits"`
}
