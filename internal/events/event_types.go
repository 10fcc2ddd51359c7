package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventVisitEntryRegistered EventType = "visit_entry_registered"
	EventVisitExitRegistered  EventType = "visit_exit_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	VisitID   string    `json:"visit_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// VisitEntryPayload payload.
type VisitEntryPayload struct {
	VisitorID   string `json:"visitor_id"`
	NationalID  string `json:"national_id"`
	FullName    string `json:"full_name"`
	Destination string `json:"destination"`
	NewVisitor  bool   `json:"new_visitor"`
	// ActiveVisits is the number of open visits after the entry.
	ActiveVisits int `json:"active_visits"`
}

// VisitExitPayload payload.
type VisitExitPayload struct {
	VisitorID    string `json:"visitor_id"`
	FullName     string `json:"full_name"`
	Duration     string `json:"duration"`
	ActiveVisits int    `json:"active_visits"`
}
