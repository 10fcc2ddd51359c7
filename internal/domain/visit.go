package domain

import (
	"fmt"
	"time"
)

// VisitStatus is the display label derived from ExitTime.
type VisitStatus string

const (
	VisitStatusActive    VisitStatus = "Ativa"
	VisitStatusCompleted VisitStatus = "Finalizada"
)

// Visit is an entry/exit event in the ledger. Visitor fields are a snapshot
// taken at entry time and are not re-joined on read.
type Visit struct {
	ID          string     `json:"id"`
	VisitorID   string     `json:"visitorId"`
	FullName    string     `json:"nome"`
	Company     string     `json:"empresa"`
	NationalID  string     `json:"cpf"`
	Plate       string     `json:"placa"`
	Destination string     `json:"destino"`
	EntryTime   time.Time  `json:"entrada"`
	ExitTime    *time.Time `json:"saida"`
}

// Active reports whether the visit has no exit recorded.
func (v *Visit) Active() bool {
	return v.ExitTime == nil
}

// Status returns the derived lifecycle label.
func (v *Visit) Status() VisitStatus {
	if v.Active() {
		return VisitStatusActive
	}
	return VisitStatusCompleted
}

// Elapsed returns the time spent on site, measured up to now while active.
func (v *Visit) Elapsed(now time.Time) time.Duration {
	end := now
	if v.ExitTime != nil {
		end = *v.ExitTime
	}
	d := end.Sub(v.EntryTime)
	if d < 0 {
		return 0
	}
	return d
}

// Duration renders Elapsed as "2h 30min", or "45min" under an hour.
func (v *Visit) Duration(now time.Time) string {
	return FormatDuration(v.Elapsed(now))
}

// FormatDuration renders whole hours and remaining whole minutes.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int64(d / time.Hour)
	minutes := int64((d % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dmin", hours, minutes)
	}
	return fmt.Sprintf("%dmin", minutes)
}
