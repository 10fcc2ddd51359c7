package repository

import (
	"slices"
	"time"

	"github.com/spec-kit/visitor-access/internal/domain"
)

// ReportFilter bounds a report by calendar day. From is inclusive from the
// start of its day; To is inclusive through the last instant of its day. Both
// are interpreted in their own location.
type ReportFilter struct {
	From *time.Time
	To   *time.Time
}

// VisitLedger is the append-only log of visits in insertion order.
// It is not safe for concurrent use; the access service serializes callers.
type VisitLedger struct {
	visits []domain.Visit
	newID  func() string
	now    func() time.Time
}

// NewVisitLedger builds a ledger over previously persisted visits.
func NewVisitLedger(visits []domain.Visit, newID func() string, now func() time.Time) *VisitLedger {
	l := &VisitLedger{
		visits: make([]domain.Visit, len(visits)),
		newID:  newID,
		now:    now,
	}
	for i := range visits {
		l.visits[i] = cloneVisit(visits[i])
	}
	return l
}

// HasActiveVisit reports whether nationalID has a visit without exit.
func (l *VisitLedger) HasActiveVisit(nationalID string) bool {
	for i := range l.visits {
		if l.visits[i].NationalID == nationalID && l.visits[i].Active() {
			return true
		}
	}
	return false
}

// RegisterEntry appends an active visit snapshotting the visitor fields.
func (l *VisitLedger) RegisterEntry(visitor domain.Visitor, destination string) (domain.Visit, error) {
	if l.HasActiveVisit(visitor.NationalID) {
		return domain.Visit{}, ErrActiveVisitExists
	}
	visit := domain.Visit{
		ID:          l.newID(),
		VisitorID:   visitor.ID,
		FullName:    visitor.FullName,
		Company:     visitor.Company,
		NationalID:  visitor.NationalID,
		Plate:       visitor.Plate,
		Destination: destination,
		EntryTime:   l.now(),
	}
	l.visits = append(l.visits, visit)
	return cloneVisit(visit), nil
}

// RegisterExit closes an active visit. Closing a completed visit leaves it
// untouched; changed reports whether an exit time was written.
func (l *VisitLedger) RegisterExit(visitID string) (visit domain.Visit, changed bool, err error) {
	idx := l.indexOf(visitID)
	if idx < 0 {
		return domain.Visit{}, false, ErrVisitNotFound
	}
	target := &l.visits[idx]
	if !target.Active() {
		return cloneVisit(*target), false, nil
	}
	exit := l.now()
	target.ExitTime = &exit
	return cloneVisit(*target), true, nil
}

// FindByID returns the visit with the given id.
func (l *VisitLedger) FindByID(visitID string) (domain.Visit, bool) {
	idx := l.indexOf(visitID)
	if idx < 0 {
		return domain.Visit{}, false
	}
	return cloneVisit(l.visits[idx]), true
}

// ListActive returns open visits in insertion order.
func (l *VisitLedger) ListActive() []domain.Visit {
	return l.filter(func(v *domain.Visit) bool { return v.Active() })
}

// SearchActive filters open visits by name or plate, ignoring case. Plates
// match with or without the dash.
func (l *VisitLedger) SearchActive(term string) []domain.Visit {
	matcher := domain.NewFoldMatcher(term)
	return l.filter(func(v *domain.Visit) bool {
		if !v.Active() {
			return false
		}
		return matcher.Contains(v.FullName) || matcher.MatchesPlate(v.Plate)
	})
}

// SearchHistory matches every visit by name or national id digits, most
// recent entry first.
func (l *VisitLedger) SearchHistory(term string) []domain.Visit {
	matcher := domain.NewFoldMatcher(term)
	result := l.filter(func(v *domain.Visit) bool {
		return matcher.Contains(v.FullName) || domain.MatchesDigits(v.NationalID, term)
	})
	sortByEntryDesc(result)
	return result
}

// ReportBetween selects visits whose entry falls inside the filter days,
// most recent entry first, with status counts.
func (l *VisitLedger) ReportBetween(filter ReportFilter) domain.VisitReport {
	var from, to time.Time
	if filter.From != nil {
		from = StartOfDay(*filter.From)
	}
	if filter.To != nil {
		to = EndOfDay(*filter.To)
	}
	visits := l.filter(func(v *domain.Visit) bool {
		if filter.From != nil && v.EntryTime.Before(from) {
			return false
		}
		if filter.To != nil && v.EntryTime.After(to) {
			return false
		}
		return true
	})
	sortByEntryDesc(visits)

	report := domain.VisitReport{
		From:   filter.From,
		To:     filter.To,
		Visits: visits,
		Total:  len(visits),
	}
	for i := range visits {
		if visits[i].Active() {
			report.Active++
		} else {
			report.Completed++
		}
	}
	return report
}

// Duration renders the time on site for a visit using the ledger clock.
func (l *VisitLedger) Duration(visit domain.Visit) string {
	return visit.Duration(l.now())
}

// All returns every visit in insertion order.
func (l *VisitLedger) All() []domain.Visit {
	return l.filter(func(*domain.Visit) bool { return true })
}

// Len returns the number of visits.
func (l *VisitLedger) Len() int {
	return len(l.visits)
}

// Clone returns an independent copy sharing the id generator and clock.
func (l *VisitLedger) Clone() *VisitLedger {
	return NewVisitLedger(l.visits, l.newID, l.now)
}

func (l *VisitLedger) indexOf(visitID string) int {
	for i := range l.visits {
		if l.visits[i].ID == visitID {
			return i
		}
	}
	return -1
}

func (l *VisitLedger) filter(keep func(*domain.Visit) bool) []domain.Visit {
	result := make([]domain.Visit, 0)
	for i := range l.visits {
		if keep(&l.visits[i]) {
			result = append(result, cloneVisit(l.visits[i]))
		}
	}
	return result
}

func sortByEntryDesc(visits []domain.Visit) {
	slices.SortStableFunc(visits, func(a, b domain.Visit) int {
		return b.EntryTime.Compare(a.EntryTime)
	})
}

func cloneVisit(v domain.Visit) domain.Visit {
	if v.ExitTime != nil {
		exit := *v.ExitTime
		v.ExitTime = &exit
	}
	return v
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
