package repository

import (
	"time"

	"github.com/spec-kit/visitor-access/internal/domain"
)

// VisitorDirectory is the deduplicated set of visitors keyed by national id.
// It is not safe for concurrent use; the access service serializes callers.
type VisitorDirectory struct {
	visitors     []domain.Visitor
	byNationalID map[string]int
	newID        func() string
	now          func() time.Time
}

// NewVisitorDirectory builds a directory over previously persisted visitors.
// When the input repeats a national id the last record wins the index.
func NewVisitorDirectory(visitors []domain.Visitor, newID func() string, now func() time.Time) *VisitorDirectory {
	d := &VisitorDirectory{
		visitors:     make([]domain.Visitor, len(visitors)),
		byNationalID: make(map[string]int, len(visitors)),
		newID:        newID,
		now:          now,
	}
	copy(d.visitors, visitors)
	for i := range d.visitors {
		d.byNationalID[d.visitors[i].NationalID] = i
	}
	return d
}

// FindByNationalID returns the visitor with the exact normalized id.
func (d *VisitorDirectory) FindByNationalID(nationalID string) (domain.Visitor, bool) {
	idx, ok := d.byNationalID[nationalID]
	if !ok {
		return domain.Visitor{}, false
	}
	return d.visitors[idx], true
}

// FindByID returns the visitor with the given record id.
func (d *VisitorDirectory) FindByID(id string) (domain.Visitor, bool) {
	for i := range d.visitors {
		if d.visitors[i].ID == id {
			return d.visitors[i], true
		}
	}
	return domain.Visitor{}, false
}

// FindByNameOrID matches the name case-insensitively or the national id by
// digit substring. No match yields an empty slice.
func (d *VisitorDirectory) FindByNameOrID(term string) []domain.Visitor {
	result := make([]domain.Visitor, 0)
	matcher := domain.NewFoldMatcher(term)
	for _, v := range d.visitors {
		if matcher.Contains(v.FullName) || domain.MatchesDigits(v.NationalID, term) {
			result = append(result, v)
		}
	}
	return result
}

// Upsert updates the mutable fields of a known visitor or inserts a new one.
// The national id must already be normalized and validated.
func (d *VisitorDirectory) Upsert(details domain.VisitorDetails) domain.Visitor {
	if idx, ok := d.byNationalID[details.NationalID]; ok {
		existing := &d.visitors[idx]
		existing.FullName = details.FullName
		existing.Company = details.Company
		existing.Plate = details.Plate
		return *existing
	}

	visitor := domain.Visitor{
		ID:         d.newID(),
		FullName:   details.FullName,
		Company:    details.Company,
		NationalID: details.NationalID,
		Plate:      details.Plate,
		CreatedAt:  d.now(),
	}
	d.visitors = append(d.visitors, visitor)
	d.byNationalID[visitor.NationalID] = len(d.visitors) - 1
	return visitor
}

// All returns every visitor in insertion order.
func (d *VisitorDirectory) All() []domain.Visitor {
	out := make([]domain.Visitor, len(d.visitors))
	copy(out, d.visitors)
	return out
}

// Len returns the number of visitors.
func (d *VisitorDirectory) Len() int {
	return len(d.visitors)
}

// Clone returns an independent copy sharing the id generator and clock.
func (d *VisitorDirectory) Clone() *VisitorDirectory {
	return NewVisitorDirectory(d.visitors, d.newID, d.now)
}
