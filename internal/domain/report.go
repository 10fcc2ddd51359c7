package domain

import "time"

// VisitReport is a date-filtered view of the ledger with status counts.
type VisitReport struct {
	From      *time.Time
	To        *time.Time
	Visits    []Visit
	Total     int
	Active    int
	Completed int
}

// PeriodLabel describes the report window the way the front desk prints it.
func (r VisitReport) PeriodLabel() string {
	const layout = "02/01/2006"
	switch {
	case r.From != nil && r.To != nil:
		return "Período: " + r.From.Format(layout) + " a " + r.To.Format(layout)
	case r.From != nil:
		return "A partir de: " + r.From.Format(layout)
	case r.To != nil:
		return "Até: " + r.To.Format(layout)
	default:
		return "Todas as visitas"
	}
}
