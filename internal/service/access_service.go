package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/visitor-access/internal/domain"
	"github.com/spec-kit/visitor-access/internal/events"
	"github.com/spec-kit/visitor-access/internal/observability"
	"github.com/spec-kit/visitor-access/internal/persistence"
	"github.com/spec-kit/visitor-access/internal/repository"
	apperrors "github.com/spec-kit/visitor-access/pkg/util/errorutil"
)

// AccessService owns the visitor directory and the visit ledger. Writes are
// serialized and the whole state is persisted after each one; a failed write
// leaves the in-memory state untouched.
type AccessService struct {
	mu         sync.RWMutex
	store      persistence.KVStore
	visitors   *repository.VisitorDirectory
	visits     *repository.VisitLedger
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	location   *time.Location
	now        func() time.Time
	newID      func() string
}

// AccessDependencies bundles collaborators for the access service.
type AccessDependencies struct {
	Store       persistence.KVStore
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Location    *time.Location
	Clock       func() time.Time
	IDGenerator func() string
}

// EntryInput describes a registration. Fields are expected to be normalized
// already (digits-only national id, uppercase alphanumeric plate).
type EntryInput struct {
	FullName    string
	Company     string
	NationalID  string
	Plate       string
	Destination string
}

// ReportQuery bounds a report by calendar day; nil means unbounded.
type ReportQuery struct {
	From *time.Time
	To   *time.Time
}

// NewAccessService constructs the service with empty collections. Call Load
// to restore persisted state.
func NewAccessService(deps AccessDependencies) *AccessService {
	s := &AccessService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		location:   deps.Location,
		now:        deps.Clock,
		newID:      deps.IDGenerator,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.visitors = repository.NewVisitorDirectory(nil, s.newID, s.clock)
	s.visits = repository.NewVisitLedger(nil, s.newID, s.clock)
	return s
}

// Load replaces the in-memory state with what the store holds. Missing keys
// are treated as empty collections.
func (s *AccessService) Load(ctx context.Context) error {
	var visitors []domain.Visitor
	if err := s.loadKey(ctx, persistence.KeyVisitors, &visitors); err != nil {
		return err
	}
	var visits []domain.Visit
	if err := s.loadKey(ctx, persistence.KeyVisits, &visits); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitors = repository.NewVisitorDirectory(visitors, s.newID, s.clock)
	s.visits = repository.NewVisitLedger(visits, s.newID, s.clock)

	s.logger.Info("state loaded",
		zap.Int("visitors", len(visitors)),
		zap.Int("visits", len(visits)))
	return nil
}

// RegisterEntry validates the input, resolves or creates the visitor and opens
// a visit for it.
func (s *AccessService) RegisterEntry(ctx context.Context, input EntryInput) (*domain.Visit, error) {
	input = trimEntry(input)
	if err := validateEntry(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.visits.HasActiveVisit(input.NationalID) {
		return nil, activeVisitConflict(input.NationalID)
	}

	visitors := s.visitors.Clone()
	visits := s.visits.Clone()

	_, known := visitors.FindByNationalID(input.NationalID)
	visitor := visitors.Upsert(domain.VisitorDetails{
		FullName:   input.FullName,
		Company:    input.Company,
		NationalID: input.NationalID,
		Plate:      input.Plate,
	})
	visit, err := visits.RegisterEntry(visitor, input.Destination)
	if errors.Is(err, repository.ErrActiveVisitExists) {
		return nil, activeVisitConflict(input.NationalID)
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if err := s.persist(ctx, visitors, visits); err != nil {
		return nil, err
	}
	s.visitors, s.visits = visitors, visits

	s.logger.Info("entry registered",
		zap.String("visit_id", visit.ID),
		zap.String("visitor_id", visitor.ID),
		zap.Bool("new_visitor", !known))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventVisitEntryRegistered,
		VisitID: visit.ID,
		Payload: events.VisitEntryPayload{
			VisitorID:    visitor.ID,
			NationalID:   visitor.NationalID,
			FullName:     visitor.FullName,
			Destination:  visit.Destination,
			NewVisitor:   !known,
			ActiveVisits: len(visits.ListActive()),
		},
	})
	return &visit, nil
}

// RegisterExit closes the visit. An already completed visit is returned
// unchanged and nothing is written.
func (s *AccessService) RegisterExit(ctx context.Context, visitID string) (*domain.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	visits := s.visits.Clone()
	visit, changed, err := visits.RegisterExit(visitID)
	if errors.Is(err, repository.ErrVisitNotFound) {
		return nil, apperrors.NewNotFound("visit", map[string]any{"visit_id": visitID})
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !changed {
		s.logger.Debug("exit already registered", zap.String("visit_id", visitID))
		return &visit, nil
	}

	if err := s.persist(ctx, s.visitors, visits); err != nil {
		return nil, err
	}
	s.visits = visits

	duration := visit.Duration(s.clock())
	s.logger.Info("exit registered",
		zap.String("visit_id", visit.ID),
		zap.String("duration", duration))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventVisitExitRegistered,
		VisitID: visit.ID,
		Payload: events.VisitExitPayload{
			VisitorID:    visit.VisitorID,
			FullName:     visit.FullName,
			Duration:     duration,
			ActiveVisits: len(visits.ListActive()),
		},
	})
	return &visit, nil
}

// FindVisitor looks a visitor up by normalized national id.
func (s *AccessService) FindVisitor(nationalID string) (*domain.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visitor, ok := s.visitors.FindByNationalID(nationalID)
	if !ok {
		return nil, apperrors.NewNotFound("visitor", map[string]any{"national_id": nationalID})
	}
	return &visitor, nil
}

// SearchVisitors matches directory entries by name or national id digits.
func (s *AccessService) SearchVisitors(term string) []domain.Visitor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visitors.FindByNameOrID(strings.TrimSpace(term))
}

// ListActive returns open visits in entry order.
func (s *AccessService) ListActive() []domain.Visit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visits.ListActive()
}

// SearchActive filters open visits by name or plate. An empty term lists all
// open visits.
func (s *AccessService) SearchActive(term string) []domain.Visit {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ListActive()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visits.SearchActive(term)
}

// SearchHistory matches every visit by name or national id, newest first.
func (s *AccessService) SearchHistory(term string) []domain.Visit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visits.SearchHistory(strings.TrimSpace(term))
}

// Report selects visits by entry day in the service location.
func (s *AccessService) Report(query ReportQuery) domain.VisitReport {
	filter := repository.ReportFilter{
		From: s.calendarDay(query.From),
		To:   s.calendarDay(query.To),
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visits.ReportBetween(filter)
}

// Duration renders the time on site, measured up to now for open visits.
func (s *AccessService) Duration(visit domain.Visit) string {
	return visit.Duration(s.clock())
}

// Location is the zone used for report days and printed times.
func (s *AccessService) Location() *time.Location {
	return s.location
}

// Now returns the service clock in its location.
func (s *AccessService) Now() time.Time {
	return s.clock().In(s.location)
}

// Ping checks that the backing store is reachable.
func (s *AccessService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *AccessService) clock() time.Time {
	return s.now().UTC()
}

func (s *AccessService) calendarDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.location)
	return &day
}

func (s *AccessService) loadKey(ctx context.Context, key string, dest any) error {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *AccessService) persist(ctx context.Context, visitors *repository.VisitorDirectory, visits *repository.VisitLedger) error {
	visitorsJSON, err := json.Marshal(visitors.All())
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("encode visitors: %w", err))
	}
	visitsJSON, err := json.Marshal(visits.All())
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("encode visits: %w", err))
	}
	if err := s.store.PutAll(ctx, map[string][]byte{
		persistence.KeyVisitors: visitorsJSON,
		persistence.KeyVisits:   visitsJSON,
	}); err != nil {
		s.logger.Error("persist state", zap.Error(err))
		s.metrics.RecordStoreFailure()
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *AccessService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Debug("event delivered with errors", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func trimEntry(input EntryInput) EntryInput {
	return EntryInput{
		FullName:    strings.TrimSpace(input.FullName),
		Company:     strings.TrimSpace(input.Company),
		NationalID:  strings.TrimSpace(input.NationalID),
		Plate:       strings.TrimSpace(input.Plate),
		Destination: strings.TrimSpace(input.Destination),
	}
}

func validateEntry(input EntryInput) error {
	var missing []string
	if input.FullName == "" {
		missing = append(missing, "full_name")
	}
	if input.NationalID == "" {
		missing = append(missing, "national_id")
	}
	if input.Destination == "" {
		missing = append(missing, "destination")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("required fields missing", map[string]any{"fields": missing})
	}
	if !domain.ValidNationalID(input.NationalID) {
		return apperrors.NewValidationError(
			fmt.Sprintf("national_id must have %d digits", domain.NationalIDLength),
			map[string]any{"national_id": input.NationalID})
	}
	return nil
}

func activeVisitConflict(nationalID string) error {
	return apperrors.NewConflict("visitor already has an active visit; register the exit first",
		map[string]any{"national_id": nationalID})
}
