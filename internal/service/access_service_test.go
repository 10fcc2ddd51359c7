package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/visitor-access/internal/domain"
	"github.com/spec-kit/visitor-access/internal/events"
	"github.com/spec-kit/visitor-access/internal/observability"
	"github.com/spec-kit/visitor-access/internal/persistence"
	apperrors "github.com/spec-kit/visitor-access/pkg/util/errorutil"
)

// flakyStore fails writes while failWrites is set.
type flakyStore struct {
	*persistence.MemoryStore
	mu         sync.Mutex
	failWrites bool
	writes     int
}

func (f *flakyStore) PutAll(ctx context.Context, values map[string][]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("disk full")
	}
	f.writes++
	return f.MemoryStore.PutAll(ctx, values)
}

type AccessServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *flakyStore
	registry *prometheus.Registry
	metrics  *observability.Metrics
	service  *AccessService
	location *time.Location
	now      time.Time
	seq      int
}

func TestAccessServiceSuite(t *testing.T) {
	suite.Run(t, new(AccessServiceSuite))
}

func (s *AccessServiceSuite) SetupTest() {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	s.Require().NoError(err)
	s.location = loc
	s.ctx = context.Background()
	s.seq = 0
	s.now = time.Date(2024, 1, 1, 10, 0, 0, 0, loc)
	s.store = &flakyStore{MemoryStore: persistence.NewMemoryStore()}
	s.registry = prometheus.NewRegistry()
	s.metrics = observability.NewMetrics(s.registry)
	s.service = s.newService(s.store)
}

func (s *AccessServiceSuite) newService(store persistence.KVStore) *AccessService {
	logger := zaptest.NewLogger(s.T())
	dispatcher := events.NewInMemoryDispatcher(logger)
	NewAuditService(dispatcher, logger, s.metrics).RegisterHandlers()
	return NewAccessService(AccessDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    s.metrics,
		Location:   s.location,
		Clock:      func() time.Time { return s.now },
		IDGenerator: func() string {
			s.seq++
			return fmt.Sprintf("id-%d", s.seq)
		},
	})
}

func (s *AccessServiceSuite) metricValue(name string) float64 {
	families, err := s.registry.Gather()
	s.Require().NoError(err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		metric := family.GetMetric()[0]
		if metric.GetCounter() != nil {
			return metric.GetCounter().GetValue()
		}
		return metric.GetGauge().GetValue()
	}
	return 0
}

func (s *AccessServiceSuite) ana() EntryInput {
	return EntryInput{
		FullName:    "Ana Silva",
		Company:     "Acme",
		NationalID:  "12345678900",
		Plate:       "ABC1234",
		Destination: "Sala 3",
	}
}

func (s *AccessServiceSuite) TestVisitLifecycle() {
	visit, err := s.service.RegisterEntry(s.ctx, s.ana())
	s.Require().NoError(err)
	s.Equal("Ana Silva", visit.FullName)
	s.Equal("Sala 3", visit.Destination)
	s.Equal(domain.VisitStatusActive, visit.Status())
	s.Len(s.service.ListActive(), 1)

	_, err = s.service.RegisterEntry(s.ctx, s.ana())
	s.True(apperrors.HasCode(err, apperrors.CodeConflict))
	s.Len(s.service.ListActive(), 1)

	s.now = s.now.Add(2*time.Hour + 30*time.Minute)
	closed, err := s.service.RegisterExit(s.ctx, visit.ID)
	s.Require().NoError(err)
	s.Require().NotNil(closed.ExitTime)
	s.Equal("2h 30min", s.service.Duration(*closed))
	s.Empty(s.service.ListActive())

	history := s.service.SearchHistory("12345678900")
	s.Require().Len(history, 1)
	s.Equal(domain.VisitStatusCompleted, history[0].Status())

	second, err := s.service.RegisterEntry(s.ctx, s.ana())
	s.Require().NoError(err)
	s.Equal(visit.VisitorID, second.VisitorID)

	s.Equal(2.0, s.metricValue("visitor_access_entries_total"))
	s.Equal(1.0, s.metricValue("visitor_access_exits_total"))
	s.Equal(1.0, s.metricValue("visitor_access_active_visits"))
}

func (s *AccessServiceSuite) TestRegisterEntryValidation() {
	s.Run("missing required fields", func() {
		input := s.ana()
		input.FullName = "   "
		input.Destination = ""
		_, err := s.service.RegisterEntry(s.ctx, input)
		s.Require().Error(err)
		domainErr := apperrors.ToDomainError(err)
		s.Equal(apperrors.CodeValidationFailed, domainErr.Code)
		s.Equal([]string{"full_name", "destination"}, domainErr.Details["fields"])
	})

	s.Run("short national id", func() {
		input := s.ana()
		input.NationalID = "1234567890"
		_, err := s.service.RegisterEntry(s.ctx, input)
		s.True(apperrors.HasCode(err, apperrors.CodeValidationFailed))
	})

	s.Run("company and plate are optional", func() {
		input := s.ana()
		input.Company = ""
		input.Plate = ""
		visit, err := s.service.RegisterEntry(s.ctx, input)
		s.Require().NoError(err)
		s.Empty(visit.Plate)
	})
}

func (s *AccessServiceSuite) TestRegisterEntryUpdatesKnownVisitor() {
	first, err := s.service.RegisterEntry(s.ctx, s.ana())
	s.Require().NoError(err)
	_, err = s.service.RegisterExit(s.ctx, first.ID)
	s.Require().NoError(err)

	input := s.ana()
	input.Company = "Globex"
	input.Plate = "XYZ9K88"
	_, err = s.service.RegisterEntry(s.ctx, input)
	s.Require().NoError(err)

	visitor, err := s.service.FindVisitor("12345678900")
	s.Require().NoError(err)
	s.Equal(first.VisitorID, visitor.ID)
	s.Equal("Globex", visitor.Company)
	s.Equal("XYZ9K88", visitor.Plate)
	s.Len(s.service.SearchVisitors("ana"), 1)
}

func (s *AccessServiceSuite) TestRegisterExit() {
	s.Run("unknown visit", func() {
		_, err := s.service.RegisterExit(s.ctx, "missing")
		s.True(apperrors.HasCode(err, apperrors.CodeNotFound))
	})

	s.Run("second exit keeps the first timestamp", func() {
		visit, err := s.service.RegisterEntry(s.ctx, s.ana())
		s.Require().NoError(err)
		s.now = s.now.Add(time.Hour)
		closed, err := s.service.RegisterExit(s.ctx, visit.ID)
		s.Require().NoError(err)
		writes := s.store.writes

		s.now = s.now.Add(time.Hour)
		again, err := s.service.RegisterExit(s.ctx, visit.ID)
		s.Require().NoError(err)
		s.Equal(*closed.ExitTime, *again.ExitTime)
		s.Equal(writes, s.store.writes)
	})
}

func (s *AccessServiceSuite) TestFailedWriteLeavesStateUntouched() {
	s.store.failWrites = true
	_, err := s.service.RegisterEntry(s.ctx, s.ana())
	s.True(apperrors.HasCode(err, apperrors.CodeInternal))
	s.Empty(s.service.ListActive())
	_, err = s.service.FindVisitor("12345678900")
	s.True(apperrors.HasCode(err, apperrors.CodeNotFound))
	s.Equal(1.0, s.metricValue("visitor_access_store_write_failures_total"))

	s.store.failWrites = false
	visit, err := s.service.RegisterEntry(s.ctx, s.ana())
	s.Require().NoError(err)

	s.store.failWrites = true
	_, err = s.service.RegisterExit(s.ctx, visit.ID)
	s.Require().Error(err)
	s.Len(s.service.ListActive(), 1)
}

func (s *AccessServiceSuite) TestLoadRestoresPersistedState() {
	visit, err := s.service.RegisterEntry(s.ctx, s.ana())
	s.Require().NoError(err)

	raw, err := s.store.Get(s.ctx, persistence.KeyVisits)
	s.Require().NoError(err)
	var stored []map[string]any
	s.Require().NoError(json.Unmarshal(raw, &stored))
	s.Require().Len(stored, 1)
	s.Equal("Ana Silva", stored[0]["nome"])
	s.Equal("12345678900", stored[0]["cpf"])
	s.Nil(stored[0]["saida"])

	reloaded := s.newService(s.store)
	s.Require().NoError(reloaded.Load(s.ctx))
	active := reloaded.ListActive()
	s.Require().Len(active, 1)
	s.Equal(visit.ID, active[0].ID)

	_, err = reloaded.RegisterEntry(s.ctx, s.ana())
	s.True(apperrors.HasCode(err, apperrors.CodeConflict))
}

func (s *AccessServiceSuite) TestPlateSearchAcrossStoredForms() {
	legacyVisits := `[{"id":"1704117600000","visitorId":"1704117500000","nome":"Diego Lima","empresa":"","cpf":"44444444444","placa":"XYZ-9876","destino":"Almoxarifado","entrada":"2024-01-01T12:00:00Z","saida":null}]`
	s.Require().NoError(s.store.PutAll(s.ctx, map[string][]byte{persistence.KeyVisits: []byte(legacyVisits)}))
	s.Require().NoError(s.service.Load(s.ctx))

	_, err := s.service.RegisterEntry(s.ctx, s.ana())
	s.Require().NoError(err)

	legacy := s.service.SearchActive("XYZ9876")
	s.Require().Len(legacy, 1)
	s.Equal("Diego Lima", legacy[0].FullName)

	for _, term := range []string{"ABC-1234", "abc1234"} {
		found := s.service.SearchActive(term)
		s.Require().Len(found, 1, term)
		s.Equal("Ana Silva", found[0].FullName)
	}
}

func (s *AccessServiceSuite) TestLoadEmptyStore() {
	s.Require().NoError(s.service.Load(s.ctx))
	s.Empty(s.service.ListActive())
	s.Empty(s.service.SearchVisitors("a"))
}

func (s *AccessServiceSuite) TestLoadRejectsCorruptState() {
	s.Require().NoError(s.store.PutAll(s.ctx, map[string][]byte{persistence.KeyVisits: []byte("{")}))
	s.Error(s.service.Load(s.ctx))
}

func (s *AccessServiceSuite) TestSearchActive() {
	_, err := s.service.RegisterEntry(s.ctx, s.ana())
	s.Require().NoError(err)
	bruno := EntryInput{FullName: "Bruno Costa", NationalID: "98765432100", Destination: "Recepção"}
	_, err = s.service.RegisterEntry(s.ctx, bruno)
	s.Require().NoError(err)

	s.Len(s.service.SearchActive(""), 2)
	s.Len(s.service.SearchActive("abc1"), 1)
	s.Len(s.service.SearchActive("BRUNO"), 1)
	s.Empty(s.service.SearchActive("carla"))
}

func (s *AccessServiceSuite) TestReportUsesCalendarDaysInLocation() {
	s.now = time.Date(2024, 1, 1, 22, 30, 0, 0, s.location)
	_, err := s.service.RegisterEntry(s.ctx, s.ana())
	s.Require().NoError(err)
	s.now = time.Date(2024, 1, 2, 9, 0, 0, 0, s.location)
	_, err = s.service.RegisterEntry(s.ctx, EntryInput{FullName: "Bruno Costa", NationalID: "98765432100", Destination: "Recepção"})
	s.Require().NoError(err)

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	report := s.service.Report(ReportQuery{From: &day, To: &day})
	s.Require().Equal(1, report.Total)
	s.Equal("Ana Silva", report.Visits[0].FullName)
	s.Equal("Período: 01/01/2024 a 01/01/2024", report.PeriodLabel())

	all := s.service.Report(ReportQuery{})
	s.Equal(2, all.Total)
	s.Equal(2, all.Active)
	s.Equal("Bruno Costa", all.Visits[0].FullName)
}

func TestAccessService_ConcurrentEntriesForSameVisitor(t *testing.T) {
	svc := NewAccessService(AccessDependencies{
		Store:  persistence.NewMemoryStore(),
		Logger: zaptest.NewLogger(t),
	})
	input := EntryInput{FullName: "Ana Silva", NationalID: "12345678900", Destination: "Sala 3"}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, conflicts := 0, 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RegisterEntry(context.Background(), input)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if apperrors.HasCode(err, apperrors.CodeConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 15, conflicts)
	require.Len(t, svc.ListActive(), 1)
}
