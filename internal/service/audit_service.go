package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/visitor-access/internal/events"
	"github.com/spec-kit/visitor-access/internal/observability"
)

// AuditService records visit events in the log and keeps the visit metrics
// current.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventVisitEntryRegistered, "audit.entry", a.handleEntryRegistered)
	a.dispatcher.Subscribe(events.EventVisitExitRegistered, "audit.exit", a.handleExitRegistered)
}

func (a *AuditService) handleEntryRegistered(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VisitEntryPayload)
	if !ok {
		a.logger.Warn("unexpected payload", zap.String("event_type", string(event.Type)))
		return nil
	}
	a.logger.Info("VisitEntryRegistered",
		zap.String("event_id", event.ID),
		zap.String("visit_id", event.VisitID),
		zap.String("visitor_id", payload.VisitorID),
		zap.String("full_name", payload.FullName),
		zap.String("destination", payload.Destination),
		zap.Bool("new_visitor", payload.NewVisitor),
		zap.Time("at", event.Timestamp))
	a.metrics.RecordEntry()
	a.metrics.SetActiveVisits(payload.ActiveVisits)
	return nil
}

func (a *AuditService) handleExitRegistered(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VisitExitPayload)
	if !ok {
		a.logger.Warn("unexpected payload", zap.String("event_type", string(event.Type)))
		return nil
	}
	a.logger.Info("VisitExitRegistered",
		zap.String("event_id", event.ID),
		zap.String("visit_id", event.VisitID),
		zap.String("visitor_id", payload.VisitorID),
		zap.String("full_name", payload.FullName),
		zap.String("duration", payload.Duration),
		zap.Time("at", event.Timestamp))
	a.metrics.RecordExit()
	a.metrics.SetActiveVisits(payload.ActiveVisits)
	return nil
}
