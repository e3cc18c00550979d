package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campusbooking/internal/domain/audit"
	"campusbooking/internal/domain/incident"
)

// IncidentWindowReader resolves the window of a reservation.
type IncidentWindowReader interface {
	GetByReservation(ctx context.Context, reservationID string) (incident.Window, error)
}

// IncidentReportStoreForOrchestrator persists incident reports.
type IncidentReportStoreForOrchestrator interface {
	Save(ctx context.Context, r incident.Report) error
}

// ReportIncidentInput carries input for the report incident orchestrator.
type ReportIncidentInput struct {
	ReservationID string
	ReporterID    string
	ReporterRole  string
	Description   string
}

// ReportIncidentDeps holds dependencies for ReportIncident.
type ReportIncidentDeps struct {
	WindowStore IncidentWindowReader
	ReportStore IncidentReportStoreForOrchestrator
	AuditStore  AuditStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteReportIncident files an incident against an approved reservation.
// Submission is rejected outside [OpensAt, ClosesAt); the open check runs
// against the wall clock at submission time, never a cached verdict.
// PRE: input fields are client-supplied and unvalidated
// POST: Report persisted, or incident.ErrWindowClosed with no side effects
func ExecuteReportIncident(ctx context.Context, input ReportIncidentInput, deps ReportIncidentDeps) (incident.Report, error) {
	window, err := deps.WindowStore.GetByReservation(ctx, input.ReservationID)
	if errors.Is(err, incident.ErrWindowNotFound) {
		// A reservation that was never approved has no window to be inside of.
		return incident.Report{}, fmt.Errorf("%w: %v", incident.ErrWindowClosed, err)
	}
	if err != nil {
		return incident.Report{}, err
	}
	if !window.IsOpen(deps.Now()) {
		return incident.Report{}, incident.ErrWindowClosed
	}

	report := incident.Report{
		ID:            deps.GenerateID(),
		ReservationID: input.ReservationID,
		ReporterID:    input.ReporterID,
		Description:   input.Description,
		CreatedAt:     deps.Now(),
	}
	if err := report.Validate(); err != nil {
		return incident.Report{}, err
	}
	if err := deps.ReportStore.Save(ctx, report); err != nil {
		return incident.Report{}, err
	}

	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.ReporterID, input.ReporterRole, audit.CategoryIncident, audit.ActionReport).
		WithResource("reservation", input.ReservationID).
		WithMessage("incident reported", ""))

	slog.Info("incident_event", "event", "incident_reported",
		"report_id", report.ID, "reservation_id", input.ReservationID, "reporter_id", input.ReporterID)
	return report, nil
}
