package projections

import (
	"context"
	"errors"

	domainIncident "campusbooking/internal/domain/incident"
)

// GetIncidentsQuery carries query parameters.
type GetIncidentsQuery struct {
	ReservationID string
}

// GetIncidentsResult carries the query result. WindowOpen is recomputed
// against the wall clock on every call; HasWindow is false for reservations
// that were never approved.
type GetIncidentsResult struct {
	Reports    []domainIncident.Report
	HasWindow  bool
	WindowOpen bool
	Window     domainIncident.Window
}

// GetIncidentsDeps holds dependencies for GetIncidents.
type GetIncidentsDeps struct {
	WindowStore IncidentWindowStore
	ReportStore IncidentReportStore
	Now         NowFunc
}

// QueryGetIncidents returns the incident history of a reservation together
// with the current window state. History stays readable after the window
// closes; only new submissions are gated.
// PRE: query.ReservationID is non-empty
// POST: Returns reports oldest first and the recomputed window state
func QueryGetIncidents(ctx context.Context, query GetIncidentsQuery, deps GetIncidentsDeps) (GetIncidentsResult, error) {
	reports, err := deps.ReportStore.ListByReservation(ctx, query.ReservationID)
	if err != nil {
		return GetIncidentsResult{}, err
	}

	result := GetIncidentsResult{Reports: reports}

	window, err := deps.WindowStore.GetByReservation(ctx, query.ReservationID)
	if errors.Is(err, domainIncident.ErrWindowNotFound) {
		return result, nil
	}
	if err != nil {
		return GetIncidentsResult{}, err
	}

	result.HasWindow = true
	result.Window = window
	result.WindowOpen = window.IsOpen(deps.Now())
	return result, nil
}
