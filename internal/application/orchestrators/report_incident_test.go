package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusbooking/internal/domain/incident"
)

type fakeWindowReader struct {
	windows map[string]incident.Window
}

func (s *fakeWindowReader) GetByReservation(_ context.Context, reservationID string) (incident.Window, error) {
	w, ok := s.windows[reservationID]
	if !ok {
		return incident.Window{}, incident.ErrWindowNotFound
	}
	return w, nil
}

type fakeReportStore struct {
	saved []incident.Report
}

func (s *fakeReportStore) Save(_ context.Context, r incident.Report) error {
	s.saved = append(s.saved, r)
	return nil
}

func reportDeps(now time.Time, windows map[string]incident.Window) (ReportIncidentDeps, *fakeReportStore) {
	reports := &fakeReportStore{}
	return ReportIncidentDeps{
		WindowStore: &fakeWindowReader{windows: windows},
		ReportStore: reports,
		AuditStore:  &fakeAuditStore{},
		GenerateID:  func() string { return "rep-1" },
		Now:         func() time.Time { return now },
	}, reports
}

func TestExecuteReportIncident(t *testing.T) {
	window := incident.Window{
		ReservationID: "res-1",
		OpensAt:       time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		ClosesAt:      time.Date(2026, 3, 5, 9, 50, 0, 0, time.UTC),
	}
	windows := map[string]incident.Window{"res-1": window}
	input := ReportIncidentInput{
		ReservationID: "res-1", ReporterID: "prof-1", ReporterRole: "professor",
		Description: "proyector no enciende",
	}

	t.Run("inside the window", func(t *testing.T) {
		deps, reports := reportDeps(time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC), windows)
		report, err := ExecuteReportIncident(context.Background(), input, deps)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.ID != "rep-1" || len(reports.saved) != 1 {
			t.Errorf("report not persisted: %+v", report)
		}
	})

	t.Run("before it opens", func(t *testing.T) {
		deps, reports := reportDeps(time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC), windows)
		_, err := ExecuteReportIncident(context.Background(), input, deps)
		if !errors.Is(err, incident.ErrWindowClosed) {
			t.Errorf("expected ErrWindowClosed, got %v", err)
		}
		if len(reports.saved) != 0 {
			t.Error("no report may be persisted outside the window")
		}
	})

	t.Run("at the closing instant", func(t *testing.T) {
		deps, _ := reportDeps(window.ClosesAt, windows)
		_, err := ExecuteReportIncident(context.Background(), input, deps)
		if !errors.Is(err, incident.ErrWindowClosed) {
			t.Errorf("the window is half-open, expected ErrWindowClosed, got %v", err)
		}
	})

	t.Run("reservation never approved", func(t *testing.T) {
		deps, _ := reportDeps(time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC), nil)
		_, err := ExecuteReportIncident(context.Background(), input, deps)
		if !errors.Is(err, incident.ErrWindowClosed) {
			t.Errorf("expected ErrWindowClosed, got %v", err)
		}
	})

	t.Run("empty description", func(t *testing.T) {
		deps, reports := reportDeps(time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC), windows)
		bad := input
		bad.Description = "   "
		_, err := ExecuteReportIncident(context.Background(), bad, deps)
		if !errors.Is(err, incident.ErrEmptyDescription) {
			t.Errorf("expected ErrEmptyDescription, got %v", err)
		}
		if len(reports.saved) != 0 {
			t.Error("invalid report must not be persisted")
		}
	})
}
