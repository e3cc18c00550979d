package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"campusbooking/internal/domain/audit"
	"campusbooking/internal/domain/booking"
	"campusbooking/internal/domain/incident"
	"campusbooking/internal/domain/scope"
	"campusbooking/internal/domain/space"
)

// WindowPolicy derives the incident window of a freshly approved reservation.
// The boundaries are opaque to this package; only [OpensAt, ClosesAt)
// semantics are assumed downstream.
type WindowPolicy interface {
	WindowFor(r booking.Reservation, block space.ScheduleBlock) (incident.Window, error)
}

// WindowStoreForOrchestrator persists incident windows.
type WindowStoreForOrchestrator interface {
	Save(ctx context.Context, w incident.Window) error
}

// DecisionNotifier informs the requester of a decision. Delivery failures are
// logged and never roll back the decision.
type DecisionNotifier interface {
	NotifyDecision(ctx context.Context, r booking.Reservation, decision, reason string) error
}

// DecideReservationInput carries input for approve and reject.
type DecideReservationInput struct {
	Scope         scope.RequesterScope
	ReservationID string
	Reason        string
}

// DecideReservationDeps holds dependencies for approve, reject and cancel.
type DecideReservationDeps struct {
	ReservationStore ReservationStoreForOrchestrator
	SpaceStore       SpaceStoreForOrchestrator
	WindowStore      WindowStoreForOrchestrator
	WindowPolicy     WindowPolicy
	AuditStore       AuditStoreForOrchestrator
	Notifier         DecisionNotifier
	Index            SnapshotInvalidator
	Now              func() time.Time
}

// ExecuteApproveReservation moves a pending reservation to approved, derives
// its incident window and notifies the requester. Only administrative staff
// and the supervisor covering the space's school may approve; the refusal
// never names the record it protects.
// PRE: input.Reason is mandatory, 1-1000 characters
// POST: Reservation approved with window persisted, or no state change
func ExecuteApproveReservation(ctx context.Context, input DecideReservationInput, deps DecideReservationDeps) (booking.Reservation, error) {
	r, sp, err := loadForDecision(ctx, input, deps)
	if err != nil {
		return booking.Reservation{}, err
	}

	now := deps.Now()
	if err := r.Approve(ctx, input.Scope.AccountID, input.Reason, now); err != nil {
		return booking.Reservation{}, err
	}
	if err := deps.ReservationStore.Update(ctx, r); err != nil {
		return booking.Reservation{}, err
	}

	block, err := deps.SpaceStore.GetBlock(ctx, r.BlockID)
	if err != nil {
		slog.Error("incident_window_skipped", "error", err, "reservation_id", r.ID)
	} else if window, err := deps.WindowPolicy.WindowFor(r, block); err != nil {
		slog.Error("incident_window_skipped", "error", err, "reservation_id", r.ID)
	} else if err := deps.WindowStore.Save(ctx, window); err != nil {
		slog.Error("incident_window_skipped", "error", err, "reservation_id", r.ID)
	}

	notifyDecision(ctx, deps.Notifier, r, "approved", input.Reason)
	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.Scope.AccountID, input.Scope.Role, audit.CategoryReservation, audit.ActionApprove).
		WithResource("reservation", r.ID).
		WithMessage("reservation approved", input.Reason))

	slog.Info("reservation_event", "event", "reservation_approved",
		"reservation_id", r.ID, "approver_id", input.Scope.AccountID, "space_id", sp.ID)
	return r, nil
}

// ExecuteRejectReservation moves a pending reservation to rejected, freeing
// its slot for other requesters.
// PRE: input.Reason is mandatory, 1-1000 characters
// POST: Reservation rejected, slot released, or no state change
func ExecuteRejectReservation(ctx context.Context, input DecideReservationInput, deps DecideReservationDeps) (booking.Reservation, error) {
	r, _, err := loadForDecision(ctx, input, deps)
	if err != nil {
		return booking.Reservation{}, err
	}

	if err := r.Reject(ctx, input.Scope.AccountID, input.Reason, deps.Now()); err != nil {
		return booking.Reservation{}, err
	}
	if err := deps.ReservationStore.Update(ctx, r); err != nil {
		return booking.Reservation{}, err
	}
	deps.Index.Invalidate(r.SpaceID)

	notifyDecision(ctx, deps.Notifier, r, "rejected", input.Reason)
	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.Scope.AccountID, input.Scope.Role, audit.CategoryReservation, audit.ActionReject).
		WithResource("reservation", r.ID).
		WithMessage("reservation rejected", input.Reason))

	slog.Info("reservation_event", "event", "reservation_rejected",
		"reservation_id", r.ID, "approver_id", input.Scope.AccountID)
	return r, nil
}

// CancelReservationInput carries input for the cancel orchestrator.
type CancelReservationInput struct {
	Scope         scope.RequesterScope
	ReservationID string
}

// ExecuteCancelReservation lets the requester withdraw their own approved
// reservation, releasing the slot.
// PRE: the reservation belongs to the requester
// POST: Reservation cancelled, slot released, or no state change
func ExecuteCancelReservation(ctx context.Context, input CancelReservationInput, deps DecideReservationDeps) (booking.Reservation, error) {
	r, err := deps.ReservationStore.GetByID(ctx, input.ReservationID)
	if err != nil {
		return booking.Reservation{}, err
	}
	if r.RequesterID != input.Scope.AccountID {
		return booking.Reservation{}, scope.ErrForbidden
	}

	if err := r.Cancel(ctx, deps.Now()); err != nil {
		return booking.Reservation{}, err
	}
	if err := deps.ReservationStore.Update(ctx, r); err != nil {
		return booking.Reservation{}, err
	}
	deps.Index.Invalidate(r.SpaceID)

	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.Scope.AccountID, input.Scope.Role, audit.CategoryReservation, audit.ActionCancel).
		WithResource("reservation", r.ID).
		WithMessage("reservation cancelled", ""))

	slog.Info("reservation_event", "event", "reservation_cancelled",
		"reservation_id", r.ID, "requester_id", input.Scope.AccountID)
	return r, nil
}

// loadForDecision fetches the reservation and its space, then checks the
// approver's authority over the space's school.
func loadForDecision(ctx context.Context, input DecideReservationInput, deps DecideReservationDeps) (booking.Reservation, space.Space, error) {
	r, err := deps.ReservationStore.GetByID(ctx, input.ReservationID)
	if err != nil {
		return booking.Reservation{}, space.Space{}, err
	}
	sp, err := deps.SpaceStore.GetByID(ctx, r.SpaceID)
	if err != nil {
		return booking.Reservation{}, space.Space{}, err
	}
	if !input.Scope.CanApprove() || !input.Scope.CoversSchool(sp.SchoolID) {
		return booking.Reservation{}, space.Space{}, scope.ErrForbidden
	}
	return r, sp, nil
}

func notifyDecision(ctx context.Context, notifier DecisionNotifier, r booking.Reservation, decision, reason string) {
	if notifier == nil {
		return
	}
	if err := notifier.NotifyDecision(ctx, r, decision, reason); err != nil {
		slog.Error("decision_notification_failed", "error", err, "reservation_id", r.ID, "decision", decision)
	}
}
