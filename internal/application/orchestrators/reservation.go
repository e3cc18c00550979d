package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campusbooking/internal/domain/audit"
	"campusbooking/internal/domain/booking"
	"campusbooking/internal/domain/scope"
	"campusbooking/internal/domain/space"
	"campusbooking/internal/domain/timeslot"
)

// ReservationStoreForOrchestrator defines the store interface needed by
// reservation orchestrators. Insert and Update enforce slot uniqueness; the
// orchestrator never pre-checks the slot from read-side state.
type ReservationStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (booking.Reservation, error)
	Insert(ctx context.Context, r booking.Reservation) error
	Update(ctx context.Context, r booking.Reservation) error
}

// SpaceStoreForOrchestrator defines the catalog interface needed by
// reservation orchestrators.
type SpaceStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (space.Space, error)
	GetBlock(ctx context.Context, blockID string) (space.ScheduleBlock, error)
}

// AuditStoreForOrchestrator records audit events. Failures are logged, never
// propagated.
type AuditStoreForOrchestrator interface {
	Save(ctx context.Context, event audit.Event) error
}

// SnapshotInvalidator drops cached occupancy snapshots after writes.
type SnapshotInvalidator interface {
	Invalidate(spaceID string)
}

// --- Create Reservation ---

// CreateReservationInput carries input for the create reservation orchestrator.
type CreateReservationInput struct {
	Scope              scope.RequesterScope
	SpaceID            string
	BlockID            string
	CourseID           string
	Date               string // YYYY-MM-DD
	Description        string
	ExpectedAttendance int
}

// CreateReservationDeps holds dependencies for CreateReservation.
type CreateReservationDeps struct {
	ReservationStore ReservationStoreForOrchestrator
	SpaceStore       SpaceStoreForOrchestrator
	AuditStore       AuditStoreForOrchestrator
	Index            SnapshotInvalidator
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteCreateReservation books a slot as a new pending reservation. The
// client's availability view is advisory only: the slot is re-checked here at
// the store, and a lost race surfaces as booking.ErrSlotConflict, after which
// the caller must refresh availability before retrying.
// PRE: input fields are client-supplied and unvalidated
// POST: Reservation persisted pending, or no side effects on any error
func ExecuteCreateReservation(ctx context.Context, input CreateReservationInput, deps CreateReservationDeps) (booking.Reservation, error) {
	date, err := timeslot.ParseDate(input.Date)
	if err != nil {
		return booking.Reservation{}, fmt.Errorf("%w: %v", booking.ErrInvalidInput, err)
	}

	now := deps.Now()
	r := booking.Reservation{
		ID:                 deps.GenerateID(),
		RequesterID:        input.Scope.AccountID,
		SpaceID:            input.SpaceID,
		BlockID:            input.BlockID,
		CourseID:           input.CourseID,
		Date:               date,
		Description:        input.Description,
		ExpectedAttendance: input.ExpectedAttendance,
		State:              booking.StatePending,
		CreatedAt:          now,
	}
	if err := r.Validate(); err != nil {
		return booking.Reservation{}, err
	}
	if !booking.WithinBookingWindow(date, now) {
		return booking.Reservation{}, booking.ErrInvalidDateRange
	}
	if err := checkBookableSlot(ctx, deps.SpaceStore, input.SpaceID, input.BlockID); err != nil {
		return booking.Reservation{}, err
	}

	if err := deps.ReservationStore.Insert(ctx, r); err != nil {
		return booking.Reservation{}, err
	}
	deps.Index.Invalidate(r.SpaceID)

	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.Scope.AccountID, input.Scope.Role, audit.CategoryReservation, audit.ActionCreate).
		WithResource("reservation", r.ID).
		WithMessage("reservation created", fmt.Sprintf("space=%s block=%s date=%s", r.SpaceID, r.BlockID, input.Date)))

	slog.Info("reservation_event", "event", "reservation_created",
		"reservation_id", r.ID, "space_id", r.SpaceID, "block_id", r.BlockID, "date", input.Date)
	return r, nil
}

// --- Edit Reservation ---

// EditReservationInput carries input for the edit reservation orchestrator.
// The slot fields replace the current ones; non-slot fields are always applied.
type EditReservationInput struct {
	Scope              scope.RequesterScope
	ReservationID      string
	SpaceID            string
	BlockID            string
	CourseID           string
	Date               string // YYYY-MM-DD
	Description        string
	ExpectedAttendance int
}

// EditReservationDeps holds dependencies for EditReservation.
type EditReservationDeps struct {
	ReservationStore ReservationStoreForOrchestrator
	SpaceStore       SpaceStoreForOrchestrator
	AuditStore       AuditStoreForOrchestrator
	Index            SnapshotInvalidator
	Now              func() time.Time
}

// ExecuteEditReservation modifies a pending reservation owned by the
// requester. Re-submitting the reservation's current slot is a no-conflict
// no-op; moving to a new slot runs the same authoritative check as create.
// PRE: input fields are client-supplied and unvalidated
// POST: Reservation updated in place, or no side effects on any error
func ExecuteEditReservation(ctx context.Context, input EditReservationInput, deps EditReservationDeps) (booking.Reservation, error) {
	r, err := deps.ReservationStore.GetByID(ctx, input.ReservationID)
	if err != nil {
		return booking.Reservation{}, err
	}
	if r.RequesterID != input.Scope.AccountID {
		return booking.Reservation{}, scope.ErrForbidden
	}
	if !r.Editable() {
		return booking.Reservation{}, fmt.Errorf("%w: cannot edit a %s reservation", booking.ErrInvalidState, r.State)
	}

	date, err := timeslot.ParseDate(input.Date)
	if err != nil {
		return booking.Reservation{}, fmt.Errorf("%w: %v", booking.ErrInvalidInput, err)
	}

	previousSpace := r.SpaceID
	r.SpaceID = input.SpaceID
	r.BlockID = input.BlockID
	r.CourseID = input.CourseID
	r.Date = date
	r.Description = input.Description
	r.ExpectedAttendance = input.ExpectedAttendance

	if err := r.Validate(); err != nil {
		return booking.Reservation{}, err
	}
	if !booking.WithinBookingWindow(date, deps.Now()) {
		return booking.Reservation{}, booking.ErrInvalidDateRange
	}
	if err := checkBookableSlot(ctx, deps.SpaceStore, r.SpaceID, r.BlockID); err != nil {
		return booking.Reservation{}, err
	}

	if err := deps.ReservationStore.Update(ctx, r); err != nil {
		return booking.Reservation{}, err
	}
	deps.Index.Invalidate(previousSpace)
	if r.SpaceID != previousSpace {
		deps.Index.Invalidate(r.SpaceID)
	}

	recordAudit(ctx, deps.AuditStore, audit.NewEvent(input.Scope.AccountID, input.Scope.Role, audit.CategoryReservation, audit.ActionEdit).
		WithResource("reservation", r.ID).
		WithMessage("reservation edited", fmt.Sprintf("space=%s block=%s date=%s", r.SpaceID, r.BlockID, input.Date)))

	slog.Info("reservation_event", "event", "reservation_edited",
		"reservation_id", r.ID, "space_id", r.SpaceID, "block_id", r.BlockID, "date", input.Date)
	return r, nil
}

// checkBookableSlot verifies the targeted space accepts bookings and the block
// belongs to it. Catalog problems are input errors from the requester's point
// of view.
func checkBookableSlot(ctx context.Context, spaces SpaceStoreForOrchestrator, spaceID, blockID string) error {
	sp, err := spaces.GetByID(ctx, spaceID)
	if err != nil {
		return err
	}
	if !sp.IsBookable() {
		return fmt.Errorf("%w: space %s does not accept bookings", booking.ErrInvalidInput, sp.Code)
	}
	block, err := spaces.GetBlock(ctx, blockID)
	if err != nil {
		return err
	}
	if block.SpaceID != spaceID {
		return fmt.Errorf("%w: block %s does not belong to space %s", booking.ErrInvalidInput, blockID, spaceID)
	}
	return nil
}

// recordAudit persists an audit event, logging instead of failing the
// surrounding command when the sink is down.
func recordAudit(ctx context.Context, store AuditStoreForOrchestrator, event audit.Event) {
	if store == nil {
		return
	}
	if err := store.Save(ctx, event); err != nil {
		slog.Error("audit_event_failed", "error", err, "action", string(event.Action), "resource_id", event.ResourceID)
	}
}
