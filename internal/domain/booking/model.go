package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/looplab/fsm"
)

// Reservation states
const (
	StatePending   = "pending"
	StateApproved  = "approved"
	StateRejected  = "rejected"
	StateCancelled = "cancelled"
)

// Lifecycle events
const (
	EventApprove = "approve"
	EventReject  = "reject"
	EventCancel  = "cancel"
)

// MaxReasonLength bounds approval/rejection reasons and descriptions.
const MaxReasonLength = 1000

// ValidStates contains all valid reservation states.
var ValidStates = []string{StatePending, StateApproved, StateRejected, StateCancelled}

// Error taxonomy. Callers match with errors.Is; specific causes wrap these so
// a rejected transition always reports why (wrong state vs. lost race vs. bad
// input), since the requester's corrective action differs by cause.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidDateRange = errors.New("date is outside the booking window")
	ErrInvalidState     = errors.New("operation not allowed in current reservation state")
	ErrSlotConflict     = errors.New("slot already claimed by another reservation")
	ErrNotFound         = errors.New("reservation not found")
)

// Specific input errors, all matching ErrInvalidInput.
var (
	ErrEmptyRequester   = fmt.Errorf("%w: requester ID is required", ErrInvalidInput)
	ErrEmptySpace       = fmt.Errorf("%w: space ID is required", ErrInvalidInput)
	ErrEmptyBlock       = fmt.Errorf("%w: block ID is required", ErrInvalidInput)
	ErrEmptyCourse      = fmt.Errorf("%w: course ID is required", ErrInvalidInput)
	ErrBadAttendance    = fmt.Errorf("%w: expected attendance must be positive", ErrInvalidInput)
	ErrLongDescription  = fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, MaxReasonLength)
	ErrEmptyReason      = fmt.Errorf("%w: a decision reason is required", ErrInvalidInput)
	ErrLongReason       = fmt.Errorf("%w: decision reason exceeds %d characters", ErrInvalidInput, MaxReasonLength)
	ErrInvalidStateName = fmt.Errorf("%w: unknown reservation state", ErrInvalidInput)
)

// Reservation is an ad hoc claim on a (space, block, date) slot. It is created
// pending, decided by an approver, and never deleted by this core.
type Reservation struct {
	ID                 string
	RequesterID        string
	SpaceID            string
	BlockID            string
	CourseID           string
	Date               time.Time // calendar date, midnight
	Description        string
	ExpectedAttendance int
	State              string
	CreatedAt          time.Time
	DecidedAt          time.Time // zero until approved/rejected
	ApproverID         string    // empty until decided
	DecisionReason     string
}

// machine builds the lifecycle state machine seeded with the reservation's
// current state. Pending → approved|rejected, approved → cancelled;
// rejected and cancelled are terminal.
func (r *Reservation) machine() *fsm.FSM {
	return fsm.NewFSM(
		r.State,
		fsm.Events{
			{Name: EventApprove, Src: []string{StatePending}, Dst: StateApproved},
			{Name: EventReject, Src: []string{StatePending}, Dst: StateRejected},
			{Name: EventCancel, Src: []string{StateApproved}, Dst: StateCancelled},
		},
		fsm.Callbacks{},
	)
}

// transition fires a lifecycle event, translating machine refusals into
// ErrInvalidState with the offending state named.
func (r *Reservation) transition(ctx context.Context, event string) error {
	m := r.machine()
	if err := m.Event(ctx, event); err != nil {
		return fmt.Errorf("%w: cannot %s a %s reservation", ErrInvalidState, event, r.State)
	}
	r.State = m.Current()
	return nil
}

// Validate checks if the Reservation has valid data.
// PRE: Reservation struct is populated
// POST: Returns nil if valid, an ErrInvalidInput-matching error otherwise
func (r *Reservation) Validate() error {
	if strings.TrimSpace(r.RequesterID) == "" {
		return ErrEmptyRequester
	}
	if strings.TrimSpace(r.SpaceID) == "" {
		return ErrEmptySpace
	}
	if strings.TrimSpace(r.BlockID) == "" {
		return ErrEmptyBlock
	}
	if strings.TrimSpace(r.CourseID) == "" {
		return ErrEmptyCourse
	}
	if r.ExpectedAttendance <= 0 {
		return ErrBadAttendance
	}
	if len(r.Description) > MaxReasonLength {
		return ErrLongDescription
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: reservation date is required", ErrInvalidInput)
	}
	if !isValidState(r.State) {
		return ErrInvalidStateName
	}
	return nil
}

// IsPending reports whether the reservation awaits a decision.
func (r *Reservation) IsPending() bool { return r.State == StatePending }

// IsApproved reports whether the reservation has been approved.
func (r *Reservation) IsApproved() bool { return r.State == StateApproved }

// IsActive reports whether the reservation claims its slot. Only pending and
// approved reservations block other bookings of the same (space, block, date).
func (r *Reservation) IsActive() bool {
	return r.State == StatePending || r.State == StateApproved
}

// Editable reports whether the requester may still modify the reservation.
func (r *Reservation) Editable() bool { return r.IsPending() }

// Approve moves a pending reservation to approved.
// PRE: reservation is pending; reason is 1–1000 characters
// POST: State is approved, ApproverID/DecisionReason/DecidedAt set
func (r *Reservation) Approve(ctx context.Context, approverID, reason string, now time.Time) error {
	if err := validateReason(reason); err != nil {
		return err
	}
	if err := r.transition(ctx, EventApprove); err != nil {
		return err
	}
	r.ApproverID = approverID
	r.DecisionReason = reason
	r.DecidedAt = now
	return nil
}

// Reject moves a pending reservation to rejected.
// PRE: reservation is pending; reason is 1–1000 characters
// POST: State is rejected, ApproverID/DecisionReason/DecidedAt set
func (r *Reservation) Reject(ctx context.Context, approverID, reason string, now time.Time) error {
	if err := validateReason(reason); err != nil {
		return err
	}
	if err := r.transition(ctx, EventReject); err != nil {
		return err
	}
	r.ApproverID = approverID
	r.DecisionReason = reason
	r.DecidedAt = now
	return nil
}

// Cancel moves an approved reservation to cancelled.
// PRE: reservation is approved
// POST: State is cancelled, DecidedAt updated
func (r *Reservation) Cancel(ctx context.Context, now time.Time) error {
	if err := r.transition(ctx, EventCancel); err != nil {
		return err
	}
	r.DecidedAt = now
	return nil
}

func validateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrEmptyReason
	}
	if len(reason) > MaxReasonLength {
		return ErrLongReason
	}
	return nil
}

func isValidState(state string) bool {
	for _, s := range ValidStates {
		if s == state {
			return true
		}
	}
	return false
}
