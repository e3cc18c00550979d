package space

import (
	"errors"
	"strings"

	"campusbooking/internal/domain/timeslot"
)

// Space statuses
const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusMaintenance = "maintenance"
)

// Space types
const (
	TypeLab        = "lab"
	TypeClassroom  = "classroom"
	TypeAuditorium = "auditorium"
)

// Periods partition the schedule blocks of a day. A block belongs to the
// morning when it starts before 13:00, to the afternoon otherwise.
const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
)

// NoonMinute is the morning/afternoon boundary as minute-of-day (13:00).
const NoonMinute = 13 * 60

// ValidStatuses contains all valid space statuses.
var ValidStatuses = []string{StatusActive, StatusInactive, StatusMaintenance}

// ValidPeriods contains all valid period filters.
var ValidPeriods = []string{PeriodMorning, PeriodAfternoon}

// Domain errors
var (
	ErrNotFound        = errors.New("space not found")
	ErrEmptyCode       = errors.New("space code cannot be empty")
	ErrEmptyName       = errors.New("space name cannot be empty")
	ErrEmptySchoolID   = errors.New("space school ID cannot be empty")
	ErrInvalidStatus   = errors.New("space status must be one of: active, inactive, maintenance")
	ErrInvalidPeriod   = errors.New("period must be one of: morning, afternoon")
	ErrBadCapacity     = errors.New("space capacity must be positive")
	ErrEmptyBlockLabel = errors.New("schedule block label cannot be empty")
)

// Space represents a bookable physical location (lab, classroom). Records are
// owned by catalog administration and read-only to the booking core.
type Space struct {
	ID       string
	Code     string
	Name     string
	Type     string
	Capacity int
	SchoolID string
	Status   string
}

// Validate checks if the Space has valid data.
// PRE: Space struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Space) Validate() error {
	if strings.TrimSpace(s.Code) == "" {
		return ErrEmptyCode
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(s.SchoolID) == "" {
		return ErrEmptySchoolID
	}
	if s.Capacity <= 0 {
		return ErrBadCapacity
	}
	if !isValidStatus(s.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsBookable reports whether new reservations may target this space.
func (s *Space) IsBookable() bool {
	return s.Status == StatusActive
}

// ScheduleBlock is a fixed time-of-day interval, static per space, used both
// for recurring curricular schedules and ad hoc reservations.
type ScheduleBlock struct {
	ID        string
	SpaceID   string
	Label     string
	StartTime string // HH:MM
	EndTime   string // HH:MM
}

// Validate checks if the ScheduleBlock has valid data.
// PRE: ScheduleBlock struct is populated
// POST: Returns nil if valid, error otherwise
func (b *ScheduleBlock) Validate() error {
	if strings.TrimSpace(b.Label) == "" {
		return ErrEmptyBlockLabel
	}
	if _, err := timeslot.ParseClock(b.StartTime); err != nil {
		return err
	}
	if _, err := timeslot.ParseClock(b.EndTime); err != nil {
		return err
	}
	return nil
}

// Period classifies the block as morning or afternoon by its start time.
// PRE: StartTime is in HH:MM format
// POST: Returns the period, or an error when StartTime cannot be parsed
func (b *ScheduleBlock) Period() (string, error) {
	start, err := timeslot.ParseClock(b.StartTime)
	if err != nil {
		return "", err
	}
	if start < NoonMinute {
		return PeriodMorning, nil
	}
	return PeriodAfternoon, nil
}

// IsValidPeriod reports whether p is a recognised period filter.
func IsValidPeriod(p string) bool {
	for _, v := range ValidPeriods {
		if v == p {
			return true
		}
	}
	return false
}

func isValidStatus(status string) bool {
	for _, v := range ValidStatuses {
		if v == status {
			return true
		}
	}
	return false
}
