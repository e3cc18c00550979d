package schedule

import (
	"errors"
	"strings"

	"campusbooking/internal/domain/timeslot"
)

// Domain errors
var (
	ErrEmptySpaceID   = errors.New("space ID cannot be empty")
	ErrEmptyBlockID   = errors.New("block ID cannot be empty")
	ErrInvalidWeekday = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")
)

// WeeklyClaim marks a (space, block, weekday) as taken by a recurring
// curricular commitment. Claims repeat every week until removed by catalog
// administration; the booking core only reads them.
type WeeklyClaim struct {
	ID          string
	SpaceID     string
	BlockID     string
	Weekday     int // 0 = Sunday … 6 = Saturday
	CourseLabel string
}

// Validate checks if the WeeklyClaim has valid data.
// PRE: WeeklyClaim struct is populated
// POST: Returns nil if valid, error otherwise
func (c *WeeklyClaim) Validate() error {
	if strings.TrimSpace(c.SpaceID) == "" {
		return ErrEmptySpaceID
	}
	if strings.TrimSpace(c.BlockID) == "" {
		return ErrEmptyBlockID
	}
	if c.Weekday < timeslot.Sunday || c.Weekday > timeslot.Saturday {
		return ErrInvalidWeekday
	}
	return nil
}

// Occupancy is a per-space snapshot of which (block, weekday) pairs are
// claimed: blockID -> weekday -> claimed. A snapshot is all-or-nothing; a
// partially merged map could under-report occupancy and must never be returned.
type Occupancy map[string]map[int]bool

// Claimed reports whether the given block is taken on the given weekday.
func (o Occupancy) Claimed(blockID string, weekday int) bool {
	days, ok := o[blockID]
	if !ok {
		return false
	}
	return days[weekday]
}

// Mark records a claim for the given block and weekday.
func (o Occupancy) Mark(blockID string, weekday int) {
	days, ok := o[blockID]
	if !ok {
		days = make(map[int]bool)
		o[blockID] = days
	}
	days[weekday] = true
}
