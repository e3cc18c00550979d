package projections

import (
	"context"
	"fmt"
	"time"

	domainBooking "campusbooking/internal/domain/booking"
	domainSchedule "campusbooking/internal/domain/schedule"
	domainSpace "campusbooking/internal/domain/space"
	"campusbooking/internal/domain/timeslot"
)

// Slot availability reasons. An available slot carries an empty reason.
const (
	ReasonOccupiedWeekly = "OCCUPIED_WEEKLY"
	ReasonPast           = "PAST"
)

// GetAvailabilityQuery carries query parameters. Period is optional; when set
// it must be morning or afternoon and the result is restricted to that period.
type GetAvailabilityQuery struct {
	SpaceID string
	Date    string // YYYY-MM-DD
	Period  string
}

// Slot is one schedule block of the requested space/date with its computed
// availability. This computation is advisory: the authoritative conflict check
// happens again at the write path when a reservation is submitted.
type Slot struct {
	BlockID   string
	Label     string
	StartTime string
	EndTime   string
	Period    string
	Available bool
	Reason    string
}

// GetAvailabilityResult carries the query result. SuggestOtherPeriod is set
// when the selected period has no available slot but the other period has at
// least one; the caller decides whether to offer the switch.
type GetAvailabilityResult struct {
	Slots              []Slot
	SuggestOtherPeriod bool
}

// GetAvailabilityDeps holds dependencies for GetAvailability.
type GetAvailabilityDeps struct {
	SpaceStore SpaceStore
	Index      OccupancyIndex
	Now        NowFunc
}

// QueryGetAvailability computes which blocks of a space are selectable on a
// date. A block is occupied when the weekly occupancy index claims its
// (block, weekday) pair, past when the date is today and the block already
// started, available otherwise.
// PRE: query.SpaceID is non-empty, query.Date parses as YYYY-MM-DD
// POST: Returns slots ordered by block ID; an index failure aborts the whole
// query rather than reporting unknown slots as free
func QueryGetAvailability(ctx context.Context, query GetAvailabilityQuery, deps GetAvailabilityDeps) (GetAvailabilityResult, error) {
	date, err := timeslot.ParseDate(query.Date)
	if err != nil {
		return GetAvailabilityResult{}, fmt.Errorf("%w: %v", domainBooking.ErrInvalidInput, err)
	}
	if query.Period != "" && !domainSpace.IsValidPeriod(query.Period) {
		return GetAvailabilityResult{}, fmt.Errorf("%w: %v", domainBooking.ErrInvalidInput, domainSpace.ErrInvalidPeriod)
	}

	if _, err := deps.SpaceStore.GetByID(ctx, query.SpaceID); err != nil {
		return GetAvailabilityResult{}, err
	}

	occupancy, err := deps.Index.OccupancyFor(ctx, query.SpaceID)
	if err != nil {
		return GetAvailabilityResult{}, err
	}

	blocks, err := deps.SpaceStore.ListBlocks(ctx, query.SpaceID)
	if err != nil {
		return GetAvailabilityResult{}, err
	}

	now := deps.Now()
	slots := classifyBlocks(blocks, occupancy, date, now)

	availableByPeriod := map[string]int{}
	for _, s := range slots {
		if s.Available && s.Period != "" {
			availableByPeriod[s.Period]++
		}
	}

	result := GetAvailabilityResult{}
	if query.Period == "" {
		result.Slots = slots
		return result, nil
	}

	for _, s := range slots {
		// Slots with unclassifiable times stay visible under any period filter.
		if s.Period == query.Period || s.Period == "" {
			result.Slots = append(result.Slots, s)
		}
	}
	other := domainSpace.PeriodAfternoon
	if query.Period == domainSpace.PeriodAfternoon {
		other = domainSpace.PeriodMorning
	}
	result.SuggestOtherPeriod = availableByPeriod[query.Period] == 0 && availableByPeriod[other] > 0
	return result, nil
}

// classifyBlocks computes one Slot per block. Blocks whose times fail to parse
// are rendered always available and never past; this is display-only leniency,
// the write path revalidates the slot regardless.
func classifyBlocks(blocks []domainSpace.ScheduleBlock, occupancy domainSchedule.Occupancy, date, now time.Time) []Slot {
	weekday := timeslot.WeekdayIndex(date)
	isToday := timeslot.SameDate(date, now)
	nowMinute := timeslot.MinuteOfDay(now)

	slots := make([]Slot, 0, len(blocks))
	for _, b := range blocks {
		slot := Slot{
			BlockID:   b.ID,
			Label:     b.Label,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
		}

		start, parseErr := timeslot.ParseClock(b.StartTime)
		if parseErr != nil {
			slot.Available = true
			slots = append(slots, slot)
			continue
		}
		if start < domainSpace.NoonMinute {
			slot.Period = domainSpace.PeriodMorning
		} else {
			slot.Period = domainSpace.PeriodAfternoon
		}

		switch {
		case occupancy.Claimed(b.ID, weekday):
			slot.Reason = ReasonOccupiedWeekly
		case isToday && start <= nowMinute:
			slot.Reason = ReasonPast
		default:
			slot.Available = true
		}
		slots = append(slots, slot)
	}
	return slots
}
