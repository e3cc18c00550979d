package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusbooking/internal/application/scheduleindex"
	domainSchedule "campusbooking/internal/domain/schedule"
	domainSpace "campusbooking/internal/domain/space"
	"campusbooking/internal/domain/timeslot"
)

// testNow is Monday 2026-03-02 09:15.
var testNow = time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)

type mockSpaceStore struct {
	spaces map[string]domainSpace.Space
	blocks []domainSpace.ScheduleBlock
}

func (m *mockSpaceStore) GetByID(_ context.Context, id string) (domainSpace.Space, error) {
	s, ok := m.spaces[id]
	if !ok {
		return domainSpace.Space{}, domainSpace.ErrNotFound
	}
	return s, nil
}

func (m *mockSpaceStore) List(_ context.Context, schoolID string) ([]domainSpace.Space, error) {
	var out []domainSpace.Space
	for _, s := range m.spaces {
		if schoolID == "" || s.SchoolID == schoolID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSpaceStore) ListBlocks(_ context.Context, _ string) ([]domainSpace.ScheduleBlock, error) {
	return m.blocks, nil
}

type mockIndex struct {
	occupancy domainSchedule.Occupancy
	err       error
}

func (m *mockIndex) OccupancyFor(_ context.Context, _ string) (domainSchedule.Occupancy, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.occupancy, nil
}

func availabilityDeps(blocks []domainSpace.ScheduleBlock, occupancy domainSchedule.Occupancy) GetAvailabilityDeps {
	return GetAvailabilityDeps{
		SpaceStore: &mockSpaceStore{
			spaces: map[string]domainSpace.Space{
				"lab-1": {ID: "lab-1", Code: "LAB-101", Name: "Lab 101", SchoolID: "school-1", Capacity: 30, Status: domainSpace.StatusActive},
			},
			blocks: blocks,
		},
		Index: &mockIndex{occupancy: occupancy},
		Now:   func() time.Time { return testNow },
	}
}

func fixtureBlocks() []domainSpace.ScheduleBlock {
	return []domainSpace.ScheduleBlock{
		{ID: "b1", SpaceID: "lab-1", Label: "Bloque 1", StartTime: "08:00", EndTime: "08:50"},
		{ID: "b2", SpaceID: "lab-1", Label: "Bloque 2", StartTime: "09:20", EndTime: "10:10"},
		{ID: "b3", SpaceID: "lab-1", Label: "Bloque 5", StartTime: "13:00", EndTime: "13:50"},
	}
}

func TestQueryGetAvailabilityClassifiesBlocks(t *testing.T) {
	occupancy := make(domainSchedule.Occupancy)
	occupancy.Mark("b3", timeslot.Monday)

	result, err := QueryGetAvailability(context.Background(),
		GetAvailabilityQuery{SpaceID: "lab-1", Date: "2026-03-02"},
		availabilityDeps(fixtureBlocks(), occupancy))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(result.Slots))
	}

	cases := []struct {
		blockID    string
		available  bool
		reason     string
		period     string
	}{
		{"b1", false, ReasonPast, domainSpace.PeriodMorning}, // started 08:00, now 09:15
		{"b2", true, "", domainSpace.PeriodMorning},          // starts 09:20, still ahead
		{"b3", false, ReasonOccupiedWeekly, domainSpace.PeriodAfternoon},
	}
	for i, tc := range cases {
		slot := result.Slots[i]
		if slot.BlockID != tc.blockID {
			t.Fatalf("slot %d: expected block %s, got %s", i, tc.blockID, slot.BlockID)
		}
		if slot.Available != tc.available || slot.Reason != tc.reason || slot.Period != tc.period {
			t.Errorf("block %s: got (available=%v reason=%q period=%q), want (%v %q %q)",
				tc.blockID, slot.Available, slot.Reason, slot.Period, tc.available, tc.reason, tc.period)
		}
	}
}

func TestQueryGetAvailabilityFutureDateIsNeverPast(t *testing.T) {
	result, err := QueryGetAvailability(context.Background(),
		GetAvailabilityQuery{SpaceID: "lab-1", Date: "2026-03-03"},
		availabilityDeps(fixtureBlocks(), make(domainSchedule.Occupancy)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, slot := range result.Slots {
		if !slot.Available {
			t.Errorf("block %s: expected available on future date, got reason %q", slot.BlockID, slot.Reason)
		}
	}
}

func TestQueryGetAvailabilityPeriodFilter(t *testing.T) {
	result, err := QueryGetAvailability(context.Background(),
		GetAvailabilityQuery{SpaceID: "lab-1", Date: "2026-03-03", Period: domainSpace.PeriodAfternoon},
		availabilityDeps(fixtureBlocks(), make(domainSchedule.Occupancy)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Slots) != 1 || result.Slots[0].BlockID != "b3" {
		t.Fatalf("expected only b3 in afternoon, got %+v", result.Slots)
	}
	if result.SuggestOtherPeriod {
		t.Error("afternoon has an available slot, no suggestion expected")
	}
}

func TestQueryGetAvailabilitySuggestsOtherPeriod(t *testing.T) {
	// Every morning block is claimed this Monday; the afternoon block is free.
	occupancy := make(domainSchedule.Occupancy)
	occupancy.Mark("b1", timeslot.Monday)
	occupancy.Mark("b2", timeslot.Monday)

	result, err := QueryGetAvailability(context.Background(),
		GetAvailabilityQuery{SpaceID: "lab-1", Date: "2026-03-02", Period: domainSpace.PeriodMorning},
		availabilityDeps(fixtureBlocks(), occupancy))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.SuggestOtherPeriod {
		t.Error("expected SuggestOtherPeriod when morning is full and afternoon is free")
	}
	for _, slot := range result.Slots {
		if slot.Available {
			t.Errorf("block %s: expected unavailable in selected period", slot.BlockID)
		}
	}
}

func TestQueryGetAvailabilityNoSuggestionWhenBothFull(t *testing.T) {
	occupancy := make(domainSchedule.Occupancy)
	occupancy.Mark("b1", timeslot.Tuesday)
	occupancy.Mark("b2", timeslot.Tuesday)
	occupancy.Mark("b3", timeslot.Tuesday)

	result, err := QueryGetAvailability(context.Background(),
		GetAvailabilityQuery{SpaceID: "lab-1", Date: "2026-03-03", Period: domainSpace.PeriodMorning},
		availabilityDeps(fixtureBlocks(), occupancy))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SuggestOtherPeriod {
		t.Error("no period has availability, suggestion must stay off")
	}
}

func TestQueryGetAvailabilityMalformedBlockTimes(t *testing.T) {
	blocks := append(fixtureBlocks(),
		domainSpace.ScheduleBlock{ID: "b9", SpaceID: "lab-1", Label: "Bloque roto", StartTime: "zz:zz", EndTime: "10:00"})

	result, err := QueryGetAvailability(context.Background(),
		GetAvailabilityQuery{SpaceID: "lab-1", Date: "2026-03-02"},
		availabilityDeps(blocks, make(domainSchedule.Occupancy)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var broken *Slot
	for i := range result.Slots {
		if result.Slots[i].BlockID == "b9" {
			broken = &result.Slots[i]
		}
	}
	if broken == nil {
		t.Fatal("malformed block missing from result")
	}
	if !broken.Available || broken.Reason != "" || broken.Period != "" {
		t.Errorf("malformed block: got (available=%v reason=%q period=%q), want display-only available",
			broken.Available, broken.Reason, broken.Period)
	}

	// Unclassifiable blocks remain visible under a period filter.
	filtered, err := QueryGetAvailability(context.Background(),
		GetAvailabilityQuery{SpaceID: "lab-1", Date: "2026-03-02", Period: domainSpace.PeriodAfternoon},
		availabilityDeps(blocks, make(domainSchedule.Occupancy)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, slot := range filtered.Slots {
		if slot.BlockID == "b9" {
			found = true
		}
	}
	if !found {
		t.Error("malformed block should survive period filtering")
	}
}

func TestQueryGetAvailabilityErrors(t *testing.T) {
	deps := availabilityDeps(fixtureBlocks(), make(domainSchedule.Occupancy))

	t.Run("unknown space", func(t *testing.T) {
		_, err := QueryGetAvailability(context.Background(),
			GetAvailabilityQuery{SpaceID: "ghost", Date: "2026-03-02"}, deps)
		if !errors.Is(err, domainSpace.ErrNotFound) {
			t.Errorf("expected space.ErrNotFound, got %v", err)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := QueryGetAvailability(context.Background(),
			GetAvailabilityQuery{SpaceID: "lab-1", Date: "02/03/2026"}, deps)
		if err == nil {
			t.Error("expected error for malformed date")
		}
	})

	t.Run("bad period", func(t *testing.T) {
		_, err := QueryGetAvailability(context.Background(),
			GetAvailabilityQuery{SpaceID: "lab-1", Date: "2026-03-02", Period: "night"}, deps)
		if err == nil {
			t.Error("expected error for unknown period")
		}
	})

	t.Run("index unavailable fails closed", func(t *testing.T) {
		failing := deps
		failing.Index = &mockIndex{err: scheduleindex.ErrUpstreamUnavailable}
		result, err := QueryGetAvailability(context.Background(),
			GetAvailabilityQuery{SpaceID: "lab-1", Date: "2026-03-02"}, failing)
		if !errors.Is(err, scheduleindex.ErrUpstreamUnavailable) {
			t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
		}
		if len(result.Slots) != 0 {
			t.Error("no slots may be reported when occupancy is unknown")
		}
	})
}
