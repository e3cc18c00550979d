package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campusbooking/internal/adapters/storage/school"
	"campusbooking/internal/domain/account"
	"campusbooking/internal/domain/schedule"
	"campusbooking/internal/domain/scope"
	"campusbooking/internal/domain/space"
	"campusbooking/internal/domain/timeslot"

	"github.com/google/uuid"
)

// SchoolStoreForSeed defines the store interface needed by SeedCatalog.
type SchoolStoreForSeed interface {
	Save(ctx context.Context, s school.School) error
	List(ctx context.Context) ([]school.School, error)
}

// SpaceStoreForSeed defines the store interface needed by SeedCatalog.
type SpaceStoreForSeed interface {
	Save(ctx context.Context, s space.Space) error
	SaveBlock(ctx context.Context, b space.ScheduleBlock) error
}

// ClaimStoreForSeed defines the store interface needed by SeedCatalog.
type ClaimStoreForSeed interface {
	Save(ctx context.Context, c schedule.WeeklyClaim) error
}

// AccountStoreForSeed defines the store interface needed by SeedCatalog.
type AccountStoreForSeed interface {
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// SeedCatalogDeps holds dependencies for SeedCatalog.
type SeedCatalogDeps struct {
	SchoolStore   SchoolStoreForSeed
	SpaceStore    SpaceStoreForSeed
	ClaimStore    ClaimStoreForSeed
	AccountStore  AccountStoreForSeed
	AdminEmail    string
	AdminPassword string
	Now           func() time.Time
}

// defaultBlocks is the fixed daily grid every seeded space starts with.
// Blocks 1-4 are morning, 5-8 afternoon.
var defaultBlocks = []struct {
	label string
	start string
	end   string
}{
	{"Bloque 1", "08:00", "08:50"},
	{"Bloque 2", "09:00", "09:50"},
	{"Bloque 3", "10:00", "10:50"},
	{"Bloque 4", "11:00", "11:50"},
	{"Bloque 5", "13:00", "13:50"},
	{"Bloque 6", "14:00", "14:50"},
	{"Bloque 7", "15:00", "15:50"},
	{"Bloque 8", "16:00", "16:50"},
}

// ExecuteSeedCatalog creates default schools, spaces, schedule blocks, a few
// recurring weekly claims and the bootstrap administrative account if the
// database is empty.
func ExecuteSeedCatalog(ctx context.Context, deps SeedCatalogDeps) error {
	existing, err := deps.SchoolStore.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil // Already seeded
	}

	engineeringID := uuid.New().String()
	sciencesID := uuid.New().String()
	schools := []school.School{
		{ID: engineeringID, Name: "Escuela de Ingeniería"},
		{ID: sciencesID, Name: "Escuela de Ciencias"},
	}
	for _, s := range schools {
		if err := deps.SchoolStore.Save(ctx, s); err != nil {
			return err
		}
	}

	spaces := []space.Space{
		{ID: uuid.New().String(), Code: "LAB-101", Name: "Laboratorio de Computación 101", Type: space.TypeLab, Capacity: 30, SchoolID: engineeringID, Status: space.StatusActive},
		{ID: uuid.New().String(), Code: "LAB-202", Name: "Laboratorio de Redes 202", Type: space.TypeLab, Capacity: 24, SchoolID: engineeringID, Status: space.StatusActive},
		{ID: uuid.New().String(), Code: "A-301", Name: "Aula 301", Type: space.TypeClassroom, Capacity: 50, SchoolID: sciencesID, Status: space.StatusActive},
		{ID: uuid.New().String(), Code: "AUD-1", Name: "Auditorio Principal", Type: space.TypeAuditorium, Capacity: 200, SchoolID: sciencesID, Status: space.StatusMaintenance},
	}

	claimedWeekdays := []int{timeslot.Monday, timeslot.Wednesday}
	blockCount, claimCount := 0, 0
	for _, sp := range spaces {
		if err := deps.SpaceStore.Save(ctx, sp); err != nil {
			return err
		}
		for i, b := range defaultBlocks {
			block := space.ScheduleBlock{
				ID:        fmt.Sprintf("%s-b%d", sp.Code, i+1),
				SpaceID:   sp.ID,
				Label:     b.label,
				StartTime: b.start,
				EndTime:   b.end,
			}
			if err := deps.SpaceStore.SaveBlock(ctx, block); err != nil {
				return err
			}
			blockCount++

			// First morning block of the labs carries a recurring course.
			if sp.Type == space.TypeLab && i == 0 {
				for _, weekday := range claimedWeekdays {
					claim := schedule.WeeklyClaim{
						ID:          uuid.New().String(),
						SpaceID:     sp.ID,
						BlockID:     block.ID,
						Weekday:     weekday,
						CourseLabel: "Programación I",
					}
					if err := deps.ClaimStore.Save(ctx, claim); err != nil {
						return err
					}
					claimCount++
				}
			}
		}
	}

	accounts, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if accounts == 0 && deps.AdminEmail != "" {
		admin := account.Account{
			ID:        uuid.New().String(),
			Email:     deps.AdminEmail,
			Name:      "Administración",
			Role:      scope.RoleAdministrative,
			CreatedAt: deps.Now(),
		}
		if err := admin.SetPassword(deps.AdminPassword); err != nil {
			return err
		}
		if err := deps.AccountStore.Save(ctx, admin); err != nil {
			return err
		}
		slog.Info("seed_event", "event", "admin_account_seeded", "email", deps.AdminEmail)
	}

	slog.Info("seed_event", "event", "catalog_seeded",
		"schools", len(schools), "spaces", len(spaces), "blocks", blockCount, "weekly_claims", claimCount)
	return nil
}
