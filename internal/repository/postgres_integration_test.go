package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/repository"
	appErr "github.com/iqueue/staffing/pkg/errors"
	"github.com/iqueue/staffing/pkg/database"
	"github.com/iqueue/staffing/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

// newPostgresStore starts a disposable PostgreSQL container and returns a
// migrated Store. Tests skip when Docker is unavailable.
func newPostgresStore(t *testing.T) repository.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("iqueue"),
		tcpostgres.WithUsername("iqueue"),
		tcpostgres.WithPassword("iqueue"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.OpenPostgres(ctx, dsn, database.DefaultOptions("test"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	require.NoError(t, repository.Migrate(db))
	// idempotent
	require.NoError(t, repository.Migrate(db))
	return repository.NewStore(db)
}

func mkUser(t *testing.T, s repository.Store, name, email string, role models.Role) models.User {
	t.Helper()
	u := models.User{
		Name: name, Role: role, Location: "Main", Email: email, Phone: "555-0100",
		Availability: models.AvailabilityYes, CanFloat: models.FloatNo, PasswordHash: "x",
	}
	require.NoError(t, s.Users().Create(context.Background(), &u))
	return u
}

func mkShift(t *testing.T, s repository.Store, poster models.User, day time.Time) models.Shift {
	t.Helper()
	sh := models.Shift{
		Location: "Main", Role: models.RoleRN, Area: "ICU", Date: models.DateOf(day),
		StartTime: "07:00", EndTime: "19:00", PostedByID: poster.ID, PostedByName: poster.Name,
		Status: models.StatusPosted,
	}
	require.NoError(t, s.Shifts().Create(context.Background(), &sh))
	return sh
}

func TestPostgresStore(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()
	day := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)

	admin := mkUser(t, store, "Avery", "avery@example.com", models.RoleAdmin)
	nurse := mkUser(t, store, "Riley", "riley@example.com", models.RoleRN)

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		dup := models.User{
			Name: "Dup", Role: models.RoleRN, Location: "Main", Email: "riley@example.com", Phone: "1",
			Availability: models.AvailabilityYes, CanFloat: models.FloatNo, PasswordHash: "x",
		}
		err := store.Users().Create(ctx, &dup)
		assert.True(t, appErr.IsCode(err, appErr.CodeConflict), "got %v", err)
	})

	t.Run("compare and swap", func(t *testing.T) {
		sh := mkShift(t, store, admin, day)

		next := sh
		next.Status = models.StatusRequested
		next.PickerID = &nurse.ID
		require.NoError(t, store.Shifts().CompareAndSwap(ctx, sh, &next))

		// sh is now stale
		again := sh
		again.Status = models.StatusRequested
		again.PickerID = &admin.ID
		err := store.Shifts().CompareAndSwap(ctx, sh, &again)
		assert.True(t, appErr.IsCode(err, appErr.CodeConcurrentModification), "got %v", err)

		missing := sh
		missing.ID = uuid.New()
		err = store.Shifts().CompareAndSwap(ctx, missing, &again)
		assert.True(t, appErr.IsCode(err, appErr.CodeNotFound), "got %v", err)

		pending, err := store.Shifts().ListPendingForPoster(ctx, admin.ID, day)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "Riley", pending[0].RequesterName)

		linked, err := store.Shifts().CountLinked(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, linked[nurse.ID])
	})

	t.Run("open list filters and orders", func(t *testing.T) {
		later := mkShift(t, store, admin, day.AddDate(0, 0, 2))
		sooner := mkShift(t, store, admin, day.AddDate(0, 0, 1))
		mkShift(t, store, admin, day.AddDate(0, 0, -5))

		role := models.RoleRN
		open, err := store.Shifts().ListOpen(ctx, repository.OpenFilter{Role: &role, From: day.AddDate(0, 0, 1)})
		require.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, sooner.ID, open[0].ID)
		assert.Equal(t, later.ID, open[1].ID)
	})

	t.Run("schema rejects picker and status mismatch", func(t *testing.T) {
		posted := models.Shift{
			Location: "Main", Role: models.RoleRN, Area: "ICU", Date: models.DateOf(day),
			StartTime: "07:00", EndTime: "19:00", PostedByID: admin.ID, PostedByName: admin.Name,
			Status: models.StatusPosted, PickerID: &nurse.ID,
		}
		assert.Error(t, store.Shifts().Create(ctx, &posted))

		approved := posted
		approved.ID = uuid.Nil
		approved.Status = models.StatusApproved
		approved.PickerID = nil
		assert.Error(t, store.Shifts().Create(ctx, &approved))

		err := store.Users().SetShiftsWorked(ctx, nurse.ID, -1)
		assert.Error(t, err)
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		boom := appErr.New(appErr.CodeInvalid, "boom")
		err := store.WithinTx(ctx, func(tx repository.Store) error {
			if err := tx.Users().SetShiftsWorked(ctx, nurse.ID, 9); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var got models.User
		require.NoError(t, store.Users().GetByID(ctx, nurse.ID, &got))
		assert.Equal(t, 0, got.ShiftsWorked)
	})
}
