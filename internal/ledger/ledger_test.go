package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/repository/memory"
	appErr "github.com/iqueue/staffing/pkg/errors"
	"github.com/iqueue/staffing/pkg/logger"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Use(zap.New(core))
	return logs
}

func TestApply(t *testing.T) {
	cases := []struct {
		current, delta, want int
		underflow            bool
	}{
		{0, 1, 1, false},
		{3, -1, 2, false},
		{1, -1, 0, false},
		{0, -1, 0, true},
	}
	for _, c := range cases {
		got, under := Apply(c.current, c.delta)
		assert.Equal(t, c.want, got)
		assert.Equal(t, c.underflow, under)
	}
}

func TestAdjust_ClampsAndLogs(t *testing.T) {
	logs := observe(t)
	store := memory.New()
	ctx := context.Background()
	u := models.User{Name: "Ann", Role: models.RoleRN, Email: "ann@example.com"}
	require.NoError(t, store.Users().Create(ctx, &u))

	n, err := Adjust(ctx, store.Users(), u.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, logs.FilterMessage("shifts worked counter underflow clamped").Len())

	n, err = Adjust(ctx, store.Users(), u.ID, +1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAdjust_RejectsOtherDeltas(t *testing.T) {
	observe(t)
	store := memory.New()
	_, err := Adjust(context.Background(), store.Users(), models.User{}.ID, 2)
	assert.True(t, appErr.IsCode(err, appErr.CodeInternal))
}

func TestReconcile(t *testing.T) {
	observe(t)
	store := memory.New()
	ctx := context.Background()
	admin := models.User{Name: "Boss", Role: models.RoleAdmin, Email: "boss@example.com"}
	nurse := models.User{Name: "Ann", Role: models.RoleRN, Email: "ann@example.com"}
	require.NoError(t, store.Users().Create(ctx, &admin))
	require.NoError(t, store.Users().Create(ctx, &nurse))
	require.NoError(t, store.Users().SetShiftsWorked(ctx, admin.ID, 2))

	sh := models.Shift{
		Role: models.RoleRN, Date: models.DateOf(time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)),
		StartTime: "07:00", PostedByID: admin.ID, PostedByName: admin.Name, Status: models.StatusPosted,
	}
	require.NoError(t, store.Shifts().Create(ctx, &sh))
	next := sh
	next.Status = models.StatusApproved
	next.PickerID = &nurse.ID
	require.NoError(t, store.Shifts().CompareAndSwap(ctx, sh, &next))

	fixes, err := Reconcile(ctx, store)
	require.NoError(t, err)
	assert.Len(t, fixes, 2)

	var got models.User
	require.NoError(t, store.Users().GetByID(ctx, nurse.ID, &got))
	assert.Equal(t, 1, got.ShiftsWorked)
	require.NoError(t, store.Users().GetByID(ctx, admin.ID, &got))
	assert.Equal(t, 0, got.ShiftsWorked)

	fixes, err = Reconcile(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, fixes)
}
