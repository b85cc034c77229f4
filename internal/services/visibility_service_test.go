package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iqueue/staffing/internal/models"
	appErr "github.com/iqueue/staffing/pkg/errors"
)

func TestVisibility_StaffRoster(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "Aaron Assistant", models.RoleMedicalAssistant, "North")

	r, err := e.vis.StaffRoster(context.Background(), e.rn.ID)
	require.NoError(t, err)

	names := make([]string, 0, len(r.Staff))
	for _, u := range r.Staff {
		assert.NotEqual(t, models.RoleAdmin, u.Role)
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"Aaron Assistant", "Riley Nurse", "Robin Nurse", "Sam Scrub"}, names)
	assert.Equal(t, []models.Role{models.RoleMedicalAssistant, models.RoleRN, models.RoleScrubTech}, r.Roles)
	assert.Equal(t, []string{"Main", "North"}, r.Locations)
}

func TestVisibility_OpenShiftOrdering(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	third := e.post(t, models.RoleRN, 3)
	d := details(models.RoleRN, 2)
	d.StartTime = "19:00"
	second, err := e.shifts.Post(ctx, e.admin.ID, d)
	require.NoError(t, err)
	first := e.post(t, models.RoleRN, 2)

	open, err := e.vis.OpenShifts(ctx, e.rn.ID)
	require.NoError(t, err)
	require.Len(t, open, 3)
	assert.Equal(t, first.ID, open[0].ID)
	assert.Equal(t, second.ID, open[1].ID)
	assert.Equal(t, third.ID, open[2].ID)

	// requested shifts leave the open list
	_, err = e.shifts.Request(ctx, e.rn.ID, first.ID)
	require.NoError(t, err)
	open, err = e.vis.OpenShifts(ctx, e.rn2.ID)
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestVisibility_PendingOnlyForPoster(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.post(t, models.RoleRN, 2)
	_, err := e.shifts.Request(ctx, e.rn.ID, s.ID)
	require.NoError(t, err)

	pending, err := e.vis.PendingApprovals(ctx, e.rn2.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	pending, err = e.vis.PendingApprovals(ctx, e.admin.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestVisibility_UserHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.post(t, models.RoleRN, 3)
	b := e.post(t, models.RoleRN, 2)
	_, err := e.shifts.Request(ctx, e.rn.ID, a.ID)
	require.NoError(t, err)
	_, err = e.shifts.Request(ctx, e.rn.ID, b.ID)
	require.NoError(t, err)
	_, err = e.shifts.Approve(ctx, e.admin.ID, b.ID)
	require.NoError(t, err)

	history, err := e.vis.UserHistory(ctx, e.admin.ID, e.rn.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, b.ID, history[0].ID)
	assert.Equal(t, models.StatusApproved, history[0].Status)
	assert.Equal(t, a.ID, history[1].ID)

	_, err = e.vis.UserHistory(ctx, e.rn2.ID, e.rn.ID)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))
}

func TestVisibility_TodayFollowsFacilityZone(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.post(t, models.RoleRN, 1)

	// 03:00 UTC on Jan 2 is still the evening of Jan 1 six hours west
	late := func() time.Time { return time.Date(2030, 1, 2, 3, 0, 0, 0, time.UTC) }
	central := time.FixedZone("UTC-6", -6*60*60)

	utc := NewVisibilityService(e.store, WithClock(late))
	open, err := utc.OpenShifts(ctx, e.rn.ID)
	require.NoError(t, err)
	assert.Empty(t, open)

	local := NewVisibilityService(e.store, WithClock(late), WithLocation(central))
	open, err = local.OpenShifts(ctx, e.rn.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, s.ID, open[0].ID)

	_, err = NewShiftService(e.store, WithClock(late)).Request(ctx, e.rn.ID, s.ID)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalidTransition))
	got, err := NewShiftService(e.store, WithClock(late), WithLocation(central)).Request(ctx, e.rn.ID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRequested, got.Status)
}
