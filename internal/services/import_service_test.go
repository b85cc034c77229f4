package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iqueue/staffing/internal/models"
	appErr "github.com/iqueue/staffing/pkg/errors"
)

func TestImportService_UsersPerRowErrors(t *testing.T) {
	e := newEnv(t)
	imp := NewImportService(e.store, e.shifts, "password")
	ctx := context.Background()

	rows := []UserRow{
		{Name: "Ok One", Role: models.RoleRN, Location: "Main", Email: "one@example.com", Phone: "1", Availability: "Yes", CanFloat: "No"},
		{Name: "Bad Role", Role: "Janitor", Location: "Main", Email: "two@example.com", Phone: "2", Availability: "Yes", CanFloat: "No"},
		{Name: "Dup", Role: models.RoleRN, Location: "Main", Email: "one@example.com", Phone: "3", Availability: "Yes", CanFloat: "No"},
		{Name: "Ok Two", Role: models.RoleCRNA, Location: "North", Email: "three@example.com", Phone: "4", Availability: "No", CanFloat: "N/A"},
	}

	_, err := imp.ImportUsers(ctx, e.rn.ID, rows)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	report, err := imp.ImportUsers(ctx, e.admin.ID, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Rows, 4)
	assert.NotEmpty(t, report.Rows[0].ID)
	assert.Contains(t, report.Rows[1].Error, "role failed role")
	assert.Equal(t, 3, report.Rows[2].Row)
	assert.NotEmpty(t, report.Rows[2].Error)
	assert.NotEmpty(t, report.Rows[3].ID)
}

func TestImportService_Shifts(t *testing.T) {
	e := newEnv(t)
	imp := NewImportService(e.store, e.shifts, "password")
	ctx := context.Background()

	rows := []ShiftRow{
		{Location: "Main", Role: models.RoleRN, Area: "ICU", Date: "2030-01-02", StartTime: "07:00", EndTime: "19:00"},
		{Location: "Main", Role: models.RoleRN, Area: "ICU", Date: "01/02/2030", StartTime: "07:00", EndTime: "19:00"},
		{Location: "Main", Role: models.RoleRN, Area: "ICU", Date: "2030-01-03", StartTime: "07:00", EndTime: "19:00", AssignTo: e.rn.Email},
		{Location: "Main", Role: models.RoleRN, Area: "ICU", Date: "2030-01-03", StartTime: "07:00", EndTime: "19:00", AssignTo: "ghost@example.com"},
	}
	report, err := imp.ImportShifts(ctx, e.admin.ID, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 2, report.Failed)
	assert.Contains(t, report.Rows[1].Error, "YYYY-MM-DD")
	assert.Equal(t, "assign_to user not found", report.Rows[3].Error)
	assert.Equal(t, 1, e.worked(t, e.rn.ID))
}

const seedYAML = `
posted_by: chief@example.com
users:
  - name: Chief
    role: Admin
    location: Main
    email: chief@example.com
    phone: "555-0000"
    availability: "Yes"
    can_float: N/A
  - name: Nora
    role: RN
    location: Main
    email: nora@example.com
    phone: "555-0001"
    availability: "Yes"
    can_float: "No"
shifts:
  - location: Main
    role: RN
    area: ICU
    date: 2030-01-05
    start_time: "07:00"
    end_time: "19:00"
  - location: Main
    role: RN
    area: PACU
    date: 2030-01-06
    start_time: "07:00"
    end_time: "15:30"
    assign_to: nora@example.com
`

func TestImportService_SeedFixture(t *testing.T) {
	e := newEnv(t)
	imp := NewImportService(e.store, e.shifts, "password")

	f, err := ParseFixture(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, f.Users, 2)
	assert.Equal(t, "2030-01-05", f.Shifts[0].Date)

	report, err := imp.Seed(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Users.Created)
	assert.Equal(t, 2, report.Shifts.Created)
	assert.Zero(t, report.Shifts.Failed)
}

func TestParseFixture_RejectsUnknownFields(t *testing.T) {
	_, err := ParseFixture(strings.NewReader("users:\n  - nme: typo\n"))
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}
