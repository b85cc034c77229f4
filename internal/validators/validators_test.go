package validators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iqueue/staffing/internal/models"
)

func validDetails() models.ShiftDetails {
	return models.ShiftDetails{
		Location:  "Mercy",
		Role:      models.RoleRN,
		Area:      "ICU",
		Date:      time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "07:00",
		EndTime:   "19:00",
	}
}

func TestShiftDetails(t *testing.T) {
	require.NoError(t, Struct(validDetails()))

	d := validDetails()
	d.Role = models.RoleAdmin
	err := Struct(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role failed shiftrole")

	d = validDetails()
	d.StartTime = "8am"
	err = Struct(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starttime failed datetime=15:04")
}

func TestProfileRoleTag(t *testing.T) {
	p := models.Profile{
		Name: "Sam", Role: "Nurse", Location: "Mercy", Email: "sam@example.com",
		Phone: "555-0100", Availability: models.AvailabilityYes, CanFloat: models.FloatNotApplicable,
	}
	err := Struct(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role failed role")

	p.Role = models.RoleAdmin
	assert.NoError(t, Struct(p))
}
