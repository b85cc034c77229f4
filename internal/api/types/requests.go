package types

import (
	"time"

	"github.com/iqueue/staffing/internal/models"
	appErr "github.com/iqueue/staffing/pkg/errors"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ShiftRequest is the body for posting, assigning and editing a shift.
// Date is YYYY-MM-DD.
type ShiftRequest struct {
	Location  string      `json:"location"`
	Role      models.Role `json:"role"`
	Area      string      `json:"area"`
	Date      string      `json:"date"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
	Comments  string      `json:"comments"`
}

// Details converts the request to shift details. A malformed date is an
// invalid error.
func (r ShiftRequest) Details() (models.ShiftDetails, error) {
	day, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return models.ShiftDetails{}, appErr.Newf(appErr.CodeInvalid, "date %q is not YYYY-MM-DD", r.Date)
	}
	return models.ShiftDetails{
		Location:  r.Location,
		Role:      r.Role,
		Area:      r.Area,
		Date:      day,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Comments:  r.Comments,
	}, nil
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *models.User `json:"user"`
}
