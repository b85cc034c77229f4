package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Shift is a unit of work posted to the marketplace.
type Shift struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Location  string         `gorm:"not null" json:"location"`
	Role      Role           `gorm:"type:varchar(32);index;not null" json:"role"`
	Area      string         `gorm:"not null" json:"area"`
	Date      datatypes.Date `gorm:"type:date;index;not null" json:"date"`
	StartTime string         `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime   string         `gorm:"type:varchar(5);not null" json:"end_time"`
	Comments  string         `gorm:"type:text" json:"comments"`

	PostedByID uuid.UUID `gorm:"type:uuid;index;not null" json:"posted_by_id"`
	// PostedByName is captured when the shift is created and never rewritten.
	PostedByName string `gorm:"not null;<-:create" json:"posted_by_name"`

	PickerID *uuid.UUID  `gorm:"type:uuid;index" json:"picker_id,omitempty"`
	Status   ShiftStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Shift) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		id, err := NewID()
		if err != nil {
			return err
		}
		s.ID = id
	}
	return nil
}

// Day returns the shift date as a UTC midnight time.
func (s Shift) Day() time.Time { return time.Time(s.Date) }

// PickedBy reports whether id is the current picker.
func (s Shift) PickedBy(id uuid.UUID) bool { return s.PickerID != nil && *s.PickerID == id }

// ShiftDetails holds the descriptive shift fields set at creation and by metadata edits.
type ShiftDetails struct {
	Location  string    `json:"location" validate:"required"`
	Role      Role      `json:"role" validate:"required,shiftrole"`
	Area      string    `json:"area" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	StartTime string    `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string    `json:"end_time" validate:"required,datetime=15:04"`
	Comments  string    `json:"comments" validate:"max=1000"`
}

// Apply copies the details onto s, leaving status, picker and poster alone.
func (d ShiftDetails) Apply(s *Shift) {
	s.Location = d.Location
	s.Role = d.Role
	s.Area = d.Area
	s.Date = DateOf(d.Date)
	s.StartTime = d.StartTime
	s.EndTime = d.EndTime
	s.Comments = d.Comments
}

// ShiftDetailColumns are the columns written by a metadata edit.
var ShiftDetailColumns = []string{"location", "role", "area", "date", "start_time", "end_time", "comments", "updated_at"}

// DateOf truncates t to its calendar day at UTC midnight.
func DateOf(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// PendingApproval is a requested shift joined with its requester's current name.
type PendingApproval struct {
	ShiftID       uuid.UUID      `json:"shift_id"`
	Location      string         `json:"location"`
	Area          string         `json:"area"`
	Role          Role           `json:"role"`
	Date          datatypes.Date `json:"date"`
	StartTime     string         `json:"start_time"`
	EndTime       string         `json:"end_time"`
	Comments      string         `json:"comments"`
	RequesterID   uuid.UUID      `json:"requester_id"`
	RequesterName string         `json:"requester_name"`
}
