package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a staff member or administrator.
type User struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string           `gorm:"not null;index" json:"name" validate:"required"`
	Role         Role             `gorm:"type:varchar(32);index;not null" json:"role" validate:"required,role"`
	Location     string           `gorm:"not null;index" json:"location" validate:"required"`
	Email        string           `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Phone        string           `gorm:"type:varchar(32)" json:"phone" validate:"required"`
	Availability Availability     `gorm:"type:varchar(3);not null" json:"availability" validate:"required,oneof=Yes No"`
	CanFloat     FloatEligibility `gorm:"type:varchar(3);not null" json:"can_float" validate:"required,oneof=Yes No N/A"`
	PasswordHash string           `gorm:"not null" json:"-"`
	// ShiftsWorked is owned by the counter ledger; profile edits never write it.
	ShiftsWorked int       `gorm:"not null;default:0" json:"shifts_worked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns a time-ordered id so id order matches insertion order.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		id, err := NewID()
		if err != nil {
			return err
		}
		u.ID = id
	}
	return nil
}

// Profile holds the descriptive user fields an edit may change.
type Profile struct {
	Name         string           `json:"name" validate:"required"`
	Role         Role             `json:"role" validate:"required,role"`
	Location     string           `json:"location" validate:"required"`
	Email        string           `json:"email" validate:"required,email"`
	Phone        string           `json:"phone" validate:"required"`
	Availability Availability     `json:"availability" validate:"required,oneof=Yes No"`
	CanFloat     FloatEligibility `json:"can_float" validate:"required,oneof=Yes No N/A"`
}

// Apply copies the profile onto u, leaving identity, credentials and the counter alone.
func (p Profile) Apply(u *User) {
	u.Name = p.Name
	u.Role = p.Role
	u.Location = p.Location
	u.Email = p.Email
	u.Phone = p.Phone
	u.Availability = p.Availability
	u.CanFloat = p.CanFloat
}

// ProfileColumns are the columns written by a profile edit.
var ProfileColumns = []string{"name", "role", "location", "email", "phone", "availability", "can_float", "updated_at"}

// NewID returns a UUIDv7, falling back to v4 only if the v7 generator fails.
func NewID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewRandom()
	}
	return id, nil
}
