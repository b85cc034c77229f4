package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ShiftEvent is an audit record written in the same transaction as a shift transition.
type ShiftEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ShiftID    uuid.UUID      `gorm:"type:uuid;index;not null" json:"shift_id"`
	ActorID    uuid.UUID      `gorm:"type:uuid;not null" json:"actor_id"`
	Action     ShiftAction    `gorm:"type:varchar(16);not null" json:"action"`
	FromStatus ShiftStatus    `gorm:"type:varchar(16)" json:"from_status,omitempty"`
	ToStatus   ShiftStatus    `gorm:"type:varchar(16);not null" json:"to_status"`
	PickerID   *uuid.UUID     `gorm:"type:uuid" json:"picker_id,omitempty"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (e *ShiftEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		id, err := NewID()
		if err != nil {
			return err
		}
		e.ID = id
	}
	return nil
}
