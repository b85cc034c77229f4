package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/iqueue/staffing/internal/models"
	appErr "github.com/iqueue/staffing/pkg/errors"
	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, e *models.ShiftEvent) error
	ListByShift(ctx context.Context, shiftID uuid.UUID) ([]models.ShiftEvent, error)
}

type eventRepository struct {
	BaseRepository[models.ShiftEvent]
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{BaseRepository: NewBaseRepository[models.ShiftEvent](db, "shift event"), db: db}
}

func (r *eventRepository) ListByShift(ctx context.Context, shiftID uuid.UUID) ([]models.ShiftEvent, error) {
	var out []models.ShiftEvent
	if err := r.db.WithContext(ctx).Where("shift_id = ?", shiftID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list shift events failed")
	}
	return out, nil
}
