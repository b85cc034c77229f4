package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/iqueue/staffing/internal/models"
	appErr "github.com/iqueue/staffing/pkg/errors"
	"gorm.io/gorm"
)

// OpenFilter selects posted shifts for the open-shift list.
type OpenFilter struct {
	// Role restricts results to one required role; nil returns every role.
	Role *models.Role
	From time.Time
}

type ShiftRepository interface {
	BaseRepository[models.Shift]
	ListOpen(ctx context.Context, f OpenFilter) ([]models.Shift, error)
	ListPendingForPoster(ctx context.Context, posterID uuid.UUID, from time.Time) ([]models.PendingApproval, error)
	ListByPicker(ctx context.Context, pickerID uuid.UUID) ([]models.Shift, error)
	// UpdateDetails writes descriptive columns only.
	UpdateDetails(ctx context.Context, s *models.Shift) error
	// CompareAndSwap writes next's status and picker only if the stored row
	// still carries prev's status and picker. A lost race yields
	// CodeConcurrentModification.
	CompareAndSwap(ctx context.Context, prev models.Shift, next *models.Shift) error
	// CountLinked counts Requested and Approved shifts per picker.
	CountLinked(ctx context.Context) (map[uuid.UUID]int, error)
}

type shiftRepository struct {
	BaseRepository[models.Shift]
	db *gorm.DB
}

func NewShiftRepository(db *gorm.DB) ShiftRepository {
	return &shiftRepository{BaseRepository: NewBaseRepository[models.Shift](db, "shift"), db: db}
}

const shiftOrder = "date ASC, start_time ASC, id ASC"

func (r *shiftRepository) ListOpen(ctx context.Context, f OpenFilter) ([]models.Shift, error) {
	q := r.db.WithContext(ctx).
		Where("status = ? AND picker_id IS NULL AND date >= ?", models.StatusPosted, models.DateOf(f.From))
	if f.Role != nil {
		q = q.Where("role = ?", *f.Role)
	}
	var out []models.Shift
	if err := q.Order(shiftOrder).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list open shifts failed")
	}
	return out, nil
}

func (r *shiftRepository) ListPendingForPoster(ctx context.Context, posterID uuid.UUID, from time.Time) ([]models.PendingApproval, error) {
	var out []models.PendingApproval
	err := r.db.WithContext(ctx).
		Table("shifts").
		Select(`shifts.id AS shift_id, shifts.location, shifts.area, shifts.role, shifts.date,
			shifts.start_time, shifts.end_time, shifts.comments,
			users.id AS requester_id, users.name AS requester_name`).
		Joins("JOIN users ON users.id = shifts.picker_id").
		Where("shifts.status = ? AND shifts.date >= ? AND shifts.posted_by_id = ?", models.StatusRequested, models.DateOf(from), posterID).
		Order("shifts.date ASC, shifts.start_time ASC, shifts.id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list pending approvals failed")
	}
	return out, nil
}

func (r *shiftRepository) ListByPicker(ctx context.Context, pickerID uuid.UUID) ([]models.Shift, error) {
	var out []models.Shift
	if err := r.db.WithContext(ctx).Where("picker_id = ?", pickerID).Order(shiftOrder).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list shifts by picker failed")
	}
	return out, nil
}

func (r *shiftRepository) UpdateDetails(ctx context.Context, s *models.Shift) error {
	res := r.db.WithContext(ctx).Model(s).Select(models.ShiftDetailColumns).Updates(s)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update shift failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "shift not found")
	}
	return nil
}

func (r *shiftRepository) CompareAndSwap(ctx context.Context, prev models.Shift, next *models.Shift) error {
	q := r.db.WithContext(ctx).Model(&models.Shift{}).Where("id = ? AND status = ?", prev.ID, prev.Status)
	if prev.PickerID == nil {
		q = q.Where("picker_id IS NULL")
	} else {
		q = q.Where("picker_id = ?", *prev.PickerID)
	}

	var picker any = gorm.Expr("NULL")
	if next.PickerID != nil {
		picker = *next.PickerID
	}
	now := time.Now()
	res := q.Updates(map[string]any{"status": next.Status, "picker_id": picker, "updated_at": now})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update shift status failed")
	}
	if res.RowsAffected == 1 {
		next.UpdatedAt = now
		return nil
	}

	var exists int64
	if err := r.db.WithContext(ctx).Model(&models.Shift{}).Where("id = ?", prev.ID).Count(&exists).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "check shift failed")
	}
	if exists == 0 {
		return appErr.New(appErr.CodeNotFound, "shift not found")
	}
	return appErr.New(appErr.CodeConcurrentModification, "shift was modified by another request; refresh and retry")
}

func (r *shiftRepository) CountLinked(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []struct {
		PickerID uuid.UUID
		N        int
	}
	err := r.db.WithContext(ctx).Model(&models.Shift{}).
		Select("picker_id, COUNT(*) AS n").
		Where("picker_id IS NOT NULL AND status IN ?", []models.ShiftStatus{models.StatusRequested, models.StatusApproved}).
		Group("picker_id").
		Scan(&rows).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "count linked shifts failed")
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.PickerID] = row.N
	}
	return out, nil
}
