package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/iqueue/staffing/internal/models"
	appErr "github.com/iqueue/staffing/pkg/errors"
	"gorm.io/gorm"
)

type UserRepository interface {
	BaseRepository[models.User]
	// GetByEmail matches the stored address exactly. Callers normalize
	// addresses before writing or looking them up.
	GetByEmail(ctx context.Context, email string, dest *models.User) error
	// ListStaff returns every non-admin user ordered by name, then id.
	ListStaff(ctx context.Context) ([]models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	// UpdateProfile writes the descriptive columns only; the counter and
	// credentials are never part of the update.
	UpdateProfile(ctx context.Context, u *models.User) error
	SetShiftsWorked(ctx context.Context, id uuid.UUID, n int) error
}

type userRepository struct {
	BaseRepository[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository[models.User](db, "user"), db: db}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string, dest *models.User) error {
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErr.New(appErr.CodeNotFound, "user not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get user by email failed")
	}
	return nil
}

func (r *userRepository) ListStaff(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := r.db.WithContext(ctx).Where("role <> ?", models.RoleAdmin).Order("name ASC, id ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list staff failed")
	}
	return out, nil
}

func (r *userRepository) ListAll(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list users failed")
	}
	return out, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, u *models.User) error {
	res := r.db.WithContext(ctx).Model(u).Select(models.ProfileColumns).Updates(u)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return appErr.Wrap(res.Error, appErr.CodeConflict, "email already in use")
		}
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update user failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "user not found")
	}
	return nil
}

func (r *userRepository) SetShiftsWorked(ctx context.Context, id uuid.UUID, n int) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("shifts_worked", n)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update shifts worked failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "user not found")
	}
	return nil
}
