package repository

import (
	"context"
	"errors"

	appErr "github.com/iqueue/staffing/pkg/errors"
	"gorm.io/gorm"
)

// Store groups the entity repositories and runs units of work atomically.
type Store interface {
	Users() UserRepository
	Shifts() ShiftRepository
	Events() EventRepository
	// WithinTx runs fn against a transactional Store. Every write fn makes
	// commits together, or none does if fn returns an error.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a PostgreSQL-backed Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

var _ Store = (*gormStore)(nil)

func (s *gormStore) Users() UserRepository   { return NewUserRepository(s.db) }
func (s *gormStore) Shifts() ShiftRepository { return NewShiftRepository(s.db) }
func (s *gormStore) Events() EventRepository { return NewEventRepository(s.db) }

func (s *gormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
	if err == nil {
		return nil
	}
	var ae *appErr.AppError
	if errors.As(err, &ae) {
		return err
	}
	return appErr.Wrap(err, appErr.CodeInternal, "transaction failed")
}
