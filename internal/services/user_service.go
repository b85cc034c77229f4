package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iqueue/staffing/internal/ledger"
	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/repository"
	"github.com/iqueue/staffing/internal/validators"
	appErr "github.com/iqueue/staffing/pkg/errors"
	"github.com/iqueue/staffing/pkg/logger"
)

type UserService interface {
	// AddUser creates a user on an admin's behalf with the default password.
	AddUser(ctx context.Context, actorID uuid.UUID, p models.Profile) (*models.User, error)
	EditUser(ctx context.Context, actorID, userID uuid.UUID, p models.Profile) (*models.User, error)
	GetUser(ctx context.Context, actorID, userID uuid.UUID) (*models.User, error)
	ReconcileCounters(ctx context.Context, actorID uuid.UUID) ([]ledger.Correction, error)
}

type userService struct {
	store           repository.Store
	defaultPassword string
}

func NewUserService(store repository.Store, defaultPassword string) UserService {
	return &userService{store: store, defaultPassword: defaultPassword}
}

var _ UserService = (*userService)(nil)

func (s *userService) AddUser(ctx context.Context, actorID uuid.UUID, p models.Profile) (*models.User, error) {
	actor, err := loadActor(ctx, s.store.Users(), actorID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(actor, "add users"); err != nil {
		return nil, err
	}
	return s.create(ctx, p)
}

func (s *userService) create(ctx context.Context, p models.Profile) (*models.User, error) {
	p.Email = normalizeEmail(p.Email)
	if err := validators.Struct(p); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid user")
	}
	u, err := newUser(p, s.defaultPassword)
	if err != nil {
		return nil, err
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		return nil, err
	}
	logger.L().Info("user added", zap.String("user_id", u.ID.String()), zap.String("role", string(u.Role)))
	return u, nil
}

// EditUser replaces descriptive fields. Users edit themselves; admins edit
// anyone. Only admins may change a role.
func (s *userService) EditUser(ctx context.Context, actorID, userID uuid.UUID, p models.Profile) (*models.User, error) {
	p.Email = normalizeEmail(p.Email)
	if err := validators.Struct(p); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid user")
	}
	actor, err := loadActor(ctx, s.store.Users(), actorID)
	if err != nil {
		return nil, err
	}
	if actor.ID != userID && !actor.Role.IsAdmin() {
		return nil, appErr.New(appErr.CodeForbidden, "you can only edit your own profile")
	}
	var u models.User
	if err := s.store.Users().GetByID(ctx, userID, &u); err != nil {
		return nil, err
	}
	if p.Role != u.Role && !actor.Role.IsAdmin() {
		return nil, appErr.New(appErr.CodeForbidden, "only admins can change a role")
	}
	p.Apply(&u)
	if err := s.store.Users().UpdateProfile(ctx, &u); err != nil {
		return nil, err
	}
	if err := s.store.Users().GetByID(ctx, userID, &u); err != nil {
		return nil, err
	}
	logger.L().Info("user edited", zap.String("user_id", u.ID.String()), zap.String("actor_id", actor.ID.String()))
	return &u, nil
}

func (s *userService) GetUser(ctx context.Context, actorID, userID uuid.UUID) (*models.User, error) {
	if _, err := loadActor(ctx, s.store.Users(), actorID); err != nil {
		return nil, err
	}
	var u models.User
	if err := s.store.Users().GetByID(ctx, userID, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *userService) ReconcileCounters(ctx context.Context, actorID uuid.UUID) ([]ledger.Correction, error) {
	actor, err := loadActor(ctx, s.store.Users(), actorID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(actor, "reconcile counters"); err != nil {
		return nil, err
	}
	return ledger.Reconcile(ctx, s.store)
}
