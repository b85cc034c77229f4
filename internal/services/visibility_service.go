package services

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/repository"
	appErr "github.com/iqueue/staffing/pkg/errors"
)

// Roster is the staff listing with the distinct roles and locations in use.
type Roster struct {
	Staff     []models.User `json:"staff"`
	Roles     []models.Role `json:"roles"`
	Locations []string      `json:"locations"`
}

// VisibilityService answers what a viewer may see.
type VisibilityService interface {
	OpenShifts(ctx context.Context, viewerID uuid.UUID) ([]models.Shift, error)
	PendingApprovals(ctx context.Context, viewerID uuid.UUID) ([]models.PendingApproval, error)
	StaffRoster(ctx context.Context, viewerID uuid.UUID) (*Roster, error)
	UserHistory(ctx context.Context, viewerID, userID uuid.UUID) ([]models.Shift, error)
}

type visibilityService struct {
	store repository.Store
	options
}

func NewVisibilityService(store repository.Store, opts ...Option) VisibilityService {
	return &visibilityService{store: store, options: buildOptions(opts)}
}

var _ VisibilityService = (*visibilityService)(nil)

// OpenShifts lists unclaimed shifts from today on. Admins see every role.
func (s *visibilityService) OpenShifts(ctx context.Context, viewerID uuid.UUID) ([]models.Shift, error) {
	viewer, err := loadActor(ctx, s.store.Users(), viewerID)
	if err != nil {
		return nil, err
	}
	f := repository.OpenFilter{From: s.today()}
	if !viewer.Role.IsAdmin() {
		role := viewer.Role
		f.Role = &role
	}
	return s.store.Shifts().ListOpen(ctx, f)
}

// PendingApprovals lists requests awaiting the viewer's decision on shifts they posted.
func (s *visibilityService) PendingApprovals(ctx context.Context, viewerID uuid.UUID) ([]models.PendingApproval, error) {
	viewer, err := loadActor(ctx, s.store.Users(), viewerID)
	if err != nil {
		return nil, err
	}
	return s.store.Shifts().ListPendingForPoster(ctx, viewer.ID, s.today())
}

func (s *visibilityService) StaffRoster(ctx context.Context, viewerID uuid.UUID) (*Roster, error) {
	if _, err := loadActor(ctx, s.store.Users(), viewerID); err != nil {
		return nil, err
	}
	staff, err := s.store.Users().ListStaff(ctx)
	if err != nil {
		return nil, err
	}
	roles := lo.Uniq(lo.Map(staff, func(u models.User, _ int) models.Role { return u.Role }))
	slices.Sort(roles)
	locations := lo.Compact(lo.Uniq(lo.Map(staff, func(u models.User, _ int) string { return u.Location })))
	slices.Sort(locations)
	if staff == nil {
		staff = []models.User{}
	}
	return &Roster{Staff: staff, Roles: roles, Locations: locations}, nil
}

// UserHistory lists every shift the user has picked, in any status. Users
// see their own history; admins see anyone's.
func (s *visibilityService) UserHistory(ctx context.Context, viewerID, userID uuid.UUID) ([]models.Shift, error) {
	viewer, err := loadActor(ctx, s.store.Users(), viewerID)
	if err != nil {
		return nil, err
	}
	if viewer.ID != userID && !viewer.Role.IsAdmin() {
		return nil, appErr.New(appErr.CodeForbidden, "you can only view your own shift history")
	}
	var target models.User
	if err := s.store.Users().GetByID(ctx, userID, &target); err != nil {
		return nil, err
	}
	return s.store.Shifts().ListByPicker(ctx, userID)
}
