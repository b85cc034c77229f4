package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/iqueue/staffing/internal/ledger"
	"github.com/iqueue/staffing/internal/lifecycle"
	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/notify"
	"github.com/iqueue/staffing/internal/repository"
	"github.com/iqueue/staffing/internal/validators"
	appErr "github.com/iqueue/staffing/pkg/errors"
	"github.com/iqueue/staffing/pkg/logger"
)

// ShiftService runs the shift lifecycle. Every method takes the id of the
// authenticated actor.
type ShiftService interface {
	Post(ctx context.Context, actorID uuid.UUID, d models.ShiftDetails) (*models.Shift, error)
	Assign(ctx context.Context, actorID, targetID uuid.UUID, d models.ShiftDetails) (*models.Shift, error)
	Request(ctx context.Context, actorID, shiftID uuid.UUID) (*models.Shift, error)
	Approve(ctx context.Context, actorID, shiftID uuid.UUID) (*models.Shift, error)
	Deny(ctx context.Context, actorID, shiftID uuid.UUID) (*models.Shift, error)
	Remove(ctx context.Context, actorID, shiftID uuid.UUID) (*models.Shift, error)
	EditMeta(ctx context.Context, actorID, shiftID uuid.UUID, d models.ShiftDetails) (*models.Shift, error)
	Get(ctx context.Context, actorID, shiftID uuid.UUID) (*models.Shift, error)
	Events(ctx context.Context, actorID, shiftID uuid.UUID) ([]models.ShiftEvent, error)
}

type shiftService struct {
	store repository.Store
	options
}

func NewShiftService(store repository.Store, opts ...Option) ShiftService {
	return &shiftService{store: store, options: buildOptions(opts)}
}

// Ensure interfaces are satisfied at compile time
var _ ShiftService = (*shiftService)(nil)

func (s *shiftService) Post(ctx context.Context, actorID uuid.UUID, d models.ShiftDetails) (*models.Shift, error) {
	if err := validators.Struct(d); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid shift")
	}
	actor, err := loadActor(ctx, s.store.Users(), actorID)
	if err != nil {
		return nil, err
	}
	out, _, err := s.commit(ctx, actor.ID, lifecycle.Post(actor, d), nil)
	if err != nil {
		return nil, err
	}
	logger.L().Info("shift posted", zap.String("shift_id", out.ID.String()), zap.String("user_id", actor.ID.String()), zap.String("role", string(out.Role)))
	return out, nil
}

// Assign creates a shift already approved for targetID. The poster snapshot
// is the assigning admin.
func (s *shiftService) Assign(ctx context.Context, actorID, targetID uuid.UUID, d models.ShiftDetails) (*models.Shift, error) {
	if err := validators.Struct(d); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid shift")
	}
	actor, err := loadActor(ctx, s.store.Users(), actorID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(actor, "assign shifts directly"); err != nil {
		return nil, err
	}
	var target models.User
	if err := s.store.Users().GetByID(ctx, targetID, &target); err != nil {
		return nil, err
	}
	t, err := lifecycle.Assign(actor, target, d)
	if err != nil {
		return nil, err
	}
	out, _, err := s.commit(ctx, actor.ID, t, nil)
	if err != nil {
		return nil, err
	}
	logger.L().Info("shift assigned", zap.String("shift_id", out.ID.String()), zap.String("user_id", target.ID.String()))
	return out, nil
}

func (s *shiftService) Request(ctx context.Context, actorID, shiftID uuid.UUID) (*models.Shift, error) {
	actor, sh, err := s.load(ctx, actorID, shiftID)
	if err != nil {
		return nil, err
	}
	t, err := lifecycle.Request(sh, lifecycle.ActorOf(actor), s.today())
	if err != nil {
		return nil, err
	}
	out, ev, err := s.commit(ctx, actor.ID, t, nil)
	if err != nil {
		return nil, err
	}
	logger.L().Info("shift requested", zap.String("shift_id", out.ID.String()), zap.String("user_id", actor.ID.String()))

	var poster models.User
	if err := s.store.Users().GetByID(ctx, out.PostedByID, &poster); err != nil {
		logger.L().Warn("poster lookup for notification failed", zap.String("shift_id", out.ID.String()), zap.Error(err))
		return out, nil
	}
	s.dispatch(ctx, ev.ID, notify.ShiftRequested(*out, poster, actor)...)
	return out, nil
}

func (s *shiftService) Approve(ctx context.Context, actorID, shiftID uuid.UUID) (*models.Shift, error) {
	actor, sh, err := s.load(ctx, actorID, shiftID)
	if err != nil {
		return nil, err
	}
	t, err := lifecycle.Approve(sh, lifecycle.ActorOf(actor))
	if err != nil {
		return nil, err
	}
	out, ev, err := s.commit(ctx, actor.ID, t, nil)
	if err != nil {
		return nil, err
	}
	logger.L().Info("shift request approved", zap.String("shift_id", out.ID.String()), zap.String("user_id", out.PickerID.String()))
	s.notifyPicker(ctx, ev.ID, *out.PickerID, func(u models.User) notify.Message { return notify.RequestApproved(*out, u) })
	return out, nil
}

func (s *shiftService) Deny(ctx context.Context, actorID, shiftID uuid.UUID) (*models.Shift, error) {
	actor, sh, err := s.load(ctx, actorID, shiftID)
	if err != nil {
		return nil, err
	}
	t, err := lifecycle.Deny(sh, lifecycle.ActorOf(actor))
	if err != nil {
		return nil, err
	}
	out, ev, err := s.commit(ctx, actor.ID, t, nil)
	if err != nil {
		return nil, err
	}
	former := t.Credit.UserID
	logger.L().Info("shift request denied", zap.String("shift_id", out.ID.String()), zap.String("user_id", former.String()))
	s.notifyPicker(ctx, ev.ID, former, func(u models.User) notify.Message { return notify.RequestDenied(*out, u) })
	return out, nil
}

func (s *shiftService) Remove(ctx context.Context, actorID, shiftID uuid.UUID) (*models.Shift, error) {
	actor, sh, err := s.load(ctx, actorID, shiftID)
	if err != nil {
		return nil, err
	}
	t, err := lifecycle.Remove(sh, lifecycle.ActorOf(actor))
	if err != nil {
		return nil, err
	}
	out, _, err := s.commit(ctx, actor.ID, t, nil)
	if err != nil {
		return nil, err
	}
	logger.L().Info("shift assignment removed",
		zap.String("shift_id", out.ID.String()),
		zap.String("user_id", t.Credit.UserID.String()),
		zap.String("actor_id", actor.ID.String()))
	return out, nil
}

func (s *shiftService) EditMeta(ctx context.Context, actorID, shiftID uuid.UUID, d models.ShiftDetails) (*models.Shift, error) {
	if err := validators.Struct(d); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid shift")
	}
	actor, sh, err := s.load(ctx, actorID, shiftID)
	if err != nil {
		return nil, err
	}
	t, err := lifecycle.Edit(sh, lifecycle.ActorOf(actor), d)
	if err != nil {
		return nil, err
	}
	out, _, err := s.commit(ctx, actor.ID, t, d)
	if err != nil {
		return nil, err
	}
	logger.L().Info("shift edited", zap.String("shift_id", out.ID.String()), zap.String("user_id", actor.ID.String()))
	return out, nil
}

// Get returns a shift to admins, its poster, its picker, or a user whose
// role matches.
func (s *shiftService) Get(ctx context.Context, actorID, shiftID uuid.UUID) (*models.Shift, error) {
	actor, sh, err := s.load(ctx, actorID, shiftID)
	if err != nil {
		return nil, err
	}
	if !canView(sh, actor) {
		return nil, appErr.New(appErr.CodeForbidden, "you do not have access to this shift")
	}
	return &sh, nil
}

func (s *shiftService) Events(ctx context.Context, actorID, shiftID uuid.UUID) ([]models.ShiftEvent, error) {
	if _, err := s.Get(ctx, actorID, shiftID); err != nil {
		return nil, err
	}
	return s.store.Events().ListByShift(ctx, shiftID)
}

func canView(sh models.Shift, u models.User) bool {
	return lifecycle.CanSee(sh, lifecycle.ActorOf(u)) || sh.PostedByID == u.ID || sh.PickedBy(u.ID)
}

func (s *shiftService) load(ctx context.Context, actorID, shiftID uuid.UUID) (models.User, models.Shift, error) {
	var sh models.Shift
	actor, err := loadActor(ctx, s.store.Users(), actorID)
	if err != nil {
		return actor, sh, err
	}
	if err := s.store.Shifts().GetByID(ctx, shiftID, &sh); err != nil {
		return actor, sh, err
	}
	return actor, sh, nil
}

// commit persists t in one transaction: the shift write (insert, CAS or
// detail update), the ledger adjustment and the audit event. It returns the
// written shift and event.
func (s *shiftService) commit(ctx context.Context, actorID uuid.UUID, t lifecycle.Transition, details any) (*models.Shift, *models.ShiftEvent, error) {
	next := t.Next
	if err := lifecycle.Validate(next); err != nil {
		return nil, nil, err
	}
	var raw datatypes.JSON
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return nil, nil, appErr.Wrap(err, appErr.CodeInternal, "encode event details failed")
		}
		raw = datatypes.JSON(b)
	}

	var ev models.ShiftEvent
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		switch t.Action {
		case models.ActionPost, models.ActionAssign:
			if err := tx.Shifts().Create(ctx, &next); err != nil {
				return err
			}
		case models.ActionEdit:
			if err := tx.Shifts().UpdateDetails(ctx, &next); err != nil {
				return err
			}
		default:
			if err := tx.Shifts().CompareAndSwap(ctx, t.Prev, &next); err != nil {
				return err
			}
		}
		if t.Credit != nil {
			if _, err := ledger.Adjust(ctx, tx.Users(), t.Credit.UserID, t.Credit.Delta); err != nil {
				return err
			}
		}
		picker := next.PickerID
		if picker == nil {
			picker = t.Prev.PickerID
		}
		ev = models.ShiftEvent{
			ShiftID:    next.ID,
			ActorID:    actorID,
			Action:     t.Action,
			FromStatus: t.Prev.Status,
			ToStatus:   next.Status,
			PickerID:   picker,
			Details:    raw,
		}
		return tx.Events().Create(ctx, &ev)
	})
	if err != nil {
		if appErr.IsCode(err, appErr.CodeConcurrentModification) {
			logger.L().Info("shift transition lost race", zap.String("shift_id", t.Prev.ID.String()), zap.String("action", string(t.Action)))
		}
		return nil, nil, err
	}
	return &next, &ev, nil
}

func (s *shiftService) notifyPicker(ctx context.Context, key, userID uuid.UUID, render func(models.User) notify.Message) {
	var u models.User
	if err := s.store.Users().GetByID(ctx, userID, &u); err != nil {
		logger.L().Warn("picker lookup for notification failed", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}
	s.dispatch(ctx, key, render(u))
}
