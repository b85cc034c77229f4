// Package ledger maintains each user's shifts_worked counter.
//
// The counter moves by exactly +1 or -1 per lifecycle transition and never
// goes below zero. Adjust is meant to run inside the same store transaction
// as the shift write it accounts for.
package ledger

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/repository"
	appErr "github.com/iqueue/staffing/pkg/errors"
	"github.com/iqueue/staffing/pkg/logger"
)

// Apply returns current+delta clamped at zero and reports whether clamping occurred.
func Apply(current, delta int) (next int, underflow bool) {
	next = current + delta
	if next < 0 {
		return 0, true
	}
	return next, false
}

// Adjust locks the user's row and moves the counter by delta. An underflow
// is clamped and logged; it never fails the surrounding operation.
func Adjust(ctx context.Context, users repository.UserRepository, userID uuid.UUID, delta int) (int, error) {
	if delta != 1 && delta != -1 {
		return 0, appErr.Newf(appErr.CodeInternal, "counter delta must be +1 or -1, got %d", delta)
	}
	var u models.User
	if err := users.GetForUpdate(ctx, userID, &u); err != nil {
		return 0, err
	}
	next, underflow := Apply(u.ShiftsWorked, delta)
	if underflow {
		logger.L().Warn("shifts worked counter underflow clamped",
			zap.String("user_id", userID.String()),
			zap.Int("current", u.ShiftsWorked),
			zap.Int("delta", delta))
	}
	if err := users.SetShiftsWorked(ctx, userID, next); err != nil {
		return 0, err
	}
	return next, nil
}

// Correction records a counter reset made by Reconcile.
type Correction struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Before int       `json:"before"`
	After  int       `json:"after"`
}

// Reconcile resets every counter to the number of shifts the user currently
// holds as Requested or Approved. It returns the users whose value changed.
func Reconcile(ctx context.Context, store repository.Store) ([]Correction, error) {
	var out []Correction
	err := store.WithinTx(ctx, func(tx repository.Store) error {
		linked, err := tx.Shifts().CountLinked(ctx)
		if err != nil {
			return err
		}
		users, err := tx.Users().ListAll(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			want := linked[u.ID]
			if u.ShiftsWorked == want {
				continue
			}
			if err := tx.Users().SetShiftsWorked(ctx, u.ID, want); err != nil {
				return err
			}
			out = append(out, Correction{UserID: u.ID, Name: u.Name, Before: u.ShiftsWorked, After: want})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID.String() < out[j].UserID.String() })
	for _, c := range out {
		logger.L().Info("shifts worked counter reconciled",
			zap.String("user_id", c.UserID.String()),
			zap.Int("before", c.Before),
			zap.Int("after", c.After))
	}
	return out, nil
}
