package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/notify"
	"github.com/iqueue/staffing/internal/repository"
	appErr "github.com/iqueue/staffing/pkg/errors"
	"github.com/iqueue/staffing/pkg/logger"
)

type options struct {
	now      func() time.Time
	loc      *time.Location
	notifier notify.Notifier
}

// Option customizes a service.
type Option func(*options)

// WithClock overrides the time source used for "today".
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the facility time zone that decides the current calendar
// day. The default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithNotifier sets the notifier used after lifecycle commits.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, loc: time.UTC, notifier: notify.Nop{}}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// today is the facility's current calendar day as a UTC-midnight date.
func (o options) today() time.Time { return time.Time(models.DateOf(o.now().In(o.loc))) }

// dispatch hands messages to the notifier, logging failures only. key is
// the audit event id of the transition that produced them.
func (o options) dispatch(ctx context.Context, key uuid.UUID, msgs ...notify.Message) {
	for _, m := range msgs {
		if m.To == "" {
			continue
		}
		m.Key = key.String()
		if err := o.notifier.Notify(ctx, m); err != nil {
			logger.L().Warn("notification failed", zap.String("to", m.To), zap.String("subject", m.Subject), zap.Error(err))
		}
	}
}

// loadActor resolves the authenticated user. The role is always read from
// the store, never trusted from the token.
func loadActor(ctx context.Context, users repository.UserRepository, id uuid.UUID) (models.User, error) {
	var u models.User
	if err := users.GetByID(ctx, id, &u); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return u, appErr.New(appErr.CodeUnauthorized, "unknown user")
		}
		return u, err
	}
	return u, nil
}

func requireAdmin(u models.User, what string) error {
	if !u.Role.IsAdmin() {
		return appErr.New(appErr.CodeForbidden, "only admins can "+what)
	}
	return nil
}
