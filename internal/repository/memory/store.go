// Package memory provides an in-memory implementation of repository.Store
// used for tests and ephemeral environments.
//
// Transactions run against a cloned state under the store mutex and replace
// the committed state only when the callback succeeds.
package memory

import (
	"bytes"
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/repository"
	appErr "github.com/iqueue/staffing/pkg/errors"
)

var _ repository.Store = (*Store)(nil)

type state struct {
	users  map[uuid.UUID]models.User
	shifts map[uuid.UUID]models.Shift
	events []models.ShiftEvent
}

func newState() *state {
	return &state{users: map[uuid.UUID]models.User{}, shifts: map[uuid.UUID]models.Shift{}}
}

func (s *state) clone() *state {
	c := &state{
		users:  make(map[uuid.UUID]models.User, len(s.users)),
		shifts: make(map[uuid.UUID]models.Shift, len(s.shifts)),
		events: slices.Clone(s.events),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.shifts {
		c.shifts[k] = cloneShift(v)
	}
	return c
}

func cloneShift(s models.Shift) models.Shift {
	if s.PickerID != nil {
		id := *s.PickerID
		s.PickerID = &id
	}
	return s
}

// Store is a mutex-guarded in-memory repository.Store.
type Store struct {
	mu    sync.Mutex
	state *state
}

// New returns an empty Store.
func New() *Store {
	return &Store{state: newState()}
}

// view is a Store bound either to the committed state (locking per call) or
// to a transaction's working copy (already locked by WithinTx).
type view struct {
	root *Store
	tx   *state
}

func (v view) with(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.root.mu.Lock()
	defer v.root.mu.Unlock()
	return fn(v.root.state)
}

func (s *Store) Users() repository.UserRepository   { return userRepo{view{root: s}} }
func (s *Store) Shifts() repository.ShiftRepository { return shiftRepo{view{root: s}} }
func (s *Store) Events() repository.EventRepository { return eventRepo{view{root: s}} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "transaction aborted")
	}
	work := s.state.clone()
	if err := fn(txStore{view{root: s, tx: work}}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type txStore struct{ v view }

func (t txStore) Users() repository.UserRepository   { return userRepo{t.v} }
func (t txStore) Shifts() repository.ShiftRepository { return shiftRepo{t.v} }
func (t txStore) Events() repository.EventRepository { return eventRepo{t.v} }

// WithinTx on a transactional store joins the outer transaction.
func (t txStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

func assignID(id *uuid.UUID) error {
	if *id != uuid.Nil {
		return nil
	}
	n, err := models.NewID()
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "generate id failed")
	}
	*id = n
	return nil
}

func toID(id any) (uuid.UUID, bool) {
	switch v := id.(type) {
	case uuid.UUID:
		return v, true
	case string:
		u, err := uuid.Parse(v)
		return u, err == nil
	}
	return uuid.Nil, false
}

// users

type userRepo struct{ v view }

func (r userRepo) Create(ctx context.Context, u *models.User) error {
	return r.v.with(func(st *state) error {
		for _, existing := range st.users {
			if existing.Email == u.Email {
				return appErr.New(appErr.CodeConflict, "user already exists")
			}
		}
		if err := assignID(&u.ID); err != nil {
			return err
		}
		now := time.Now()
		u.CreatedAt, u.UpdatedAt = now, now
		st.users[u.ID] = *u
		return nil
	})
}

func (r userRepo) GetByID(ctx context.Context, id any, dest *models.User) error {
	return r.v.with(func(st *state) error {
		key, _ := toID(id)
		u, ok := st.users[key]
		if !ok {
			return appErr.Newf(appErr.CodeNotFound, "user %v not found", id)
		}
		*dest = u
		return nil
	})
}

func (r userRepo) GetForUpdate(ctx context.Context, id any, dest *models.User) error {
	return r.GetByID(ctx, id, dest)
}

func (r userRepo) GetByEmail(ctx context.Context, email string, dest *models.User) error {
	return r.v.with(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				*dest = u
				return nil
			}
		}
		return appErr.New(appErr.CodeNotFound, "user not found")
	})
}

func (r userRepo) ListStaff(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := r.v.with(func(st *state) error {
		for _, u := range st.users {
			if !u.Role.IsAdmin() {
				out = append(out, u)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.User) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), bytes.Compare(a.ID[:], b.ID[:]))
	})
	return out, err
}

func (r userRepo) ListAll(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := r.v.with(func(st *state) error {
		for _, u := range st.users {
			out = append(out, u)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.User) int { return bytes.Compare(a.ID[:], b.ID[:]) })
	return out, err
}

func (r userRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	return r.v.with(func(st *state) error {
		cur, ok := st.users[u.ID]
		if !ok {
			return appErr.New(appErr.CodeNotFound, "user not found")
		}
		for id, other := range st.users {
			if id != u.ID && other.Email == u.Email {
				return appErr.New(appErr.CodeConflict, "email already in use")
			}
		}
		models.Profile{
			Name: u.Name, Role: u.Role, Location: u.Location, Email: u.Email,
			Phone: u.Phone, Availability: u.Availability, CanFloat: u.CanFloat,
		}.Apply(&cur)
		cur.UpdatedAt = time.Now()
		st.users[u.ID] = cur
		*u = cur
		return nil
	})
}

func (r userRepo) SetShiftsWorked(ctx context.Context, id uuid.UUID, n int) error {
	return r.v.with(func(st *state) error {
		cur, ok := st.users[id]
		if !ok {
			return appErr.New(appErr.CodeNotFound, "user not found")
		}
		cur.ShiftsWorked = n
		cur.UpdatedAt = time.Now()
		st.users[id] = cur
		return nil
	})
}

// shifts

type shiftRepo struct{ v view }

func compareShifts(a, b models.Shift) int {
	return cmp.Or(
		a.Day().Compare(b.Day()),
		cmp.Compare(a.StartTime, b.StartTime),
		bytes.Compare(a.ID[:], b.ID[:]),
	)
}

func (r shiftRepo) Create(ctx context.Context, s *models.Shift) error {
	return r.v.with(func(st *state) error {
		if err := assignID(&s.ID); err != nil {
			return err
		}
		now := time.Now()
		s.CreatedAt, s.UpdatedAt = now, now
		st.shifts[s.ID] = cloneShift(*s)
		return nil
	})
}

func (r shiftRepo) GetByID(ctx context.Context, id any, dest *models.Shift) error {
	return r.v.with(func(st *state) error {
		key, _ := toID(id)
		s, ok := st.shifts[key]
		if !ok {
			return appErr.Newf(appErr.CodeNotFound, "shift %v not found", id)
		}
		*dest = cloneShift(s)
		return nil
	})
}

func (r shiftRepo) GetForUpdate(ctx context.Context, id any, dest *models.Shift) error {
	return r.GetByID(ctx, id, dest)
}

func (r shiftRepo) filter(keep func(models.Shift) bool) ([]models.Shift, error) {
	var out []models.Shift
	err := r.v.with(func(st *state) error {
		for _, s := range st.shifts {
			if keep(s) {
				out = append(out, cloneShift(s))
			}
		}
		return nil
	})
	slices.SortFunc(out, compareShifts)
	return out, err
}

func (r shiftRepo) ListOpen(ctx context.Context, f repository.OpenFilter) ([]models.Shift, error) {
	from := time.Time(models.DateOf(f.From))
	return r.filter(func(s models.Shift) bool {
		return s.Status == models.StatusPosted && s.PickerID == nil &&
			!s.Day().Before(from) &&
			(f.Role == nil || s.Role == *f.Role)
	})
}

func (r shiftRepo) ListPendingForPoster(ctx context.Context, posterID uuid.UUID, from time.Time) ([]models.PendingApproval, error) {
	day := time.Time(models.DateOf(from))
	var out []models.PendingApproval
	err := r.v.with(func(st *state) error {
		var pending []models.Shift
		for _, s := range st.shifts {
			if s.Status == models.StatusRequested && s.PostedByID == posterID && !s.Day().Before(day) && s.PickerID != nil {
				pending = append(pending, s)
			}
		}
		slices.SortFunc(pending, compareShifts)
		for _, s := range pending {
			requester, ok := st.users[*s.PickerID]
			if !ok {
				continue
			}
			out = append(out, models.PendingApproval{
				ShiftID: s.ID, Location: s.Location, Area: s.Area, Role: s.Role, Date: s.Date,
				StartTime: s.StartTime, EndTime: s.EndTime, Comments: s.Comments,
				RequesterID: requester.ID, RequesterName: requester.Name,
			})
		}
		return nil
	})
	return out, err
}

func (r shiftRepo) ListByPicker(ctx context.Context, pickerID uuid.UUID) ([]models.Shift, error) {
	return r.filter(func(s models.Shift) bool { return s.PickedBy(pickerID) })
}

func (r shiftRepo) UpdateDetails(ctx context.Context, s *models.Shift) error {
	return r.v.with(func(st *state) error {
		cur, ok := st.shifts[s.ID]
		if !ok {
			return appErr.New(appErr.CodeNotFound, "shift not found")
		}
		models.ShiftDetails{
			Location: s.Location, Role: s.Role, Area: s.Area, Date: s.Day(),
			StartTime: s.StartTime, EndTime: s.EndTime, Comments: s.Comments,
		}.Apply(&cur)
		cur.UpdatedAt = time.Now()
		st.shifts[s.ID] = cur
		return nil
	})
}

func (r shiftRepo) CompareAndSwap(ctx context.Context, prev models.Shift, next *models.Shift) error {
	return r.v.with(func(st *state) error {
		cur, ok := st.shifts[prev.ID]
		if !ok {
			return appErr.New(appErr.CodeNotFound, "shift not found")
		}
		samePicker := (cur.PickerID == nil && prev.PickerID == nil) ||
			(cur.PickerID != nil && prev.PickerID != nil && *cur.PickerID == *prev.PickerID)
		if cur.Status != prev.Status || !samePicker {
			return appErr.New(appErr.CodeConcurrentModification, "shift was modified by another request; refresh and retry")
		}
		cur.Status = next.Status
		cur.PickerID = nil
		if next.PickerID != nil {
			id := *next.PickerID
			cur.PickerID = &id
		}
		cur.UpdatedAt = time.Now()
		next.UpdatedAt = cur.UpdatedAt
		st.shifts[prev.ID] = cur
		return nil
	})
}

func (r shiftRepo) CountLinked(ctx context.Context) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	err := r.v.with(func(st *state) error {
		for _, s := range st.shifts {
			if s.PickerID != nil && (s.Status == models.StatusRequested || s.Status == models.StatusApproved) {
				out[*s.PickerID]++
			}
		}
		return nil
	})
	return out, err
}

// events

type eventRepo struct{ v view }

func (r eventRepo) Create(ctx context.Context, e *models.ShiftEvent) error {
	return r.v.with(func(st *state) error {
		if err := assignID(&e.ID); err != nil {
			return err
		}
		e.CreatedAt = time.Now()
		st.events = append(st.events, *e)
		return nil
	})
}

func (r eventRepo) ListByShift(ctx context.Context, shiftID uuid.UUID) ([]models.ShiftEvent, error) {
	var out []models.ShiftEvent
	err := r.v.with(func(st *state) error {
		for _, e := range st.events {
			if e.ShiftID == shiftID {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}
