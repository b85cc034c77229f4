// Package lifecycle holds the shift state machine as pure functions.
//
// Each operation takes the current shift value and the acting user and
// returns a Transition: the next shift value, the status it must still hold
// at write time, and the counter adjustment the transition owes. Nothing in
// this package touches storage; callers persist the transition atomically.
//
//	Posted ──request──▶ Requested ──approve──▶ Approved
//	  ▲                    │                      │
//	  └──────deny──────────┘                      │
//	  └──────remove────────┴──────────────────────┘
//
// Approved is also reachable directly through Assign at creation time.
package lifecycle

import (
	"time"

	"github.com/google/uuid"

	"github.com/iqueue/staffing/internal/models"
	appErr "github.com/iqueue/staffing/pkg/errors"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

// ActorOf builds an Actor from a stored user.
func ActorOf(u models.User) Actor { return Actor{ID: u.ID, Role: u.Role} }

func (a Actor) IsAdmin() bool { return a.Role.IsAdmin() }

// Credit is a counter ledger adjustment owed by a transition.
type Credit struct {
	UserID uuid.UUID
	Delta  int
}

// Transition is the outcome of applying an action to a shift.
type Transition struct {
	Action models.ShiftAction
	// Prev is the value the shift must still hold at write time.
	Prev   models.Shift
	Next   models.Shift
	Credit *Credit
}

// Post creates an unclaimed shift owned by poster.
func Post(poster models.User, d models.ShiftDetails) Transition {
	s := models.Shift{
		PostedByID:   poster.ID,
		PostedByName: poster.Name,
		Status:       models.StatusPosted,
	}
	d.Apply(&s)
	return Transition{Action: models.ActionPost, Next: s}
}

// Assign creates a shift already approved for target. Only admins may assign.
func Assign(admin models.User, target models.User, d models.ShiftDetails) (Transition, error) {
	if !admin.Role.IsAdmin() {
		return Transition{}, appErr.New(appErr.CodeForbidden, "only admins can assign shifts directly")
	}
	s := models.Shift{
		PostedByID:   admin.ID,
		PostedByName: admin.Name,
		PickerID:     &target.ID,
		Status:       models.StatusApproved,
	}
	d.Apply(&s)
	return Transition{
		Action: models.ActionAssign,
		Next:   s,
		Credit: &Credit{UserID: target.ID, Delta: +1},
	}, nil
}

// Request claims a posted shift for the requester. today is the requester's
// current calendar day; shifts dated before it are no longer available.
func Request(s models.Shift, requester Actor, today time.Time) (Transition, error) {
	if s.Status != models.StatusPosted {
		return Transition{}, appErr.New(appErr.CodeInvalidTransition, "shift is no longer available").
			WithMeta("status", string(s.Status))
	}
	if s.Day().Before(time.Time(models.DateOf(today))) {
		return Transition{}, appErr.New(appErr.CodeInvalidTransition, "shift date has passed")
	}
	if !CanSee(s, requester) {
		return Transition{}, appErr.New(appErr.CodeForbidden, "shift requires a different role")
	}
	next := s
	id := requester.ID
	next.PickerID = &id
	next.Status = models.StatusRequested
	return Transition{
		Action: models.ActionRequest,
		Prev:   s,
		Next:   next,
		Credit: &Credit{UserID: requester.ID, Delta: +1},
	}, nil
}

// Approve confirms a pending request. The approver must be the poster or an admin.
func Approve(s models.Shift, approver Actor) (Transition, error) {
	if err := requirePending(s); err != nil {
		return Transition{}, err
	}
	if !canDecide(s, approver) {
		return Transition{}, appErr.New(appErr.CodeForbidden, "only the poster or an admin can approve this request")
	}
	next := s
	next.Status = models.StatusApproved
	return Transition{Action: models.ActionApprove, Prev: s, Next: next}, nil
}

// Deny rejects a pending request and returns the shift to the marketplace.
func Deny(s models.Shift, approver Actor) (Transition, error) {
	if err := requirePending(s); err != nil {
		return Transition{}, err
	}
	if !canDecide(s, approver) {
		return Transition{}, appErr.New(appErr.CodeForbidden, "only the poster or an admin can deny this request")
	}
	return release(models.ActionDeny, s), nil
}

// Remove unlinks the picker from a requested or approved shift. Only the
// picker or an admin may remove.
func Remove(s models.Shift, actor Actor) (Transition, error) {
	if s.PickerID == nil {
		return Transition{}, appErr.New(appErr.CodeInvalidTransition, "shift has no picker").
			WithMeta("status", string(s.Status))
	}
	if !actor.IsAdmin() && !s.PickedBy(actor.ID) {
		return Transition{}, appErr.New(appErr.CodeForbidden, "you do not have permission to remove this shift")
	}
	return release(models.ActionRemove, s), nil
}

// Edit replaces descriptive fields. Status, picker and poster are untouched.
func Edit(s models.Shift, actor Actor, d models.ShiftDetails) (Transition, error) {
	if !actor.IsAdmin() && s.PostedByID != actor.ID {
		return Transition{}, appErr.New(appErr.CodeForbidden, "only the poster or an admin can edit this shift")
	}
	next := s
	d.Apply(&next)
	return Transition{Action: models.ActionEdit, Prev: s, Next: next}, nil
}

// CanSee reports whether viewer is eligible for s by role.
func CanSee(s models.Shift, viewer Actor) bool {
	return viewer.IsAdmin() || s.Role == viewer.Role
}

// Validate checks the status/picker invariant on a shift value.
func Validate(s models.Shift) error {
	switch {
	case !s.Status.Valid():
		return appErr.Newf(appErr.CodeInternal, "shift %s has unknown status %q", s.ID, s.Status)
	case s.Status == models.StatusPosted && s.PickerID != nil:
		return appErr.Newf(appErr.CodeInternal, "posted shift %s has a picker", s.ID)
	case s.Status != models.StatusPosted && s.PickerID == nil:
		return appErr.Newf(appErr.CodeInternal, "%s shift %s has no picker", s.Status, s.ID)
	}
	return nil
}

func requirePending(s models.Shift) error {
	if s.Status != models.StatusRequested {
		return appErr.New(appErr.CodeInvalidTransition, "shift has no pending request").
			WithMeta("status", string(s.Status))
	}
	return nil
}

func canDecide(s models.Shift, a Actor) bool {
	return a.IsAdmin() || s.PostedByID == a.ID
}

func release(action models.ShiftAction, s models.Shift) Transition {
	former := *s.PickerID
	next := s
	next.PickerID = nil
	next.Status = models.StatusPosted
	return Transition{
		Action: action,
		Prev:   s,
		Next:   next,
		Credit: &Credit{UserID: former, Delta: -1},
	}
}
