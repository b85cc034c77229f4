package models

import (
	"fmt"
	"slices"
)

// Role is the staff discipline a user holds and a shift requires.
type Role string

const (
	RoleAdmin            Role = "Admin"
	RoleCRNA             Role = "CRNA"
	RoleMedicalAssistant Role = "Medical Assistant"
	RoleRN               Role = "RN"
	RoleScrubTech        Role = "Scrub Tech"
)

// Roles lists every user role in display order.
var Roles = []Role{RoleAdmin, RoleCRNA, RoleMedicalAssistant, RoleRN, RoleScrubTech}

// ShiftRoles lists the roles a shift may require. Admin is never a shift role.
var ShiftRoles = []Role{RoleRN, RoleCRNA, RoleMedicalAssistant, RoleScrubTech}

// ParseRole returns the Role matching s exactly.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool { return slices.Contains(Roles, r) }

// ValidForShift reports whether r can be required by a shift.
func (r Role) ValidForShift() bool { return slices.Contains(ShiftRoles, r) }

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// ShiftStatus is the lifecycle state of a shift.
type ShiftStatus string

const (
	StatusPosted    ShiftStatus = "Posted"
	StatusRequested ShiftStatus = "Requested"
	StatusApproved  ShiftStatus = "Approved"
)

func (s ShiftStatus) Valid() bool {
	switch s {
	case StatusPosted, StatusRequested, StatusApproved:
		return true
	}
	return false
}

// Availability is the Yes/No flag a user sets for current availability.
type Availability string

const (
	AvailabilityYes Availability = "Yes"
	AvailabilityNo  Availability = "No"
)

// FloatEligibility tells whether a user may float to other areas.
type FloatEligibility string

const (
	FloatYes           FloatEligibility = "Yes"
	FloatNo            FloatEligibility = "No"
	FloatNotApplicable FloatEligibility = "N/A"
)

// ShiftAction names a lifecycle operation recorded in the shift audit trail.
type ShiftAction string

const (
	ActionPost    ShiftAction = "post"
	ActionAssign  ShiftAction = "assign"
	ActionRequest ShiftAction = "request"
	ActionApprove ShiftAction = "approve"
	ActionDeny    ShiftAction = "deny"
	ActionRemove  ShiftAction = "remove"
	ActionEdit    ShiftAction = "edit"
)
