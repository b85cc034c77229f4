package handlers

import (
	"net/http"

	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/services"
)

type UsersHandler struct {
	users  services.UserService
	shifts services.ShiftService
	vis    services.VisibilityService
}

func NewUsersHandler(users services.UserService, shifts services.ShiftService, vis services.VisibilityService) *UsersHandler {
	return &UsersHandler{users: users, shifts: shifts, vis: vis}
}

// Roster lists non-admin staff with the roles and locations in use.
func (h *UsersHandler) Roster(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	roster, err := h.vis.StaffRoster(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, roster)
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p models.Profile
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.users.AddUser(r.Context(), uid, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, u)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.users.GetUser(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, u)
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p models.Profile
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.users.EditUser(r.Context(), uid, id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, u)
}

// Assign creates a shift approved for the user in the path.
func (h *UsersHandler) Assign(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	target, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := decodeShift(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.shifts.Assign(r.Context(), uid, target, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, s)
}

// History lists every shift the user has picked.
func (h *UsersHandler) History(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.vis.UserHistory(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, items)
}
