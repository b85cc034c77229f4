package handlers

import (
	"net/http"

	"github.com/iqueue/staffing/internal/services"
)

type AdminHandler struct {
	users services.UserService
	imp   services.ImportService
}

func NewAdminHandler(users services.UserService, imp services.ImportService) *AdminHandler {
	return &AdminHandler{users: users, imp: imp}
}

// Reconcile re-derives every shifts_worked counter from linked shifts.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fixes, err := h.users.ReconcileCounters(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, fixes)
}

func (h *AdminHandler) ImportUsers(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var rows []services.UserRow
	if err := decode(r, &rows); err != nil {
		writeError(w, r, err)
		return
	}
	report, err := h.imp.ImportUsers(r.Context(), uid, rows)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, report)
}

func (h *AdminHandler) ImportShifts(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var rows []services.ShiftRow
	if err := decode(r, &rows); err != nil {
		writeError(w, r, err)
		return
	}
	report, err := h.imp.ImportShifts(r.Context(), uid, rows)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, report)
}
