package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/iqueue/staffing/internal/api/types"
	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/services"
)

type ShiftsHandler struct {
	shifts services.ShiftService
	vis    services.VisibilityService
}

func NewShiftsHandler(shifts services.ShiftService, vis services.VisibilityService) *ShiftsHandler {
	return &ShiftsHandler{shifts: shifts, vis: vis}
}

// Open lists shifts the caller may request.
func (h *ShiftsHandler) Open(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.vis.OpenShifts(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, items)
}

// Pending lists requests awaiting the caller's approval.
func (h *ShiftsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.vis.PendingApprovals(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, items)
}

func (h *ShiftsHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := decodeShift(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.shifts.Post(r.Context(), uid, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, s)
}

func (h *ShiftsHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withShift(w, r, http.StatusOK, h.shifts.Get)
}

func (h *ShiftsHandler) Update(w http.ResponseWriter, r *http.Request) {
	d, err := decodeShift(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.withShift(w, r, http.StatusOK, func(ctx context.Context, actor, id uuid.UUID) (*models.Shift, error) {
		return h.shifts.EditMeta(ctx, actor, id, d)
	})
}

func (h *ShiftsHandler) Request(w http.ResponseWriter, r *http.Request) {
	h.withShift(w, r, http.StatusOK, h.shifts.Request)
}

func (h *ShiftsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.withShift(w, r, http.StatusOK, h.shifts.Approve)
}

func (h *ShiftsHandler) Deny(w http.ResponseWriter, r *http.Request) {
	h.withShift(w, r, http.StatusOK, h.shifts.Deny)
}

func (h *ShiftsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.withShift(w, r, http.StatusOK, h.shifts.Remove)
}

func (h *ShiftsHandler) Events(w http.ResponseWriter, r *http.Request) {
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
	items, err := h.shifts.Events(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, items)
}

func decodeShift(r *http.Request) (models.ShiftDetails, error) {
	var req types.ShiftRequest
	if err := decode(r, &req); err != nil {
		return models.ShiftDetails{}, err
	}
	return req.Details()
}

type shiftOp func(ctx context.Context, actorID, shiftID uuid.UUID) (*models.Shift, error)

func (h *ShiftsHandler) withShift(w http.ResponseWriter, r *http.Request, status int, op shiftOp) {
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
	s, err := op(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, status, s)
}
