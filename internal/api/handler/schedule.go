package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/backhaul/internal/api/request"
	"github.com/edvin/backhaul/internal/api/response"
	"github.com/edvin/backhaul/internal/core"
	"github.com/edvin/backhaul/internal/model"
	"github.com/edvin/backhaul/internal/platform"
	"github.com/edvin/backhaul/internal/scheduler"
)

type Schedule struct {
	svc    *core.ScheduleService
	engine *scheduler.Engine
}

func NewSchedule(svc *core.ScheduleService, engine *scheduler.Engine) *Schedule {
	return &Schedule{svc: svc, engine: engine}
}

func (h *Schedule) List(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.svc.List(r.Context())
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, schedules)
}

func (h *Schedule) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSchedule
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := checkDayRange(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	schedule := scheduleFromRequest(&req)
	schedule.ID = platform.NewID()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	if err := h.svc.Create(r.Context(), schedule); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Arming validates the derived expression; a bad custom expression
	// surfaces here, before any timer exists for it.
	if err := h.engine.ScheduleJob(r.Context(), schedule.ID); err != nil {
		if errors.Is(err, scheduler.ErrInvalidExpression) || errors.Is(err, scheduler.ErrUnknownKind) {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	created, err := h.svc.GetByID(r.Context(), schedule.ID)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusCreated, created)
}

func (h *Schedule) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	schedule, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, schedule)
}

func (h *Schedule) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateSchedule
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := checkDayRange(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	schedule := scheduleFromRequest(&req)
	schedule.ID = id

	if err := h.svc.Update(r.Context(), schedule); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Re-arm (or disarm, when disabled) with the updated definition.
	if err := h.engine.ScheduleJob(r.Context(), id); err != nil {
		if errors.Is(err, scheduler.ErrInvalidExpression) || errors.Is(err, scheduler.ErrUnknownKind) {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Re-read so the response carries the stored row: timestamps plus the
	// expression and next fire time arming just resolved.
	updated, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, updated)
}

func (h *Schedule) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.engine.StopJob(id)

	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunNow triggers the schedule immediately, bypassing its timer. The run
// is detached; 202 acknowledges the trigger, not the outcome.
func (h *Schedule) RunNow(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.engine.RunNowDetached(r.Context(), id); err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Schedule) Active(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.engine.ActiveScheduleIDs())
}

func scheduleFromRequest(req *request.CreateSchedule) *model.Schedule {
	return &model.Schedule{
		Name:           req.Name,
		ServerID:       req.ServerID,
		Kind:           req.Kind,
		TimeOfDay:      req.TimeOfDay,
		Day:            req.Day,
		CronExpression: req.CronExpression,
		Enabled:        req.Enabled,
	}
}

func checkDayRange(req *request.CreateSchedule) error {
	if req.Day == nil {
		return nil
	}
	switch req.Kind {
	case model.ScheduleWeekly:
		if *req.Day < 0 || *req.Day > 6 {
			return fmt.Errorf("weekly day must be 0-6, got %d", *req.Day)
		}
	case model.ScheduleMonthly:
		if *req.Day < 1 || *req.Day > 31 {
			return fmt.Errorf("monthly day must be 1-31, got %d", *req.Day)
		}
	}
	return nil
}
