package handler

import (
	"net/http"

	"github.com/edvin/backhaul/internal/api/request"
	"github.com/edvin/backhaul/internal/api/response"
	"github.com/edvin/backhaul/internal/core"
	"github.com/edvin/backhaul/internal/model"
)

type Settings struct {
	svc *core.SettingsService
}

func NewSettings(svc *core.SettingsService) *Settings {
	return &Settings{svc: svc}
}

func (h *Settings) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Get(r.Context())
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, settings)
}

func (h *Settings) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateSettings
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings := &model.Settings{DefaultBackupPath: req.DefaultBackupPath}
	if err := h.svc.Set(r.Context(), settings); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, settings)
}
