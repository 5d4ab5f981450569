package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/backhaul/internal/api/request"
	"github.com/edvin/backhaul/internal/api/response"
	"github.com/edvin/backhaul/internal/core"
	"github.com/edvin/backhaul/internal/model"
	"github.com/edvin/backhaul/internal/platform"
)

type Server struct {
	svc *core.ServerService
}

func NewServer(svc *core.ServerService) *Server {
	return &Server{svc: svc}
}

func (h *Server) List(w http.ResponseWriter, r *http.Request) {
	servers, err := h.svc.List(r.Context())
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, servers)
}

func (h *Server) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateServer
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	server := serverFromRequest(&req)
	server.ID = platform.NewID()
	server.CreatedAt = now
	server.UpdatedAt = now

	if err := h.svc.Create(r.Context(), server); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, server)
}

func (h *Server) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	server, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, server)
}

func (h *Server) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateServer
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	server := serverFromRequest(&req)
	server.ID = id

	if err := h.svc.Update(r.Context(), server); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Re-read so the response carries the stored row, timestamps included.
	updated, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, updated)
}

func (h *Server) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func serverFromRequest(req *request.CreateServer) *model.Server {
	port := req.Port
	if port == 0 {
		port = 22
	}
	return &model.Server{
		Name:              req.Name,
		Host:              req.Host,
		Port:              port,
		Username:          req.Username,
		PrivateKeyPath:    req.PrivateKeyPath,
		Password:          req.Password,
		BackupPath:        req.BackupPath,
		BackupWeb:         req.BackupWeb,
		BackupLogs:        req.BackupLogs,
		BackupNginxConfig: req.BackupNginxConfig,
		BackupDatabase:    req.BackupDatabase,
		ExtraPaths:        req.ExtraPaths,
		DBHost:            req.DBHost,
		DBPort:            req.DBPort,
		DBUser:            req.DBUser,
		DBPassword:        req.DBPassword,
		DBNames:           req.DBNames,
	}
}
