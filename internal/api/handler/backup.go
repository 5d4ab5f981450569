package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/backhaul/internal/api/request"
	"github.com/edvin/backhaul/internal/api/response"
	"github.com/edvin/backhaul/internal/core"
	"github.com/edvin/backhaul/internal/model"
	"github.com/edvin/backhaul/internal/orchestrator"
	"github.com/edvin/backhaul/internal/platform"
)

type Backup struct {
	servers *core.ServerService
	jobs    *core.BackupJobService
	orch    *orchestrator.Orchestrator
}

func NewBackup(servers *core.ServerService, jobs *core.BackupJobService, orch *orchestrator.Orchestrator) *Backup {
	return &Backup{servers: servers, jobs: jobs, orch: orch}
}

// Run starts an ad-hoc backup run for one server: create the pending job
// record, detach the orchestrator, reply 202 with the record. The run
// outlives the request.
func (h *Backup) Run(w http.ResponseWriter, r *http.Request) {
	serverID, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	server, err := h.servers.GetByID(r.Context(), serverID)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	job := &model.BackupJob{
		ID:        platform.NewID(),
		ServerID:  server.ID,
		Status:    model.JobStatusPending,
		CreatedAt: time.Now(),
	}
	if err := h.jobs.Create(r.Context(), job); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.orch.RunDetached(context.Background(), server, job)

	response.WriteJSON(w, http.StatusAccepted, job)
}

func (h *Backup) ListByServer(w http.ResponseWriter, r *http.Request) {
	serverID, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pg := request.ParsePagination(r)

	jobs, hasMore, err := h.jobs.ListByServer(r.Context(), serverID, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(jobs) > 0 {
		nextCursor = jobs[len(jobs)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, jobs, nextCursor, hasMore)
}

func (h *Backup) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, job)
}
