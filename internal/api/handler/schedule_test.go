package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/backhaul/internal/core"
	"github.com/edvin/backhaul/internal/model"
	"github.com/edvin/backhaul/internal/scheduler"
)

type noopRunner struct{}

func (noopRunner) Run(_ context.Context, _ *model.Server, _ *model.BackupJob) {}

func newScheduleHandler(db *stubDB) *Schedule {
	services := core.NewServices(db)
	engine := scheduler.New(services.Schedule, services.Server, services.BackupJob, noopRunner{}, "UTC", zerolog.Nop())
	return NewSchedule(services.Schedule, engine)
}

// --- Create ---

func TestScheduleCreate_RespondsWithResolvedExpression(t *testing.T) {
	h := newScheduleHandler(&stubDB{rowScan: scheduleRowScan})

	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/schedules", `{"name":"nightly","kind":"daily","enabled":true}`)

	h.Create(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got model.Schedule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	// The request carries no expression; arming resolves and stores one,
	// and the response must carry the stored row.
	assert.Equal(t, "0 2 * * *", got.CronExpression)
	assert.True(t, got.CreatedAt.Equal(storedCreatedAt))
}

// --- Update ---

func TestScheduleUpdate_RespondsWithStoredRow(t *testing.T) {
	h := newScheduleHandler(&stubDB{rowScan: scheduleRowScan})

	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPut, "/schedules/sched-1", `{"name":"nightly","kind":"daily","enabled":true}`)
	r = withChiURLParam(r, "id", "sched-1")

	h.Update(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Schedule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "sched-1", got.ID)
	assert.Equal(t, "0 2 * * *", got.CronExpression)
	assert.True(t, got.CreatedAt.Equal(storedCreatedAt))
	assert.True(t, got.UpdatedAt.Equal(storedUpdatedAt))
}

func TestScheduleUpdate_WeeklyDayOutOfRange(t *testing.T) {
	h := newScheduleHandler(&stubDB{rowScan: scheduleRowScan})

	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPut, "/schedules/sched-1", `{"name":"nightly","kind":"weekly","day":7,"enabled":true}`)
	r = withChiURLParam(r, "id", "sched-1")

	h.Update(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "weekly day")
}

// --- RunNow ---

func TestScheduleRunNow_Accepted(t *testing.T) {
	h := newScheduleHandler(&stubDB{rowScan: scheduleRowScan})

	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/schedules/sched-1/run", "")
	r = withChiURLParam(r, "id", "sched-1")

	h.RunNow(rec, r)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestScheduleRunNow_EmptyID(t *testing.T) {
	h := newScheduleHandler(&stubDB{rowScan: scheduleRowScan})

	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/schedules//run", "")
	r = withChiURLParam(r, "id", "")

	h.RunNow(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
