package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/backhaul/internal/model"
)

func scheduleScanFunc(id, kind string, enabled bool) func(dest ...any) error {
	return func(dest ...any) error {
		*dest[0].(*string) = id
		*dest[1].(*string) = "nightly"
		*dest[3].(*string) = kind
		*dest[6].(*string) = "0 2 * * *"
		*dest[7].(*bool) = enabled
		*dest[10].(*time.Time) = time.Now()
		*dest[11].(*time.Time) = time.Now()
		return nil
	}
}

func TestScheduleService_GetByID_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewScheduleService(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: scheduleScanFunc("test-schedule-1", model.ScheduleDaily, true)}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	schedule, err := svc.GetByID(ctx, "test-schedule-1")
	require.NoError(t, err)
	assert.Equal(t, "test-schedule-1", schedule.ID)
	assert.Equal(t, model.ScheduleDaily, schedule.Kind)
	assert.True(t, schedule.Enabled)
	db.AssertExpectations(t)
}

func TestScheduleService_ListEnabled(t *testing.T) {
	db := &mockDB{}
	svc := NewScheduleService(db)
	ctx := context.Background()

	rows := newMockRows(
		scheduleScanFunc("s1", model.ScheduleDaily, true),
		scheduleScanFunc("s2", model.ScheduleWeekly, true),
	)
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	schedules, err := svc.ListEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.Equal(t, "s1", schedules[0].ID)
	assert.Equal(t, "s2", schedules[1].ID)
	db.AssertExpectations(t)
}

func TestScheduleService_SetResolved(t *testing.T) {
	db := &mockDB{}
	svc := NewScheduleService(db)
	ctx := context.Background()

	next := time.Now().Add(time.Hour)
	db.On("Exec", ctx, mock.AnythingOfType("string"), []any{"test-schedule-1", "30 2 * * 3", next}).
		Return(pgconn.CommandTag{}, nil)

	err := svc.SetResolved(ctx, "test-schedule-1", "30 2 * * 3", next)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestScheduleService_SetLastRun_Error(t *testing.T) {
	db := &mockDB{}
	svc := NewScheduleService(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("db error"))

	err := svc.SetLastRun(ctx, "test-schedule-1", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set last run")
}
