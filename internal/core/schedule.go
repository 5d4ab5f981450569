package core

import (
	"context"
	"fmt"
	"time"

	"github.com/edvin/backhaul/internal/model"
)

const scheduleColumns = `id, name, server_id, kind, time_of_day, day,
	cron_expression, enabled, last_run_at, next_run_at, created_at, updated_at`

type ScheduleService struct {
	db DB
}

func NewScheduleService(db DB) *ScheduleService {
	return &ScheduleService{db: db}
}

func (s *ScheduleService) Create(ctx context.Context, schedule *model.Schedule) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO schedules (id, name, server_id, kind, time_of_day, day,
			cron_expression, enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		schedule.ID, schedule.Name, schedule.ServerID, schedule.Kind,
		schedule.TimeOfDay, schedule.Day, schedule.CronExpression,
		schedule.Enabled, schedule.CreatedAt, schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func (s *ScheduleService) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	row := s.db.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
	schedule, err := scanSchedule(row)
	if err != nil {
		return nil, fmt.Errorf("get schedule %s: %w", id, err)
	}
	return schedule, nil
}

func (s *ScheduleService) List(ctx context.Context) ([]model.Schedule, error) {
	return s.list(ctx, `SELECT `+scheduleColumns+` FROM schedules ORDER BY name`)
}

// ListEnabled returns the schedules timers should exist for.
func (s *ScheduleService) ListEnabled(ctx context.Context) ([]model.Schedule, error) {
	return s.list(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE enabled ORDER BY name`)
}

func (s *ScheduleService) list(ctx context.Context, query string) ([]model.Schedule, error) {
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []model.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, *schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}
	return schedules, nil
}

func (s *ScheduleService) Update(ctx context.Context, schedule *model.Schedule) error {
	_, err := s.db.Exec(ctx,
		`UPDATE schedules SET name = $2, server_id = $3, kind = $4, time_of_day = $5,
			day = $6, cron_expression = $7, enabled = $8, updated_at = now()
		 WHERE id = $1`,
		schedule.ID, schedule.Name, schedule.ServerID, schedule.Kind,
		schedule.TimeOfDay, schedule.Day, schedule.CronExpression, schedule.Enabled,
	)
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", schedule.ID, err)
	}
	return nil
}

func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule %s: %w", id, err)
	}
	return nil
}

// SetResolved persists the derived trigger expression and the computed
// next fire time as a side effect of arming a schedule.
func (s *ScheduleService) SetResolved(ctx context.Context, id, expression string, nextRun time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE schedules SET cron_expression = $2, next_run_at = $3, updated_at = now() WHERE id = $1`,
		id, expression, nextRun,
	)
	if err != nil {
		return fmt.Errorf("set resolved expression for schedule %s: %w", id, err)
	}
	return nil
}

func (s *ScheduleService) SetLastRun(ctx context.Context, id string, lastRun time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE schedules SET last_run_at = $2, updated_at = now() WHERE id = $1`,
		id, lastRun,
	)
	if err != nil {
		return fmt.Errorf("set last run for schedule %s: %w", id, err)
	}
	return nil
}

func scanSchedule(row rowScanner) (*model.Schedule, error) {
	var schedule model.Schedule
	err := row.Scan(&schedule.ID, &schedule.Name, &schedule.ServerID, &schedule.Kind,
		&schedule.TimeOfDay, &schedule.Day, &schedule.CronExpression, &schedule.Enabled,
		&schedule.LastRunAt, &schedule.NextRunAt, &schedule.CreatedAt, &schedule.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}
