package core

import (
	"context"
	"fmt"

	"github.com/edvin/backhaul/internal/model"
)

type BackupJobService struct {
	db DB
}

func NewBackupJobService(db DB) *BackupJobService {
	return &BackupJobService{db: db}
}

func (s *BackupJobService) Create(ctx context.Context, job *model.BackupJob) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO backup_jobs (id, server_id, status, log, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		job.ID, job.ServerID, job.Status, job.Log, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert backup job: %w", err)
	}
	return nil
}

func (s *BackupJobService) GetByID(ctx context.Context, id string) (*model.BackupJob, error) {
	var j model.BackupJob
	err := s.db.QueryRow(ctx,
		`SELECT id, server_id, status, log, started_at, completed_at, created_at
		 FROM backup_jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.ServerID, &j.Status, &j.Log, &j.StartedAt, &j.CompletedAt, &j.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get backup job %s: %w", id, err)
	}
	return &j, nil
}

func (s *BackupJobService) ListByServer(ctx context.Context, serverID string, limit int, cursor string) ([]model.BackupJob, bool, error) {
	query := `SELECT id, server_id, status, log, started_at, completed_at, created_at FROM backup_jobs WHERE server_id = $1`
	args := []any{serverID}
	argIdx := 2

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list backup jobs for server %s: %w", serverID, err)
	}
	defer rows.Close()

	var jobs []model.BackupJob
	for rows.Next() {
		var j model.BackupJob
		if err := rows.Scan(&j.ID, &j.ServerID, &j.Status, &j.Log, &j.StartedAt, &j.CompletedAt, &j.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("scan backup job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate backup jobs: %w", err)
	}

	hasMore := len(jobs) > limit
	if hasMore {
		jobs = jobs[:limit]
	}
	return jobs, hasMore, nil
}

// SetStatus advances a job's status. started_at is stamped on the
// transition to running and completed_at on a terminal status.
func (s *BackupJobService) SetStatus(ctx context.Context, id, status string) error {
	var query string
	switch status {
	case model.JobStatusRunning:
		query = `UPDATE backup_jobs SET status = $2, started_at = now() WHERE id = $1`
	case model.JobStatusSuccess, model.JobStatusFailed:
		query = `UPDATE backup_jobs SET status = $2, completed_at = now() WHERE id = $1`
	default:
		query = `UPDATE backup_jobs SET status = $2 WHERE id = $1`
	}
	if _, err := s.db.Exec(ctx, query, id, status); err != nil {
		return fmt.Errorf("set backup job %s status to %s: %w", id, status, err)
	}
	return nil
}

// AppendLog appends text to a job's log. The log column only ever grows.
func (s *BackupJobService) AppendLog(ctx context.Context, id, text string) error {
	if _, err := s.db.Exec(ctx,
		`UPDATE backup_jobs SET log = log || $2 WHERE id = $1`, id, text,
	); err != nil {
		return fmt.Errorf("append log for backup job %s: %w", id, err)
	}
	return nil
}
