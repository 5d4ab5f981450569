package model

import "time"

// BackupJob records one orchestration run against one server. The log is
// append-only for the lifetime of the record; once the status is terminal
// no further appends happen.
type BackupJob struct {
	ID          string     `json:"id"`
	ServerID    string     `json:"server_id"`
	Status      string     `json:"status"`
	Log         string     `json:"log"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
