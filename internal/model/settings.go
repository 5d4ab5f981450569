package model

import "time"

// Settings holds the single global configuration row.
type Settings struct {
	DefaultBackupPath string    `json:"default_backup_path"`
	UpdatedAt         time.Time `json:"updated_at"`
}
