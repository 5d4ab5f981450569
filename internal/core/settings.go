package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/backhaul/internal/model"
)

type SettingsService struct {
	db DB
}

func NewSettingsService(db DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the single settings row. A missing row is not an error:
// the zero value means "no global default configured".
func (s *SettingsService) Get(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	err := s.db.QueryRow(ctx,
		`SELECT default_backup_path, updated_at FROM settings WHERE id = 1`,
	).Scan(&settings.DefaultBackupPath, &settings.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &model.Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &settings, nil
}

func (s *SettingsService) Set(ctx context.Context, settings *model.Settings) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO settings (id, default_backup_path, updated_at)
		 VALUES (1, $1, now())
		 ON CONFLICT (id) DO UPDATE SET default_backup_path = $1, updated_at = now()`,
		settings.DefaultBackupPath,
	)
	if err != nil {
		return fmt.Errorf("set settings: %w", err)
	}
	return nil
}
