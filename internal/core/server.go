package core

import (
	"context"
	"fmt"

	"github.com/edvin/backhaul/internal/model"
)

const serverColumns = `id, name, host, port, username, private_key_path, password,
	backup_path, backup_web, backup_logs, backup_nginx_config, backup_database,
	extra_paths, db_host, db_port, db_user, db_password, db_names, created_at, updated_at`

type ServerService struct {
	db DB
}

func NewServerService(db DB) *ServerService {
	return &ServerService{db: db}
}

func (s *ServerService) Create(ctx context.Context, server *model.Server) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO servers (id, name, host, port, username, private_key_path, password,
			backup_path, backup_web, backup_logs, backup_nginx_config, backup_database,
			extra_paths, db_host, db_port, db_user, db_password, db_names, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		server.ID, server.Name, server.Host, server.Port, server.Username,
		server.PrivateKeyPath, server.Password, server.BackupPath,
		server.BackupWeb, server.BackupLogs, server.BackupNginxConfig, server.BackupDatabase,
		server.ExtraPaths, server.DBHost, server.DBPort, server.DBUser, server.DBPassword,
		server.DBNames, server.CreatedAt, server.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert server: %w", err)
	}
	return nil
}

func (s *ServerService) GetByID(ctx context.Context, id string) (*model.Server, error) {
	row := s.db.QueryRow(ctx, `SELECT `+serverColumns+` FROM servers WHERE id = $1`, id)
	server, err := scanServer(row)
	if err != nil {
		return nil, fmt.Errorf("get server %s: %w", id, err)
	}
	return server, nil
}

func (s *ServerService) List(ctx context.Context) ([]model.Server, error) {
	rows, err := s.db.Query(ctx, `SELECT `+serverColumns+` FROM servers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	defer rows.Close()

	var servers []model.Server
	for rows.Next() {
		server, err := scanServer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan server: %w", err)
		}
		servers = append(servers, *server)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate servers: %w", err)
	}
	return servers, nil
}

func (s *ServerService) Update(ctx context.Context, server *model.Server) error {
	_, err := s.db.Exec(ctx,
		`UPDATE servers SET name = $2, host = $3, port = $4, username = $5,
			private_key_path = $6, password = $7, backup_path = $8,
			backup_web = $9, backup_logs = $10, backup_nginx_config = $11, backup_database = $12,
			extra_paths = $13, db_host = $14, db_port = $15, db_user = $16, db_password = $17,
			db_names = $18, updated_at = now()
		 WHERE id = $1`,
		server.ID, server.Name, server.Host, server.Port, server.Username,
		server.PrivateKeyPath, server.Password, server.BackupPath,
		server.BackupWeb, server.BackupLogs, server.BackupNginxConfig, server.BackupDatabase,
		server.ExtraPaths, server.DBHost, server.DBPort, server.DBUser, server.DBPassword,
		server.DBNames,
	)
	if err != nil {
		return fmt.Errorf("update server %s: %w", server.ID, err)
	}
	return nil
}

func (s *ServerService) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM servers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete server %s: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanServer(row rowScanner) (*model.Server, error) {
	var server model.Server
	err := row.Scan(&server.ID, &server.Name, &server.Host, &server.Port, &server.Username,
		&server.PrivateKeyPath, &server.Password, &server.BackupPath,
		&server.BackupWeb, &server.BackupLogs, &server.BackupNginxConfig, &server.BackupDatabase,
		&server.ExtraPaths, &server.DBHost, &server.DBPort, &server.DBUser, &server.DBPassword,
		&server.DBNames, &server.CreatedAt, &server.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &server, nil
}
