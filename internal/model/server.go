package model

import "time"

// Server is a configured remote backup target: how to reach it, how to
// authenticate, and which parts of it to back up.
type Server struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`

	// Exactly one of these must be set for a run to proceed.
	PrivateKeyPath *string `json:"private_key_path,omitempty"`
	Password       *string `json:"-"`

	// BackupPath overrides the global default local destination when set.
	BackupPath *string `json:"backup_path,omitempty"`

	BackupWeb         bool     `json:"backup_web"`
	BackupLogs        bool     `json:"backup_logs"`
	BackupNginxConfig bool     `json:"backup_nginx_config"`
	BackupDatabase    bool     `json:"backup_database"`
	ExtraPaths        []string `json:"extra_paths,omitempty"`

	DBHost     *string  `json:"db_host,omitempty"`
	DBPort     *int     `json:"db_port,omitempty"`
	DBUser     *string  `json:"db_user,omitempty"`
	DBPassword *string  `json:"-"`
	DBNames    []string `json:"db_names,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Default remote locations archived for the built-in target flags.
const (
	WebRoot         = "/var/www"
	LogRoot         = "/var/log"
	NginxConfigRoot = "/etc/nginx"
)

// DefaultDBPort is used when a server profile enables database dumps
// without an explicit database port.
const DefaultDBPort = 3306
