package request

type CreateServer struct {
	Name     string `json:"name" validate:"required,max=100"`
	Host     string `json:"host" validate:"required,max=255"`
	Port     int    `json:"port" validate:"omitempty,min=1,max=65535"`
	Username string `json:"username" validate:"required,max=64"`

	PrivateKeyPath *string `json:"private_key_path" validate:"omitempty,max=4096"`
	Password       *string `json:"password" validate:"omitempty,max=255"`

	BackupPath *string `json:"backup_path" validate:"omitempty,max=4096"`

	BackupWeb         bool     `json:"backup_web"`
	BackupLogs        bool     `json:"backup_logs"`
	BackupNginxConfig bool     `json:"backup_nginx_config"`
	BackupDatabase    bool     `json:"backup_database"`
	ExtraPaths        []string `json:"extra_paths" validate:"omitempty,dive,required,startswith=/"`

	DBHost     *string  `json:"db_host" validate:"omitempty,max=255"`
	DBPort     *int     `json:"db_port" validate:"omitempty,min=1,max=65535"`
	DBUser     *string  `json:"db_user" validate:"omitempty,max=64"`
	DBPassword *string  `json:"db_password" validate:"omitempty,max=255"`
	DBNames    []string `json:"db_names" validate:"omitempty,dive,required,max=64"`
}

type UpdateServer = CreateServer
