package request

type CreateSchedule struct {
	Name     string  `json:"name" validate:"required,max=100"`
	ServerID *string `json:"server_id" validate:"omitempty"`
	Kind     string  `json:"kind" validate:"required,oneof=daily weekly monthly custom"`

	TimeOfDay *string `json:"time_of_day" validate:"omitempty,timeofday"`
	// Day is a weekday 0-6 for weekly kinds, a day-of-month 1-31 for
	// monthly; the handler checks the kind-specific range.
	Day *int `json:"day" validate:"omitempty,min=0,max=31"`

	CronExpression string `json:"cron_expression" validate:"omitempty,max=100"`
	Enabled        bool   `json:"enabled"`
}

type UpdateSchedule = CreateSchedule

type UpdateSettings struct {
	DefaultBackupPath string `json:"default_backup_path" validate:"omitempty,max=4096"`
}
