package model

import "time"

// Schedule kind constants.
const (
	ScheduleDaily   = "daily"
	ScheduleWeekly  = "weekly"
	ScheduleMonthly = "monthly"
	ScheduleCustom  = "custom"
)

// Schedule is a persisted rule describing when and for which server(s) to
// trigger a backup run. A nil ServerID targets every known server.
type Schedule struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ServerID *string `json:"server_id,omitempty"`
	Kind     string  `json:"kind"`

	// TimeOfDay is "HH:MM" (24-hour) for daily/weekly/monthly kinds.
	TimeOfDay *string `json:"time_of_day,omitempty"`
	// Day is a weekday 0-6 (0=Sunday) for weekly, a day-of-month 1-31
	// for monthly.
	Day *int `json:"day,omitempty"`

	// CronExpression is the resolved trigger expression: derived for
	// daily/weekly/monthly, user-supplied for custom. Always validated
	// before a timer is armed for it.
	CronExpression string `json:"cron_expression"`

	Enabled   bool       `json:"enabled"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
