package core

type Services struct {
	Server    *ServerService
	BackupJob *BackupJobService
	Schedule  *ScheduleService
	Settings  *SettingsService
	Dashboard *DashboardService
}

func NewServices(db DB) *Services {
	return &Services{
		Server:    NewServerService(db),
		BackupJob: NewBackupJobService(db),
		Schedule:  NewScheduleService(db),
		Settings:  NewSettingsService(db),
		Dashboard: NewDashboardService(db),
	}
}
