package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DashboardStats is the controller-wide overview the UI polls.
type DashboardStats struct {
	Servers          int `json:"servers"`
	SchedulesEnabled int `json:"schedules_enabled"`
	JobsRunning      int `json:"jobs_running"`
	JobsFailed24h    int `json:"jobs_failed_24h"`
	JobsSuccess24h   int `json:"jobs_success_24h"`
}

type DashboardService struct {
	db DB
}

func NewDashboardService(db DB) *DashboardService {
	return &DashboardService{db: db}
}

// Stats runs the count queries in parallel.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	counts := []struct {
		sql  string
		dest *int
	}{
		{`SELECT count(*) FROM servers`, &stats.Servers},
		{`SELECT count(*) FROM schedules WHERE enabled`, &stats.SchedulesEnabled},
		{`SELECT count(*) FROM backup_jobs WHERE status = 'running'`, &stats.JobsRunning},
		{`SELECT count(*) FROM backup_jobs WHERE status = 'failed' AND created_at > now() - interval '24 hours'`, &stats.JobsFailed24h},
		{`SELECT count(*) FROM backup_jobs WHERE status = 'success' AND created_at > now() - interval '24 hours'`, &stats.JobsSuccess24h},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		g.Go(func() error {
			return s.db.QueryRow(gctx, c.sql).Scan(c.dest)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collect dashboard stats: %w", err)
	}
	return &stats, nil
}
