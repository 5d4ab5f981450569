package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/edvin/backhaul/internal/metrics"
	"github.com/edvin/backhaul/internal/model"
	"github.com/edvin/backhaul/internal/platform"
)

// ScheduleStore is the slice of the schedule store the engine consumes.
type ScheduleStore interface {
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	ListEnabled(ctx context.Context) ([]model.Schedule, error)
	SetResolved(ctx context.Context, id, expression string, nextRun time.Time) error
	SetLastRun(ctx context.Context, id string, lastRun time.Time) error
}

// ServerStore resolves schedule targets to server profiles.
type ServerStore interface {
	GetByID(ctx context.Context, id string) (*model.Server, error)
	List(ctx context.Context) ([]model.Server, error)
}

// JobCreator creates the pending job record each run starts from.
type JobCreator interface {
	Create(ctx context.Context, job *model.BackupJob) error
}

// Runner executes one backup run. It never returns an error; outcomes
// live in the job record.
type Runner interface {
	Run(ctx context.Context, server *model.Server, job *model.BackupJob)
}

// Engine owns the in-memory timer registry: one armed cron entry per
// enabled schedule. The registry is not persisted; LoadJobs rebuilds it
// from the store on process start.
type Engine struct {
	schedules ScheduleStore
	servers   ServerStore
	jobs      JobCreator
	runner    Runner
	logger    zerolog.Logger
	loc       *time.Location

	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID
}

// New creates an Engine bound to the given timezone name; an empty or
// unknown name falls back to the system's local zone.
func New(schedules ScheduleStore, servers ServerStore, jobs JobCreator, runner Runner, timezone string, logger zerolog.Logger) *Engine {
	loc := time.Local
	if timezone != "" {
		parsed, err := time.LoadLocation(timezone)
		if err != nil {
			logger.Warn().Str("timezone", timezone).Err(err).Msg("unknown timezone, using system local")
		} else {
			loc = parsed
		}
	}

	e := &Engine{
		schedules: schedules,
		servers:   servers,
		jobs:      jobs,
		runner:    runner,
		logger:    logger.With().Str("component", "scheduler").Logger(),
		loc:       loc,
		entries:   make(map[string]cron.EntryID),
	}
	e.cron = cron.New(cron.WithLocation(loc), cron.WithParser(exprParser))
	return e
}

// Start begins firing armed timers.
func (e *Engine) Start() {
	e.cron.Start()
	e.logger.Info().Str("timezone", e.loc.String()).Msg("schedule engine started")
}

// Stop disarms everything and stops the underlying cron runner. Blocks
// until in-flight trigger callbacks return.
func (e *Engine) Stop() {
	e.StopAll()
	<-e.cron.Stop().Done()
	e.logger.Info().Msg("schedule engine stopped")
}

// LoadJobs rebuilds the timer registry: every armed timer is stopped,
// then every enabled schedule in the store is re-armed. One schedule
// failing to arm does not prevent the rest from loading.
func (e *Engine) LoadJobs(ctx context.Context) error {
	e.StopAll()

	schedules, err := e.schedules.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list enabled schedules: %w", err)
	}

	for _, schedule := range schedules {
		if err := e.ScheduleJob(ctx, schedule.ID); err != nil {
			e.logger.Error().Err(err).Str("schedule", schedule.ID).Msg("failed to arm schedule")
		}
	}

	e.logger.Info().Int("armed", len(e.ActiveScheduleIDs())).Msg("schedules loaded")
	return nil
}

// ScheduleJob derives and validates the schedule's trigger expression and
// arms a timer for it, replacing any previous timer for the same id.
// Validation errors surface synchronously to the caller. A disabled
// schedule is disarmed instead.
func (e *Engine) ScheduleJob(ctx context.Context, id string) error {
	schedule, err := e.schedules.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get schedule %s: %w", id, err)
	}

	if !schedule.Enabled {
		e.StopJob(id)
		return nil
	}

	expression, err := DeriveExpression(schedule)
	if err != nil {
		return err
	}
	parsed, err := parseExpression(expression)
	if err != nil {
		return err
	}

	scheduleID := schedule.ID
	serverID := schedule.ServerID

	e.mu.Lock()
	if prev, ok := e.entries[scheduleID]; ok {
		e.cron.Remove(prev)
	}
	e.entries[scheduleID] = e.cron.Schedule(parsed, cron.FuncJob(func() {
		e.ExecuteBackup(context.Background(), scheduleID, serverID)
	}))
	armed := len(e.entries)
	e.mu.Unlock()
	metrics.SetActiveTimers(armed)

	nextRun := parsed.Next(time.Now().In(e.loc))
	if err := e.schedules.SetResolved(ctx, scheduleID, expression, nextRun); err != nil {
		// The timer is armed; losing the bookkeeping write is still an
		// error the caller should see.
		return err
	}

	e.logger.Info().Str("schedule", scheduleID).Str("expression", expression).
		Time("next_run", nextRun).Msg("schedule armed")
	return nil
}

// RunNowDetached triggers the schedule immediately, bypassing its timer.
// The schedule lookup is synchronous so the caller can report an unknown
// id; execution runs in its own goroutine and the returned channel closes
// when it finishes, for callers that want to wait.
func (e *Engine) RunNowDetached(ctx context.Context, id string) (<-chan struct{}, error) {
	schedule, err := e.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get schedule %s: %w", id, err)
	}

	scheduleID := schedule.ID
	serverID := schedule.ServerID

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.ExecuteBackup(context.Background(), scheduleID, serverID)
	}()
	return done, nil
}

// ExecuteBackup runs the orchestrator once per target server: the single
// named server, or sequentially over every known server when serverID is
// nil. Failures are logged and never propagate; the last-run timestamp is
// updated after all target runs regardless of their outcomes.
func (e *Engine) ExecuteBackup(ctx context.Context, scheduleID string, serverID *string) {
	logger := e.logger.With().Str("schedule", scheduleID).Logger()

	var targets []model.Server
	if serverID == nil {
		servers, err := e.servers.List(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("failed to list servers")
			return
		}
		targets = servers
	} else {
		server, err := e.servers.GetByID(ctx, *serverID)
		if err != nil {
			logger.Error().Err(err).Str("server", *serverID).Msg("failed to load server")
			return
		}
		targets = []model.Server{*server}
	}

	for i := range targets {
		server := &targets[i]
		job := &model.BackupJob{
			ID:        platform.NewID(),
			ServerID:  server.ID,
			Status:    model.JobStatusPending,
			CreatedAt: time.Now(),
		}
		if err := e.jobs.Create(ctx, job); err != nil {
			logger.Error().Err(err).Str("server", server.ID).Msg("failed to create job record")
			continue
		}
		e.runner.Run(ctx, server, job)
	}

	if err := e.schedules.SetLastRun(ctx, scheduleID, time.Now()); err != nil {
		logger.Error().Err(err).Msg("failed to record last run")
	}
}

// StopJob idempotently disarms the timer for one schedule.
func (e *Engine) StopJob(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.entries[id]; ok {
		e.cron.Remove(entry)
		delete(e.entries, id)
	}
	metrics.SetActiveTimers(len(e.entries))
}

// StopAll disarms every timer. Safe to call when nothing is armed.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, entry := range e.entries {
		e.cron.Remove(entry)
		delete(e.entries, id)
	}
	metrics.SetActiveTimers(0)
}

// ActiveScheduleIDs returns the ids with an armed timer, sorted.
func (e *Engine) ActiveScheduleIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.entries))
	for id := range e.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
