package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/backhaul/internal/metrics"
	"github.com/edvin/backhaul/internal/model"
	"github.com/edvin/backhaul/internal/remote"
)

// JobStore is the slice of the job record store the orchestrator mutates.
type JobStore interface {
	SetStatus(ctx context.Context, id, status string) error
	AppendLog(ctx context.Context, id, text string) error
}

// SettingsReader resolves the global default local destination.
type SettingsReader interface {
	Get(ctx context.Context) (*model.Settings, error)
}

// Orchestrator executes the backup pipeline for one server profile at a
// time, recording progress and outcome in the job record. Run never
// returns an error: every internal failure terminates in a failed job.
type Orchestrator struct {
	dialer   remote.Dialer
	jobs     JobStore
	settings SettingsReader
	logger   zerolog.Logger

	// fallbackDir is used when neither the profile nor the stored
	// settings name a destination. Empty means ~/backups.
	fallbackDir string

	// One lock per server id: overlapping runs against the same server
	// (two schedules, or a schedule firing during an ad-hoc run) are
	// serialized rather than interleaved.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(dialer remote.Dialer, jobs JobStore, settings SettingsReader, fallbackDir string, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		dialer:      dialer,
		jobs:        jobs,
		settings:    settings,
		fallbackDir: fallbackDir,
		logger:      logger.With().Str("component", "orchestrator").Logger(),
		locks:       make(map[string]*sync.Mutex),
	}
}

// Run executes the pipeline for one server, mutating the passed job record
// through the job store. Safe to call without error handling on the caller
// side.
func (o *Orchestrator) Run(ctx context.Context, server *model.Server, job *model.BackupJob) {
	lock := o.serverLock(server.ID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	logger := o.logger.With().Str("server", server.ID).Str("job", job.ID).Logger()
	logger.Info().Msg("backup run starting")

	o.setStatus(ctx, job, model.JobStatusRunning)
	o.appendLog(ctx, job, fmt.Sprintf("backup of %s (%s) started\n", server.Name, server.Host))

	err := o.execute(ctx, server, job)

	if err != nil {
		o.appendLog(ctx, job, fmt.Sprintf("ERROR: %v\n", err))
		o.setStatus(ctx, job, model.JobStatusFailed)
		logger.Error().Err(err).Msg("backup run failed")
	} else {
		o.appendLog(ctx, job, "backup completed\n")
		o.setStatus(ctx, job, model.JobStatusSuccess)
		logger.Info().Dur("duration", time.Since(start)).Msg("backup run finished")
	}

	metrics.ObserveBackupRun(job.Status, time.Since(start))
}

// RunDetached runs the pipeline in its own goroutine. The caller need not
// wait; the returned channel closes when the run has reached a terminal
// status, for callers that do.
func (o *Orchestrator) RunDetached(ctx context.Context, server *model.Server, job *model.BackupJob) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Run(ctx, server, job)
	}()
	return done
}

func (o *Orchestrator) execute(ctx context.Context, server *model.Server, job *model.BackupJob) error {
	// Precondition: exactly one authentication method, checked before any
	// connection attempt.
	hasKey := server.PrivateKeyPath != nil && *server.PrivateKeyPath != ""
	hasPassword := server.Password != nil && *server.Password != ""
	switch {
	case !hasKey && !hasPassword:
		return &StepError{Step: "precondition", Err: ErrNoAuthMethod}
	case hasKey && hasPassword:
		return &StepError{Step: "precondition", Err: ErrAmbiguousAuthMethod}
	}

	targets := archiveTargets(server)
	databases := dumpDatabases(server)
	if len(targets) == 0 && len(databases) == 0 {
		o.appendLog(ctx, job, "nothing selected for backup; run complete\n")
		return nil
	}

	// Single attempt, no retry: a connection failure is fatal to the run.
	session, err := o.dialer.Dial(ctx, server)
	if err != nil {
		return &StepError{Step: "connect", Err: err}
	}
	defer session.Close()

	scratchDir := remoteScratchDir(job.ID)
	logw := &jobLogWriter{ctx: ctx, orch: o, job: job}

	if err := session.Run(ctx, mkdirCommand(scratchDir), nil, logw); err != nil {
		return &StepError{Step: "prepare scratch", Err: err}
	}

	var artifacts []string

	for _, target := range targets {
		archivePath := scratchDir + "/" + target.name + "-" + timestamp() + ".tar.gz"
		o.appendLog(ctx, job, fmt.Sprintf("archiving %s (%s)\n", target.name, target.path))
		if err := session.Run(ctx, archiveCommand(archivePath, target.path), nil, logw); err != nil {
			return &StepError{Step: "archive " + target.name, Err: err}
		}
		artifacts = append(artifacts, archivePath)
	}

	for _, database := range databases {
		if !remote.ValidName(database) {
			return &StepError{Step: "dump " + database, Err: fmt.Errorf("unsafe database name %q", database)}
		}
		dumpPath := scratchDir + "/" + database + "-" + timestamp() + ".sql.gz"
		o.appendLog(ctx, job, fmt.Sprintf("dumping database %s\n", database))

		host, port, user, password := databaseConnection(server)
		var env map[string]string
		if password != "" {
			env = map[string]string{mysqlPasswordEnv: password}
		}
		if err := session.Run(ctx, dumpCommand(host, port, user, database, dumpPath), env, logw); err != nil {
			return &StepError{Step: "dump " + database, Err: err}
		}
		artifacts = append(artifacts, dumpPath)
	}

	destDir, err := o.resolveDestination(ctx, server)
	if err != nil {
		return &StepError{Step: "retrieve", Err: err}
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return &StepError{Step: "retrieve", Err: fmt.Errorf("create destination %s: %w", destDir, err)}
	}

	for _, artifact := range artifacts {
		localPath := filepath.Join(destDir, filepath.Base(artifact))
		o.appendLog(ctx, job, fmt.Sprintf("retrieving %s -> %s\n", artifact, localPath))
		if err := session.Download(ctx, artifact, localPath); err != nil {
			return &StepError{Step: "retrieve", Err: err}
		}
	}
	metrics.AddArtifacts(len(artifacts))

	// Best effort: a cleanup failure is logged but never flips the outcome.
	if err := session.Run(ctx, cleanupCommand(scratchDir), nil, logw); err != nil {
		o.appendLog(ctx, job, fmt.Sprintf("warning: cleanup of %s failed: %v\n", scratchDir, err))
	}

	return nil
}

type archiveTarget struct {
	name string
	path string
}

func archiveTargets(server *model.Server) []archiveTarget {
	var targets []archiveTarget
	if server.BackupWeb {
		targets = append(targets, archiveTarget{name: "web", path: model.WebRoot})
	}
	if server.BackupLogs {
		targets = append(targets, archiveTarget{name: "logs", path: model.LogRoot})
	}
	if server.BackupNginxConfig {
		targets = append(targets, archiveTarget{name: "nginx-config", path: model.NginxConfigRoot})
	}
	for i, p := range server.ExtraPaths {
		if p == "" {
			continue
		}
		targets = append(targets, archiveTarget{name: fmt.Sprintf("extra-%d", i+1), path: p})
	}
	return targets
}

func dumpDatabases(server *model.Server) []string {
	if !server.BackupDatabase {
		return nil
	}
	var names []string
	for _, n := range server.DBNames {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

func databaseConnection(server *model.Server) (host string, port int, user, password string) {
	host = "localhost"
	if server.DBHost != nil && *server.DBHost != "" {
		host = *server.DBHost
	}
	port = model.DefaultDBPort
	if server.DBPort != nil && *server.DBPort != 0 {
		port = *server.DBPort
	}
	if server.DBUser != nil {
		user = *server.DBUser
	}
	if server.DBPassword != nil {
		password = *server.DBPassword
	}
	return host, port, user, password
}

// resolveDestination picks the local directory artifacts land in: the
// per-server override, else the stored global default, else the
// configured fallback, else ~/backups.
func (o *Orchestrator) resolveDestination(ctx context.Context, server *model.Server) (string, error) {
	if server.BackupPath != nil && *server.BackupPath != "" {
		return filepath.Join(*server.BackupPath, server.Name), nil
	}

	settings, err := o.settings.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read settings: %w", err)
	}
	if settings.DefaultBackupPath != "" {
		return filepath.Join(settings.DefaultBackupPath, server.Name), nil
	}

	if o.fallbackDir != "" {
		return filepath.Join(o.fallbackDir, server.Name), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, "backups", server.Name), nil
}

func (o *Orchestrator) serverLock(serverID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[serverID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[serverID] = lock
	}
	return lock
}

// setStatus and appendLog keep the run going on store write failures; the
// failure is visible in the process log instead.
func (o *Orchestrator) setStatus(ctx context.Context, job *model.BackupJob, status string) {
	job.Status = status
	if err := o.jobs.SetStatus(ctx, job.ID, status); err != nil {
		o.logger.Error().Err(err).Str("job", job.ID).Str("status", status).Msg("failed to persist job status")
	}
}

func (o *Orchestrator) appendLog(ctx context.Context, job *model.BackupJob, text string) {
	job.Log += text
	if err := o.jobs.AppendLog(ctx, job.ID, text); err != nil {
		o.logger.Error().Err(err).Str("job", job.ID).Msg("failed to persist job log")
	}
}

// jobLogWriter streams remote command output into the job log as it is
// produced.
type jobLogWriter struct {
	ctx  context.Context
	orch *Orchestrator
	job  *model.BackupJob
}

func (w *jobLogWriter) Write(p []byte) (int, error) {
	w.orch.appendLog(w.ctx, w.job, string(p))
	return len(p), nil
}

func remoteScratchDir(jobID string) string {
	return "/tmp/backhaul-" + jobID
}

func timestamp() string {
	return time.Now().Format("20060102-150405")
}
