package config

import (
	"fmt"
	"os"
)

type Config struct {
	DatabaseURL    string
	HTTPListenAddr string
	LogLevel       string
	ServiceName    string
	// SchedulerTimezone overrides the host timezone for schedule timers
	// when set (IANA name, e.g. "Europe/Oslo").
	SchedulerTimezone string
	// DefaultBackupDir is the fallback local destination for retrieved
	// artifacts when neither the server profile nor the stored settings
	// provide one. Empty means ~/backups.
	DefaultBackupDir string
	// SSHConnectTimeoutSeconds bounds session establishment only; steps
	// inside a run rely on the transport's own behavior.
	SSHConnectTimeoutSeconds int
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		HTTPListenAddr:           getEnv("HTTP_LISTEN_ADDR", ":8085"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		ServiceName:              getEnv("SERVICE_NAME", "backhauld"),
		SchedulerTimezone:        getEnv("SCHEDULER_TZ", ""),
		DefaultBackupDir:         getEnv("DEFAULT_BACKUP_DIR", ""),
		SSHConnectTimeoutSeconds: getEnvInt("SSH_CONNECT_TIMEOUT", 10),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.SSHConnectTimeoutSeconds <= 0 {
		return fmt.Errorf("SSH_CONNECT_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return fallback
	}
	return n
}
