package model

// Backup job status constants. Transitions are one-directional:
// pending -> running -> success|failed.
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusSuccess = "success"
	JobStatusFailed  = "failed"
)

// TerminalStatus reports whether a job status admits no further transition.
func TerminalStatus(status string) bool {
	return status == JobStatusSuccess || status == JobStatusFailed
}
