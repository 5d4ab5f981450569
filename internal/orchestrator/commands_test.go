package orchestrator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArchiveCommand(t *testing.T) {
	cmd := archiveCommand("/tmp/backhaul-job-1/web.tar.gz", "/var/www")
	assert.Equal(t, "tar -czf '/tmp/backhaul-job-1/web.tar.gz' -C / 'var/www'", cmd)
}

func TestArchiveCommand_QuotesAwkwardPaths(t *testing.T) {
	cmd := archiveCommand("/tmp/out.tar.gz", "/srv/it's data")
	assert.Contains(t, cmd, `'srv/it'\''s data'`)
}

func TestDumpCommand(t *testing.T) {
	cmd := dumpCommand("db.internal", 3307, "dumper", "shop", "/tmp/shop.sql.gz")
	assert.Equal(t,
		"mysqldump --single-transaction -h 'db.internal' -P 3307 -u 'dumper' shop > '/tmp/shop.sql' && gzip -f '/tmp/shop.sql'",
		cmd)
	assert.NotContains(t, cmd, "-p", "password must never be an argument")
}

func TestDumpCommand_AvoidsShellExtensions(t *testing.T) {
	// The command must run under plain POSIX sh; pipefail in particular is
	// a bashism that would fail the whole step on dash targets.
	cmd := dumpCommand("localhost", 3306, "root", "shop", "/tmp/shop.sql.gz")
	assert.NotContains(t, cmd, "pipefail")
	assert.NotContains(t, cmd, "|")
}

func TestMkdirAndCleanupCommands(t *testing.T) {
	assert.Equal(t, "mkdir -p '/tmp/backhaul-job-1'", mkdirCommand("/tmp/backhaul-job-1"))
	assert.Equal(t, "rm -rf '/tmp/backhaul-job-1'", cleanupCommand("/tmp/backhaul-job-1"))
}

func TestTrimLeadingSlash(t *testing.T) {
	assert.Equal(t, "var/www", trimLeadingSlash("/var/www"))
	assert.Equal(t, "var/www", trimLeadingSlash("//var/www"))
	assert.Equal(t, "relative", trimLeadingSlash("relative"))
	assert.Equal(t, "", trimLeadingSlash("/"))
}

func TestStepError(t *testing.T) {
	inner := errors.New("exit status 2")
	err := &StepError{Step: "archive web", Err: inner}
	assert.Equal(t, "step archive web failed: exit status 2", err.Error())
	assert.ErrorIs(t, err, inner)
}
