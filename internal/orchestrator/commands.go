package orchestrator

import (
	"fmt"
	"strings"

	"github.com/edvin/backhaul/internal/remote"
)

// mysqlPasswordEnv carries the dump credential through the SSH session
// environment so it never appears in a process listing.
const mysqlPasswordEnv = "MYSQL_PWD"

func mkdirCommand(dir string) string {
	return fmt.Sprintf("mkdir -p %s", remote.ShellQuote(dir))
}

func archiveCommand(archivePath, sourcePath string) string {
	return fmt.Sprintf("tar -czf %s -C / %s",
		remote.ShellQuote(archivePath), remote.ShellQuote(trimLeadingSlash(sourcePath)))
}

// dumpCommand dumps to a plain .sql file and compresses it in a second
// step. Piping through gzip directly would need pipefail to surface a
// mysqldump failure, and pipefail is not POSIX sh; login shells on the
// targets are whatever sshd gives us.
func dumpCommand(host string, port int, user, database, outPath string) string {
	plainPath := strings.TrimSuffix(outPath, ".gz")
	return fmt.Sprintf(
		"mysqldump --single-transaction -h %s -P %d -u %s %s > %s && gzip -f %s",
		remote.ShellQuote(host), port, remote.ShellQuote(user), database,
		remote.ShellQuote(plainPath), remote.ShellQuote(plainPath))
}

func cleanupCommand(dir string) string {
	return fmt.Sprintf("rm -rf %s", remote.ShellQuote(dir))
}

func trimLeadingSlash(p string) string {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	return p
}
